package security

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// AuditLevel selects which builds reach the audit trail.
type AuditLevel int

const (
	// AuditNone disables the audit trail.
	AuditNone AuditLevel = iota
	// AuditWrites records successful INSERT, UPDATE and DELETE builds.
	AuditWrites
	// AuditReads records every successful build.
	AuditReads
	// AuditAll records every build, failed ones included.
	AuditAll
)

var auditLevelNames = map[string]AuditLevel{
	"":       AuditNone,
	"none":   AuditNone,
	"off":    AuditNone,
	"writes": AuditWrites,
	"reads":  AuditReads,
	"all":    AuditAll,
}

// ParseAuditLevel maps "none", "writes", "reads" or "all" to an AuditLevel.
func ParseAuditLevel(name string) (AuditLevel, error) {
	level, ok := auditLevelNames[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return AuditNone, fmt.Errorf("unknown audit level %q (want none, writes, reads or all)", name)
	}
	return level, nil
}

// audits reports whether a build of operation with outcome err is recorded.
func (l AuditLevel) audits(operation string, err error) bool {
	switch l {
	case AuditAll:
		return true
	case AuditReads:
		return err == nil
	case AuditWrites:
		return err == nil && operation != "SELECT"
	}
	return false
}

// Caller identifies who asked for a statement. It travels in the context.
type Caller struct {
	User      string `json:"user,omitempty"`
	ClientIP  string `json:"client_ip,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

type callerKey struct{}

// CallerFrom returns the caller stored in ctx, or the zero Caller.
func CallerFrom(ctx context.Context) Caller {
	if ctx == nil {
		return Caller{}
	}
	c, _ := ctx.Value(callerKey{}).(Caller)
	return c
}

func withCaller(ctx context.Context, update func(*Caller)) context.Context {
	c := CallerFrom(ctx)
	update(&c)
	return context.WithValue(ctx, callerKey{}, c)
}

// WithUser records the acting user for the audit trail.
func WithUser(ctx context.Context, user string) context.Context {
	return withCaller(ctx, func(c *Caller) { c.User = user })
}

// WithClientIP records the client address for the audit trail.
func WithClientIP(ctx context.Context, ip string) context.Context {
	return withCaller(ctx, func(c *Caller) { c.ClientIP = ip })
}

// WithRequestID records the request ID for the audit trail.
func WithRequestID(ctx context.Context, id string) context.Context {
	return withCaller(ctx, func(c *Caller) { c.RequestID = id })
}

// AuditEvent is one audited build.
type AuditEvent struct {
	Caller
	Timestamp  time.Time `json:"timestamp"`
	Operation  string    `json:"operation"`
	Table      string    `json:"table,omitempty"`
	Dialect    string    `json:"dialect,omitempty"`
	SQL        string    `json:"sql,omitempty"`
	ParamsHash string    `json:"params_hash,omitempty"`
	Success    bool      `json:"success"`
	Error      string    `json:"error,omitempty"`
	Duration   int64     `json:"duration_us,omitempty"`
}

func (e *AuditEvent) attrs() []slog.Attr {
	attrs := []slog.Attr{
		slog.String("operation", e.Operation),
		slog.String("table", e.Table),
	}
	optional := []struct{ key, value string }{
		{"dialect", e.Dialect},
		{"sql", e.SQL},
		{"params_hash", e.ParamsHash},
		{"user", e.User},
		{"client_ip", e.ClientIP},
		{"request_id", e.RequestID},
		{"error", e.Error},
	}
	for _, kv := range optional {
		if kv.value != "" {
			attrs = append(attrs, slog.String(kv.key, kv.value))
		}
	}
	return append(attrs,
		slog.Bool("success", e.Success),
		slog.Int64("duration_us", e.Duration))
}

// Auditor writes an audit trail of builds to a slog logger. Parameter
// values never reach the log; only a hash of names and values does.
type Auditor struct {
	logger *slog.Logger
	level  AuditLevel
}

// NewAuditor returns an auditor logging to logger at level. A nil logger
// disables it.
func NewAuditor(logger *slog.Logger, level AuditLevel) *Auditor {
	return &Auditor{logger: logger, level: level}
}

func (a *Auditor) enabled() bool {
	return a != nil && a.logger != nil && a.level != AuditNone
}

// LogBuild records one build if the level selects it. names and values are
// the bound parameters in placeholder order.
func (a *Auditor) LogBuild(ctx context.Context, operation, table, dialect, query string, names []string, values []interface{}, err error, duration time.Duration) {
	if !a.enabled() || !a.level.audits(operation, err) {
		return
	}

	event := AuditEvent{
		Caller:     CallerFrom(ctx),
		Timestamp:  time.Now().UTC(),
		Operation:  operation,
		Table:      table,
		Dialect:    dialect,
		SQL:        query,
		ParamsHash: hashParams(names, values),
		Success:    err == nil,
		Duration:   duration.Microseconds(),
	}
	level := slog.LevelInfo
	if err != nil {
		event.Error = err.Error()
		level = slog.LevelWarn
	}
	a.logger.LogAttrs(ctx, level, "audit_event", event.attrs()...)
}

// LogSecurityEvent records a build rejected as unsafe. It is logged at every
// level except AuditNone.
func (a *Auditor) LogSecurityEvent(ctx context.Context, eventType, operation, table string, err error) {
	if !a.enabled() {
		return
	}

	event := AuditEvent{
		Caller:    CallerFrom(ctx),
		Timestamp: time.Now().UTC(),
		Operation: operation,
		Table:     table,
		Error:     err.Error(),
	}
	attrs := append([]slog.Attr{slog.String("event_type", eventType)}, event.attrs()...)
	a.logger.LogAttrs(ctx, slog.LevelWarn, "security_event", attrs...)
}

// hashParams returns the hex SHA-256 of "name=value;" pairs, or "" when
// nothing is bound.
func hashParams(names []string, values []interface{}) string {
	if len(names) == 0 {
		return ""
	}
	h := sha256.New()
	for i, name := range names {
		var v interface{}
		if i < len(values) {
			v = values[i]
		}
		fmt.Fprintf(h, "%s=%v;", name, v)
	}
	return hex.EncodeToString(h.Sum(nil))
}
