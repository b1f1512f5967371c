package core

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/coregx/sqlbuild/internal/dialects"
	"github.com/coregx/sqlbuild/internal/logger"
	"github.com/coregx/sqlbuild/internal/security"
	"github.com/coregx/sqlbuild/internal/tracer"
)

// Builder creates SELECT, INSERT, UPDATE and DELETE statements for one dialect.
// A Builder holds only configuration and is safe for concurrent use; the
// query values it returns belong to a single goroutine.
type Builder struct {
	dialect   dialects.ID
	strict    bool
	logger    logger.Logger
	sanitizer *logger.Sanitizer
	tracer    tracer.Tracer
	hook      BuildHook
	auditor   *security.Auditor
	validator Validator
	ctx       context.Context
}

// Option is a functional option for configuring a Builder.
type Option func(*Builder)

// WithStrict enables strict mode: unregistered dialects fail with
// ErrUnsupportedDialect and unbound SQL text (identifiers, field expressions,
// pass-through operators) is checked by the validator.
func WithStrict(strict bool) Option {
	return func(b *Builder) {
		b.strict = strict
	}
}

// WithLogger sets the logger for build events.
func WithLogger(l logger.Logger) Option {
	return func(b *Builder) {
		if l != nil {
			b.logger = l
		}
	}
}

// WithSlog logs build events through a log/slog logger.
func WithSlog(l *slog.Logger) Option {
	return func(b *Builder) {
		if l != nil {
			b.logger = logger.NewSlogAdapter(l)
		}
	}
}

// WithSensitiveFields replaces the column names whose parameter values are
// masked in logs.
func WithSensitiveFields(fields ...string) Option {
	return func(b *Builder) {
		b.sanitizer = logger.NewSanitizer(fields)
	}
}

// WithTracer sets the tracer; every Build runs in a "sqlbuild.<operation>" span.
func WithTracer(t tracer.Tracer) Option {
	return func(b *Builder) {
		if t != nil {
			b.tracer = t
		}
	}
}

// WithBuildHook sets a callback invoked after every Build.
func WithBuildHook(hook BuildHook) Option {
	return func(b *Builder) {
		b.hook = hook
	}
}

// WithAuditor records every Build in an audit trail. Strict mode
// rejections are logged as security events.
func WithAuditor(a *security.Auditor) Option {
	return func(b *Builder) {
		b.auditor = a
	}
}

// WithValidator replaces the strict mode validator.
func WithValidator(v Validator) Option {
	return func(b *Builder) {
		b.validator = v
	}
}

// New creates a Builder for the dialect.
//
// Example:
//
//	b := sqlbuild.New(sqlbuild.PostgreSQL, sqlbuild.WithStrict(true))
//	stmt, err := b.Select("id", "name").From("users").
//	    Where(sqlbuild.C("status", "=", "active")).
//	    Build()
func New(dialect dialects.ID, opts ...Option) *Builder {
	b := &Builder{
		dialect:   dialect,
		logger:    logger.NoopLogger{},
		sanitizer: logger.NewSanitizer(nil),
		tracer:    tracer.NoopTracer{},
	}

	for _, opt := range opts {
		opt(b)
	}

	if b.strict && b.validator == nil {
		b.validator = security.NewValidator()
	}

	return b
}

// NewForDriver creates a Builder for the dialect of a database/sql driver
// name ("postgres", "pgx", "mysql", "sqlite", "sqlserver", ...). Unknown
// drivers get the generic dialect.
func NewForDriver(driverName string, opts ...Option) *Builder {
	id, _ := dialects.ForDriver(driverName)
	return New(id, opts...)
}

// Dialect returns the dialect the builder renders for.
func (b *Builder) Dialect() dialects.ID {
	return b.dialect
}

// Policy returns the dialect policy in effect (Generic for unknown dialects).
func (b *Builder) Policy() dialects.Policy {
	return dialects.Resolve(b.dialect)
}

// WithContext returns a copy of the builder whose queries use ctx for
// tracing and hooks unless they set their own.
func (b *Builder) WithContext(ctx context.Context) *Builder {
	nb := *b
	nb.ctx = ctx
	return &nb
}

// policy resolves the dialect table, enforcing registration in strict mode.
func (b *Builder) policy() (dialects.Policy, error) {
	p, ok := dialects.Lookup(b.dialect)
	if ok {
		return p, nil
	}
	if b.strict {
		return dialects.Policy{ID: b.dialect, Name: "unknown"}, fmt.Errorf("%w: dialect id %d", ErrUnsupportedDialect, int(b.dialect))
	}
	return dialects.Generic, nil
}

func (b *Builder) activeValidator() Validator {
	if !b.strict {
		return nil
	}
	return b.validator
}

// renderFunc renders a statement body (without the terminator).
type renderFunc func(c *compiler, p dialects.Policy) (string, error)

// build runs render inside a span, then logs the outcome and invokes the hook.
// Either a complete statement or an error is returned, never both.
func (b *Builder) build(ctx context.Context, operation, table string, render renderFunc) (*Statement, error) {
	if ctx == nil {
		ctx = b.ctx
	}
	if ctx == nil {
		ctx = context.Background()
	}

	start := time.Now()
	ctx, span := b.tracer.StartSpan(ctx, "sqlbuild."+strings.ToLower(operation))

	var stmt *Statement
	p, err := b.policy()
	if err == nil {
		c := newCompiler(b.activeValidator())
		var sql string
		sql, err = render(c, p)
		if err == nil {
			stmt = &Statement{
				SQL:       finishSQL(sql),
				Params:    c.params,
				Operation: operation,
				Table:     table,
				Dialect:   p.ID,
				policy:    p,
			}
		}
	}
	if err != nil {
		err = WrapError(err, strings.ToLower(operation)+" "+table)
	}

	duration := time.Since(start)
	traceBuild(span, p, operation, table, stmt, duration, err)
	b.logBuild(p, operation, table, stmt, err)

	event := BuildEvent{
		Operation: operation,
		Table:     table,
		Dialect:   p.Name,
		Duration:  duration,
		Error:     err,
	}
	if stmt != nil {
		event.SQL = stmt.SQL
		event.Params = stmt.Params.Map()
	}
	b.invokeHook(ctx, event)
	b.audit(ctx, p, operation, table, stmt, duration, err)

	if err != nil {
		return nil, err
	}
	return stmt, nil
}

func (b *Builder) logBuild(p dialects.Policy, operation, table string, stmt *Statement, err error) {
	if err != nil {
		b.logger.Debug("statement rejected",
			"operation", operation,
			"dialect", p.Name,
			"table", table,
			"error", err)
		return
	}

	names, values := stmt.Params.lists()
	b.logger.Debug("statement built",
		"operation", operation,
		"dialect", p.Name,
		"table", table,
		"sql", stmt.SQL,
		"params", b.sanitizer.FormatNamed(names, values))
}

// checkTable validates the target table of a statement.
func checkTable(c *compiler, table string) (string, error) {
	table = strings.TrimSpace(table)
	if table == "" {
		return "", invalidf("table name is required")
	}
	if err := c.checkIdent(table); err != nil {
		return "", err
	}
	return table, nil
}

// checkLimit validates a requested row limit.
func checkLimit(set bool, n int) error {
	if set && n <= 0 {
		return invalidf("limit must be positive, got %d", n)
	}
	return nil
}

// combineWhere joins an existing condition with a new one.
func combineWhere(existing, cond interface{}, connector string) interface{} {
	if isEmptyCondition(cond) {
		return existing
	}
	if isEmptyCondition(existing) {
		return cond
	}
	return Condition{existing, connector, cond}
}

// getKeys returns sorted map keys for deterministic SQL generation.
func getKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
