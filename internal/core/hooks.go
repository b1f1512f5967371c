package core

import (
	"context"
	"errors"
	"time"

	"github.com/coregx/sqlbuild/internal/dialects"
)

// BuildEvent describes one Build call.
// This is passed to BuildHook callbacks for logging, metrics, or auditing.
type BuildEvent struct {
	// SQL is the built statement (empty when Error is set)
	SQL string
	// Params are the bound parameters keyed by placeholder name
	Params map[string]interface{}
	// Operation is SELECT, INSERT, UPDATE or DELETE
	Operation string
	// Table is the target table
	Table string
	// Dialect is the dialect name the statement was rendered for
	Dialect string
	// Duration is how long rendering took
	Duration time.Duration
	// Error is the build error (nil on success)
	Error error
}

// BuildHook is a callback function invoked after each Build.
//
// Example:
//
//	b := sqlbuild.New(sqlbuild.PostgreSQL,
//	    sqlbuild.WithBuildHook(func(ctx context.Context, e sqlbuild.BuildEvent) {
//	        slog.Info("built", "sql", e.SQL, "err", e.Error)
//	    }))
type BuildHook func(ctx context.Context, event BuildEvent)

// invokeHook calls the build hook if set.
func (b *Builder) invokeHook(ctx context.Context, event BuildEvent) {
	if b.hook != nil {
		b.hook(ctx, event)
	}
}

// audit forwards the build outcome to the auditor, if any.
func (b *Builder) audit(ctx context.Context, p dialects.Policy, operation, table string, stmt *Statement, d time.Duration, err error) {
	if b.auditor == nil {
		return
	}
	if errors.Is(err, ErrUnsafeInput) {
		b.auditor.LogSecurityEvent(ctx, "statement_blocked", operation, table, err)
		return
	}

	var sql string
	var names []string
	var values []interface{}
	if stmt != nil {
		sql = stmt.SQL
		names, values = stmt.Params.lists()
	}
	b.auditor.LogBuild(ctx, operation, table, p.Name, sql, names, values, err, d)
}
