package core

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"

	"github.com/coregx/sqlbuild/internal/dialects"
	"github.com/coregx/sqlbuild/internal/security"
	"github.com/coregx/sqlbuild/internal/tracer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestNew_Defaults(t *testing.T) {
	b := New(dialects.PostgreSQL)

	assert.Equal(t, dialects.PostgreSQL, b.Dialect())
	assert.Equal(t, "postgres", b.Policy().Name)
	assert.False(t, b.strict)
	assert.Nil(t, b.activeValidator())
}

func TestNewForDriver(t *testing.T) {
	assert.Equal(t, dialects.PostgreSQL, NewForDriver("pgx").Dialect())
	assert.Equal(t, dialects.MySQL, NewForDriver("mysql").Dialect())
	assert.Equal(t, dialects.SQLServer, NewForDriver("sqlserver").Dialect())
	assert.Equal(t, dialects.Unknown, NewForDriver("nope").Dialect())
	assert.Equal(t, "generic", NewForDriver("nope").Policy().Name)
}

func TestBuilder_UnknownDialect(t *testing.T) {
	t.Run("Generic fallback", func(t *testing.T) {
		stmt, err := New(dialects.ID(99)).Select().From("t").Limit(5).Build()
		require.NoError(t, err)
		assert.Equal(t, "SELECT * FROM t LIMIT 5;", stmt.SQL)
		assert.Equal(t, dialects.Unknown, stmt.Dialect)
	})

	t.Run("Strict mode rejects", func(t *testing.T) {
		stmt, err := New(dialects.ID(99), WithStrict(true)).Select().From("t").Build()
		assert.Nil(t, stmt)
		assert.ErrorIs(t, err, ErrUnsupportedDialect)
	})
}

func TestBuilder_StrictValidatesIdentifiers(t *testing.T) {
	lax := New(dialects.MySQL)
	strict := New(dialects.MySQL, WithStrict(true))

	table := "users; DROP TABLE users"

	_, err := lax.Select().From(table).Build()
	require.NoError(t, err)

	_, err = strict.Select().From(table).Build()
	assert.ErrorIs(t, err, ErrUnsafeInput)

	_, err = strict.Select("id").From("users").Where(C("id", "=", 1)).Build()
	assert.NoError(t, err)

	_, err = strict.Insert("users").Values(map[string]interface{}{"name' --": 1}).Build()
	assert.ErrorIs(t, err, ErrUnsafeInput)

	_, err = strict.Update("users").Set(map[string]interface{}{"a": 1}).Where(C("id", "1=1 OR", 1)).Build()
	assert.ErrorIs(t, err, ErrUnsafeInput)

	_, err = strict.Select().From("users").Join("inner; drop", "orders", nil).Build()
	assert.ErrorIs(t, err, ErrUnsafeInput)

	_, err = strict.Delete("users").As("u UNION SELECT 1").Build()
	assert.ErrorIs(t, err, ErrUnsafeInput)
}

type rejectingValidator struct{}

func (rejectingValidator) ValidateIdentifier(name string) error {
	if name == "secret_table" {
		return errors.New("forbidden table")
	}
	return nil
}

func (rejectingValidator) ValidateOperator(string) error { return nil }

func TestBuilder_WithValidator(t *testing.T) {
	b := New(dialects.PostgreSQL, WithStrict(true), WithValidator(rejectingValidator{}))

	_, err := b.Select().From("secret_table").Build()
	require.ErrorIs(t, err, ErrUnsafeInput)
	assert.Contains(t, err.Error(), "forbidden table")

	// Validators only run in strict mode.
	_, err = New(dialects.PostgreSQL, WithValidator(rejectingValidator{})).Select().From("secret_table").Build()
	assert.NoError(t, err)
}

func TestBuilder_BuildHook(t *testing.T) {
	var events []BuildEvent
	b := New(dialects.PostgreSQL, WithBuildHook(func(_ context.Context, e BuildEvent) {
		events = append(events, e)
	}))

	_, err := b.Select("id").From("users").Where(C("id", "=", 7)).Build()
	require.NoError(t, err)
	_, err = b.Delete("users").Limit(-1).Build()
	require.Error(t, err)

	require.Len(t, events, 2)

	ok := events[0]
	assert.Equal(t, "SELECT id FROM users WHERE (id = :id);", ok.SQL)
	assert.Equal(t, map[string]interface{}{":id": 7}, ok.Params)
	assert.Equal(t, "SELECT", ok.Operation)
	assert.Equal(t, "users", ok.Table)
	assert.Equal(t, "postgres", ok.Dialect)
	assert.NoError(t, ok.Error)

	failed := events[1]
	assert.Empty(t, failed.SQL)
	assert.Nil(t, failed.Params)
	assert.Equal(t, "DELETE", failed.Operation)
	assert.ErrorIs(t, failed.Error, ErrInvalidInput)
}

type ctxKey struct{}

func TestBuilder_ContextReachesHook(t *testing.T) {
	var got []interface{}
	b := New(dialects.MySQL, WithBuildHook(func(ctx context.Context, _ BuildEvent) {
		got = append(got, ctx.Value(ctxKey{}))
	}))

	ctx := context.WithValue(context.Background(), ctxKey{}, "builder")
	_, err := b.WithContext(ctx).Select().From("t").Build()
	require.NoError(t, err)

	queryCtx := context.WithValue(context.Background(), ctxKey{}, "query")
	_, err = b.WithContext(ctx).Select().From("t").WithContext(queryCtx).Build()
	require.NoError(t, err)

	_, err = b.Select().From("t").Build()
	require.NoError(t, err)

	assert.Equal(t, []interface{}{"builder", "query", nil}, got)
}

func TestBuilder_Tracing(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	b := New(dialects.MySQL, WithTracer(tracer.NewOtelTracer(tp.Tracer("test"))))

	_, err := b.Insert("users").Values(map[string]interface{}{"name": "a"}).Build()
	require.NoError(t, err)
	_, err = b.Update("users").Build()
	require.Error(t, err)

	spans := exporter.GetSpans()
	require.Len(t, spans, 2)

	assert.Equal(t, "sqlbuild.insert", spans[0].Name)
	assert.Equal(t, codes.Ok, spans[0].Status.Code)
	attrs := make(map[string]interface{})
	for _, kv := range spans[0].Attributes {
		attrs[string(kv.Key)] = kv.Value.AsInterface()
	}
	assert.Equal(t, "mysql", attrs["db.system"])
	assert.Equal(t, "INSERT", attrs["db.operation"])
	assert.Equal(t, "users", attrs["db.sql.table"])
	assert.Equal(t, int64(1), attrs["sqlbuild.params"])
	assert.Equal(t, "INSERT INTO users (name) VALUES (:name);", attrs["db.statement"])

	assert.Equal(t, "sqlbuild.update", spans[1].Name)
	assert.Equal(t, codes.Error, spans[1].Status.Code)
}

func TestBuilder_LogsMaskSensitiveParams(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	b := New(dialects.PostgreSQL, WithSlog(log))
	_, err := b.Insert("users").
		Values(map[string]interface{}{"email": "a@example.com", "password": "hunter2"}).
		Build()
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "statement built")
	assert.Contains(t, out, "a@example.com")
	assert.Contains(t, out, "***REDACTED***")
	assert.NotContains(t, out, "hunter2")
}

func TestBuilder_WithSensitiveFields(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	b := New(dialects.MySQL, WithSlog(log), WithSensitiveFields("email"))
	_, err := b.Select().From("users").Where(C("email", "=", "a@example.com")).Build()
	require.NoError(t, err)

	assert.NotContains(t, buf.String(), "a@example.com")
	assert.Contains(t, buf.String(), "***REDACTED***")
}

func TestBuilder_LogsRejections(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	_, err := New(dialects.MySQL, WithSlog(log)).Select().Build()
	require.Error(t, err)
	assert.Contains(t, buf.String(), "statement rejected")
}

func TestBuilder_ConcurrentBuilds(t *testing.T) {
	b := New(dialects.PostgreSQL, WithStrict(true))

	var wg sync.WaitGroup
	errs := make(chan error, 50)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			stmt, err := b.Select("id").
				From("users").
				Where(And(C("age", ">", i), C("age", "<", i+10))).
				Build()
			if err != nil {
				errs <- err
				return
			}
			if stmt.SQL != "SELECT id FROM users WHERE (age > :age) AND (age < :age2);" {
				errs <- errors.New("unexpected SQL: " + stmt.SQL)
				return
			}
			if v, _ := stmt.Params.Get(":age"); v != i {
				errs <- errors.New("parameters leaked between builds")
			}
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Error(err)
	}
}

func TestBuilder_Auditor(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	b := New(dialects.MySQL,
		WithStrict(true),
		WithAuditor(security.NewAuditor(logger, security.AuditWrites)))
	ctx := security.WithUser(context.Background(), "ops@example.com")

	_, err := b.Select().From("users").WithContext(ctx).Where(C("id", "=", 1)).Build()
	require.NoError(t, err)
	assert.Empty(t, buf.String(), "reads are not audited at AuditWrites")

	_, err = b.Update("users").WithContext(ctx).
		Set(map[string]interface{}{"password": "s3cret"}).
		Where(C("id", "=", 1)).
		Build()
	require.NoError(t, err)
	out := buf.String()
	assert.Contains(t, out, "audit_event")
	assert.Contains(t, out, `"operation":"UPDATE"`)
	assert.Contains(t, out, "ops@example.com")
	assert.Contains(t, out, "params_hash")
	assert.NotContains(t, out, "s3cret")

	buf.Reset()
	_, err = b.Delete("users; DROP TABLE users").WithContext(ctx).Build()
	require.ErrorIs(t, err, ErrUnsafeInput)
	assert.Contains(t, buf.String(), "security_event")
	assert.Contains(t, buf.String(), "statement_blocked")
}
