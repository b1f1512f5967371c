package tracer

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

func recorder(t *testing.T) (*OtelTracer, *tracetest.InMemoryExporter) {
	t.Helper()
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })
	return NewOtelTracer(tp.Tracer("sqlbuild")), exporter
}

func TestNoopTracer(t *testing.T) {
	ctx := context.Background()
	got, span := NoopTracer{}.StartSpan(ctx, "sqlbuild.select")

	assert.Equal(t, ctx, got)
	span.SetAttributes(attribute.Int("n", 1))
	span.End(errors.New("ignored"))
}

func TestOtelTracer_Success(t *testing.T) {
	tr, exporter := recorder(t)

	ctx, span := tr.StartSpan(context.Background(), "sqlbuild.select")
	assert.True(t, trace.SpanContextFromContext(ctx).IsValid())
	span.End(nil)

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, "sqlbuild.select", spans[0].Name)
	assert.Equal(t, trace.SpanKindInternal, spans[0].SpanKind)
	assert.Equal(t, codes.Ok, spans[0].Status.Code)
	assert.Empty(t, spans[0].Events)
}

func TestOtelTracer_Failure(t *testing.T) {
	tr, exporter := recorder(t)

	_, span := tr.StartSpan(context.Background(), "sqlbuild.insert")
	span.End(errors.New("sqlserver: insert ignore is not supported"))

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Error, spans[0].Status.Code)
	assert.Equal(t, "sqlserver: insert ignore is not supported", spans[0].Status.Description)
	require.Len(t, spans[0].Events, 1)
	assert.Equal(t, "exception", spans[0].Events[0].Name)
}

func TestBuild_Attributes(t *testing.T) {
	tests := []struct {
		name  string
		build Build
		want  map[attribute.Key]interface{}
	}{
		{
			name: "full",
			build: Build{
				Dialect:   "postgres",
				Operation: "SELECT",
				Table:     "users",
				SQL:       "SELECT * FROM users WHERE (id = :id);",
				Params:    1,
				Duration:  1500 * time.Microsecond,
			},
			want: map[attribute.Key]interface{}{
				"db.system":            "postgres",
				"db.operation":         "SELECT",
				"db.sql.table":         "users",
				"db.statement":         "SELECT * FROM users WHERE (id = :id);",
				"sqlbuild.params":      int64(1),
				"sqlbuild.duration_ms": 1.5,
			},
		},
		{
			name:  "rejected",
			build: Build{Dialect: "sqlserver", Operation: "INSERT"},
			want: map[attribute.Key]interface{}{
				"db.system":            "sqlserver",
				"db.operation":         "INSERT",
				"sqlbuild.params":      int64(0),
				"sqlbuild.duration_ms": 0.0,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := make(map[attribute.Key]interface{})
			for _, kv := range tt.build.Attributes() {
				got[kv.Key] = kv.Value.AsInterface()
			}
			assert.Equal(t, tt.want, got)
		})
	}
}
