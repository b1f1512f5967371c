// Package tracer wraps statement builds in spans. OpenTelemetry is supported
// out of the box; any other backend can implement Tracer.
package tracer

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Tracer opens one span per Build call.
type Tracer interface {
	StartSpan(ctx context.Context, name string) (context.Context, Span)
}

// Span is an open build span. End closes it; a non-nil err marks the span
// as failed.
type Span interface {
	SetAttributes(attrs ...attribute.KeyValue)
	End(err error)
}

// NoopTracer discards all spans. It is the builder default.
type NoopTracer struct{}

// StartSpan returns ctx unchanged.
func (NoopTracer) StartSpan(ctx context.Context, _ string) (context.Context, Span) {
	return ctx, noopSpan{}
}

type noopSpan struct{}

func (noopSpan) SetAttributes(...attribute.KeyValue) {}
func (noopSpan) End(error)                           {}

// OtelTracer reports build spans to an OpenTelemetry tracer.
type OtelTracer struct {
	tracer trace.Tracer
}

// NewOtelTracer adapts t, which must not be nil.
func NewOtelTracer(t trace.Tracer) *OtelTracer {
	return &OtelTracer{tracer: t}
}

// StartSpan starts an internal span named name.
func (t *OtelTracer) StartSpan(ctx context.Context, name string) (context.Context, Span) {
	ctx, span := t.tracer.Start(ctx, name, trace.WithSpanKind(trace.SpanKindInternal))
	return ctx, otelSpan{span}
}

type otelSpan struct {
	trace.Span
}

func (s otelSpan) End(err error) {
	if err != nil {
		s.RecordError(err)
		s.SetStatus(codes.Error, err.Error())
	} else {
		s.SetStatus(codes.Ok, "")
	}
	s.Span.End()
}

// Build summarizes one statement build. Attribute keys follow the
// OpenTelemetry database conventions where one exists.
type Build struct {
	Dialect   string
	Operation string
	Table     string
	SQL       string
	Params    int
	Duration  time.Duration
}

// Attributes returns the span attributes for b. Empty SQL and Table are
// left out.
func (b Build) Attributes() []attribute.KeyValue {
	attrs := make([]attribute.KeyValue, 0, 6)
	attrs = append(attrs,
		attribute.String("db.system", b.Dialect),
		attribute.String("db.operation", b.Operation),
		attribute.Int("sqlbuild.params", b.Params),
		attribute.Float64("sqlbuild.duration_ms", float64(b.Duration.Microseconds())/1000),
	)
	if b.Table != "" {
		attrs = append(attrs, attribute.String("db.sql.table", b.Table))
	}
	if b.SQL != "" {
		attrs = append(attrs, attribute.String("db.statement", b.SQL))
	}
	return attrs
}
