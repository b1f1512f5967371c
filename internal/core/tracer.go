package core

import (
	"time"

	"github.com/coregx/sqlbuild/internal/dialects"
	"github.com/coregx/sqlbuild/internal/tracer"
)

// traceBuild records the outcome of one Build on its span and closes it.
func traceBuild(span tracer.Span, p dialects.Policy, operation, table string, stmt *Statement, d time.Duration, err error) {
	info := tracer.Build{
		Dialect:   p.Name,
		Operation: operation,
		Table:     table,
		Duration:  d,
	}
	if stmt != nil {
		info.SQL = stmt.SQL
		info.Params = stmt.Params.Len()
	}
	span.SetAttributes(info.Attributes()...)
	span.End(err)
}
