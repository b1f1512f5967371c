package core

import (
	"context"
	"strings"

	"github.com/coregx/sqlbuild/internal/dialects"
)

// UpdateQuery represents an UPDATE statement being built.
type UpdateQuery struct {
	builder *Builder
	ctx     context.Context
	table   string
	set     *Record
	where   interface{}
}

// Update starts an UPDATE statement.
func (b *Builder) Update(table string) *UpdateQuery {
	return &UpdateQuery{builder: b, table: table, set: NewRecord()}
}

// WithContext sets the context for this UPDATE statement.
// This overrides any context set on the Builder.
func (uq *UpdateQuery) WithContext(ctx context.Context) *UpdateQuery {
	uq.ctx = ctx
	return uq
}

// Set assigns columns. Keys render in sorted order after any earlier assignments.
func (uq *UpdateQuery) Set(values map[string]interface{}) *UpdateQuery {
	for _, k := range getKeys(values) {
		uq.set.Set(k, values[k])
	}
	return uq
}

// SetRecord assigns columns in record order.
func (uq *UpdateQuery) SetRecord(rec *Record) *UpdateQuery {
	if rec == nil {
		return uq
	}
	for _, col := range rec.columns {
		uq.set.Set(col, rec.values[col])
	}
	return uq
}

// Where sets the WHERE condition tree, replacing any previous one.
func (uq *UpdateQuery) Where(cond interface{}) *UpdateQuery {
	uq.where = cond
	return uq
}

// AndWhere combines cond with the existing WHERE using AND.
func (uq *UpdateQuery) AndWhere(cond interface{}) *UpdateQuery {
	uq.where = combineWhere(uq.where, cond, "and")
	return uq
}

// OrWhere combines cond with the existing WHERE using OR.
func (uq *UpdateQuery) OrWhere(cond interface{}) *UpdateQuery {
	uq.where = combineWhere(uq.where, cond, "or")
	return uq
}

// Build renders the statement.
func (uq *UpdateQuery) Build() (*Statement, error) {
	return uq.builder.build(uq.ctx, "UPDATE", uq.table, uq.render)
}

func (uq *UpdateQuery) render(c *compiler, _ dialects.Policy) (string, error) {
	table, err := checkTable(c, uq.table)
	if err != nil {
		return "", err
	}
	if uq.set.Len() == 0 {
		return "", invalidf("no columns to update")
	}

	// SET parameters are reserved first, so WHERE collisions get the suffix.
	assignments := make([]string, 0, uq.set.Len())
	for _, col := range uq.set.columns {
		if err := c.checkIdent(col); err != nil {
			return "", err
		}
		assignments = append(assignments, col+" = "+c.params.Reserve(col, uq.set.values[col]))
	}

	where, err := c.where("WHERE", uq.where)
	if err != nil {
		return "", err
	}

	return joinClauses("UPDATE "+table, "SET "+strings.Join(assignments, ", "), where), nil
}
