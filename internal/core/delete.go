package core

import (
	"context"
	"strconv"
	"strings"

	"github.com/coregx/sqlbuild/internal/dialects"
)

// DeleteQuery represents a DELETE statement being built.
type DeleteQuery struct {
	builder  *Builder
	ctx      context.Context
	table    string
	alias    string
	where    interface{}
	orderBy  []Order
	limit    int
	limitSet bool
}

// Delete starts a DELETE statement.
func (b *Builder) Delete(table string) *DeleteQuery {
	return &DeleteQuery{builder: b, table: table}
}

// WithContext sets the context for this DELETE statement.
// This overrides any context set on the Builder.
func (dq *DeleteQuery) WithContext(ctx context.Context) *DeleteQuery {
	dq.ctx = ctx
	return dq
}

// As sets a table alias.
func (dq *DeleteQuery) As(alias string) *DeleteQuery {
	dq.alias = alias
	return dq
}

// Where sets the WHERE condition tree, replacing any previous one.
func (dq *DeleteQuery) Where(cond interface{}) *DeleteQuery {
	dq.where = cond
	return dq
}

// AndWhere combines cond with the existing WHERE using AND.
func (dq *DeleteQuery) AndWhere(cond interface{}) *DeleteQuery {
	dq.where = combineWhere(dq.where, cond, "and")
	return dq
}

// OrWhere combines cond with the existing WHERE using OR.
func (dq *DeleteQuery) OrWhere(cond interface{}) *DeleteQuery {
	dq.where = combineWhere(dq.where, cond, "or")
	return dq
}

// OrderBy appends ORDER BY columns. Rendered only on dialects that allow
// ORDER BY on DELETE (MySQL, MariaDB).
func (dq *DeleteQuery) OrderBy(cols ...string) *DeleteQuery {
	for _, col := range cols {
		dq.orderBy = append(dq.orderBy, Order{Column: col})
	}
	return dq
}

// OrderByDir appends an ORDER BY column with an explicit direction.
func (dq *DeleteQuery) OrderByDir(col, direction string) *DeleteQuery {
	dq.orderBy = append(dq.orderBy, Order{Column: col, Direction: direction})
	return dq
}

// Limit caps the number of deleted rows. Rendered only on dialects that
// allow LIMIT on DELETE (MySQL, MariaDB); elsewhere it is dropped.
func (dq *DeleteQuery) Limit(n int) *DeleteQuery {
	dq.limit = n
	dq.limitSet = true
	return dq
}

// Build renders the statement.
func (dq *DeleteQuery) Build() (*Statement, error) {
	return dq.builder.build(dq.ctx, "DELETE", dq.table, dq.render)
}

func (dq *DeleteQuery) render(c *compiler, p dialects.Policy) (string, error) {
	table, err := checkTable(c, dq.table)
	if err != nil {
		return "", err
	}
	if err := checkLimit(dq.limitSet, dq.limit); err != nil {
		return "", err
	}

	head := "DELETE FROM " + table
	if alias := strings.TrimSpace(dq.alias); alias != "" {
		if err := c.checkIdent(alias); err != nil {
			return "", err
		}
		head += " AS " + alias
	}

	where, err := c.where("WHERE", dq.where)
	if err != nil {
		return "", err
	}

	order, err := c.orderList(dq.orderBy)
	if err != nil {
		return "", err
	}

	var limit string
	if p.DeleteOrderLimit {
		if dq.limitSet {
			limit = "LIMIT " + strconv.Itoa(dq.limit)
		}
	} else if order != "" || dq.limitSet {
		order = ""
		dq.builder.logger.Debug("ORDER BY/LIMIT on DELETE not supported by dialect, omitted",
			"dialect", p.Name,
			"table", table)
	}

	return joinClauses(head, where, order, limit), nil
}
