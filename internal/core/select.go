package core

import (
	"context"
	"strconv"

	"github.com/coregx/sqlbuild/internal/dialects"
)

// SelectQuery represents a SELECT statement being built.
type SelectQuery struct {
	builder  *Builder
	ctx      context.Context
	fields   []Field
	table    string
	distinct bool
	joins    []Join
	where    interface{}
	groupBy  []string
	having   interface{}
	orderBy  []Order
	limit    int
	limitSet bool
}

// Select starts a SELECT statement. With no columns every column ("*") is selected.
func (b *Builder) Select(cols ...string) *SelectQuery {
	q := &SelectQuery{builder: b}
	for _, col := range cols {
		q.fields = append(q.fields, F(col))
	}
	return q
}

// WithContext sets the context for this SELECT statement.
// This overrides any context set on the Builder.
func (sq *SelectQuery) WithContext(ctx context.Context) *SelectQuery {
	sq.ctx = ctx
	return sq
}

// Fields appends structured field entries.
//
//	Select().Fields(sqlbuild.F("u.name"), sqlbuild.Count("o.id").As("orders"))
func (sq *SelectQuery) Fields(fields ...Field) *SelectQuery {
	sq.fields = append(sq.fields, fields...)
	return sq
}

// From specifies the table to select from.
func (sq *SelectQuery) From(table string) *SelectQuery {
	sq.table = table
	return sq
}

// Distinct renders SELECT DISTINCT.
func (sq *SelectQuery) Distinct() *SelectQuery {
	sq.distinct = true
	return sq
}

// Join appends a JOIN of the given type ("INNER", "LEFT", "LEFT OUTER", ...).
// on is a condition tree; nil renders no ON clause.
func (sq *SelectQuery) Join(typ, table string, on interface{}) *SelectQuery {
	sq.joins = append(sq.joins, Join{Type: typ, Table: table, On: on})
	return sq
}

// Joins appends fully described joins, including aliases.
func (sq *SelectQuery) Joins(joins ...Join) *SelectQuery {
	sq.joins = append(sq.joins, joins...)
	return sq
}

// InnerJoin appends an INNER JOIN.
func (sq *SelectQuery) InnerJoin(table string, on interface{}) *SelectQuery {
	return sq.Join("INNER", table, on)
}

// LeftJoin appends a LEFT JOIN.
func (sq *SelectQuery) LeftJoin(table string, on interface{}) *SelectQuery {
	return sq.Join("LEFT", table, on)
}

// RightJoin appends a RIGHT JOIN.
func (sq *SelectQuery) RightJoin(table string, on interface{}) *SelectQuery {
	return sq.Join("RIGHT", table, on)
}

// CrossJoin appends a CROSS JOIN.
func (sq *SelectQuery) CrossJoin(table string) *SelectQuery {
	return sq.Join("CROSS", table, nil)
}

// Where sets the WHERE condition tree, replacing any previous one.
//
//	Where(sqlbuild.And(
//	    sqlbuild.C("status", "=", "active"),
//	    sqlbuild.C("age", "between", 18, 65),
//	))
func (sq *SelectQuery) Where(cond interface{}) *SelectQuery {
	sq.where = cond
	return sq
}

// AndWhere combines cond with the existing WHERE using AND.
func (sq *SelectQuery) AndWhere(cond interface{}) *SelectQuery {
	sq.where = combineWhere(sq.where, cond, "and")
	return sq
}

// OrWhere combines cond with the existing WHERE using OR.
func (sq *SelectQuery) OrWhere(cond interface{}) *SelectQuery {
	sq.where = combineWhere(sq.where, cond, "or")
	return sq
}

// GroupBy appends GROUP BY columns.
func (sq *SelectQuery) GroupBy(cols ...string) *SelectQuery {
	sq.groupBy = append(sq.groupBy, cols...)
	return sq
}

// Having sets the HAVING condition tree.
func (sq *SelectQuery) Having(cond interface{}) *SelectQuery {
	sq.having = cond
	return sq
}

// OrderBy appends ORDER BY columns with the default (ascending) direction.
func (sq *SelectQuery) OrderBy(cols ...string) *SelectQuery {
	for _, col := range cols {
		sq.orderBy = append(sq.orderBy, Order{Column: col})
	}
	return sq
}

// OrderByDir appends an ORDER BY column with an explicit ASC or DESC direction.
func (sq *SelectQuery) OrderByDir(col, direction string) *SelectQuery {
	sq.orderBy = append(sq.orderBy, Order{Column: col, Direction: direction})
	return sq
}

// Limit caps the number of rows using the dialect's limiting syntax.
func (sq *SelectQuery) Limit(n int) *SelectQuery {
	sq.limit = n
	sq.limitSet = true
	return sq
}

// Build renders the statement.
func (sq *SelectQuery) Build() (*Statement, error) {
	return sq.builder.build(sq.ctx, "SELECT", sq.table, sq.render)
}

func (sq *SelectQuery) render(c *compiler, p dialects.Policy) (string, error) {
	table, err := checkTable(c, sq.table)
	if err != nil {
		return "", err
	}
	if err := checkLimit(sq.limitSet, sq.limit); err != nil {
		return "", err
	}

	fields, err := c.fieldList(sq.fields)
	if err != nil {
		return "", err
	}
	joins, err := c.joinList(sq.joins)
	if err != nil {
		return "", err
	}
	where, err := c.where("WHERE", sq.where)
	if err != nil {
		return "", err
	}
	group, err := c.groupList(sq.groupBy)
	if err != nil {
		return "", err
	}
	having, err := c.where("HAVING", sq.having)
	if err != nil {
		return "", err
	}
	order, err := c.orderList(sq.orderBy)
	if err != nil {
		return "", err
	}

	head := "SELECT"
	if sq.distinct {
		head += " DISTINCT"
	}

	var tail string
	if sq.limitSet {
		n := strconv.Itoa(sq.limit)
		switch p.Limit {
		case dialects.LimitTop:
			head += " TOP " + n
		case dialects.LimitFetchFirst:
			tail = "FETCH FIRST " + n + " ROWS ONLY"
		case dialects.LimitRownum:
			// applied by wrapping below
		default:
			tail = "LIMIT " + n
		}
	}

	sql := joinClauses(head, fields, "FROM "+table, joins, where, group, having, order, tail)

	if sq.limitSet && p.Limit == dialects.LimitRownum {
		sql = "SELECT * FROM (" + sql + ") WHERE ROWNUM <= " + strconv.Itoa(sq.limit)
	}
	return sql, nil
}
