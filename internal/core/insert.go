package core

import (
	"context"
	"strconv"
	"strings"

	"github.com/coregx/sqlbuild/internal/dialects"
)

// InsertQuery represents an INSERT statement being built.
// Rows are added with Values, Record or Struct; every row must carry the
// same column set as the first one, which also fixes the column order.
type InsertQuery struct {
	builder      *Builder
	ctx          context.Context
	table        string
	rows         []*Record
	ignore       bool
	returning    []string
	returningKey string
	err          error
}

// Insert starts an INSERT statement.
func (b *Builder) Insert(table string) *InsertQuery {
	return &InsertQuery{builder: b, table: table}
}

// WithContext sets the context for this INSERT statement.
// This overrides any context set on the Builder.
func (iq *InsertQuery) WithContext(ctx context.Context) *InsertQuery {
	iq.ctx = ctx
	return iq
}

// Values appends a row. Columns render in sorted key order.
func (iq *InsertQuery) Values(values map[string]interface{}) *InsertQuery {
	iq.rows = append(iq.rows, recordFromMap(values))
	return iq
}

// Rows appends several map rows.
func (iq *InsertQuery) Rows(rows ...map[string]interface{}) *InsertQuery {
	for _, row := range rows {
		iq.Values(row)
	}
	return iq
}

// Record appends an ordered row.
func (iq *InsertQuery) Record(rec *Record) *InsertQuery {
	if rec == nil {
		rec = NewRecord()
	}
	iq.rows = append(iq.rows, rec)
	return iq
}

// Struct appends a row from a struct with db tags, in field declaration order.
// A zero numeric primary key is omitted, and the key column becomes the
// default ReturningKey.
func (iq *InsertQuery) Struct(v interface{}) *InsertQuery {
	rec, key, err := recordFromStruct(v)
	if err != nil {
		if iq.err == nil {
			iq.err = err
		}
		return iq
	}
	if iq.returningKey == "" {
		iq.returningKey = key
	}
	iq.rows = append(iq.rows, rec)
	return iq
}

// Ignore skips rows that would violate a unique constraint, using the
// dialect's insert-ignore syntax.
func (iq *InsertQuery) Ignore() *InsertQuery {
	iq.ignore = true
	return iq
}

// Returning asks the statement to report the given columns of inserted rows.
func (iq *InsertQuery) Returning(cols ...string) *InsertQuery {
	iq.returning = append(iq.returning, cols...)
	return iq
}

// ReturningKey sets the generated key column used by dialects that report
// inserted rows through LAST_INSERT_ID() (default "id").
func (iq *InsertQuery) ReturningKey(col string) *InsertQuery {
	iq.returningKey = col
	return iq
}

// Build renders the statement.
func (iq *InsertQuery) Build() (*Statement, error) {
	return iq.builder.build(iq.ctx, "INSERT", iq.table, iq.render)
}

//nolint:cyclop,gocyclo,funlen // one switch per dialect-dependent clause
func (iq *InsertQuery) render(c *compiler, p dialects.Policy) (string, error) {
	if iq.err != nil {
		return "", iq.err
	}
	table, err := checkTable(c, iq.table)
	if err != nil {
		return "", err
	}
	if len(iq.rows) == 0 || iq.rows[0].Len() == 0 {
		return "", invalidf("no values to insert")
	}

	first := iq.rows[0]
	for i, row := range iq.rows[1:] {
		if !sameColumns(first, row) {
			return "", invalidf("row %d columns %v do not match row 0 columns %v", i+1, row.Columns(), first.Columns())
		}
	}

	columns := first.Columns()
	for _, col := range columns {
		if err := c.checkIdent(col); err != nil {
			return "", err
		}
	}

	head := "INSERT INTO"
	var onConflict string
	if iq.ignore {
		switch p.InsertIgnore {
		case dialects.IgnoreKeyword:
			head = "INSERT IGNORE INTO"
		case dialects.IgnoreOrIgnore:
			head = "INSERT OR IGNORE INTO"
		case dialects.IgnoreOnConflict:
			onConflict = "ON CONFLICT DO NOTHING"
		default:
			return "", unsupported(p.Name, "insert ignore", "use a conditional insert or the dialect's MERGE statement")
		}
	}

	var output, returning, followUp string
	if len(iq.returning) > 0 {
		for _, col := range iq.returning {
			if err := c.checkIdent(col); err != nil {
				return "", err
			}
		}
		switch p.Returning {
		case dialects.ReturningClause:
			returning = "RETURNING " + strings.Join(iq.returning, ", ")
		case dialects.ReturningOutput:
			inserted := make([]string, len(iq.returning))
			for i, col := range iq.returning {
				inserted[i] = "INSERTED." + col
			}
			output = "OUTPUT " + strings.Join(inserted, ", ")
		case dialects.ReturningLastInsertID:
			if len(iq.rows) > 1 {
				return "", unsupported(p.Name, "returning on multi-row insert", "LAST_INSERT_ID() reports only the first generated key")
			}
			key := iq.returningKey
			if key == "" {
				key = "id"
			}
			if err := c.checkIdent(key); err != nil {
				return "", err
			}
			followUp = "SELECT " + strings.Join(iq.returning, ", ") + " FROM " + table + " WHERE " + key + " = LAST_INSERT_ID()"
		default:
			return "", unsupported(p.Name, "returning", "query the inserted rows in a separate statement")
		}
	}

	// Row i > 0 uses base name column+i, so row 2 of "id" binds ":id1".
	groups := make([]string, len(iq.rows))
	for i, row := range iq.rows {
		placeholders := make([]string, len(columns))
		for j, col := range columns {
			base := col
			if i > 0 {
				base = col + strconv.Itoa(i)
			}
			v, _ := row.Get(col)
			placeholders[j] = c.params.Reserve(base, v)
		}
		groups[i] = "(" + strings.Join(placeholders, ", ") + ")"
	}

	sql := joinClauses(
		head,
		table+" ("+strings.Join(columns, ", ")+")",
		output,
		"VALUES "+strings.Join(groups, ", "),
		onConflict,
		returning,
	)
	if followUp != "" {
		sql += "; " + followUp
	}
	return sql, nil
}
