package core

import (
	"strings"
)

// Field is one entry of a SELECT field list.
//
// Parts render left to right and absent parts are skipped:
//
//	F("name")                      // name
//	F("name").As("n")              // name AS n
//	Expr("price * qty").As("total") // (price * qty) AS total
//	Count("id").As("cnt")          // COUNT(id) AS cnt
type Field struct {
	Source     string
	Expression string
	Function   string
	Alias      string
}

// F creates a field from a column or source expression.
func F(source string) Field {
	return Field{Source: source}
}

// Expr creates a parenthesized expression field.
func Expr(expression string) Field {
	return Field{Expression: expression}
}

// Func creates a field that applies fn to expression.
func Func(fn, expression string) Field {
	return Field{Function: fn, Expression: expression}
}

// Count creates COUNT(column).
func Count(column string) Field { return Field{Function: "COUNT", Source: column} }

// Sum creates SUM(column).
func Sum(column string) Field { return Field{Function: "SUM", Source: column} }

// Avg creates AVG(column).
func Avg(column string) Field { return Field{Function: "AVG", Source: column} }

// Min creates MIN(column).
func Min(column string) Field { return Field{Function: "MIN", Source: column} }

// Max creates MAX(column).
func Max(column string) Field { return Field{Function: "MAX", Source: column} }

// As returns a copy of f with an alias.
func (f Field) As(alias string) Field {
	f.Alias = alias
	return f
}

// Order is one ORDER BY entry. An empty Direction renders the bare column.
type Order struct {
	Column    string
	Direction string
}

// Join describes one JOIN clause. On is a condition tree and may be nil.
type Join struct {
	Type  string
	Table string
	Alias string
	On    interface{}
}

// fieldList renders the SELECT field clause. No fields renders "*".
func (c *compiler) fieldList(fields []Field) (string, error) {
	if len(fields) == 0 {
		return "*", nil
	}

	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		s, err := c.field(f)
		if err != nil {
			return "", err
		}
		parts = append(parts, s)
	}
	return strings.Join(parts, ", "), nil
}

func (c *compiler) field(f Field) (string, error) {
	source := strings.TrimSpace(f.Source)
	expression := strings.TrimSpace(f.Expression)
	function := strings.TrimSpace(f.Function)
	alias := strings.TrimSpace(f.Alias)

	var out string
	switch {
	case function != "":
		arg := expression
		if arg == "" {
			arg = source
		}
		out = strings.ToUpper(function) + "(" + arg + ")"
	case expression != "":
		out = "(" + expression + ")"
	case source != "":
		out = source
	default:
		return "", invalidf("field has nothing to render (alias %q)", alias)
	}

	if err := c.checkIdent(out); err != nil {
		return "", err
	}
	if alias != "" {
		if err := c.checkIdent(alias); err != nil {
			return "", err
		}
		out += " AS " + alias
	}
	return out, nil
}

// orderList renders ORDER BY entries; empty input renders "".
func (c *compiler) orderList(orders []Order) (string, error) {
	if len(orders) == 0 {
		return "", nil
	}

	parts := make([]string, 0, len(orders))
	for _, o := range orders {
		col := strings.TrimSpace(o.Column)
		if col == "" {
			return "", invalidf("empty ORDER BY column")
		}
		if err := c.checkIdent(col); err != nil {
			return "", err
		}

		dir := strings.ToUpper(strings.TrimSpace(o.Direction))
		switch dir {
		case "":
			parts = append(parts, col)
		case "ASC", "DESC":
			parts = append(parts, col+" "+dir)
		default:
			return "", invalidf("invalid ORDER BY direction %q for %s", o.Direction, col)
		}
	}
	return "ORDER BY " + strings.Join(parts, ", "), nil
}

// groupList renders GROUP BY columns verbatim; empty input renders "".
func (c *compiler) groupList(columns []string) (string, error) {
	if len(columns) == 0 {
		return "", nil
	}
	for _, col := range columns {
		if err := c.checkIdent(col); err != nil {
			return "", err
		}
	}
	return "GROUP BY " + strings.Join(columns, ", "), nil
}

// joinList renders JOIN clauses in input order separated by single spaces.
func (c *compiler) joinList(joins []Join) (string, error) {
	parts := make([]string, 0, len(joins))
	for _, j := range joins {
		table := strings.TrimSpace(j.Table)
		if table == "" {
			return "", invalidf("join without table")
		}
		if err := c.checkIdent(table); err != nil {
			return "", err
		}

		typ := strings.ToUpper(strings.Join(strings.Fields(j.Type), " "))
		if typ == "" {
			typ = "INNER"
		}
		if err := c.checkOperator(typ); err != nil {
			return "", err
		}

		clause := typ + " JOIN " + table
		if alias := strings.TrimSpace(j.Alias); alias != "" {
			if err := c.checkIdent(alias); err != nil {
				return "", err
			}
			clause += " AS " + alias
		}
		if !isEmptyCondition(j.On) {
			on, err := c.compile(j.On)
			if err != nil {
				return "", WrapError(err, "join "+table)
			}
			clause += " ON " + on
		}
		parts = append(parts, clause)
	}
	return strings.Join(parts, " "), nil
}

// where renders a WHERE/HAVING clause with the given keyword; an empty
// condition renders "".
func (c *compiler) where(keyword string, cond interface{}) (string, error) {
	if isEmptyCondition(cond) {
		return "", nil
	}
	sql, err := c.compile(cond)
	if err != nil {
		return "", err
	}
	return keyword + " " + sql, nil
}

// joinClauses concatenates non-empty clauses with single spaces.
func joinClauses(clauses ...string) string {
	present := make([]string, 0, len(clauses))
	for _, c := range clauses {
		if c != "" {
			present = append(present, c)
		}
	}
	return strings.Join(present, " ")
}
