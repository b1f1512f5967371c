package core

import (
	"strings"

	"github.com/coregx/sqlbuild/internal/dialects"
)

// Statement is a built SQL statement with its named parameters.
//
// SQL is trimmed and ends with exactly one ";". Params holds exactly the
// placeholders referenced in SQL.
type Statement struct {
	SQL       string
	Params    *Params
	Operation string
	Table     string
	Dialect   dialects.ID

	policy dialects.Policy
}

// String returns the SQL text.
func (s *Statement) String() string {
	return s.SQL
}

// Args returns the parameters as database/sql named arguments, ready for
// drivers that understand named placeholders:
//
//	stmt, _ := b.Select().From("users").Where(sqlbuild.C("id", "=", 1)).Build()
//	rows, err := db.QueryContext(ctx, stmt.SQL, stmt.Args()...)
func (s *Statement) Args() []interface{} {
	return s.Params.NamedArgs()
}

// Positional rewrites ":name" placeholders into the dialect's positional form
// ("?", "$1", "@p1", ":1") and returns the arguments in placeholder order.
// Quoted literals, quoted identifiers and "::" casts are left untouched, as
// are ":name" tokens that are not bound parameters. An unterminated quote
// is treated as an ordinary character.
func (s *Statement) Positional() (string, []interface{}) {
	sql := s.SQL
	var b strings.Builder
	b.Grow(len(sql))
	args := make([]interface{}, 0, s.Params.Len())

	for i := 0; i < len(sql); {
		ch := sql[i]

		switch ch {
		case '\'', '"', '`':
			if end, ok := closingQuote(sql, i); ok {
				b.WriteString(sql[i:end])
				i = end
				continue
			}
		case ':':
			if i+1 < len(sql) && sql[i+1] == ':' {
				b.WriteString("::")
				i += 2
				continue
			}
			end := i + 1
			for end < len(sql) && isWordByte(sql[end]) {
				end++
			}
			if end > i+1 {
				if v, ok := s.Params.Get(sql[i:end]); ok {
					args = append(args, v)
					b.WriteString(s.policy.Placeholder(len(args)))
					i = end
					continue
				}
			}
		}

		b.WriteByte(ch)
		i++
	}

	return b.String(), args
}

// closingQuote returns the index just past the quoted section starting at
// start, or false when the quote is never closed. Doubled quotes inside the
// section are escapes.
func closingQuote(sql string, start int) (int, bool) {
	q := sql[start]
	for i := start + 1; i < len(sql); i++ {
		if sql[i] != q {
			continue
		}
		if i+1 < len(sql) && sql[i+1] == q {
			i++
			continue
		}
		return i + 1, true
	}
	return 0, false
}

func isWordByte(c byte) bool {
	return c == '_' || ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') || ('0' <= c && c <= '9')
}

// finishSQL trims the text and terminates it with a single ";".
func finishSQL(sql string) string {
	sql = strings.TrimSpace(sql)
	sql = strings.TrimRight(sql, "; \t\n")
	return sql + ";"
}
