// Package dialects provides the per-database policy tables used by the
// statement builder: row-limiting syntax, insert-ignore syntax, RETURNING
// rendering, DELETE ORDER BY/LIMIT support and positional placeholders.
package dialects

import (
	"strconv"
	"strings"
)

// ID identifies a SQL dialect.
type ID int

// Known dialects. The zero value is Unknown and resolves to the generic policy.
const (
	Unknown ID = iota
	MySQL
	MariaDB
	PostgreSQL
	SQLite
	SQLServer
	Sybase
	Oracle
	Oracle12c
	DB2
)

// LimitStyle selects how a row limit is rendered in SELECT statements.
type LimitStyle int

const (
	// LimitTrailing renders "LIMIT n" after ORDER BY.
	LimitTrailing LimitStyle = iota
	// LimitTop renders "TOP n" right after SELECT [DISTINCT].
	LimitTop
	// LimitRownum wraps the statement and filters on "ROWNUM <= n".
	LimitRownum
	// LimitFetchFirst renders "FETCH FIRST n ROWS ONLY" after ORDER BY.
	LimitFetchFirst
)

// IgnoreStyle selects how INSERT skips rows that would violate a constraint.
type IgnoreStyle int

const (
	// IgnoreUnsupported means the dialect has no single-statement form.
	IgnoreUnsupported IgnoreStyle = iota
	// IgnoreKeyword renders "INSERT IGNORE INTO".
	IgnoreKeyword
	// IgnoreOrIgnore renders "INSERT OR IGNORE INTO".
	IgnoreOrIgnore
	// IgnoreOnConflict renders a trailing "ON CONFLICT DO NOTHING".
	IgnoreOnConflict
)

// ReturningStyle selects how INSERT reports generated columns.
type ReturningStyle int

const (
	// ReturningUnsupported means the dialect cannot return inserted columns.
	ReturningUnsupported ReturningStyle = iota
	// ReturningClause renders a trailing "RETURNING col, ...".
	ReturningClause
	// ReturningOutput renders "OUTPUT INSERTED.col, ..." before VALUES.
	ReturningOutput
	// ReturningLastInsertID appends "SELECT ... WHERE key = LAST_INSERT_ID()".
	ReturningLastInsertID
)

// Policy is the fixed rendering table for one dialect.
type Policy struct {
	ID               ID
	Name             string
	Limit            LimitStyle
	InsertIgnore     IgnoreStyle
	Returning        ReturningStyle
	DeleteOrderLimit bool

	// PlaceholderStyle renders the n-th (1-based) positional placeholder.
	PlaceholderStyle PlaceholderStyle
}

// PlaceholderStyle selects the positional placeholder syntax of a driver.
type PlaceholderStyle int

const (
	// PlaceholderQuestion renders "?".
	PlaceholderQuestion PlaceholderStyle = iota
	// PlaceholderDollar renders "$1", "$2", ...
	PlaceholderDollar
	// PlaceholderAtP renders "@p1", "@p2", ...
	PlaceholderAtP
	// PlaceholderColon renders ":1", ":2", ...
	PlaceholderColon
)

// Placeholder returns the positional placeholder for the 1-based index.
func (p Policy) Placeholder(index int) string {
	switch p.PlaceholderStyle {
	case PlaceholderDollar:
		return "$" + strconv.Itoa(index)
	case PlaceholderAtP:
		return "@p" + strconv.Itoa(index)
	case PlaceholderColon:
		return ":" + strconv.Itoa(index)
	default:
		return "?"
	}
}

// Generic is the policy used for dialects that are not registered.
var Generic = Policy{
	ID:    Unknown,
	Name:  "generic",
	Limit: LimitTrailing,
}

var (
	policies = make(map[ID]Policy)
	drivers  = make(map[string]ID)
)

// RegisterDialect registers a policy and the database/sql driver names that select it.
func RegisterDialect(p Policy, driverNames ...string) {
	policies[p.ID] = p
	for _, name := range driverNames {
		drivers[strings.ToLower(name)] = p.ID
	}
}

// Lookup returns the registered policy for id.
// The second result is false when id is not registered.
func Lookup(id ID) (Policy, bool) {
	p, ok := policies[id]
	return p, ok
}

// Resolve returns the policy for id, falling back to Generic for unknown dialects.
func Resolve(id ID) Policy {
	if p, ok := policies[id]; ok {
		return p
	}
	return Generic
}

// ForDriver maps a database/sql driver name to a dialect.
func ForDriver(name string) (ID, bool) {
	id, ok := drivers[strings.ToLower(strings.TrimSpace(name))]
	return id, ok
}

// Parse maps a dialect name ("mysql", "postgres", "sqlserver", ...) to its ID.
// Driver names are accepted as well.
func Parse(name string) (ID, bool) {
	key := strings.ToLower(strings.TrimSpace(name))
	for id, p := range policies {
		if p.Name == key {
			return id, true
		}
	}
	return ForDriver(key)
}

// All returns every registered policy ordered by ID.
func All() []Policy {
	out := make([]Policy, 0, len(policies))
	for id := MySQL; id <= DB2; id++ {
		if p, ok := policies[id]; ok {
			out = append(out, p)
		}
	}
	return out
}

// String returns the dialect name.
func (id ID) String() string {
	return Resolve(id).Name
}

func (s LimitStyle) String() string {
	switch s {
	case LimitTop:
		return "TOP n"
	case LimitRownum:
		return "ROWNUM <= n"
	case LimitFetchFirst:
		return "FETCH FIRST n ROWS ONLY"
	default:
		return "LIMIT n"
	}
}

func (s IgnoreStyle) String() string {
	switch s {
	case IgnoreKeyword:
		return "INSERT IGNORE INTO"
	case IgnoreOrIgnore:
		return "INSERT OR IGNORE INTO"
	case IgnoreOnConflict:
		return "ON CONFLICT DO NOTHING"
	default:
		return "unsupported"
	}
}

func (s ReturningStyle) String() string {
	switch s {
	case ReturningClause:
		return "RETURNING"
	case ReturningOutput:
		return "OUTPUT INSERTED"
	case ReturningLastInsertID:
		return "LAST_INSERT_ID()"
	default:
		return "unsupported"
	}
}
