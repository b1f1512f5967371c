package core

import "strings"

// Operator is a normalized comparison operator of a condition leaf.
type Operator int

// Canonical operators. OpPassThrough keeps the caller's token verbatim.
const (
	OpPassThrough Operator = iota
	OpEq
	OpNotEq
	OpLess
	OpGreaterOrEqual
	OpGreater
	OpLessOrEqual
	OpBetween
	OpNotBetween
	OpIn
	OpNotIn
	OpLike
	OpNotLike
)

// operatorAliases maps upper-cased input tokens to canonical operators.
var operatorAliases = map[string]Operator{
	"=": OpEq,

	"!=": OpNotEq,
	"<>": OpNotEq,
	"~=": OpNotEq,

	"<": OpLess,

	"!<": OpGreaterOrEqual,
	"~<": OpGreaterOrEqual,
	">=": OpGreaterOrEqual,
	">>": OpGreaterOrEqual,

	">": OpGreater,

	"!>": OpLessOrEqual,
	"~>": OpLessOrEqual,
	"<=": OpLessOrEqual,
	"<<": OpLessOrEqual,

	"B":       OpBetween,
	"BETWEEN": OpBetween,

	"NB":          OpNotBetween,
	"!B":          OpNotBetween,
	"~B":          OpNotBetween,
	"NOT BETWEEN": OpNotBetween,
	"!BETWEEN":    OpNotBetween,
	"~BETWEEN":    OpNotBetween,

	"IN": OpIn,

	"NIN":    OpNotIn,
	"NOT IN": OpNotIn,
	"!IN":    OpNotIn,
	"~IN":    OpNotIn,

	"L":    OpLike,
	"LIKE": OpLike,
	"===":  OpLike,

	"NL":       OpNotLike,
	"!L":       OpNotLike,
	"~L":       OpNotLike,
	"NOT LIKE": OpNotLike,
	"!LIKE":    OpNotLike,
	"~LIKE":    OpNotLike,
	"!==":      OpNotLike,
	"~==":      OpNotLike,
}

var operatorSQL = map[Operator]string{
	OpEq:             "=",
	OpNotEq:          "<>",
	OpLess:           "<",
	OpGreaterOrEqual: ">=",
	OpGreater:        ">",
	OpLessOrEqual:    "<=",
	OpBetween:        "BETWEEN",
	OpNotBetween:     "NOT BETWEEN",
	OpIn:             "IN",
	OpNotIn:          "NOT IN",
	OpLike:           "LIKE",
	OpNotLike:        "NOT LIKE",
}

// ParseOperator resolves a caller-supplied token through the alias table.
// Matching ignores case and repeated inner whitespace ("not   in" is NOT IN).
// Unknown tokens yield OpPassThrough.
func ParseOperator(token string) Operator {
	key := strings.ToUpper(strings.Join(strings.Fields(token), " "))
	if op, ok := operatorAliases[key]; ok {
		return op
	}
	return OpPassThrough
}

// String returns the SQL keyword or symbol of a canonical operator.
func (op Operator) String() string {
	if s, ok := operatorSQL[op]; ok {
		return s
	}
	return "PASS-THROUGH"
}

func (op Operator) isComparison() bool {
	return op >= OpEq && op <= OpLessOrEqual
}

func (op Operator) isBetween() bool {
	return op == OpBetween || op == OpNotBetween
}

func (op Operator) isIn() bool {
	return op == OpIn || op == OpNotIn
}

func (op Operator) isLike() bool {
	return op == OpLike || op == OpNotLike
}
