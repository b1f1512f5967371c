// Package security validates the unbound SQL text that callers splice into
// built statements: identifiers, field expressions and pass-through operators.
// It also provides the build audit trail.
package security

import (
	"fmt"
	"regexp"
	"strings"
)

// rule is one named injection signature, matched against upper-cased text.
type rule struct {
	name string
	re   *regexp.Regexp
}

func newRule(name, pattern string) rule {
	return rule{name: name, re: regexp.MustCompile(pattern)}
}

// injectionRules never match a legitimate identifier, expression or operator.
var injectionRules = []rule{
	newRule("comment", `--\s|/\*.*\*/|#\s`),
	newRule("stacked statement", `;\s*(?:DROP|DELETE|TRUNCATE|ALTER|CREATE)\s+`),
	newRule("union select", `UNION\s+(?:ALL\s+)?SELECT`),
	newRule("procedure call", `XP_CMDSHELL|SP_EXECUTESQL|\bEXEC(?:UTE)?\s*\(|\bEXEC\s+(?:XP|SP)_`),
	newRule("metadata access", `INFORMATION_SCHEMA`),
	newRule("timing probe", `PG_SLEEP\s*\(|BENCHMARK\s*\(|WAITFOR\s+DELAY`),
	newRule("tautology", `\sOR\s+1\s*=\s*1\b|\sOR\s+'1'\s*=\s*'1'|\sAND\s+1\s*=\s*0\b`),
}

// keywordRules block boolean and execution keywords outright. They reject
// some legitimate expressions.
var keywordRules = []rule{
	newRule("boolean keyword", `\b(?:OR|AND)\b`),
	newRule("union keyword", `\bUNION\b`),
	newRule("exec keyword", `\bEXEC(?:UTE)?\b`),
}

// Validator checks SQL text against injection signatures.
type Validator struct {
	rules []rule
}

// ValidatorOption configures the Validator.
type ValidatorOption func(*Validator)

// WithKeywordBlocking also rejects any OR, AND, UNION or EXEC keyword.
func WithKeywordBlocking(block bool) ValidatorOption {
	return func(v *Validator) {
		if block {
			v.rules = append(v.rules, keywordRules...)
		}
	}
}

// NewValidator creates a validator with the default injection rules.
func NewValidator(opts ...ValidatorOption) *Validator {
	v := &Validator{rules: append([]rule(nil), injectionRules...)}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// ValidateQuery reports the first rule that text matches.
func (v *Validator) ValidateQuery(text string) error {
	upper := strings.ToUpper(text)
	for _, r := range v.rules {
		if r.re.MatchString(upper) {
			return fmt.Errorf("dangerous SQL pattern detected: %s", r.name)
		}
	}
	return nil
}

// identifierForbidden lists fragments that never appear in a column, table
// or field expression handed to the builder.
var identifierForbidden = []string{";", "--", "/*", "*/", "'", "\\", "\x00"}

// ValidateIdentifier checks a table name, column reference or field
// expression that is spliced into a statement unbound.
func (v *Validator) ValidateIdentifier(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("empty identifier")
	}
	for _, frag := range identifierForbidden {
		if strings.Contains(name, frag) {
			return fmt.Errorf("identifier %q contains %q", name, frag)
		}
	}
	if err := v.ValidateQuery(" " + name); err != nil {
		return fmt.Errorf("identifier %q: %w", name, err)
	}
	return nil
}

// operatorPattern accepts keyword operators (IS NOT, ILIKE, SIMILAR TO) and
// symbolic ones (@>, ~*, &&, ||).
var operatorPattern = regexp.MustCompile(`^(?:[A-Za-z_]+(?: [A-Za-z_]+)*|[<>=!~@%^&|*+/?-]+)$`)

// operatorForbiddenWords never occur in a real operator or join type.
var operatorForbiddenWords = map[string]bool{"OR": true, "AND": true, "UNION": true, "EXEC": true}

// ValidateOperator checks a pass-through operator or join type.
func (v *Validator) ValidateOperator(token string) error {
	words := strings.Fields(token)
	token = strings.Join(words, " ")
	if !operatorPattern.MatchString(token) {
		return fmt.Errorf("operator %q has unexpected characters", token)
	}
	for _, w := range words {
		if operatorForbiddenWords[strings.ToUpper(w)] {
			return fmt.Errorf("operator %q contains keyword %s", token, strings.ToUpper(w))
		}
	}
	if strings.Contains(token, "--") || strings.Contains(token, "/*") {
		return fmt.Errorf("operator %q contains a comment marker", token)
	}
	if err := v.ValidateQuery(" " + token + " "); err != nil {
		return fmt.Errorf("operator %q: %w", token, err)
	}
	return nil
}
