package logger

import (
	"fmt"
	"regexp"
	"strings"
)

// Redacted replaces sensitive values in log output.
const Redacted = "***REDACTED***"

// maxValueLen bounds a single formatted value.
const maxValueLen = 100

// DefaultSensitiveFields are masked when no explicit list is given.
var DefaultSensitiveFields = []string{
	"password", "passwd", "pwd",
	"token", "api_key", "apikey", "api_token",
	"secret", "auth", "authorization",
	"credit_card", "card_number", "cvv", "cvc",
	"ssn", "social_security",
	"private_key", "priv_key",
}

// Sanitizer masks parameter values whose placeholder names refer to
// sensitive columns. Names come from columns, so ":u_password2" is sensitive
// when "password" is listed: a field must appear as a whole
// underscore-separated word, optionally followed by a numeric suffix.
//
// A Sanitizer is safe for concurrent use.
type Sanitizer struct {
	match *regexp.Regexp
}

// NewSanitizer builds a sanitizer for fields, or DefaultSensitiveFields
// when fields is empty.
func NewSanitizer(fields []string) *Sanitizer {
	if len(fields) == 0 {
		fields = DefaultSensitiveFields
	}
	quoted := make([]string, len(fields))
	for i, f := range fields {
		quoted[i] = regexp.QuoteMeta(f)
	}
	return &Sanitizer{
		match: regexp.MustCompile(`(?i)(?:^|_)(?:` + strings.Join(quoted, "|") + `)\d*(?:_|$)`),
	}
}

// IsSensitive reports whether the placeholder name, with or without its
// leading colon, refers to a sensitive column.
func (s *Sanitizer) IsSensitive(name string) bool {
	return s.match.MatchString(strings.TrimPrefix(name, ":"))
}

// Mask returns Redacted for sensitive names and value otherwise.
func (s *Sanitizer) Mask(name string, value interface{}) interface{} {
	if s.IsSensitive(name) {
		return Redacted
	}
	return value
}

// FormatNamed renders named parameters in order for a log line:
//
//	{:name=john, :password=***REDACTED***}
//
// Missing values format as NULL. Long values are cut at 100 bytes.
func (s *Sanitizer) FormatNamed(names []string, values []interface{}) string {
	var sb strings.Builder
	sb.WriteByte('{')
	for i, name := range names {
		if i > 0 {
			sb.WriteString(", ")
		}
		var v interface{}
		if i < len(values) {
			v = values[i]
		}
		sb.WriteString(name)
		sb.WriteByte('=')
		sb.WriteString(formatValue(s.Mask(name, v)))
	}
	sb.WriteByte('}')
	return sb.String()
}

func formatValue(v interface{}) string {
	if v == nil {
		return "NULL"
	}
	str := fmt.Sprint(v)
	if len(str) > maxValueLen {
		return str[:maxValueLen] + "..."
	}
	return str
}
