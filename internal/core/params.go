// Package core implements the statement builders: parameter naming, condition
// compilation, clause assembly and dialect-aware SELECT/INSERT/UPDATE/DELETE
// rendering for sqlbuild.
package core

import (
	"database/sql"
	"strconv"
	"strings"
)

// Params is the ordered set of named placeholders bound by one statement.
// Names carry the leading colon (":id", ":id2"). A name, once reserved,
// always keeps its first value. The zero value is an empty set ready to use.
type Params struct {
	names  []string
	values map[string]interface{}
}

// NewParams creates an empty parameter map.
func NewParams() *Params {
	return &Params{values: make(map[string]interface{})}
}

// Reserve binds value under ":base", or under the first free ":base2",
// ":base3", ... when that name is taken, and returns the chosen placeholder.
func (p *Params) Reserve(base string, value interface{}) string {
	if p.values == nil {
		p.values = make(map[string]interface{})
	}
	name := ":" + paramBase(base)
	if _, taken := p.values[name]; taken {
		for i := 2; ; i++ {
			candidate := name + strconv.Itoa(i)
			if _, taken := p.values[candidate]; !taken {
				name = candidate
				break
			}
		}
	}
	p.names = append(p.names, name)
	p.values[name] = value
	return name
}

// Get returns the value bound to a placeholder name (with its colon).
func (p *Params) Get(name string) (interface{}, bool) {
	if p == nil {
		return nil, false
	}
	v, ok := p.values[name]
	return v, ok
}

// Has reports whether the placeholder name is bound.
func (p *Params) Has(name string) bool {
	_, ok := p.Get(name)
	return ok
}

// Len returns the number of bound placeholders.
func (p *Params) Len() int {
	if p == nil {
		return 0
	}
	return len(p.names)
}

// Names returns placeholder names in reservation order.
func (p *Params) Names() []string {
	if p == nil {
		return nil
	}
	out := make([]string, len(p.names))
	copy(out, p.names)
	return out
}

// Map returns a copy of the bindings as a plain map.
func (p *Params) Map() map[string]interface{} {
	out := make(map[string]interface{}, p.Len())
	p.Each(func(name string, value interface{}) {
		out[name] = value
	})
	return out
}

// Each calls fn for every binding in reservation order.
func (p *Params) Each(fn func(name string, value interface{})) {
	if p == nil {
		return
	}
	for _, name := range p.names {
		fn(name, p.values[name])
	}
}

// lists returns names and values in reservation order.
func (p *Params) lists() ([]string, []interface{}) {
	names := p.Names()
	values := make([]interface{}, len(names))
	for i, name := range names {
		values[i] = p.values[name]
	}
	return names, values
}

// NamedArgs converts the bindings to database/sql named arguments.
// Names are passed without the leading colon.
func (p *Params) NamedArgs() []interface{} {
	args := make([]interface{}, 0, p.Len())
	p.Each(func(name string, value interface{}) {
		args = append(args, sql.Named(strings.TrimPrefix(name, ":"), value))
	})
	return args
}

// paramBase turns a field reference into a placeholder-safe base name:
// "u.age" -> "u_age", "COUNT(id)" -> "COUNT_id".
func paramBase(field string) string {
	var b strings.Builder
	b.Grow(len(field))
	pendingSep := false
	for _, r := range field {
		if r == '_' || ('a' <= r && r <= 'z') || ('A' <= r && r <= 'Z') || ('0' <= r && r <= '9') {
			if pendingSep && b.Len() > 0 {
				b.WriteByte('_')
			}
			pendingSep = false
			b.WriteRune(r)
			continue
		}
		pendingSep = true
	}
	base := strings.Trim(b.String(), "_")
	if base == "" {
		return "p"
	}
	return base
}
