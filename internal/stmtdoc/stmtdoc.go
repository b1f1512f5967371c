// Package stmtdoc decodes YAML statement documents into builder calls.
//
// A document lists named statements; each carries exactly one of select,
// insert, update or delete:
//
//	dialect: postgres
//	statements:
//	  - name: adults
//	    select:
//	      table: users
//	      fields: [id, name, {function: count, source: id, alias: n}]
//	      where: [[age, ">=", 18], or, [role, in, [admin, owner]]]
//	      order: [name asc]
//	      limit: 10
//	  - name: add_user
//	    insert:
//	      table: users
//	      rows: [{name: john, age: 30}]
//	      returning: [id]
//
// Conditions use the same nested-sequence shape as sqlbuild.Condition. A
// mapping {ident: users.id} stands for a column operand and {lit: 18} for a
// literal-first value.
package stmtdoc

import (
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/coregx/sqlbuild/internal/core"
)

// ErrInvalidDocument is returned for documents that do not describe a statement.
var ErrInvalidDocument = errors.New("invalid statement document")

// Document is a decoded statement file.
type Document struct {
	// Dialect optionally overrides the configured dialect for this file.
	Dialect    string  `yaml:"dialect"`
	Statements []Entry `yaml:"statements"`
}

// Entry is one named statement.
type Entry struct {
	Name   string      `yaml:"name"`
	Select *SelectSpec `yaml:"select"`
	Insert *InsertSpec `yaml:"insert"`
	Update *UpdateSpec `yaml:"update"`
	Delete *DeleteSpec `yaml:"delete"`
}

// SelectSpec describes a SELECT.
type SelectSpec struct {
	Table    string      `yaml:"table"`
	Fields   []FieldSpec `yaml:"fields"`
	Distinct bool        `yaml:"distinct"`
	Joins    []JoinSpec  `yaml:"joins"`
	Where    interface{} `yaml:"where"`
	GroupBy  []string    `yaml:"group_by"`
	Having   interface{} `yaml:"having"`
	Order    []string    `yaml:"order"`
	Limit    *int        `yaml:"limit"`
}

// InsertSpec describes an INSERT. Rows are maps, rendered in sorted column order.
type InsertSpec struct {
	Table        string                   `yaml:"table"`
	Rows         []map[string]interface{} `yaml:"rows"`
	Ignore       bool                     `yaml:"ignore"`
	Returning    []string                 `yaml:"returning"`
	ReturningKey string                   `yaml:"returning_key"`
}

// UpdateSpec describes an UPDATE.
type UpdateSpec struct {
	Table string                 `yaml:"table"`
	Set   map[string]interface{} `yaml:"set"`
	Where interface{}            `yaml:"where"`
}

// DeleteSpec describes a DELETE.
type DeleteSpec struct {
	Table string      `yaml:"table"`
	Alias string      `yaml:"alias"`
	Where interface{} `yaml:"where"`
	Order []string    `yaml:"order"`
	Limit *int        `yaml:"limit"`
}

// JoinSpec describes a JOIN.
type JoinSpec struct {
	Type  string      `yaml:"type"`
	Table string      `yaml:"table"`
	Alias string      `yaml:"alias"`
	On    interface{} `yaml:"on"`
}

// FieldSpec is a SELECT field. A plain scalar is a source column.
type FieldSpec struct {
	core.Field
}

// UnmarshalYAML accepts either "column" or a mapping with source,
// expression, function and alias keys.
func (f *FieldSpec) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		f.Field = core.F(node.Value)
		return nil
	}

	var raw struct {
		Source     string `yaml:"source"`
		Expression string `yaml:"expression"`
		Function   string `yaml:"function"`
		Alias      string `yaml:"alias"`
	}
	if err := node.Decode(&raw); err != nil {
		return err
	}
	f.Field = core.Field{
		Source:     raw.Source,
		Expression: raw.Expression,
		Function:   raw.Function,
		Alias:      raw.Alias,
	}
	return nil
}

// Parse decodes a YAML document.
func Parse(data []byte) (*Document, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	if len(doc.Statements) == 0 {
		return nil, fmt.Errorf("%w: no statements", ErrInvalidDocument)
	}
	for i, e := range doc.Statements {
		if n := e.kinds(); n != 1 {
			return nil, fmt.Errorf("%w: statement %d (%q) must have exactly one of select, insert, update, delete; has %d",
				ErrInvalidDocument, i, e.Name, n)
		}
	}
	return &doc, nil
}

func (e *Entry) kinds() int {
	n := 0
	for _, set := range []bool{e.Select != nil, e.Insert != nil, e.Update != nil, e.Delete != nil} {
		if set {
			n++
		}
	}
	return n
}

// Build renders the entry with b.
func (e *Entry) Build(b *core.Builder) (*core.Statement, error) {
	switch {
	case e.Select != nil:
		return e.Select.build(b)
	case e.Insert != nil:
		return e.Insert.build(b)
	case e.Update != nil:
		return e.Update.build(b)
	case e.Delete != nil:
		return e.Delete.build(b)
	}
	return nil, fmt.Errorf("%w: statement %q is empty", ErrInvalidDocument, e.Name)
}

func (s *SelectSpec) build(b *core.Builder) (*core.Statement, error) {
	q := b.Select().From(s.Table)
	for _, f := range s.Fields {
		q.Fields(f.Field)
	}
	if s.Distinct {
		q.Distinct()
	}
	for _, j := range s.Joins {
		q.Joins(core.Join{Type: j.Type, Table: j.Table, Alias: j.Alias, On: condition(j.On)})
	}
	q.Where(condition(s.Where)).GroupBy(s.GroupBy...).Having(condition(s.Having))

	orders, err := parseOrders(s.Order)
	if err != nil {
		return nil, err
	}
	for _, o := range orders {
		q.OrderByDir(o.Column, o.Direction)
	}
	if s.Limit != nil {
		q.Limit(*s.Limit)
	}
	return q.Build()
}

func (s *InsertSpec) build(b *core.Builder) (*core.Statement, error) {
	q := b.Insert(s.Table).Rows(s.Rows...)
	if s.Ignore {
		q.Ignore()
	}
	if len(s.Returning) > 0 {
		q.Returning(s.Returning...)
	}
	if s.ReturningKey != "" {
		q.ReturningKey(s.ReturningKey)
	}
	return q.Build()
}

func (s *UpdateSpec) build(b *core.Builder) (*core.Statement, error) {
	return b.Update(s.Table).Set(s.Set).Where(condition(s.Where)).Build()
}

func (s *DeleteSpec) build(b *core.Builder) (*core.Statement, error) {
	q := b.Delete(s.Table).As(s.Alias).Where(condition(s.Where))

	orders, err := parseOrders(s.Order)
	if err != nil {
		return nil, err
	}
	for _, o := range orders {
		q.OrderByDir(o.Column, o.Direction)
	}
	if s.Limit != nil {
		q.Limit(*s.Limit)
	}
	return q.Build()
}

// parseOrders reads "column" or "column asc|desc" entries.
func parseOrders(entries []string) ([]core.Order, error) {
	orders := make([]core.Order, 0, len(entries))
	for _, entry := range entries {
		parts := strings.Fields(entry)
		switch len(parts) {
		case 1:
			orders = append(orders, core.Order{Column: parts[0]})
		case 2:
			orders = append(orders, core.Order{Column: parts[0], Direction: parts[1]})
		default:
			return nil, fmt.Errorf("%w: order entry %q", ErrInvalidDocument, entry)
		}
	}
	return orders, nil
}

// condition rewrites {ident: x} and {lit: v} mappings inside a decoded
// condition tree.
func condition(v interface{}) interface{} {
	switch t := v.(type) {
	case []interface{}:
		out := make([]interface{}, len(t))
		for i, el := range t {
			out[i] = condition(el)
		}
		return out
	case map[string]interface{}:
		if len(t) != 1 {
			return t
		}
		if name, ok := t["ident"].(string); ok {
			return core.Ident(name)
		}
		if lit, ok := t["lit"]; ok {
			return core.Lit(lit)
		}
	}
	return v
}
