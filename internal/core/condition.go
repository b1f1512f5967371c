// Copyright (c) 2025 COREGX. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package core

import (
	"reflect"
	"strings"
)

// maxConditionDepth bounds recursion through nested condition nodes.
const maxConditionDepth = 64

// Condition is a condition tree node as a literal nested sequence.
//
// A leaf is (field, operator, operand...):
//
//	sqlbuild.Condition{"age", ">=", 18}
//	sqlbuild.Condition{"age", "between", 18, 48}
//	sqlbuild.Condition{"id", "in", []int{1, 2, 3}}
//
// A composite mixes nested nodes with "and"/"or" connectors:
//
//	sqlbuild.Condition{
//	    sqlbuild.Condition{"status", "=", "active"},
//	    "or",
//	    sqlbuild.Condition{"role", "=", "admin"},
//	}
//
// Plain []interface{} values are accepted wherever a Condition is, which is
// what JSON and YAML decoders produce.
type Condition []interface{}

// C builds a condition leaf.
func C(field string, operator string, operands ...interface{}) Condition {
	leaf := make(Condition, 0, len(operands)+2)
	leaf = append(leaf, field, operator)
	return append(leaf, operands...)
}

// And joins nodes with AND connectors.
func And(nodes ...interface{}) Condition {
	return joinNodes("and", nodes)
}

// Or joins nodes with OR connectors.
func Or(nodes ...interface{}) Condition {
	return joinNodes("or", nodes)
}

func joinNodes(connector string, nodes []interface{}) Condition {
	out := make(Condition, 0, len(nodes)*2)
	for i, n := range nodes {
		if i > 0 {
			out = append(out, connector)
		}
		out = append(out, n)
	}
	return out
}

// Identifier marks an operand as a column reference rather than a bound value.
//
//	sqlbuild.C("orders.user_id", "=", sqlbuild.Ident("users.id"))
//
// renders "orders.user_id = users.id" without a parameter.
type Identifier string

// Ident marks name as a column reference.
func Ident(name string) Identifier {
	return Identifier(name)
}

// Literal marks the first element of a leaf as a bound value; the third
// element is then the field: Condition{Lit(18), "<=", "age"} renders
// ":age <= age".
type Literal struct {
	Value interface{}
}

// Lit marks v as a literal.
func Lit(v interface{}) Literal {
	return Literal{Value: v}
}

// node is a parsed condition: *leafNode or *groupNode.
type node interface{}

type leafNode struct {
	field    string
	op       Operator
	token    string
	operands []interface{}

	// literalFirst is set for Condition{Lit(v), op, field}.
	literalFirst bool
	literal      interface{}
}

type groupNode struct {
	items []node
	// joins[i] is the connector between items[i] and items[i+1].
	joins []string
}

// parseNode converts a literal condition structure into typed nodes.
func parseNode(v interface{}, depth int) (node, error) {
	if depth > maxConditionDepth {
		return nil, invalidf("condition nesting exceeds %d levels", maxConditionDepth)
	}

	elems, ok := toSequence(v)
	if !ok {
		return nil, invalidf("condition node must be a sequence, got %T", v)
	}
	if len(elems) == 0 {
		return nil, invalidf("empty condition node")
	}

	if _, nested := toSequence(elems[0]); nested {
		return parseGroup(elems, depth)
	}
	return parseLeaf(elems)
}

func parseGroup(elems []interface{}, depth int) (*groupNode, error) {
	g := &groupNode{}
	expectNode := true

	for i, el := range elems {
		if s, ok := el.(string); ok && isConnector(s) {
			if expectNode {
				return nil, invalidf("connector %q at position %d does not follow a condition", s, i)
			}
			g.joins = append(g.joins, strings.ToUpper(strings.TrimSpace(s)))
			expectNode = true
			continue
		}

		child, err := parseNode(el, depth+1)
		if err != nil {
			return nil, err
		}
		if !expectNode {
			g.joins = append(g.joins, "AND")
		}
		g.items = append(g.items, child)
		expectNode = false
	}

	if expectNode {
		return nil, invalidf("condition ends with a connector")
	}
	return g, nil
}

func parseLeaf(elems []interface{}) (*leafNode, error) {
	if s, ok := elems[0].(string); ok && isConnector(s) && len(elems) > 1 {
		if _, nested := toSequence(elems[1]); nested {
			return nil, invalidf("connector %q at position 0 does not follow a condition", s)
		}
	}
	if len(elems) < 3 {
		return nil, invalidf("condition leaf needs at least 3 elements, got %d", len(elems))
	}

	token, ok := elems[1].(string)
	if !ok {
		return nil, invalidf("operator must be a string, got %T", elems[1])
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, invalidf("empty operator")
	}

	leaf := &leafNode{
		op:       ParseOperator(token),
		token:    token,
		operands: elems[2:],
	}

	switch left := elems[0].(type) {
	case string:
		leaf.field = strings.TrimSpace(left)
	case Identifier:
		leaf.field = strings.TrimSpace(string(left))
	case Literal:
		if len(elems) != 3 {
			return nil, invalidf("literal-first condition takes exactly 3 elements, got %d", len(elems))
		}
		field, ok := fieldName(elems[2])
		if !ok {
			return nil, invalidf("literal-first condition needs a field as third element, got %T", elems[2])
		}
		leaf.field = field
		leaf.literalFirst = true
		leaf.literal = left.Value
		leaf.operands = nil
	default:
		return nil, invalidf("field reference must be a string, got %T", elems[0])
	}

	if leaf.field == "" {
		return nil, invalidf("empty field reference")
	}
	return leaf, nil
}

func fieldName(v interface{}) (string, bool) {
	switch f := v.(type) {
	case string:
		return strings.TrimSpace(f), f != ""
	case Identifier:
		return strings.TrimSpace(string(f)), f != ""
	}
	return "", false
}

func isConnector(s string) bool {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "AND", "OR":
		return true
	}
	return false
}

// toSequence reports whether v is a slice or array (other than []byte) and
// returns its elements.
func toSequence(v interface{}) ([]interface{}, bool) {
	switch s := v.(type) {
	case nil:
		return nil, false
	case Condition:
		return s, true
	case []interface{}:
		return s, true
	case []byte:
		return nil, false
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	out := make([]interface{}, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}

// isEmptyCondition reports whether a WHERE/HAVING input means "no clause".
func isEmptyCondition(v interface{}) bool {
	if v == nil {
		return true
	}
	elems, ok := toSequence(v)
	return ok && len(elems) == 0
}
