// Copyright (c) 2025 COREGX. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package core

import (
	"fmt"
	"strings"
)

// Validator checks caller-supplied SQL text that is spliced into a statement
// unbound: identifiers, expressions and pass-through operators.
// *security.Validator satisfies it.
type Validator interface {
	ValidateIdentifier(name string) error
	ValidateOperator(token string) error
}

// compiler carries the per-statement state of one Build call.
type compiler struct {
	params    *Params
	validator Validator // nil unless strict mode is on
}

func newCompiler(validator Validator) *compiler {
	return &compiler{params: NewParams(), validator: validator}
}

// compile renders a condition tree as a parenthesized boolean expression.
func (c *compiler) compile(cond interface{}) (string, error) {
	n, err := parseNode(cond, 0)
	if err != nil {
		return "", err
	}
	if leaf, ok := n.(*leafNode); ok {
		n = &groupNode{items: []node{leaf}}
	}
	return c.render(n)
}

func (c *compiler) render(n node) (string, error) {
	switch n := n.(type) {
	case *leafNode:
		return c.renderLeaf(n)
	case *groupNode:
		var b strings.Builder
		for i, item := range n.items {
			if i > 0 {
				b.WriteString(" " + n.joins[i-1] + " ")
			}
			sql, err := c.render(item)
			if err != nil {
				return "", err
			}
			b.WriteString("(" + sql + ")")
		}
		return b.String(), nil
	default:
		return "", invalidf("unexpected condition node %T", n)
	}
}

func (c *compiler) renderLeaf(l *leafNode) (string, error) {
	if err := c.checkIdent(l.field); err != nil {
		return "", err
	}

	op := l.op.String()
	if l.op == OpPassThrough {
		if err := c.checkOperator(l.token); err != nil {
			return "", err
		}
		op = l.token
	}

	if l.literalFirst {
		if !l.op.isComparison() && !l.op.isLike() && l.op != OpPassThrough {
			return "", invalidf("operator %s cannot take a literal first operand", op)
		}
		return c.params.Reserve(l.field, l.literal) + " " + op + " " + l.field, nil
	}

	switch n := len(l.operands); {
	case n == 1:
		return c.renderUnary(l, op)
	case n == 2 && l.op.isBetween():
		return c.renderBetween(l.field, op, l.operands[0], l.operands[1])
	case l.op.isIn() || l.op == OpPassThrough:
		return c.renderList(l.field, op, l.operands)
	case l.op.isBetween():
		return "", invalidf("%s takes exactly two operands, got %d", op, n)
	default:
		return "", invalidf("operator %s takes a single operand, got %d", op, n)
	}
}

func (c *compiler) renderUnary(l *leafNode, op string) (string, error) {
	v := l.operands[0]

	switch {
	case l.op.isBetween():
		lo, hi, err := splitPair(v)
		if err != nil {
			return "", err
		}
		return c.renderBetween(l.field, op, lo, hi)

	case l.op.isIn():
		if list, ok := toSequence(v); ok {
			if len(list) == 0 {
				if l.op == OpIn {
					return "0=1", nil
				}
				return "1=1", nil
			}
			return c.renderList(l.field, op, list)
		}
		return c.renderList(l.field, op, []interface{}{v})

	case v == nil && l.op == OpEq:
		return l.field + " IS NULL", nil
	case v == nil && l.op == OpNotEq:
		return l.field + " IS NOT NULL", nil
	case v == nil && l.op == OpPassThrough:
		return l.field + " " + op + " NULL", nil
	}

	operand, err := c.operand(l.field, v)
	if err != nil {
		return "", err
	}
	return l.field + " " + op + " " + operand, nil
}

func (c *compiler) renderBetween(field, op string, lo, hi interface{}) (string, error) {
	from, err := c.operand(field, lo)
	if err != nil {
		return "", err
	}
	to, err := c.operand(field, hi)
	if err != nil {
		return "", err
	}
	return field + " " + op + " " + from + " AND " + to, nil
}

func (c *compiler) renderList(field, op string, values []interface{}) (string, error) {
	parts := make([]string, len(values))
	for i, v := range values {
		operand, err := c.operand(field, v)
		if err != nil {
			return "", err
		}
		parts[i] = operand
	}
	return field + " " + op + "(" + strings.Join(parts, ", ") + ")", nil
}

// operand binds v as a parameter named after field, or renders it as a
// column when marked with Ident.
func (c *compiler) operand(field string, v interface{}) (string, error) {
	if id, ok := v.(Identifier); ok {
		name := strings.TrimSpace(string(id))
		if name == "" {
			return "", invalidf("empty identifier operand for %s", field)
		}
		if err := c.checkIdent(name); err != nil {
			return "", err
		}
		return name, nil
	}
	return c.params.Reserve(field, v), nil
}

// splitPair reads a BETWEEN operand: "18,48" or a two-element sequence.
func splitPair(v interface{}) (interface{}, interface{}, error) {
	if s, ok := v.(string); ok {
		parts := strings.Split(s, ",")
		if len(parts) != 2 {
			return nil, nil, invalidf("BETWEEN operand %q must hold two comma-separated values", s)
		}
		return strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1]), nil
	}
	if pair, ok := toSequence(v); ok {
		if len(pair) != 2 {
			return nil, nil, invalidf("BETWEEN operand must hold two values, got %d", len(pair))
		}
		return pair[0], pair[1], nil
	}
	return nil, nil, invalidf("BETWEEN operand must be a pair, got %T", v)
}

func (c *compiler) checkIdent(name string) error {
	if c.validator == nil {
		return nil
	}
	if err := c.validator.ValidateIdentifier(name); err != nil {
		return fmt.Errorf("%w: %v", ErrUnsafeInput, err)
	}
	return nil
}

func (c *compiler) checkOperator(token string) error {
	if c.validator == nil {
		return nil
	}
	if err := c.validator.ValidateOperator(token); err != nil {
		return fmt.Errorf("%w: %v", ErrUnsafeInput, err)
	}
	return nil
}
