// Package filter builds RediSearch pre-filter predicates over declared metadata fields.
//
// Expressions are immutable values. Builders never fail eagerly; the first construction
// error is carried on the expression and reported by Err and Validate.
package filter

import (
	"errors"
	"fmt"
	"strings"

	"github.com/kailas-cloud/redisvec/internal/domain"
	"github.com/kailas-cloud/redisvec/internal/domain/schema"
)

// MaxConditionsPerGroup is the maximum number of operands in one And/Or group.
const MaxConditionsPerGroup = 32

type op int

const (
	opLeaf op = iota
	opAnd
	opOr
	opNot
)

// FieldRef is a field an expression reads, with the kind its predicate assumes.
type FieldRef struct {
	Name string
	Kind schema.Kind
}

// Expression is a boolean predicate rendered to RediSearch query syntax.
// The zero value is the empty expression, which matches everything.
type Expression struct {
	op       op
	field    FieldRef
	rendered string
	children []Expression
	err      error
}

// IsEmpty reports whether the expression has no conditions.
func (e Expression) IsEmpty() bool {
	return e.err == nil && e.op == opLeaf && e.rendered == ""
}

// Err returns the first construction error, if any.
func (e Expression) Err() error { return e.err }

// String renders the predicate. Empty and invalid expressions render as "".
func (e Expression) String() string {
	if e.err != nil {
		return ""
	}
	switch e.op {
	case opAnd:
		return group(e.children, " ")
	case opOr:
		return group(e.children, " | ")
	case opNot:
		inner := e.children[0].String()
		if inner == "" {
			return ""
		}
		return "-(" + inner + ")"
	default:
		return e.rendered
	}
}

func group(children []Expression, sep string) string {
	parts := make([]string, 0, len(children))
	for _, c := range children {
		if s := c.String(); s != "" {
			parts = append(parts, s)
		}
	}
	switch len(parts) {
	case 0:
		return ""
	case 1:
		return parts[0]
	default:
		return "(" + strings.Join(parts, sep) + ")"
	}
}

// Fields lists every field the expression references, in order of appearance.
func (e Expression) Fields() []FieldRef {
	if e.op == opLeaf {
		if e.field.Name == "" {
			return nil
		}
		return []FieldRef{e.field}
	}
	var out []FieldRef
	for _, c := range e.children {
		out = append(out, c.Fields()...)
	}
	return out
}

// Validate checks construction errors and that every referenced field is declared in m
// with the kind the predicate expects.
func (e Expression) Validate(m schema.MetadataSchema) error {
	if e.err != nil {
		return fmt.Errorf("%w: %w", domain.ErrValidation, e.err)
	}
	for _, ref := range e.Fields() {
		f, ok := m.Lookup(ref.Name)
		if !ok {
			return fmt.Errorf("%w: filter references undeclared field %q", domain.ErrValidation, ref.Name)
		}
		if f.Kind != ref.Kind {
			return fmt.Errorf("%w: filter uses field %q as %s, declared %s",
				domain.ErrValidation, ref.Name, ref.Kind, f.Kind)
		}
	}
	return nil
}

// And combines expressions with conjunction. Empty operands are ignored.
func And(exprs ...Expression) Expression { return combine(opAnd, exprs) }

// Or combines expressions with disjunction. Empty operands are ignored.
func Or(exprs ...Expression) Expression { return combine(opOr, exprs) }

// Not negates an expression.
func Not(e Expression) Expression {
	if e.err != nil {
		return e
	}
	if e.IsEmpty() {
		return Expression{err: errors.New("cannot negate an empty expression")}
	}
	return Expression{op: opNot, children: []Expression{e}}
}

func combine(o op, exprs []Expression) Expression {
	children := make([]Expression, 0, len(exprs))
	for _, e := range exprs {
		if e.err != nil {
			return e
		}
		if !e.IsEmpty() {
			children = append(children, e)
		}
	}
	if len(children) > MaxConditionsPerGroup {
		return Expression{err: fmt.Errorf("too many conditions in group (max %d)", MaxConditionsPerGroup)}
	}
	switch len(children) {
	case 0:
		return Expression{}
	case 1:
		return children[0]
	default:
		return Expression{op: o, children: children}
	}
}

func leaf(name string, kind schema.Kind, rendered string) Expression {
	if name == "" {
		return Expression{err: errors.New("filter field name is required")}
	}
	return Expression{field: FieldRef{Name: name, Kind: kind}, rendered: rendered}
}

func invalid(format string, args ...any) Expression {
	return Expression{err: fmt.Errorf(format, args...)}
}
