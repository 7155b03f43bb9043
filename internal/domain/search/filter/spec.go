package filter

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/redisvec/internal/domain"
	"github.com/kailas-cloud/redisvec/internal/domain/schema"
)

// Spec is the JSON form of an expression. Exactly one of And, Or, Not or Field is set.
// A leaf takes its kind from the metadata schema, so {"field":"year","op":"gte","value":2020}
// becomes Num("year").Gte(2020) when year is NUMERIC.
//
// Operators: TAG eq|ne (string or list), NUMERIC eq|ne|gt|gte|lt|lte (number) and
// between ([lo, hi]), TEXT eq|ne|like (string).
type Spec struct {
	And   []Spec `json:"and,omitempty"   yaml:"and,omitempty"`
	Or    []Spec `json:"or,omitempty"    yaml:"or,omitempty"`
	Not   *Spec  `json:"not,omitempty"   yaml:"not,omitempty"`
	Field string `json:"field,omitempty" yaml:"field,omitempty"`
	Op    string `json:"op,omitempty"    yaml:"op,omitempty"`
	Value any    `json:"value,omitempty" yaml:"value,omitempty"`
}

// Compile converts s into an expression over fields declared in m.
// A nil spec compiles to the empty expression.
func (s *Spec) Compile(m schema.MetadataSchema) (Expression, error) {
	if s == nil {
		return Expression{}, nil
	}
	expr, err := s.compile(m)
	if err != nil {
		return Expression{}, fmt.Errorf("%w: %w", domain.ErrValidation, err)
	}
	if expr.err != nil {
		return Expression{}, fmt.Errorf("%w: %w", domain.ErrValidation, expr.err)
	}
	return expr, nil
}

func (s *Spec) compile(m schema.MetadataSchema) (Expression, error) {
	set := 0
	for _, present := range []bool{len(s.And) > 0, len(s.Or) > 0, s.Not != nil, s.Field != ""} {
		if present {
			set++
		}
	}
	if set > 1 {
		return Expression{}, fmt.Errorf("filter node mixes and/or/not/field")
	}

	switch {
	case len(s.And) > 0:
		children, err := compileAll(s.And, m)
		if err != nil {
			return Expression{}, err
		}
		return And(children...), nil
	case len(s.Or) > 0:
		children, err := compileAll(s.Or, m)
		if err != nil {
			return Expression{}, err
		}
		return Or(children...), nil
	case s.Not != nil:
		inner, err := s.Not.compile(m)
		if err != nil {
			return Expression{}, err
		}
		return Not(inner), nil
	case s.Field != "":
		return s.leaf(m)
	default:
		return Expression{}, nil
	}
}

func compileAll(specs []Spec, m schema.MetadataSchema) ([]Expression, error) {
	out := make([]Expression, len(specs))
	for i := range specs {
		e, err := specs[i].compile(m)
		if err != nil {
			return nil, err
		}
		out[i] = e
	}
	return out, nil
}

func (s *Spec) leaf(m schema.MetadataSchema) (Expression, error) {
	f, ok := m.Lookup(s.Field)
	if !ok {
		return Expression{}, fmt.Errorf("filter references undeclared field %q", s.Field)
	}
	op := strings.ToLower(s.Op)

	switch f.Kind {
	case schema.Tag:
		values, err := stringList(s.Value)
		if err != nil {
			return Expression{}, fmt.Errorf("field %q: %w", s.Field, err)
		}
		switch op {
		case "eq", "":
			return Tag(s.Field).Eq(values...), nil
		case "ne":
			return Tag(s.Field).Ne(values...), nil
		}
	case schema.Numeric:
		n := Num(s.Field)
		if op == "between" {
			lo, hi, err := numberPair(s.Value)
			if err != nil {
				return Expression{}, fmt.Errorf("field %q: %w", s.Field, err)
			}
			return n.Between(lo, hi), nil
		}
		v, ok := toFloat(s.Value)
		if !ok {
			return Expression{}, fmt.Errorf("field %q: numeric value expected, got %T", s.Field, s.Value)
		}
		switch op {
		case "eq", "":
			return n.Eq(v), nil
		case "ne":
			return n.Ne(v), nil
		case "gt":
			return n.Gt(v), nil
		case "gte":
			return n.Gte(v), nil
		case "lt":
			return n.Lt(v), nil
		case "lte":
			return n.Lte(v), nil
		}
	case schema.Text:
		v, ok := s.Value.(string)
		if !ok {
			return Expression{}, fmt.Errorf("field %q: string value expected, got %T", s.Field, s.Value)
		}
		switch op {
		case "eq", "":
			return Text(s.Field).Eq(v), nil
		case "ne":
			return Text(s.Field).Ne(v), nil
		case "like":
			return Text(s.Field).Like(v), nil
		}
	}
	return Expression{}, fmt.Errorf("operator %q is not supported on %s field %q", s.Op, f.Kind, s.Field)
}

func stringList(v any) ([]string, error) {
	switch t := v.(type) {
	case string:
		return []string{t}, nil
	case []string:
		return t, nil
	case []any:
		out := make([]string, len(t))
		for i, item := range t {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("tag value %d is %T, want string", i, item)
			}
			out[i] = s
		}
		return out, nil
	default:
		return nil, fmt.Errorf("tag value must be a string or a list of strings, got %T", v)
	}
}

func numberPair(v any) (lo, hi float64, err error) {
	items, ok := v.([]any)
	if !ok || len(items) != 2 {
		return 0, 0, fmt.Errorf("between needs [lo, hi]")
	}
	lo, okLo := toFloat(items[0])
	hi, okHi := toFloat(items[1])
	if !okLo || !okHi {
		return 0, 0, fmt.Errorf("between bounds must be numbers")
	}
	return lo, hi, nil
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	default:
		return 0, false
	}
}
