package filter

import (
	"fmt"
	"math"

	"github.com/kailas-cloud/redisvec/internal/domain/schema"
)

// NumField builds predicates over a NUMERIC field.
type NumField struct{ name string }

// Num starts a NUMERIC predicate.
func Num(name string) NumField { return NumField{name: name} }

// Eq matches value exactly.
func (f NumField) Eq(v float64) Expression { return f.between(bound(v, false), bound(v, false), false) }

// Ne excludes value.
func (f NumField) Ne(v float64) Expression { return f.between(bound(v, false), bound(v, false), true) }

// Gt matches values strictly greater than v.
func (f NumField) Gt(v float64) Expression { return f.between(bound(v, true), "+inf", false) }

// Gte matches values greater than or equal to v.
func (f NumField) Gte(v float64) Expression { return f.between(bound(v, false), "+inf", false) }

// Lt matches values strictly less than v.
func (f NumField) Lt(v float64) Expression { return f.between("-inf", bound(v, true), false) }

// Lte matches values less than or equal to v.
func (f NumField) Lte(v float64) Expression { return f.between("-inf", bound(v, false), false) }

// Between matches lo <= value <= hi.
func (f NumField) Between(lo, hi float64) Expression {
	if lo > hi {
		return invalid("numeric filter on %q: lower bound %g exceeds upper bound %g", f.name, lo, hi)
	}
	return f.between(bound(lo, false), bound(hi, false), false)
}

func (f NumField) between(lo, hi string, negate bool) Expression {
	if lo == "" || hi == "" {
		return invalid("numeric filter on %q: bound must be finite", f.name)
	}
	expr := fmt.Sprintf("@%s:[%s %s]", f.name, lo, hi)
	if negate {
		expr = "(-" + expr + ")"
	}
	return leaf(f.name, schema.Numeric, expr)
}

// bound renders one interval end; exclusive ends get the "(" prefix. NaN and Inf render as "".
func bound(v float64, exclusive bool) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return ""
	}
	if exclusive {
		return fmt.Sprintf("(%g", v)
	}
	return fmt.Sprintf("%g", v)
}
