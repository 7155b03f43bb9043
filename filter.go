package redisvec

import "github.com/kailas-cloud/redisvec/internal/domain/search/filter"

// Filter is a metadata predicate applied before vector scoring. The zero value matches all.
type Filter = filter.Expression

// FilterSpec is the declarative (JSON / YAML) form of a Filter. Field kinds come from the
// store's metadata schema; see Store.CompileFilter.
type FilterSpec = filter.Spec

// Filter field builders.
type (
	TagFilter     = filter.TagField
	NumericFilter = filter.NumField
	TextFilter    = filter.TextField
)

// Tag starts a predicate on a TAG field.
func Tag(name string) TagFilter { return filter.Tag(name) }

// Num starts a predicate on a NUMERIC field.
func Num(name string) NumericFilter { return filter.Num(name) }

// Text starts a predicate on a TEXT field.
func Text(name string) TextFilter { return filter.Text(name) }

// And matches records that satisfy every expression.
func And(exprs ...Filter) Filter { return filter.And(exprs...) }

// Or matches records that satisfy any expression.
func Or(exprs ...Filter) Filter { return filter.Or(exprs...) }

// Not negates an expression.
func Not(e Filter) Filter { return filter.Not(e) }
