// Package query builds FT.SEARCH vector queries (KNN and VECTOR_RANGE) for one index schema.
package query

import (
	"fmt"
	"math"
	"strconv"

	"github.com/kailas-cloud/redisvec/internal/domain"
	"github.com/kailas-cloud/redisvec/internal/domain/schema"
)

// Dialect is the query dialect required for KNN and VECTOR_RANGE syntax.
const Dialect = 2

// Parameter names referenced from query text.
const (
	ParamVector         = "vector"
	ParamScoreThreshold = "score_threshold"
)

// Kind distinguishes top-K from distance-threshold queries.
type Kind int

const (
	// KNN returns the k nearest vectors.
	KNN Kind = iota
	// Range returns vectors within a distance threshold, capped at k.
	Range
)

func (k Kind) String() string {
	if k == Range {
		return "range"
	}
	return "knn"
}

// Request describes one similarity query. A nil ScoreThreshold selects KNN mode.
// Filter is a pre-rendered predicate spliced into the query as-is.
type Request struct {
	Vector         []float32
	K              int
	ScoreThreshold *float64
	Filter         string
}

// Query is a fully built search, independent of the engine client.
type Query struct {
	Kind         Kind
	Text         string
	Params       map[string]string
	ReturnFields []string
	SortBy       string
	SortAsc      bool
	Offset       int
	Limit        int
	Dialect      int
}

// Builder renders requests against a fixed index descriptor.
type Builder struct {
	vector       schema.BoundVectorField
	returnFields []string
}

// NewBuilder captures the vector field and projection list of desc.
func NewBuilder(desc schema.IndexDescriptor) *Builder {
	return &Builder{
		vector:       desc.Vector(),
		returnFields: desc.ReturnFields(),
	}
}

// Build validates req and renders it. k == 0 is valid and yields a query returning no rows.
func (b *Builder) Build(req Request) (Query, error) {
	if req.K < 0 {
		return Query{}, fmt.Errorf("%w: k must not be negative, got %d", domain.ErrValidation, req.K)
	}
	if err := b.vector.CheckVector(req.Vector); err != nil {
		return Query{}, err
	}

	q := Query{
		Kind:         KNN,
		Params:       map[string]string{ParamVector: string(schema.EncodeVector(req.Vector, b.vector.Datatype()))},
		ReturnFields: append([]string(nil), b.returnFields...),
		SortBy:       schema.ScoreField,
		SortAsc:      true,
		Offset:       0,
		Limit:        req.K,
		Dialect:      Dialect,
	}

	if req.ScoreThreshold == nil {
		q.Text = b.knnText(req.K, req.Filter)
		return q, nil
	}

	t := *req.ScoreThreshold
	if math.IsNaN(t) || math.IsInf(t, 0) {
		return Query{}, fmt.Errorf("%w: score threshold must be finite", domain.ErrValidation)
	}
	q.Kind = Range
	q.Text = b.rangeText(req.Filter)
	q.Params[ParamScoreThreshold] = strconv.FormatFloat(t, 'g', -1, 64)
	return q, nil
}

// KNN is shorthand for a top-k request.
func (b *Builder) KNN(vector []float32, k int, filter string) (Query, error) {
	return b.Build(Request{Vector: vector, K: k, Filter: filter})
}

// Range is shorthand for a threshold request.
func (b *Builder) Range(vector []float32, k int, threshold float64, filter string) (Query, error) {
	return b.Build(Request{Vector: vector, K: k, ScoreThreshold: &threshold, Filter: filter})
}

func (b *Builder) knnText(k int, filter string) string {
	prefix := "*"
	if filter != "" {
		prefix = filter
	}
	return fmt.Sprintf("(%s)=>[KNN %d @%s $%s AS %s]", prefix, k, b.vector.Name(), ParamVector, schema.ScoreField)
}

func (b *Builder) rangeText(filter string) string {
	base := fmt.Sprintf("@%s:[VECTOR_RANGE $%s $%s]", b.vector.Name(), ParamScoreThreshold, ParamVector)
	if filter != "" {
		base = "(" + base + " " + filter + ")"
	}
	return base + "=>{$yield_distance_as: " + schema.ScoreField + "}"
}
