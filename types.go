package redisvec

import (
	"github.com/kailas-cloud/redisvec/internal/domain"
	"github.com/kailas-cloud/redisvec/internal/domain/schema"
	"github.com/kailas-cloud/redisvec/internal/domain/search/relevance"
	"github.com/kailas-cloud/redisvec/internal/domain/search/result"
)

// Schema types.
type (
	// VectorField declares the vector field of an index; the dimension is bound later.
	VectorField = schema.VectorField
	// HNSWParams tune an HNSW vector index.
	HNSWParams = schema.HNSWParams
	// FlatParams tune a FLAT vector index.
	FlatParams = schema.FlatParams
	// Algorithm is the vector index algorithm.
	Algorithm = schema.Algorithm
	// Metric is the vector distance metric.
	Metric = schema.Metric
	// Datatype is the element type of stored vectors.
	Datatype = schema.Datatype
	// MetadataField declares one typed metadata field.
	MetadataField = schema.MetadataField
	// FieldKind is the index kind of a metadata field.
	FieldKind = schema.Kind
)

// Vector field settings.
const (
	Flat    = schema.Flat
	HNSW    = schema.HNSW
	Cosine  = schema.Cosine
	IP      = schema.IP
	L2      = schema.L2
	Float32 = schema.Float32
	Float64 = schema.Float64
)

// Metadata field kinds.
const (
	KindText    = schema.Text
	KindTag     = schema.Tag
	KindNumeric = schema.Numeric
)

// RelevanceFunc maps a raw engine distance to a relevance score.
type RelevanceFunc = relevance.Func

// DeleteOutcome reports whether a delete removed anything.
type DeleteOutcome = domain.DeleteOutcome

// Delete outcomes.
const (
	NotFound = domain.NotFound
	Deleted  = domain.Deleted
)

// NewVectorField returns a FLAT / COSINE / FLOAT32 skeleton named "content_vector".
func NewVectorField() VectorField { return schema.NewVectorField() }

// NewHNSWParams returns the default HNSW parameters.
func NewHNSWParams() HNSWParams { return schema.NewHNSWParams() }

// TextField declares a full-text metadata field.
func TextField(name string) MetadataField { return MetadataField{Name: name, Kind: schema.Text} }

// TagField declares an exact-match metadata field. Slice values are joined with ",".
func TagField(name string) MetadataField { return MetadataField{Name: name, Kind: schema.Tag} }

// NumericField declares a numeric metadata field.
func NumericField(name string) MetadataField { return MetadataField{Name: name, Kind: schema.Numeric} }

// Document is a stored record as returned by search. Metadata carries the declared fields
// present on the record plus the record key under "id".
type Document struct {
	ID       string
	Content  string
	Metadata map[string]any
}

// ScoredDocument is a search hit with its raw distance and relevance.
type ScoredDocument struct {
	Document
	Distance  float64
	Relevance float64
}

func toScored(results []result.Result) []ScoredDocument {
	out := make([]ScoredDocument, 0, len(results))
	for i := range results {
		r := &results[i]
		doc := r.Document()
		out = append(out, ScoredDocument{
			Document: Document{
				ID:       doc.Key(),
				Content:  doc.Content(),
				Metadata: doc.Metadata(),
			},
			Distance:  r.RawScore(),
			Relevance: r.Relevance(),
		})
	}
	return out
}

func toDocuments(hits []ScoredDocument) []Document {
	out := make([]Document, len(hits))
	for i := range hits {
		out[i] = hits[i].Document
	}
	return out
}
