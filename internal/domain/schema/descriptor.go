package schema

import (
	"fmt"

	"github.com/kailas-cloud/redisvec/internal/domain"
)

// Reserved projection names.
const (
	// IDField carries the record key in translated results.
	IDField = "id"
	// ScoreField is the alias the engine yields the raw distance under.
	ScoreField = "vector_score"
	// DefaultContentField holds the document text.
	DefaultContentField = "content"
)

// KeyPrefix returns the key namespace of an index.
func KeyPrefix(indexName string) string {
	return "doc:" + indexName
}

// IndexDescriptor binds one index name to its finalized schemas. It is immutable.
type IndexDescriptor struct {
	indexName    string
	keyPrefix    string
	contentField string
	vector       BoundVectorField
	metadata     MetadataSchema
}

// NewIndexDescriptor validates the combination of names and schemas.
// An empty contentField selects DefaultContentField.
func NewIndexDescriptor(
	indexName, contentField string, vector BoundVectorField, metadata MetadataSchema,
) (IndexDescriptor, error) {
	if !IsValidName(indexName) {
		return IndexDescriptor{}, fmt.Errorf("%w: invalid index name %q", domain.ErrValidation, indexName)
	}
	if contentField == "" {
		contentField = DefaultContentField
	}
	if !IsValidName(contentField) {
		return IndexDescriptor{}, fmt.Errorf("%w: invalid content field %q", domain.ErrValidation, contentField)
	}
	if vector.IsZero() {
		return IndexDescriptor{}, domain.ErrSchemaNotBound
	}
	if contentField == vector.Name() {
		return IndexDescriptor{}, fmt.Errorf("%w: content and vector fields share the name %q",
			domain.ErrValidation, contentField)
	}
	for _, reserved := range []string{contentField, vector.Name()} {
		if _, ok := metadata.Lookup(reserved); ok {
			return IndexDescriptor{}, fmt.Errorf("%w: metadata field name %q is reserved", domain.ErrValidation, reserved)
		}
	}

	return IndexDescriptor{
		indexName:    indexName,
		keyPrefix:    KeyPrefix(indexName),
		contentField: contentField,
		vector:       vector,
		metadata:     metadata,
	}, nil
}

// IndexName returns the FT index name.
func (d IndexDescriptor) IndexName() string { return d.indexName }

// KeyPrefix returns the key namespace the index covers.
func (d IndexDescriptor) KeyPrefix() string { return d.keyPrefix }

// ContentField returns the hash field holding document text.
func (d IndexDescriptor) ContentField() string { return d.contentField }

// Vector returns the bound vector field.
func (d IndexDescriptor) Vector() BoundVectorField { return d.vector }

// Metadata returns the metadata schema.
func (d IndexDescriptor) Metadata() MetadataSchema { return d.metadata }

// ReturnFields lists the fields every query projects: metadata, content, score, id.
func (d IndexDescriptor) ReturnFields() []string {
	out := d.metadata.Names()
	return append(out, d.contentField, ScoreField, IDField)
}
