package document

import (
	"encoding/hex"
	"fmt"
	"maps"

	"github.com/google/uuid"

	"github.com/kailas-cloud/redisvec/internal/domain"
)

// Document is one indexed record: text, its embedding and typed metadata, stored under key.
type Document struct {
	key      string
	content  string
	vector   []float32
	metadata map[string]any
}

// New validates and creates a Document. Metadata is copied; schema checks happen in the
// ingestion layer where the declared metadata schema is known.
func New(key, content string, vector []float32, metadata map[string]any) (Document, error) {
	if key == "" {
		return Document{}, fmt.Errorf("%w: document key is required", domain.ErrValidation)
	}
	if len(vector) == 0 {
		return Document{}, fmt.Errorf("%w: document %q has no vector", domain.ErrValidation, key)
	}
	return Document{
		key:      key,
		content:  content,
		vector:   vector,
		metadata: maps.Clone(metadata),
	}, nil
}

// Reconstruct creates a Document without validation (search result hydration).
func Reconstruct(key, content string, metadata map[string]any) Document {
	return Document{key: key, content: content, metadata: metadata}
}

// NewKey generates a fresh key under prefix: "<prefix>:<32 hex chars>".
func NewKey(prefix string) string {
	id := uuid.New()
	return prefix + ":" + hex.EncodeToString(id[:])
}

// Key returns the record key.
func (d *Document) Key() string { return d.key }

// Content returns the document text.
func (d *Document) Content() string { return d.content }

// Vector returns the embedding; nil for documents read back from search.
func (d *Document) Vector() []float32 { return d.vector }

// Metadata returns the metadata map.
func (d *Document) Metadata() map[string]any { return d.metadata }
