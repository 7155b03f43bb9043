package document

import (
	"fmt"

	domdoc "github.com/kailas-cloud/redisvec/internal/domain/document"
	"github.com/kailas-cloud/redisvec/internal/domain/schema"
)

// buildHashFields flattens a document into the hash layout the index covers:
// content, the packed vector, then encoded metadata.
func buildHashFields(desc schema.IndexDescriptor, doc *domdoc.Document) (map[string]string, error) {
	if err := desc.Vector().CheckVector(doc.Vector()); err != nil {
		return nil, fmt.Errorf("document %s: %w", doc.Key(), err)
	}
	meta, err := desc.Metadata().Encode(doc.Metadata())
	if err != nil {
		return nil, fmt.Errorf("document %s: %w", doc.Key(), err)
	}

	m := make(map[string]string, 2+len(meta))
	for k, v := range meta {
		m[k] = v
	}
	m[desc.ContentField()] = doc.Content()
	m[desc.Vector().Name()] = string(schema.EncodeVector(doc.Vector(), desc.Vector().Datatype()))
	return m, nil
}
