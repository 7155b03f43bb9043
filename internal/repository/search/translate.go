package search

import (
	"fmt"
	"strconv"

	"github.com/kailas-cloud/redisvec/internal/db"
	domdoc "github.com/kailas-cloud/redisvec/internal/domain/document"
	"github.com/kailas-cloud/redisvec/internal/domain/schema"
	"github.com/kailas-cloud/redisvec/internal/domain/search/relevance"
	"github.com/kailas-cloud/redisvec/internal/domain/search/result"
)

// translate converts engine hits into results in engine order.
// Metadata keeps only declared fields that the hit actually carries, decoded per kind,
// plus the record key under schema.IDField.
func translate(desc schema.IndexDescriptor, sr *db.SearchResult, rel relevance.Func) ([]result.Result, error) {
	if sr == nil || len(sr.Entries) == 0 {
		return nil, nil
	}

	meta := desc.Metadata()
	results := make([]result.Result, 0, len(sr.Entries))
	for _, entry := range sr.Entries {
		raw, ok := entry.Fields[schema.ScoreField]
		if !ok {
			return nil, fmt.Errorf("hit %s: missing %s", entry.Key, schema.ScoreField)
		}
		distance, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("hit %s: parse %s %q: %w", entry.Key, schema.ScoreField, raw, err)
		}

		md := make(map[string]any, meta.Len()+1)
		for _, name := range meta.Names() {
			if v, ok := entry.Fields[name]; ok {
				md[name] = meta.Decode(name, v)
			}
		}
		md[schema.IDField] = entry.Key

		doc := domdoc.Reconstruct(entry.Key, entry.Fields[desc.ContentField()], md)
		results = append(results, result.New(doc, distance, rel(distance)))
	}
	return results, nil
}
