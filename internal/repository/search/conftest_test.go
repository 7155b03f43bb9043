package search

import (
	"context"
	"testing"

	"github.com/kailas-cloud/redisvec/internal/db"
	"github.com/kailas-cloud/redisvec/internal/domain/schema"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	searchFn func(ctx context.Context, req *db.SearchRequest) (*db.SearchResult, error)
}

func (m *mockStore) Search(ctx context.Context, req *db.SearchRequest) (*db.SearchResult, error) {
	if m.searchFn != nil {
		return m.searchFn(ctx, req)
	}
	return &db.SearchResult{}, nil
}

func newTestRepo(t *testing.T) (*Repo, *mockStore) {
	t.Helper()
	ms := &mockStore{}
	return New(ms), ms
}

func testDescriptor(t *testing.T) schema.IndexDescriptor {
	t.Helper()
	bound, err := schema.NewVectorField().Finalize(4)
	if err != nil {
		t.Fatalf("finalize: %v", err)
	}
	meta, err := schema.NewMetadata(
		schema.MetadataField{Name: "language", Kind: schema.Tag},
		schema.MetadataField{Name: "priority", Kind: schema.Numeric},
	)
	if err != nil {
		t.Fatalf("metadata: %v", err)
	}
	desc, err := schema.NewIndexDescriptor("notes", "", bound, meta)
	if err != nil {
		t.Fatalf("descriptor: %v", err)
	}
	return desc
}

func testVector() []float32 {
	return []float32{0.1, 0.1, 0.1, 0.1}
}
