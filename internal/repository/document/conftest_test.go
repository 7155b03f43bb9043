package document

import (
	"context"
	"testing"

	"github.com/kailas-cloud/redisvec/internal/db"
	domdoc "github.com/kailas-cloud/redisvec/internal/domain/document"
	"github.com/kailas-cloud/redisvec/internal/domain/schema"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	hsetMultiFn func(ctx context.Context, items []db.HashSetItem) error
	delFn       func(ctx context.Context, keys ...string) (int64, error)

	hsetCalls int
}

func (m *mockStore) HSetMulti(ctx context.Context, items []db.HashSetItem) error {
	m.hsetCalls++
	if m.hsetMultiFn != nil {
		return m.hsetMultiFn(ctx, items)
	}
	return nil
}

func (m *mockStore) Del(ctx context.Context, keys ...string) (int64, error) {
	if m.delFn != nil {
		return m.delFn(ctx, keys...)
	}
	return int64(len(keys)), nil
}

func newTestRepo(t *testing.T) (*Repo, *mockStore) {
	t.Helper()
	ms := &mockStore{}
	return New(ms), ms
}

func testDescriptor(t *testing.T, dt schema.Datatype) schema.IndexDescriptor {
	t.Helper()
	vf := schema.NewVectorField()
	vf.Datatype = dt
	bound, err := vf.Finalize(3)
	if err != nil {
		t.Fatalf("finalize: %v", err)
	}
	meta, err := schema.NewMetadata(
		schema.MetadataField{Name: "color", Kind: schema.Tag},
		schema.MetadataField{Name: "price", Kind: schema.Numeric},
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

func testDocument(t *testing.T, key string, meta map[string]any) domdoc.Document {
	t.Helper()
	doc, err := domdoc.New(key, "hello world", []float32{0.1, 0.2, 0.3}, meta)
	if err != nil {
		t.Fatalf("document: %v", err)
	}
	return doc
}
