package index

import (
	"context"
	"testing"

	"github.com/kailas-cloud/redisvec/internal/db"
	"github.com/kailas-cloud/redisvec/internal/domain/schema"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	createIndexFn func(ctx context.Context, def *db.IndexDefinition) error
	dropIndexFn   func(ctx context.Context, name string, dd bool) error
	indexExistsFn func(ctx context.Context, name string) (bool, error)
	indexInfoFn   func(ctx context.Context, name string) (*db.IndexInfo, error)

	createCalls int
}

func (m *mockStore) CreateIndex(ctx context.Context, def *db.IndexDefinition) error {
	m.createCalls++
	if m.createIndexFn != nil {
		return m.createIndexFn(ctx, def)
	}
	return nil
}

func (m *mockStore) DropIndex(ctx context.Context, name string, dd bool) error {
	if m.dropIndexFn != nil {
		return m.dropIndexFn(ctx, name, dd)
	}
	return nil
}

func (m *mockStore) IndexExists(ctx context.Context, name string) (bool, error) {
	if m.indexExistsFn != nil {
		return m.indexExistsFn(ctx, name)
	}
	return false, nil
}

func (m *mockStore) IndexInfo(ctx context.Context, name string) (*db.IndexInfo, error) {
	if m.indexInfoFn != nil {
		return m.indexInfoFn(ctx, name)
	}
	return &db.IndexInfo{Name: name}, nil
}

func newTestRepo(t *testing.T) (*Repo, *mockStore) {
	t.Helper()
	ms := &mockStore{}
	return New(ms), ms
}

func testDescriptor(t *testing.T, vf schema.VectorField, meta ...schema.MetadataField) schema.IndexDescriptor {
	t.Helper()
	bound, err := vf.Finalize(3)
	if err != nil {
		t.Fatalf("finalize: %v", err)
	}
	m, err := schema.NewMetadata(meta...)
	if err != nil {
		t.Fatalf("metadata: %v", err)
	}
	desc, err := schema.NewIndexDescriptor("docs-1", "", bound, m)
	if err != nil {
		t.Fatalf("descriptor: %v", err)
	}
	return desc
}
