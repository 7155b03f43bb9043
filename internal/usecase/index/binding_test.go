package index

import (
	"context"
	"errors"
	"testing"

	"github.com/kailas-cloud/redisvec/internal/domain"
	"github.com/kailas-cloud/redisvec/internal/domain/schema"
)

func testLayout(dims int) Layout {
	return Layout{Name: "docs-1", Vector: schema.NewVectorField(), Dims: dims}
}

func TestBinding_Descriptor_FromLayout(t *testing.T) {
	repo := &mockRepo{dimsErr: errors.New("must not be called")}
	b := NewBinding(New(repo, nil), testLayout(3))

	desc, err := b.Descriptor(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if desc.Vector().Dims() != 3 || desc.IndexName() != "docs-1" {
		t.Errorf("unexpected descriptor: %s dims=%d", desc.IndexName(), desc.Vector().Dims())
	}
}

func TestBinding_Descriptor_FromIndexInfo(t *testing.T) {
	repo := &mockRepo{dims: 768}
	b := NewBinding(New(repo, nil), testLayout(0))

	desc, err := b.Descriptor(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if desc.Vector().Dims() != 768 {
		t.Errorf("dims = %d, want 768", desc.Vector().Dims())
	}

	// Cached: a later FT.INFO failure does not matter.
	repo.dimsErr = errors.New("boom")
	if _, err := b.Descriptor(context.Background()); err != nil {
		t.Fatalf("cached descriptor: %v", err)
	}
}

func TestBinding_Descriptor_MissingIndex(t *testing.T) {
	repo := &mockRepo{dimsErr: domain.ErrIndexNotFound}
	b := NewBinding(New(repo, nil), testLayout(0))

	_, err := b.Descriptor(context.Background())
	if !errors.Is(err, domain.ErrSchemaNotBound) {
		t.Fatalf("expected ErrSchemaNotBound, got %v", err)
	}
}

func TestBinding_Ensure(t *testing.T) {
	repo := &mockRepo{created: true}
	b := NewBinding(New(repo, nil), testLayout(0))
	ctx := context.Background()

	if _, err := b.Ensure(ctx, 0); !errors.Is(err, domain.ErrSchemaNotBound) {
		t.Fatalf("expected ErrSchemaNotBound without dims, got %v", err)
	}

	desc, err := b.Ensure(ctx, 4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if desc.Vector().Dims() != 4 || repo.createCall != 1 {
		t.Errorf("dims=%d createCall=%d", desc.Vector().Dims(), repo.createCall)
	}

	var dimErr *domain.DimensionError
	if _, err := b.Ensure(ctx, 8); !errors.As(err, &dimErr) {
		t.Fatalf("expected DimensionError, got %v", err)
	}
	if dimErr.Want != 4 || dimErr.Got != 8 {
		t.Errorf("dimension error = %+v", dimErr)
	}

	b.Reset()
	if _, err := b.Ensure(ctx, 8); err != nil {
		t.Fatalf("after reset: %v", err)
	}
	if repo.createCall != 2 {
		t.Errorf("createCall = %d, want 2", repo.createCall)
	}
}

func TestBinding_Ensure_CreateError(t *testing.T) {
	repo := &mockRepo{createErr: errors.New("conn reset")}
	b := NewBinding(New(repo, nil), testLayout(3))

	if _, err := b.Ensure(context.Background(), 0); err == nil {
		t.Fatal("expected error")
	}
	repo.createErr = nil
	repo.dimsErr = errors.New("must not be called")
	if _, err := b.Descriptor(context.Background()); err != nil {
		t.Fatalf("layout dims must still bind: %v", err)
	}
}
