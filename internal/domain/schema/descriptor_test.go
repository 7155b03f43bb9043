package schema

import (
	"errors"
	"slices"
	"testing"

	"github.com/kailas-cloud/redisvec/internal/domain"
)

func boundField(t *testing.T, dims int) BoundVectorField {
	t.Helper()
	b, err := NewVectorField().Finalize(dims)
	if err != nil {
		t.Fatalf("finalize: %v", err)
	}
	return b
}

func TestNewIndexDescriptor(t *testing.T) {
	meta, err := NewMetadata(MetadataField{Name: "color", Kind: Tag})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	d, err := NewIndexDescriptor("docs-1", "", boundField(t, 3), meta)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.IndexName() != "docs-1" || d.KeyPrefix() != "doc:docs-1" || d.ContentField() != "content" {
		t.Errorf("unexpected descriptor: %s %s %s", d.IndexName(), d.KeyPrefix(), d.ContentField())
	}
	want := []string{"color", "content", "vector_score", "id"}
	if got := d.ReturnFields(); !slices.Equal(got, want) {
		t.Errorf("ReturnFields() = %v, want %v", got, want)
	}
}

func TestNewIndexDescriptor_Errors(t *testing.T) {
	clash, err := NewMetadata(MetadataField{Name: "content", Kind: Text})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tests := []struct {
		name    string
		index   string
		content string
		vector  BoundVectorField
		meta    MetadataSchema
		wantErr error
	}{
		{"bad index name", "a b", "", boundField(t, 3), MetadataSchema{}, domain.ErrValidation},
		{"unbound vector", "idx", "", BoundVectorField{}, MetadataSchema{}, domain.ErrSchemaNotBound},
		{"content equals vector", "idx", "content_vector", boundField(t, 3), MetadataSchema{}, domain.ErrValidation},
		{"metadata shadows content", "idx", "", boundField(t, 3), clash, domain.ErrValidation},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewIndexDescriptor(tc.index, tc.content, tc.vector, tc.meta)
			if !errors.Is(err, tc.wantErr) {
				t.Errorf("expected %v, got %v", tc.wantErr, err)
			}
		})
	}
}
