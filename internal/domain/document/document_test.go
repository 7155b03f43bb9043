package document

import (
	"errors"
	"regexp"
	"testing"

	"github.com/kailas-cloud/redisvec/internal/domain"
)

func TestNew_Valid(t *testing.T) {
	meta := map[string]any{"color": "red", "price": 9.5}

	doc, err := New("a", "hello", []float32{1, 0, 0}, meta)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.Key() != "a" {
		t.Errorf("Key() = %q", doc.Key())
	}
	if doc.Content() != "hello" {
		t.Errorf("Content() = %q", doc.Content())
	}
	if len(doc.Vector()) != 3 {
		t.Errorf("Vector() len = %d", len(doc.Vector()))
	}
	if doc.Metadata()["color"] != "red" {
		t.Errorf("Metadata() = %v", doc.Metadata())
	}
}

func TestNew_ClonesMetadata(t *testing.T) {
	meta := map[string]any{"k": "v"}
	doc, _ := New("a", "content", []float32{1}, meta)

	meta["k"] = "mutated"

	if doc.Metadata()["k"] != "v" {
		t.Error("metadata mutation leaked into document")
	}
}

func TestNew_NilMetadata(t *testing.T) {
	doc, err := New("a", "content", []float32{1}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.Metadata() != nil {
		t.Errorf("Metadata() = %v, want nil", doc.Metadata())
	}
}

func TestNew_Errors(t *testing.T) {
	if _, err := New("", "content", []float32{1}, nil); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("empty key: expected ErrValidation, got %v", err)
	}
	if _, err := New("a", "content", nil, nil); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("no vector: expected ErrValidation, got %v", err)
	}
}

func TestNewKey(t *testing.T) {
	re := regexp.MustCompile(`^doc:docs-1:[0-9a-f]{32}$`)

	k1 := NewKey("doc:docs-1")
	k2 := NewKey("doc:docs-1")
	if !re.MatchString(k1) {
		t.Errorf("unexpected key format: %q", k1)
	}
	if k1 == k2 {
		t.Error("keys should be unique")
	}
}

func TestReconstruct(t *testing.T) {
	doc := Reconstruct("a", "hello", map[string]any{"id": "a"})
	if doc.Key() != "a" || doc.Content() != "hello" || doc.Vector() != nil {
		t.Errorf("unexpected document: %+v", doc)
	}
}
