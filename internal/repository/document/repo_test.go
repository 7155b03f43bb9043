package document

import (
	"context"
	"errors"
	"testing"

	"github.com/kailas-cloud/redisvec/internal/db"
	"github.com/kailas-cloud/redisvec/internal/domain"
	domdoc "github.com/kailas-cloud/redisvec/internal/domain/document"
	"github.com/kailas-cloud/redisvec/internal/domain/schema"
)

// --- WriteBatch ---

func TestWriteBatch_HashLayout(t *testing.T) {
	repo, ms := newTestRepo(t)
	desc := testDescriptor(t, schema.Float32)
	docs := []domdoc.Document{
		testDocument(t, "doc:notes:a", map[string]any{"color": []string{"red", "blue"}, "price": 9.5}),
		testDocument(t, "doc:notes:b", nil),
	}

	var got []db.HashSetItem
	ms.hsetMultiFn = func(_ context.Context, items []db.HashSetItem) error {
		got = items
		return nil
	}

	if err := repo.WriteBatch(context.Background(), desc, docs); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("items = %d, want 2", len(got))
	}

	a := got[0]
	if a.Key != "doc:notes:a" {
		t.Errorf("key = %q", a.Key)
	}
	if a.Fields["content"] != "hello world" {
		t.Errorf("content = %q", a.Fields["content"])
	}
	if a.Fields["color"] != "red,blue" {
		t.Errorf("color = %q, want red,blue", a.Fields["color"])
	}
	if a.Fields["price"] != "9.5" {
		t.Errorf("price = %q, want 9.5", a.Fields["price"])
	}
	if n := len(a.Fields["content_vector"]); n != 12 {
		t.Errorf("vector blob = %d bytes, want 12", n)
	}
	vec, err := schema.DecodeVector([]byte(a.Fields["content_vector"]), schema.Float32)
	if err != nil || len(vec) != 3 || vec[1] != 0.2 {
		t.Errorf("decoded vector = %v, %v", vec, err)
	}

	if _, ok := got[1].Fields["color"]; ok {
		t.Error("absent metadata must not be written")
	}
}

func TestWriteBatch_Float64Blob(t *testing.T) {
	repo, ms := newTestRepo(t)
	desc := testDescriptor(t, schema.Float64)

	ms.hsetMultiFn = func(_ context.Context, items []db.HashSetItem) error {
		if n := len(items[0].Fields["content_vector"]); n != 24 {
			t.Errorf("vector blob = %d bytes, want 24", n)
		}
		return nil
	}

	if err := repo.WriteBatch(context.Background(), desc, []domdoc.Document{testDocument(t, "k", nil)}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestWriteBatch_Empty(t *testing.T) {
	repo, ms := newTestRepo(t)
	if err := repo.WriteBatch(context.Background(), testDescriptor(t, schema.Float32), nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ms.hsetCalls != 0 {
		t.Errorf("HSetMulti called %d times, want 0", ms.hsetCalls)
	}
}

func TestWriteBatch_RejectsBeforeSending(t *testing.T) {
	tests := []struct {
		name    string
		doc     func(t *testing.T) domdoc.Document
		wantErr error
	}{
		{
			name:    "undeclared metadata",
			doc:     func(t *testing.T) domdoc.Document { return testDocument(t, "k", map[string]any{"size": "xl"}) },
			wantErr: domain.ErrValidation,
		},
		{
			name:    "non numeric price",
			doc:     func(t *testing.T) domdoc.Document { return testDocument(t, "k", map[string]any{"price": "cheap"}) },
			wantErr: domain.ErrValidation,
		},
		{
			name: "wrong dimension",
			doc: func(t *testing.T) domdoc.Document {
				d, err := domdoc.New("k", "x", []float32{1, 2}, nil)
				if err != nil {
					t.Fatal(err)
				}
				return d
			},
			wantErr: domain.ErrDimensionMismatch,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			repo, ms := newTestRepo(t)
			docs := []domdoc.Document{testDocument(t, "ok", nil), tc.doc(t)}

			err := repo.WriteBatch(context.Background(), testDescriptor(t, schema.Float32), docs)
			if !errors.Is(err, tc.wantErr) {
				t.Errorf("expected %v, got %v", tc.wantErr, err)
			}
			if ms.hsetCalls != 0 {
				t.Error("nothing may be written when a document is rejected")
			}
		})
	}
}

func TestWriteBatch_StoreError(t *testing.T) {
	repo, ms := newTestRepo(t)
	boom := errors.New("OOM")
	ms.hsetMultiFn = func(context.Context, []db.HashSetItem) error { return boom }

	err := repo.WriteBatch(context.Background(), testDescriptor(t, schema.Float32),
		[]domdoc.Document{testDocument(t, "k", nil)})
	if !errors.Is(err, boom) {
		t.Errorf("expected wrapped store error, got %v", err)
	}
}

// --- Delete ---

func TestDelete(t *testing.T) {
	tests := []struct {
		name  string
		count int64
		want  domain.DeleteOutcome
	}{
		{"some existed", 1, domain.Deleted},
		{"none existed", 0, domain.NotFound},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			repo, ms := newTestRepo(t)
			ms.delFn = func(_ context.Context, keys ...string) (int64, error) {
				if len(keys) != 2 {
					t.Errorf("keys = %v", keys)
				}
				return tc.count, nil
			}

			got, err := repo.Delete(context.Background(), []string{"doc:notes:a", "doc:notes:b"})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Errorf("Delete() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestDelete_NoKeys(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.delFn = func(context.Context, ...string) (int64, error) {
		t.Fatal("DEL must not be sent without keys")
		return 0, nil
	}
	got, err := repo.Delete(context.Background(), nil)
	if err != nil || got != domain.NotFound {
		t.Errorf("Delete(nil) = %v, %v", got, err)
	}
}

func TestDelete_StoreError(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.delFn = func(context.Context, ...string) (int64, error) { return 0, errors.New("LOADING") }
	if _, err := repo.Delete(context.Background(), []string{"k"}); err == nil {
		t.Fatal("expected error")
	}
}
