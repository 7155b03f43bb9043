package search

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/kailas-cloud/redisvec/internal/domain"
	domdoc "github.com/kailas-cloud/redisvec/internal/domain/document"
	"github.com/kailas-cloud/redisvec/internal/domain/schema"
	"github.com/kailas-cloud/redisvec/internal/domain/search/filter"
	"github.com/kailas-cloud/redisvec/internal/domain/search/query"
	"github.com/kailas-cloud/redisvec/internal/domain/search/relevance"
	"github.com/kailas-cloud/redisvec/internal/domain/search/result"
)

// --- Mocks ---

type mockRepo struct {
	results   []result.Result
	err       error
	lastQuery query.Query
	callCount int
}

func (m *mockRepo) Search(
	_ context.Context, _ schema.IndexDescriptor, q query.Query, rel relevance.Func,
) ([]result.Result, error) {
	m.callCount++
	m.lastQuery = q
	if m.err != nil {
		return nil, m.err
	}
	out := make([]result.Result, len(m.results))
	for i, r := range m.results {
		out[i] = result.New(r.Document(), r.RawScore(), rel(r.RawScore()))
	}
	return out, nil
}

type caps bool

func (c caps) SupportsVectorRange() bool { return bool(c) }

type mockEmbedder struct {
	vector    []float32
	err       error
	callCount int
}

func (m *mockEmbedder) Embed(_ context.Context, _ string) (domain.EmbeddingResult, error) {
	m.callCount++
	return domain.EmbeddingResult{Embedding: m.vector}, m.err
}

func makeDescriptor(t *testing.T, metric schema.Metric) schema.IndexDescriptor {
	t.Helper()
	vf := schema.NewVectorField()
	vf.Metric = metric
	bound, err := vf.Finalize(3)
	if err != nil {
		t.Fatalf("finalize: %v", err)
	}
	meta, err := schema.NewMetadata(
		schema.MetadataField{Name: "topic", Kind: schema.Tag},
		schema.MetadataField{Name: "year", Kind: schema.Numeric},
	)
	if err != nil {
		t.Fatalf("metadata: %v", err)
	}
	desc, err := schema.NewIndexDescriptor("docs-1", "", bound, meta)
	if err != nil {
		t.Fatalf("descriptor: %v", err)
	}
	return desc
}

func hit(key string, distance float64) result.Result {
	return result.New(domdoc.Reconstruct(key, "text", map[string]any{"id": key}), distance, 0)
}

func threshold(v float64) *float64 { return &v }

// --- Tests ---

func TestSearchByText_KNN(t *testing.T) {
	repo := &mockRepo{results: []result.Result{hit("a", 0.1), hit("b", 0.3)}}
	emb := &mockEmbedder{vector: []float32{1, 0, 0}}
	svc := New(repo, caps(true), emb, nil)

	results, err := svc.SearchByText(context.Background(), makeDescriptor(t, schema.Cosine), "foo",
		Request{K: 2, Filter: filter.Tag("topic").Eq("go")}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if emb.callCount != 1 {
		t.Errorf("embed calls = %d", emb.callCount)
	}
	if repo.lastQuery.Kind != query.KNN {
		t.Errorf("kind = %s", repo.lastQuery.Kind)
	}
	if !strings.HasPrefix(repo.lastQuery.Text, "(@topic:{go})=>[KNN 2") {
		t.Errorf("query text = %s", repo.lastQuery.Text)
	}
	if len(results) != 2 || results[0].Relevance() < results[1].Relevance() {
		t.Errorf("relevance must follow distance order: %v", results)
	}
}

func TestSearchByVector_MetricRelevance(t *testing.T) {
	tests := []struct {
		metric schema.Metric
		want   float64
	}{
		{schema.Cosine, 0.75},
		{schema.L2, 0.8},
		{schema.IP, -0.25},
	}
	for _, tc := range tests {
		t.Run(string(tc.metric), func(t *testing.T) {
			repo := &mockRepo{results: []result.Result{hit("a", 0.25)}}
			svc := New(repo, caps(true), nil, nil)

			results, err := svc.SearchByVector(context.Background(), makeDescriptor(t, tc.metric),
				[]float32{1, 0, 0}, Request{K: 1}, nil)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := results[0].Relevance(); got != tc.want {
				t.Errorf("relevance = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestSearchByVector_RelevanceOverride(t *testing.T) {
	repo := &mockRepo{results: []result.Result{hit("a", 0.5)}}
	svc := New(repo, caps(true), nil, nil)

	results, err := svc.SearchByVector(context.Background(), makeDescriptor(t, schema.Cosine),
		[]float32{1, 0, 0}, Request{K: 1}, func(float64) float64 { return 42 })
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if results[0].Relevance() != 42 {
		t.Errorf("override not applied: %v", results[0].Relevance())
	}
}

func TestSearchByVector_Range(t *testing.T) {
	repo := &mockRepo{}
	svc := New(repo, caps(true), nil, nil)

	_, err := svc.SearchByVector(context.Background(), makeDescriptor(t, schema.Cosine),
		[]float32{1, 0, 0}, Request{K: 4, ScoreThreshold: threshold(0.2)}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.lastQuery.Kind != query.Range {
		t.Errorf("kind = %s, want range", repo.lastQuery.Kind)
	}
	if repo.lastQuery.Params[query.ParamScoreThreshold] != "0.2" {
		t.Errorf("threshold param = %q", repo.lastQuery.Params[query.ParamScoreThreshold])
	}
}

func TestSearch_Rejections(t *testing.T) {
	tests := []struct {
		name    string
		caps    RangeSupport
		req     Request
		wantErr error
	}{
		{"negative k", caps(true), Request{K: -1}, domain.ErrValidation},
		{"undeclared filter field", caps(true), Request{K: 1, Filter: filter.Tag("author").Eq("x")}, domain.ErrValidation},
		{"filter kind mismatch", caps(true), Request{K: 1, Filter: filter.Num("topic").Gt(1)}, domain.ErrValidation},
		{"range unsupported", caps(false), Request{K: 1, ScoreThreshold: threshold(0.1)}, domain.ErrRangeQueryUnsupported},
		{"range without capability info", nil, Request{K: 1, ScoreThreshold: threshold(0.1)}, domain.ErrRangeQueryUnsupported},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			repo := &mockRepo{}
			emb := &mockEmbedder{vector: []float32{1, 0, 0}}
			svc := New(repo, tc.caps, emb, nil)

			_, err := svc.SearchByText(context.Background(), makeDescriptor(t, schema.Cosine), "foo", tc.req, nil)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected %v, got %v", tc.wantErr, err)
			}
			if emb.callCount != 0 || repo.callCount != 0 {
				t.Errorf("rejected request reached embedder=%d repo=%d", emb.callCount, repo.callCount)
			}
		})
	}
}

func TestSearchByVector_DimensionMismatch(t *testing.T) {
	repo := &mockRepo{}
	svc := New(repo, caps(true), nil, nil)

	_, err := svc.SearchByVector(context.Background(), makeDescriptor(t, schema.Cosine),
		[]float32{1, 0}, Request{K: 1}, nil)
	if !errors.Is(err, domain.ErrDimensionMismatch) {
		t.Fatalf("expected ErrDimensionMismatch, got %v", err)
	}
	if repo.callCount != 0 {
		t.Error("query must not execute")
	}
}

func TestSearchByText_Errors(t *testing.T) {
	t.Run("no embedder", func(t *testing.T) {
		svc := New(&mockRepo{}, caps(true), nil, nil)
		_, err := svc.SearchByText(context.Background(), makeDescriptor(t, schema.Cosine), "foo", Request{K: 1}, nil)
		if !errors.Is(err, domain.ErrConfiguration) {
			t.Errorf("expected ErrConfiguration, got %v", err)
		}
	})

	t.Run("embedder failure", func(t *testing.T) {
		svc := New(&mockRepo{}, caps(true), &mockEmbedder{err: errors.New("401")}, nil)
		_, err := svc.SearchByText(context.Background(), makeDescriptor(t, schema.Cosine), "foo", Request{K: 1}, nil)
		if !errors.Is(err, domain.ErrEmbeddingProviderError) {
			t.Errorf("expected ErrEmbeddingProviderError, got %v", err)
		}
	})

	t.Run("engine failure", func(t *testing.T) {
		boom := errors.New("Syntax error")
		svc := New(&mockRepo{err: boom}, caps(true), &mockEmbedder{vector: []float32{1, 0, 0}}, nil)
		_, err := svc.SearchByText(context.Background(), makeDescriptor(t, schema.Cosine), "foo", Request{K: 1}, nil)
		if !errors.Is(err, boom) {
			t.Errorf("expected wrapped engine error, got %v", err)
		}
	})
}

func TestSearchByVector_ZeroK(t *testing.T) {
	repo := &mockRepo{}
	svc := New(repo, caps(true), nil, nil)

	results, err := svc.SearchByVector(context.Background(), makeDescriptor(t, schema.Cosine),
		[]float32{1, 0, 0}, Request{K: 0}, nil)
	if err != nil {
		t.Fatalf("k=0 must be valid: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("expected no results, got %d", len(results))
	}
	if repo.callCount != 1 || repo.lastQuery.Limit != 0 {
		t.Errorf("k=0 still executes with LIMIT 0 0: calls=%d limit=%d", repo.callCount, repo.lastQuery.Limit)
	}
}
