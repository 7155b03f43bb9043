package embedding

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/kailas-cloud/redisvec/internal/domain"
	"github.com/kailas-cloud/redisvec/internal/metrics"
)

func TestMain(m *testing.M) {
	metrics.RegisterEmbeddingMetrics()
	os.Exit(m.Run())
}

type mockEmbedder struct {
	result     domain.EmbeddingResult
	err        error
	batchErr   error
	batchSizes []int
	healthErr  error
}

func (m *mockEmbedder) Embed(_ context.Context, _ string) (domain.EmbeddingResult, error) {
	return m.result, m.err
}

func (m *mockEmbedder) BatchEmbed(_ context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	m.batchSizes = append(m.batchSizes, len(texts))
	if m.batchErr != nil {
		return domain.BatchEmbeddingResult{}, m.batchErr
	}
	embeddings := make([][]float32, len(texts))
	for i := range texts {
		embeddings[i] = []float32{float32(i)}
	}
	return domain.BatchEmbeddingResult{
		Embeddings:  embeddings,
		TotalTokens: len(texts),
	}, nil
}

func (m *mockEmbedder) HealthCheck(_ context.Context) error { return m.healthErr }

// plainEmbedder has no native batch endpoint.
type plainEmbedder struct {
	calls int
}

func (p *plainEmbedder) Embed(_ context.Context, _ string) (domain.EmbeddingResult, error) {
	p.calls++
	return domain.EmbeddingResult{Embedding: []float32{1}, TotalTokens: 2}, nil
}

func TestInstrumentedEmbedder_Embed(t *testing.T) {
	inner := &mockEmbedder{result: domain.EmbeddingResult{Embedding: []float32{0.1, 0.2, 0.3}, TotalTokens: 7}}
	p := NewInstrumentedEmbedder(inner, "test", "test-model", nil)

	result, err := p.Embed(context.Background(), "hello")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Embedding) != 3 || result.TotalTokens != 7 {
		t.Errorf("unexpected result: %+v", result)
	}
}

func TestInstrumentedEmbedder_Embed_Errors(t *testing.T) {
	t.Run("inner error", func(t *testing.T) {
		boom := errors.New("upstream down")
		p := NewInstrumentedEmbedder(&mockEmbedder{err: boom}, "test-err", "m", nil)
		if _, err := p.Embed(context.Background(), "x"); !errors.Is(err, boom) {
			t.Fatalf("expected wrapped error, got %v", err)
		}
		if got := testutil.ToFloat64(metrics.EmbeddingErrorsTotal.WithLabelValues("test-err", "m", "other")); got < 1 {
			t.Errorf("errors_total = %f", got)
		}
	})

	t.Run("empty vector", func(t *testing.T) {
		p := NewInstrumentedEmbedder(&mockEmbedder{}, "test", "m", nil)
		if _, err := p.Embed(context.Background(), "x"); !errors.Is(err, domain.ErrEmbeddingProviderError) {
			t.Fatalf("expected ErrEmbeddingProviderError, got %v", err)
		}
	})

	t.Run("deadline", func(t *testing.T) {
		p := NewInstrumentedEmbedder(&mockEmbedder{err: context.DeadlineExceeded}, "test-timeout", "m", nil)
		_, _ = p.Embed(context.Background(), "x")
		if got := testutil.ToFloat64(metrics.EmbeddingErrorsTotal.WithLabelValues("test-timeout", "m", "timeout")); got < 1 {
			t.Errorf("timeout errors_total = %f", got)
		}
	})
}

func TestInstrumentedEmbedder_BatchEmbed_Chunks(t *testing.T) {
	inner := &mockEmbedder{}
	p := NewInstrumentedEmbedder(inner, "test", "m", nil).WithChunkSize(2)

	res, err := p.BatchEmbed(context.Background(), []string{"a", "b", "c", "d", "e"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Embeddings) != 5 {
		t.Fatalf("embeddings = %d, want 5", len(res.Embeddings))
	}
	want := []int{2, 2, 1}
	if len(inner.batchSizes) != len(want) {
		t.Fatalf("chunks = %v, want %v", inner.batchSizes, want)
	}
	for i := range want {
		if inner.batchSizes[i] != want[i] {
			t.Errorf("chunk[%d] = %d, want %d", i, inner.batchSizes[i], want[i])
		}
	}
	if res.TotalTokens != 5 {
		t.Errorf("TotalTokens = %d, want 5", res.TotalTokens)
	}
	// per-chunk order: second chunk starts again at 0
	if res.Embeddings[2][0] != 0 || res.Embeddings[3][0] != 1 {
		t.Errorf("chunk results not concatenated in order: %v", res.Embeddings)
	}
}

func TestInstrumentedEmbedder_BatchEmbed_Empty(t *testing.T) {
	inner := &mockEmbedder{}
	res, err := NewInstrumentedEmbedder(inner, "test", "m", nil).BatchEmbed(context.Background(), nil)
	if err != nil || res.Embeddings != nil {
		t.Errorf("BatchEmbed(nil) = %+v, %v", res, err)
	}
	if len(inner.batchSizes) != 0 {
		t.Error("inner must not be called")
	}
}

func TestInstrumentedEmbedder_BatchEmbed_InnerError(t *testing.T) {
	inner := &mockEmbedder{batchErr: errors.New("503")}
	if _, err := NewInstrumentedEmbedder(inner, "test", "m", nil).BatchEmbed(context.Background(), []string{"a"}); err == nil {
		t.Fatal("expected error")
	}
}

func TestInstrumentedEmbedder_BatchEmbed_FallbackToSingle(t *testing.T) {
	inner := &plainEmbedder{}
	res, err := NewInstrumentedEmbedder(inner, "test", "m", nil).BatchEmbed(context.Background(), []string{"a", "b", "c"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inner.calls != 3 {
		t.Errorf("Embed calls = %d, want 3", inner.calls)
	}
	if len(res.Embeddings) != 3 || res.TotalTokens != 6 {
		t.Errorf("unexpected result: %+v", res)
	}
}

func TestInstrumentedEmbedder_HealthCheck(t *testing.T) {
	boom := errors.New("unreachable")
	if err := NewInstrumentedEmbedder(&mockEmbedder{healthErr: boom}, "t", "m", nil).HealthCheck(context.Background()); !errors.Is(err, boom) {
		t.Errorf("expected wrapped health error, got %v", err)
	}
	if err := NewInstrumentedEmbedder(&plainEmbedder{}, "t", "m", nil).HealthCheck(context.Background()); err != nil {
		t.Errorf("embedder without health check must report healthy, got %v", err)
	}
}
