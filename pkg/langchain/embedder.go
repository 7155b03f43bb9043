package langchain

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/embeddings"

	"github.com/kailas-cloud/redisvec"
)

// Embedder lets a langchaingo embedder serve as a redisvec.Embedder. Batches go through
// EmbedDocuments in one call.
type Embedder struct {
	inner embeddings.Embedder
}

// Compile-time checks.
var (
	_ redisvec.Embedder      = (*Embedder)(nil)
	_ redisvec.BatchEmbedder = (*Embedder)(nil)
	_ embeddings.Embedder    = (*langchainEmbedder)(nil)
)

// FromLangchain wraps a langchaingo embedder.
func FromLangchain(e embeddings.Embedder) *Embedder {
	return &Embedder{inner: e}
}

// Embed embeds one text as a query.
func (e *Embedder) Embed(ctx context.Context, text string) (redisvec.EmbeddingResult, error) {
	v, err := e.inner.EmbedQuery(ctx, text)
	if err != nil {
		return redisvec.EmbeddingResult{}, err
	}
	return redisvec.EmbeddingResult{Embedding: v}, nil
}

// BatchEmbed embeds texts as documents.
func (e *Embedder) BatchEmbed(ctx context.Context, texts []string) (redisvec.BatchEmbeddingResult, error) {
	vs, err := e.inner.EmbedDocuments(ctx, texts)
	if err != nil {
		return redisvec.BatchEmbeddingResult{}, err
	}
	return redisvec.BatchEmbeddingResult{Embeddings: vs}, nil
}

// ToLangchain exposes a redisvec.Embedder as a langchaingo embedder.
func ToLangchain(e redisvec.Embedder) embeddings.Embedder {
	return &langchainEmbedder{inner: e}
}

type langchainEmbedder struct {
	inner redisvec.Embedder
}

func (l *langchainEmbedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	if be, ok := l.inner.(redisvec.BatchEmbedder); ok {
		res, err := be.BatchEmbed(ctx, texts)
		if err != nil {
			return nil, err
		}
		if len(res.Embeddings) != len(texts) {
			return nil, fmt.Errorf("%w: batch returned %d embeddings for %d texts",
				redisvec.ErrEmbeddingProvider, len(res.Embeddings), len(texts))
		}
		return res.Embeddings, nil
	}

	out := make([][]float32, len(texts))
	for i, text := range texts {
		res, err := l.inner.Embed(ctx, text)
		if err != nil {
			return nil, fmt.Errorf("embed [%d]: %w", i, err)
		}
		out[i] = res.Embedding
	}
	return out, nil
}

func (l *langchainEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	res, err := l.inner.Embed(ctx, text)
	if err != nil {
		return nil, err
	}
	return res.Embedding, nil
}
