// Package langchain adapts redisvec to langchaingo: a Store becomes a vectorstores.VectorStore
// and embedders convert in both directions.
package langchain

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"strings"

	"github.com/tmc/langchaingo/schema"
	"github.com/tmc/langchaingo/vectorstores"

	"github.com/kailas-cloud/redisvec"
)

// Compile-time check: VectorStore implements vectorstores.VectorStore.
var _ vectorstores.VectorStore = (*VectorStore)(nil)

// ErrUnsupportedOption is returned for langchaingo options the store cannot honor.
var ErrUnsupportedOption = errors.New("unsupported vector store option")

// VectorStore exposes a redisvec.Store through the langchaingo interface.
type VectorStore struct {
	store *redisvec.Store
}

// NewVectorStore wraps store. The store keeps its own embedder; a per-call
// vectorstores.WithEmbedder overrides it.
func NewVectorStore(store *redisvec.Store) *VectorStore {
	return &VectorStore{store: store}
}

// Store returns the wrapped store.
func (v *VectorStore) Store() *redisvec.Store { return v.store }

// AddDocuments stores docs and returns their keys. A string "id" metadata value under the
// store's key prefix is used as the key; other "id" values are dropped.
func (v *VectorStore) AddDocuments(
	ctx context.Context, docs []schema.Document, options ...vectorstores.Option,
) ([]string, error) {
	opts, err := parseOptions(options)
	if err != nil {
		return nil, err
	}

	prefix := v.store.KeyPrefix() + ":"
	texts := make([]string, 0, len(docs))
	metadatas := make([]map[string]any, 0, len(docs))
	keys := make([]string, 0, len(docs))
	for _, doc := range docs {
		meta := maps.Clone(doc.Metadata)
		key := ""
		if id, ok := meta["id"].(string); ok && strings.HasPrefix(id, prefix) {
			key = id
		}
		delete(meta, "id")

		texts = append(texts, doc.PageContent)
		metadatas = append(metadatas, meta)
		keys = append(keys, key)
	}
	if len(texts) == 0 {
		return nil, fmt.Errorf("%w: no documents to add", redisvec.ErrValidation)
	}

	addOpts := []redisvec.AddOption{redisvec.WithMetadatas(metadatas), redisvec.WithKeys(keys)}
	if opts.Embedder != nil {
		vectors, err := opts.Embedder.EmbedDocuments(ctx, texts)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", redisvec.ErrEmbeddingProvider, err)
		}
		addOpts = append(addOpts, redisvec.WithVectors(vectors))
	}
	return v.store.AddTexts(ctx, texts, addOpts...)
}

// SimilaritySearch returns up to numDocuments documents closest to query. Document.Score
// carries the relevance score; vectorstores.WithScoreThreshold drops hits below it.
// Filters may be a redisvec.Filter or a redisvec.FilterSpec (value or pointer).
func (v *VectorStore) SimilaritySearch(
	ctx context.Context, query string, numDocuments int, options ...vectorstores.Option,
) ([]schema.Document, error) {
	opts, err := parseOptions(options)
	if err != nil {
		return nil, err
	}

	f, err := v.filter(opts.Filters)
	if err != nil {
		return nil, err
	}
	searchOpts := []redisvec.SearchOption{redisvec.WithK(numDocuments), redisvec.WithFilter(f)}
	if opts.ScoreThreshold > 0 {
		searchOpts = append(searchOpts, redisvec.WithRelevanceThreshold(float64(opts.ScoreThreshold)))
	}

	var hits []redisvec.ScoredDocument
	if opts.Embedder != nil {
		vector, err := opts.Embedder.EmbedQuery(ctx, query)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", redisvec.ErrEmbeddingProvider, err)
		}
		hits, err = v.store.SimilaritySearchByVector(ctx, vector, searchOpts...)
		if err != nil {
			return nil, err
		}
		hits = aboveThreshold(hits, opts.ScoreThreshold)
	} else {
		hits, err = v.store.SimilaritySearchWithRelevanceScores(ctx, query, searchOpts...)
		if err != nil {
			return nil, err
		}
	}

	out := make([]schema.Document, len(hits))
	for i, h := range hits {
		out[i] = schema.Document{
			PageContent: h.Content,
			Metadata:    h.Metadata,
			Score:       float32(h.Relevance),
		}
	}
	return out, nil
}

func (v *VectorStore) filter(raw any) (redisvec.Filter, error) {
	switch f := raw.(type) {
	case nil:
		return redisvec.Filter{}, nil
	case redisvec.Filter:
		return f, nil
	case redisvec.FilterSpec:
		return v.store.CompileFilter(&f)
	case *redisvec.FilterSpec:
		return v.store.CompileFilter(f)
	default:
		return redisvec.Filter{}, fmt.Errorf("%w: filters of type %T", ErrUnsupportedOption, raw)
	}
}

func parseOptions(options []vectorstores.Option) (vectorstores.Options, error) {
	var opts vectorstores.Options
	for _, o := range options {
		o(&opts)
	}
	if opts.NameSpace != "" {
		return opts, fmt.Errorf("%w: namespace %q (one store is one index)", ErrUnsupportedOption, opts.NameSpace)
	}
	if opts.ScoreThreshold < 0 || opts.ScoreThreshold > 1 {
		return opts, fmt.Errorf("%w: score threshold must be in [0, 1], got %v", redisvec.ErrValidation, opts.ScoreThreshold)
	}
	return opts, nil
}

func aboveThreshold(hits []redisvec.ScoredDocument, threshold float32) []redisvec.ScoredDocument {
	if threshold <= 0 {
		return hits
	}
	kept := hits[:0]
	for _, h := range hits {
		if h.Relevance >= float64(threshold) {
			kept = append(kept, h)
		}
	}
	return kept
}
