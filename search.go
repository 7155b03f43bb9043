package redisvec

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/redisvec/internal/domain"
	"github.com/kailas-cloud/redisvec/internal/domain/search/filter"
	searchuc "github.com/kailas-cloud/redisvec/internal/usecase/search"
)

// DefaultK is the number of hits returned when WithK is not given.
const DefaultK = 4

// SearchOption configures one search call.
type SearchOption func(*searchOptions)

type searchOptions struct {
	k                  int
	filter             filter.Expression
	relevanceThreshold *float64
}

func newSearchOptions(opts []SearchOption) searchOptions {
	o := searchOptions{k: DefaultK}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithK sets the maximum number of hits.
func WithK(k int) SearchOption {
	return func(o *searchOptions) { o.k = k }
}

// WithFilter restricts candidates to records matching f.
func WithFilter(f Filter) SearchOption {
	return func(o *searchOptions) { o.filter = f }
}

// WithRelevanceThreshold drops hits whose relevance is below t.
// Only SimilaritySearchWithRelevanceScores honors it.
func WithRelevanceThreshold(t float64) SearchOption {
	return func(o *searchOptions) { o.relevanceThreshold = &t }
}

// SimilaritySearch returns the k records closest to query.
func (s *Store) SimilaritySearch(ctx context.Context, query string, opts ...SearchOption) ([]Document, error) {
	hits, err := s.searchText(ctx, "search.similarity", query, nil, newSearchOptions(opts))
	if err != nil {
		return nil, err
	}
	return toDocuments(hits), nil
}

// SimilaritySearchWithScore returns the k records closest to query with their distances.
// Smaller distances are closer.
func (s *Store) SimilaritySearchWithScore(
	ctx context.Context, query string, opts ...SearchOption,
) ([]ScoredDocument, error) {
	return s.searchText(ctx, "search.with_score", query, nil, newSearchOptions(opts))
}

// SimilaritySearchWithRelevanceScores is SimilaritySearchWithScore with hits below
// WithRelevanceThreshold removed. Larger relevance is closer.
func (s *Store) SimilaritySearchWithRelevanceScores(
	ctx context.Context, query string, opts ...SearchOption,
) ([]ScoredDocument, error) {
	o := newSearchOptions(opts)
	hits, err := s.searchText(ctx, "search.with_relevance", query, nil, o)
	if err != nil || o.relevanceThreshold == nil {
		return hits, err
	}

	kept := hits[:0]
	for _, h := range hits {
		if h.Relevance >= *o.relevanceThreshold {
			kept = append(kept, h)
		}
	}
	if len(kept) == 0 {
		s.logger.Debug("No hits above relevance threshold",
			zap.Float64("threshold", *o.relevanceThreshold),
			zap.Int("candidates", len(hits)),
		)
	}
	return kept, nil
}

// SimilaritySearchLimitScore returns up to k records whose distance to query is at most
// threshold. It needs a server with VECTOR_RANGE support; see SupportsRangeQueries.
func (s *Store) SimilaritySearchLimitScore(
	ctx context.Context, query string, threshold float64, opts ...SearchOption,
) ([]Document, error) {
	hits, err := s.searchText(ctx, "search.limit_score", query, &threshold, newSearchOptions(opts))
	if err != nil {
		return nil, err
	}
	return toDocuments(hits), nil
}

// SimilaritySearchByVector returns the k records closest to vector.
func (s *Store) SimilaritySearchByVector(
	ctx context.Context, vector []float32, opts ...SearchOption,
) (hits []ScoredDocument, err error) {
	start := time.Now()
	defer func() { s.obs.observe("search.by_vector", start, err) }()

	o := newSearchOptions(opts)
	desc, err := s.binding.Descriptor(ctx)
	if err != nil {
		return nil, err
	}
	results, err := s.search.SearchByVector(ctx, desc, vector, s.request(o, nil), s.relevance)
	if err != nil {
		return nil, err
	}
	return toScored(results), nil
}

func (s *Store) searchText(
	ctx context.Context, op, query string, threshold *float64, o searchOptions,
) (hits []ScoredDocument, err error) {
	start := time.Now()
	defer func() { s.obs.observe(op, start, err) }()

	if s.embed == nil {
		return nil, fmt.Errorf("%w: no embedder configured", domain.ErrConfiguration)
	}
	desc, err := s.binding.Descriptor(ctx)
	if err != nil {
		return nil, err
	}
	results, err := s.search.SearchByText(ctx, desc, query, s.request(o, threshold), s.relevance)
	if err != nil {
		return nil, err
	}
	return toScored(results), nil
}

func (s *Store) request(o searchOptions, threshold *float64) searchuc.Request {
	return searchuc.Request{K: o.k, ScoreThreshold: threshold, Filter: o.filter}
}
