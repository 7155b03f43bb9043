package redisvec

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/redisvec/internal/domain"
)

// SearchType selects how a Retriever queries the store.
type SearchType string

const (
	// SearchSimilarity returns the k nearest records.
	SearchSimilarity SearchType = "similarity"
	// SearchSimilarityLimit returns up to k records within the distance threshold.
	SearchSimilarityLimit SearchType = "similarity_limit"
)

// Retriever defaults.
const (
	DefaultRetrieverK        = 4
	DefaultDistanceThreshold = 0.4
	DefaultSearchType        = SearchSimilarity
)

// Retriever adapts a Store to "query in, documents out".
type Retriever struct {
	store      *Store
	searchType SearchType
	k          int
	threshold  float64
	filter     Filter
}

// RetrieverOption configures a Retriever.
type RetrieverOption func(*Retriever)

// WithSearchType selects similarity or similarity_limit.
func WithSearchType(t SearchType) RetrieverOption {
	return func(r *Retriever) { r.searchType = t }
}

// WithRetrieverK sets the number of documents returned.
func WithRetrieverK(k int) RetrieverOption {
	return func(r *Retriever) { r.k = k }
}

// WithDistanceThreshold sets the distance limit of similarity_limit searches.
func WithDistanceThreshold(t float64) RetrieverOption {
	return func(r *Retriever) { r.threshold = t }
}

// WithRetrieverFilter applies f to every query.
func WithRetrieverFilter(f Filter) RetrieverOption {
	return func(r *Retriever) { r.filter = f }
}

// AsRetriever builds a Retriever over s. An unknown search type is a validation error.
func (s *Store) AsRetriever(opts ...RetrieverOption) (*Retriever, error) {
	r := &Retriever{
		store:      s,
		searchType: DefaultSearchType,
		k:          DefaultRetrieverK,
		threshold:  DefaultDistanceThreshold,
	}
	for _, opt := range opts {
		opt(r)
	}

	switch r.searchType {
	case SearchSimilarity, SearchSimilarityLimit:
	default:
		return nil, fmt.Errorf("%w: unknown search type %q (want %s or %s)",
			domain.ErrValidation, r.searchType, SearchSimilarity, SearchSimilarityLimit)
	}
	if r.k < 0 {
		return nil, fmt.Errorf("%w: k must not be negative, got %d", domain.ErrValidation, r.k)
	}
	return r, nil
}

// SearchType returns the configured search type.
func (r *Retriever) SearchType() SearchType { return r.searchType }

// GetRelevantDocuments returns the documents relevant to query.
func (r *Retriever) GetRelevantDocuments(ctx context.Context, query string) ([]Document, error) {
	opts := []SearchOption{WithK(r.k), WithFilter(r.filter)}
	if r.searchType == SearchSimilarityLimit {
		return r.store.SimilaritySearchLimitScore(ctx, query, r.threshold, opts...)
	}
	return r.store.SimilaritySearch(ctx, query, opts...)
}
