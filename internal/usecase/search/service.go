package search

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/redisvec/internal/domain"
	"github.com/kailas-cloud/redisvec/internal/domain/schema"
	"github.com/kailas-cloud/redisvec/internal/domain/search/filter"
	"github.com/kailas-cloud/redisvec/internal/domain/search/query"
	"github.com/kailas-cloud/redisvec/internal/domain/search/relevance"
	"github.com/kailas-cloud/redisvec/internal/domain/search/result"
	"github.com/kailas-cloud/redisvec/internal/metrics"
)

// Request holds the query-independent search knobs. A nil ScoreThreshold selects top-K mode;
// otherwise hits are limited to distance <= *ScoreThreshold and capped at K.
type Request struct {
	K              int
	ScoreThreshold *float64
	Filter         filter.Expression
}

// Service runs similarity searches: embed, build, execute, score.
type Service struct {
	repo   Repository
	caps   RangeSupport
	embed  domain.Embedder
	logger *zap.Logger
}

// New creates a search service. embed may be nil when only vector search is used.
func New(repo Repository, caps RangeSupport, embed domain.Embedder, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repo: repo, caps: caps, embed: embed, logger: logger}
}

// SearchByText embeds text and runs SearchByVector.
func (s *Service) SearchByText(
	ctx context.Context, desc schema.IndexDescriptor, text string, req Request, rel relevance.Func,
) ([]result.Result, error) {
	if s.embed == nil {
		return nil, fmt.Errorf("%w: no embedder configured", domain.ErrConfiguration)
	}
	if err := s.precheck(desc, req); err != nil {
		return nil, err
	}

	emb, err := s.embed.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("%w: embed query: %w", domain.ErrEmbeddingProviderError, err)
	}
	return s.SearchByVector(ctx, desc, emb.Embedding, req, rel)
}

// SearchByVector builds and executes the query for vector and scores every hit with rel.
// Results keep engine order (ascending distance).
func (s *Service) SearchByVector(
	ctx context.Context, desc schema.IndexDescriptor, vector []float32, req Request, rel relevance.Func,
) ([]result.Result, error) {
	if err := s.precheck(desc, req); err != nil {
		return nil, err
	}
	if rel == nil {
		rel = relevance.ForMetric(desc.Vector().Metric())
	}

	q, err := query.NewBuilder(desc).Build(query.Request{
		Vector:         vector,
		K:              req.K,
		ScoreThreshold: req.ScoreThreshold,
		Filter:         req.Filter.String(),
	})
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	kind := q.Kind.String()
	start := time.Now()
	results, err := s.repo.Search(ctx, desc, q, rel)
	metrics.SearchDuration.WithLabelValues(desc.IndexName(), kind).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.SearchRequestsTotal.WithLabelValues(desc.IndexName(), kind, metrics.StatusError).Inc()
		return nil, fmt.Errorf("execute query: %w", err)
	}
	metrics.SearchRequestsTotal.WithLabelValues(desc.IndexName(), kind, metrics.StatusOK).Inc()
	metrics.SearchResultsReturned.WithLabelValues(desc.IndexName(), kind).Observe(float64(len(results)))

	s.logger.Debug("Search completed",
		zap.String("index", desc.IndexName()),
		zap.String("kind", kind),
		zap.Int("k", req.K),
		zap.Int("hits", len(results)),
		zap.Duration("duration", time.Since(start)),
	)
	return results, nil
}

// precheck rejects requests that cannot succeed before any embedding or network call.
func (s *Service) precheck(desc schema.IndexDescriptor, req Request) error {
	if req.K < 0 {
		return fmt.Errorf("%w: k must not be negative, got %d", domain.ErrValidation, req.K)
	}
	if err := req.Filter.Validate(desc.Metadata()); err != nil {
		return fmt.Errorf("filter: %w", err)
	}
	if req.ScoreThreshold != nil && (s.caps == nil || !s.caps.SupportsVectorRange()) {
		return domain.ErrRangeQueryUnsupported
	}
	return nil
}
