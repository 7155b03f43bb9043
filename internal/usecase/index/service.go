package index

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/redisvec/internal/domain"
	"github.com/kailas-cloud/redisvec/internal/domain/schema"
	"github.com/kailas-cloud/redisvec/internal/metrics"
)

// Service manages index lifecycle: idempotent create, drop, existence and dimension probes.
type Service struct {
	repo   Repository
	logger *zap.Logger
}

// New creates an index service. A nil logger disables logging.
func New(repo Repository, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repo: repo, logger: logger}
}

// Create ensures the index described by desc exists. Calling it for an existing index is a no-op.
func (s *Service) Create(ctx context.Context, desc schema.IndexDescriptor) error {
	created, err := s.repo.Create(ctx, desc)
	if err != nil {
		metrics.IndexOperationsTotal.WithLabelValues("create", metrics.StatusError).Inc()
		return fmt.Errorf("create index: %w", err)
	}

	if !created {
		metrics.IndexOperationsTotal.WithLabelValues("create", "exists").Inc()
		s.logger.Debug("Index already exists", zap.String("index", desc.IndexName()))
		return nil
	}

	metrics.IndexOperationsTotal.WithLabelValues("create", "created").Inc()
	vec := desc.Vector()
	s.logger.Info("Index created",
		zap.String("index", desc.IndexName()),
		zap.String("prefix", desc.KeyPrefix()),
		zap.String("algorithm", string(vec.Algorithm())),
		zap.String("metric", string(vec.Metric())),
		zap.Int("dims", vec.Dims()),
		zap.Int("metadata_fields", desc.Metadata().Len()),
	)
	return nil
}

// Drop removes an index and optionally its documents. It reports false when the index did not exist.
func (s *Service) Drop(ctx context.Context, name string, deleteDocuments bool) (bool, error) {
	if !schema.IsValidName(name) {
		return false, fmt.Errorf("%w: invalid index name %q", domain.ErrValidation, name)
	}

	dropped, err := s.repo.Drop(ctx, name, deleteDocuments)
	if err != nil {
		metrics.IndexOperationsTotal.WithLabelValues("drop", metrics.StatusError).Inc()
		return false, fmt.Errorf("drop index: %w", err)
	}

	if !dropped {
		metrics.IndexOperationsTotal.WithLabelValues("drop", "not_found").Inc()
		s.logger.Debug("Index not found on drop", zap.String("index", name))
		return false, nil
	}

	metrics.IndexOperationsTotal.WithLabelValues("drop", "dropped").Inc()
	s.logger.Info("Index dropped", zap.String("index", name), zap.Bool("delete_documents", deleteDocuments))
	return true, nil
}

// Exists reports whether the index exists.
func (s *Service) Exists(ctx context.Context, name string) (bool, error) {
	ok, err := s.repo.Exists(ctx, name)
	if err != nil {
		return false, fmt.Errorf("check index: %w", err)
	}
	return ok, nil
}

// Require returns domain.ErrIndexNotFound when the index is absent.
func (s *Service) Require(ctx context.Context, name string) error {
	ok, err := s.Exists(ctx, name)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrIndexNotFound, name)
	}
	return nil
}

// Dimensions reads the vector dimension an existing index was created with.
func (s *Service) Dimensions(ctx context.Context, name, vectorField string) (int, error) {
	dims, err := s.repo.Dimensions(ctx, name, vectorField)
	if err != nil {
		return 0, fmt.Errorf("read index dimensions: %w", err)
	}
	return dims, nil
}
