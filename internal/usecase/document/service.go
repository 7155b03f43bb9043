package document

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/redisvec/internal/domain"
)

// Service deletes stored records.
type Service struct {
	repo   Repository
	logger *zap.Logger
}

// New creates a document service. A nil logger disables logging.
func New(repo Repository, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repo: repo, logger: logger}
}

// Delete removes the records under keys. Keys must be full record keys, prefix included.
// NotFound means none of them existed; remote failures propagate.
func (s *Service) Delete(ctx context.Context, keys []string) (domain.DeleteOutcome, error) {
	if len(keys) == 0 {
		return domain.NotFound, fmt.Errorf("%w: no keys to delete", domain.ErrValidation)
	}
	for i, k := range keys {
		if k == "" {
			return domain.NotFound, fmt.Errorf("%w: empty key at index %d", domain.ErrValidation, i)
		}
	}

	outcome, err := s.repo.Delete(ctx, keys)
	if err != nil {
		return domain.NotFound, fmt.Errorf("delete documents: %w", err)
	}

	s.logger.Debug("Documents deleted",
		zap.Int("keys", len(keys)),
		zap.Stringer("outcome", outcome),
	)
	return outcome, nil
}
