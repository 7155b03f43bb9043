package document

import (
	"context"

	"github.com/kailas-cloud/redisvec/internal/domain"
)

// Repository removes records by key.
type Repository interface {
	Delete(ctx context.Context, keys []string) (domain.DeleteOutcome, error)
}
