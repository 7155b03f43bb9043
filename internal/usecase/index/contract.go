package index

import (
	"context"

	"github.com/kailas-cloud/redisvec/internal/domain/schema"
)

// Repository defines the storage contract for index lifecycle.
type Repository interface {
	Create(ctx context.Context, desc schema.IndexDescriptor) (created bool, err error)
	Drop(ctx context.Context, name string, deleteDocuments bool) (dropped bool, err error)
	Exists(ctx context.Context, name string) (bool, error)
	Dimensions(ctx context.Context, name, vectorField string) (int, error)
}
