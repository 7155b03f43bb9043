package index

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/kailas-cloud/redisvec/internal/db"
	"github.com/kailas-cloud/redisvec/internal/domain"
	"github.com/kailas-cloud/redisvec/internal/domain/schema"
)

// store is the consumer interface for index lifecycle (ISP).
type store interface {
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	DropIndex(ctx context.Context, name string, deleteDocuments bool) error
	IndexExists(ctx context.Context, name string) (bool, error)
	IndexInfo(ctx context.Context, name string) (*db.IndexInfo, error)
}

// Repo implements usecase/index.Repository.
type Repo struct {
	store store
}

// New creates an index repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// Create issues FT.CREATE unless the index already exists. It reports whether this call
// created the index; losing a creation race to another client counts as "already existed".
func (r *Repo) Create(ctx context.Context, desc schema.IndexDescriptor) (bool, error) {
	exists, err := r.store.IndexExists(ctx, desc.IndexName())
	if err != nil {
		return false, fmt.Errorf("check index %s: %w", desc.IndexName(), err)
	}
	if exists {
		return false, nil
	}

	def, err := buildIndex(desc)
	if err != nil {
		return false, fmt.Errorf("%w: build index %s: %w", domain.ErrConfiguration, desc.IndexName(), err)
	}

	if err := r.store.CreateIndex(ctx, def); err != nil {
		if errors.Is(err, db.ErrIndexExists) {
			return false, nil
		}
		return false, fmt.Errorf("create index %s: %w", desc.IndexName(), err)
	}
	return true, nil
}

// Drop removes the index. An absent index yields false with no error.
func (r *Repo) Drop(ctx context.Context, name string, deleteDocuments bool) (bool, error) {
	if err := r.store.DropIndex(ctx, name, deleteDocuments); err != nil {
		if errors.Is(err, db.ErrIndexNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("drop index %s: %w", name, err)
	}
	return true, nil
}

// Exists reports whether the index exists.
func (r *Repo) Exists(ctx context.Context, name string) (bool, error) {
	exists, err := r.store.IndexExists(ctx, name)
	if err != nil {
		return false, fmt.Errorf("check index %s: %w", name, err)
	}
	return exists, nil
}

// Dimensions reads the DIM of vectorField from FT.INFO.
func (r *Repo) Dimensions(ctx context.Context, name, vectorField string) (int, error) {
	info, err := r.store.IndexInfo(ctx, name)
	if err != nil {
		if errors.Is(err, db.ErrIndexNotFound) {
			return 0, fmt.Errorf("%w: %s", domain.ErrIndexNotFound, name)
		}
		return 0, fmt.Errorf("index info %s: %w", name, err)
	}

	attr, ok := info.Attribute(vectorField)
	if !ok {
		return 0, fmt.Errorf("%w: index %s has no field %q", domain.ErrConfiguration, name, vectorField)
	}
	raw, ok := attr["dim"]
	if !ok {
		return 0, fmt.Errorf("%w: field %q of index %s is not a vector field", domain.ErrConfiguration, vectorField, name)
	}
	dims, err := strconv.Atoi(raw)
	if err != nil || dims <= 0 {
		return 0, fmt.Errorf("%w: index %s reports invalid dim %q", domain.ErrConfiguration, name, raw)
	}
	return dims, nil
}
