package document

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/redisvec/internal/db"
	"github.com/kailas-cloud/redisvec/internal/domain"
	domdoc "github.com/kailas-cloud/redisvec/internal/domain/document"
	"github.com/kailas-cloud/redisvec/internal/domain/schema"
)

// store is the consumer interface for documents (ISP).
type store interface {
	HSetMulti(ctx context.Context, items []db.HashSetItem) error
	Del(ctx context.Context, keys ...string) (int64, error)
}

// Repo implements usecase/ingest.Writer and usecase/document.Repository.
type Repo struct {
	store store
}

// New creates a document repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// WriteBatch stores docs as hashes in one pipelined round trip.
// Every document is encoded before anything is sent; an encoding failure writes nothing.
func (r *Repo) WriteBatch(ctx context.Context, desc schema.IndexDescriptor, docs []domdoc.Document) error {
	if len(docs) == 0 {
		return nil
	}

	items := make([]db.HashSetItem, 0, len(docs))
	for i := range docs {
		fields, err := buildHashFields(desc, &docs[i])
		if err != nil {
			return err
		}
		items = append(items, db.HashSetItem{Key: docs[i].Key(), Fields: fields})
	}

	if err := r.store.HSetMulti(ctx, items); err != nil {
		return fmt.Errorf("hset batch of %d into %s: %w", len(items), desc.IndexName(), err)
	}
	return nil
}

// Delete removes records by key. Deleted means at least one key existed.
func (r *Repo) Delete(ctx context.Context, keys []string) (domain.DeleteOutcome, error) {
	if len(keys) == 0 {
		return domain.NotFound, nil
	}
	n, err := r.store.Del(ctx, keys...)
	if err != nil {
		return domain.NotFound, fmt.Errorf("del %d keys: %w", len(keys), err)
	}
	return domain.OutcomeFromCount(n), nil
}
