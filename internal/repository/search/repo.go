package search

import (
	"context"
	"errors"
	"fmt"

	"github.com/kailas-cloud/redisvec/internal/db"
	"github.com/kailas-cloud/redisvec/internal/domain"
	"github.com/kailas-cloud/redisvec/internal/domain/schema"
	"github.com/kailas-cloud/redisvec/internal/domain/search/query"
	"github.com/kailas-cloud/redisvec/internal/domain/search/relevance"
	"github.com/kailas-cloud/redisvec/internal/domain/search/result"
)

// store is the consumer interface for search operations (ISP).
type store interface {
	Search(ctx context.Context, req *db.SearchRequest) (*db.SearchResult, error)
}

// Repo implements usecase/search.Repository.
type Repo struct {
	store store
}

// New creates a search repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// Search executes a built query against desc's index and scores every hit with rel.
func (r *Repo) Search(
	ctx context.Context, desc schema.IndexDescriptor, q query.Query, rel relevance.Func,
) ([]result.Result, error) {
	req := &db.SearchRequest{
		IndexName:    desc.IndexName(),
		Query:        q.Text,
		Params:       q.Params,
		ReturnFields: q.ReturnFields,
		SortBy:       q.SortBy,
		SortDesc:     !q.SortAsc,
		Offset:       q.Offset,
		Limit:        q.Limit,
		Dialect:      q.Dialect,
	}

	sr, err := r.store.Search(ctx, req)
	if err != nil {
		if errors.Is(err, db.ErrIndexNotFound) {
			return nil, fmt.Errorf("%w: %s", domain.ErrIndexNotFound, desc.IndexName())
		}
		return nil, fmt.Errorf("search %s %s: %w", q.Kind, desc.IndexName(), err)
	}
	return translate(desc, sr, rel)
}
