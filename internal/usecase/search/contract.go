package search

import (
	"context"

	"github.com/kailas-cloud/redisvec/internal/domain/schema"
	"github.com/kailas-cloud/redisvec/internal/domain/search/query"
	"github.com/kailas-cloud/redisvec/internal/domain/search/relevance"
	"github.com/kailas-cloud/redisvec/internal/domain/search/result"
)

// Repository executes built queries and translates the hits.
type Repository interface {
	Search(ctx context.Context, desc schema.IndexDescriptor, q query.Query, rel relevance.Func) ([]result.Result, error)
}

// RangeSupport reports whether the server accepts VECTOR_RANGE queries.
type RangeSupport interface {
	SupportsVectorRange() bool
}
