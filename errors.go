package redisvec

import "github.com/kailas-cloud/redisvec/internal/domain"

// Sentinel errors returned by Store operations. Use errors.Is to check.
var (
	ErrConnection            = domain.ErrConnection
	ErrValidation            = domain.ErrValidation
	ErrConfiguration         = domain.ErrConfiguration
	ErrDimensionMismatch     = domain.ErrDimensionMismatch
	ErrRangeQueryUnsupported = domain.ErrRangeQueryUnsupported
	ErrIndexNotFound         = domain.ErrIndexNotFound
	ErrSchemaNotBound        = domain.ErrSchemaNotBound
	ErrEmbeddingProvider     = domain.ErrEmbeddingProviderError
)

// DimensionError carries the expected and actual sizes of a mismatched vector.
type DimensionError = domain.DimensionError
