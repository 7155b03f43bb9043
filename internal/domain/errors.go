package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrConnection signals an unreachable engine or a missing required server module.
	ErrConnection = errors.New("connection error")
	// ErrValidation signals malformed caller input, raised before any network call.
	ErrValidation = errors.New("validation error")
	// ErrConfiguration signals an unsupported or inconsistent schema/index setup.
	ErrConfiguration = errors.New("configuration error")

	// ErrDimensionMismatch signals a vector whose length differs from the bound schema.
	ErrDimensionMismatch = fmt.Errorf("%w: vector dimension mismatch", ErrConfiguration)
	// ErrRangeQueryUnsupported signals a server without VECTOR_RANGE support.
	ErrRangeQueryUnsupported = fmt.Errorf("%w: range queries not supported by server", ErrConfiguration)
	// ErrIndexNotFound signals that a required index does not exist.
	ErrIndexNotFound = fmt.Errorf("%w: index not found", ErrConfiguration)
	// ErrSchemaNotBound signals an operation that needs a finalized vector dimension.
	ErrSchemaNotBound = fmt.Errorf("%w: vector schema has no dimension yet", ErrConfiguration)

	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
)

// DimensionError wraps ErrDimensionMismatch with the offending sizes.
type DimensionError struct {
	Want int
	Got  int
}

func (e *DimensionError) Error() string {
	return fmt.Sprintf("%s: want %d, got %d", ErrDimensionMismatch.Error(), e.Want, e.Got)
}

func (e *DimensionError) Unwrap() error { return ErrDimensionMismatch }

// NewDimensionError creates a dimension mismatch error.
func NewDimensionError(want, got int) error {
	return &DimensionError{Want: want, Got: got}
}
