// Package relevance maps raw engine distances to caller-facing relevance scores.
package relevance

import "github.com/kailas-cloud/redisvec/internal/domain/schema"

// Func converts a raw distance into a relevance score.
type Func func(distance float64) float64

// Cosine maps cosine distance in [0,2] to relevance in [1,-1].
func Cosine(distance float64) float64 { return 1 - distance }

// InnerProduct returns the negated IP distance. The engine reports IP distance as
// 1 - dot product, so the result is dot - 1 and grows with similarity.
func InnerProduct(distance float64) float64 { return -distance }

// Euclidean maps L2 distance in [0,inf) to relevance in (0,1].
func Euclidean(distance float64) float64 { return 1 / (1 + distance) }

// Default is used for metrics without a dedicated mapping.
func Default(distance float64) float64 { return 1 - distance }

// ForMetric selects the mapping for m. Call once when binding a schema, not per result.
func ForMetric(m schema.Metric) Func {
	switch m {
	case schema.Cosine:
		return Cosine
	case schema.IP:
		return InnerProduct
	case schema.L2:
		return Euclidean
	default:
		return Default
	}
}

// Select returns override when set, otherwise the metric mapping.
func Select(m schema.Metric, override Func) Func {
	if override != nil {
		return override
	}
	return ForMetric(m)
}
