package schema

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/redisvec/internal/domain"
)

// Algorithm is the vector index algorithm.
type Algorithm string

// Supported algorithms.
const (
	Flat Algorithm = "FLAT"
	HNSW Algorithm = "HNSW"
)

// Metric is the distance metric the engine computes.
type Metric string

// Supported metrics.
const (
	Cosine Metric = "COSINE"
	IP     Metric = "IP"
	L2     Metric = "L2"
)

// Datatype is the element type of stored vectors.
type Datatype string

// Supported datatypes.
const (
	Float32 Datatype = "FLOAT32"
	Float64 Datatype = "FLOAT64"
)

// Defaults for the vector field skeleton.
const (
	DefaultVectorFieldName = "content_vector"
	DefaultMetric          = Cosine
	DefaultAlgorithm       = Flat
	DefaultDatatype        = Float32
)

// ParseAlgorithm parses an algorithm tag case-insensitively.
func ParseAlgorithm(s string) (Algorithm, error) {
	switch a := Algorithm(strings.ToUpper(strings.TrimSpace(s))); a {
	case Flat, HNSW:
		return a, nil
	default:
		return "", fmt.Errorf("%w: unknown vector algorithm %q", domain.ErrConfiguration, s)
	}
}

// ParseMetric parses a distance metric case-insensitively.
func ParseMetric(s string) (Metric, error) {
	switch m := Metric(strings.ToUpper(strings.TrimSpace(s))); m {
	case Cosine, IP, L2:
		return m, nil
	default:
		return "", fmt.Errorf("%w: unknown distance metric %q", domain.ErrConfiguration, s)
	}
}

// ParseDatatype parses a vector datatype case-insensitively.
func ParseDatatype(s string) (Datatype, error) {
	switch d := Datatype(strings.ToUpper(strings.TrimSpace(s))); d {
	case Float32, Float64:
		return d, nil
	default:
		return "", fmt.Errorf("%w: unknown vector datatype %q", domain.ErrConfiguration, s)
	}
}

// Size returns the encoded size of one element in bytes.
func (d Datatype) Size() int {
	if d == Float64 {
		return 8
	}
	return 4
}

// HNSWParams are graph construction and query-time parameters for HNSW.
// M and EFConstruction are required; zero means absent.
type HNSWParams struct {
	M              int
	EFConstruction int
	EFRuntime      int
	Epsilon        float64
}

// NewHNSWParams returns commonly used HNSW defaults.
func NewHNSWParams() HNSWParams {
	return HNSWParams{M: 16, EFConstruction: 200, EFRuntime: 10, Epsilon: 0.01}
}

// FlatParams tune the brute-force index.
type FlatParams struct {
	BlockSize  int
	InitialCap int
}

// VectorField is a vector field declaration whose dimension is not yet known.
// Call Finalize once the embedding size is known.
type VectorField struct {
	Name      string
	Algorithm Algorithm
	Metric    Metric
	Datatype  Datatype
	HNSW      HNSWParams
	Flat      FlatParams
}

// NewVectorField returns a skeleton with the default name, metric, algorithm and datatype.
func NewVectorField() VectorField {
	return VectorField{
		Name:      DefaultVectorFieldName,
		Algorithm: DefaultAlgorithm,
		Metric:    DefaultMetric,
		Datatype:  DefaultDatatype,
		HNSW:      NewHNSWParams(),
	}
}

// Finalize validates the skeleton and binds it to dims.
func (f VectorField) Finalize(dims int) (BoundVectorField, error) {
	if dims <= 0 {
		return BoundVectorField{}, fmt.Errorf("%w: vector dimension must be positive, got %d", domain.ErrConfiguration, dims)
	}
	if f.Name == "" {
		return BoundVectorField{}, fmt.Errorf("%w: vector field name is required", domain.ErrConfiguration)
	}
	if !IsValidName(f.Name) {
		return BoundVectorField{}, fmt.Errorf("%w: invalid vector field name %q", domain.ErrConfiguration, f.Name)
	}

	algo, err := ParseAlgorithm(string(f.Algorithm))
	if err != nil {
		return BoundVectorField{}, err
	}
	metric, err := ParseMetric(string(f.Metric))
	if err != nil {
		return BoundVectorField{}, err
	}
	dtype, err := ParseDatatype(string(f.Datatype))
	if err != nil {
		return BoundVectorField{}, err
	}

	if algo == HNSW {
		var missing []string
		if f.HNSW.M <= 0 {
			missing = append(missing, "M")
		}
		if f.HNSW.EFConstruction <= 0 {
			missing = append(missing, "EF_CONSTRUCTION")
		}
		if len(missing) > 0 {
			return BoundVectorField{}, fmt.Errorf("%w: HNSW requires %s",
				domain.ErrConfiguration, strings.Join(missing, ", "))
		}
	}

	f.Algorithm, f.Metric, f.Datatype = algo, metric, dtype
	return BoundVectorField{field: f, dims: dims}, nil
}

// BoundVectorField is a finalized vector field with a fixed dimension.
type BoundVectorField struct {
	field VectorField
	dims  int
}

// Name returns the hash field name holding the vector.
func (b BoundVectorField) Name() string { return b.field.Name }

// Dims returns the fixed dimension.
func (b BoundVectorField) Dims() int { return b.dims }

// Metric returns the distance metric.
func (b BoundVectorField) Metric() Metric { return b.field.Metric }

// Algorithm returns the index algorithm.
func (b BoundVectorField) Algorithm() Algorithm { return b.field.Algorithm }

// Datatype returns the element type.
func (b BoundVectorField) Datatype() Datatype { return b.field.Datatype }

// Skeleton returns the declaration this field was finalized from.
func (b BoundVectorField) Skeleton() VectorField { return b.field }

// IsZero reports whether b was never finalized.
func (b BoundVectorField) IsZero() bool { return b.dims == 0 }

// CheckVector returns a dimension error when v does not match the bound size.
func (b BoundVectorField) CheckVector(v []float32) error {
	if len(v) != b.dims {
		return domain.NewDimensionError(b.dims, len(v))
	}
	return nil
}
