package index

import (
	"fmt"

	"github.com/kailas-cloud/redisvec/internal/db"
	"github.com/kailas-cloud/redisvec/internal/domain/schema"
)

// buildIndex renders the FT.CREATE definition: content TEXT, the vector field, then metadata
// fields in declaration order, over hashes under the descriptor's key prefix.
func buildIndex(desc schema.IndexDescriptor) (*db.IndexDefinition, error) {
	b := db.NewIndex(desc.IndexName()).
		Prefix(desc.KeyPrefix()).
		Text(desc.ContentField()).
		Field(vectorField(desc.Vector()))

	for _, f := range desc.Metadata().Fields() {
		switch f.Kind {
		case schema.Tag:
			b.Field(db.IndexField{Name: f.Name, Type: db.IndexFieldTag, TagSeparator: schema.TagSeparator})
		case schema.Numeric:
			b.Numeric(f.Name)
		case schema.Text:
			b.Text(f.Name)
		default:
			return nil, fmt.Errorf("unknown metadata kind %q for field %s", f.Kind, f.Name)
		}
	}

	return b.Build()
}

// vectorField maps a finalized vector declaration to its engine field.
func vectorField(v schema.BoundVectorField) db.IndexField {
	sk := v.Skeleton()
	f := db.IndexField{
		Name:           v.Name(),
		Type:           db.IndexFieldVector,
		VectorAlgo:     db.VectorAlgorithm(v.Algorithm()),
		VectorType:     db.VectorType(v.Datatype()),
		VectorDim:      v.Dims(),
		VectorDistance: db.DistanceMetric(v.Metric()),
	}
	switch v.Algorithm() {
	case schema.HNSW:
		f.VectorM = sk.HNSW.M
		f.VectorEFConstruct = sk.HNSW.EFConstruction
		f.VectorEFRuntime = sk.HNSW.EFRuntime
		f.VectorEpsilon = sk.HNSW.Epsilon
	case schema.Flat:
		f.VectorBlockSize = sk.Flat.BlockSize
		f.VectorInitialCap = sk.Flat.InitialCap
	}
	return f
}
