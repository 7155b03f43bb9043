package redis

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/redisvec/internal/db"
)

// CreateIndex creates an FT index from the given definition.
func (s *Store) CreateIndex(ctx context.Context, def *db.IndexDefinition) error {
	args, err := buildCreateArgs(def)
	if err != nil {
		return err
	}

	cmd := s.b().Arbitrary("FT.CREATE").Args(args...).Build()
	if err := s.do(ctx, cmd).Error(); err != nil {
		if isRedisErr(err, "index already exists") {
			return db.ErrIndexExists
		}
		return &db.Error{Op: db.OpCreateIndex, Err: err}
	}
	return nil
}

// DropIndex removes an FT index by name, optionally deleting the indexed hashes (DD).
func (s *Store) DropIndex(ctx context.Context, name string, deleteDocuments bool) error {
	args := []string{name}
	if deleteDocuments {
		args = append(args, "DD")
	}
	cmd := s.b().Arbitrary("FT.DROPINDEX").Args(args...).Build()
	if err := s.do(ctx, cmd).Error(); err != nil {
		if isUnknownIndex(err) {
			return db.ErrIndexNotFound
		}
		return &db.Error{Op: db.OpDropIndex, Err: err}
	}
	return nil
}

// IndexExists probes index existence via FT.INFO; "unknown index name" means absent.
func (s *Store) IndexExists(ctx context.Context, name string) (bool, error) {
	cmd := s.b().Arbitrary("FT.INFO").Args(name).Build()
	if err := s.do(ctx, cmd).Error(); err != nil {
		if isUnknownIndex(err) {
			return false, nil
		}
		return false, &db.Error{Op: db.OpIndexInfo, Err: err}
	}
	return true, nil
}

// IndexInfo reads the index name, document count and per-field attributes from FT.INFO.
func (s *Store) IndexInfo(ctx context.Context, name string) (*db.IndexInfo, error) {
	cmd := s.b().Arbitrary("FT.INFO").Args(name).Build()
	msg, err := s.do(ctx, cmd).ToMessage()
	if err != nil {
		if isUnknownIndex(err) {
			return nil, db.ErrIndexNotFound
		}
		return nil, &db.Error{Op: db.OpIndexInfo, Err: err}
	}
	kv, ok := messagePairs(msg)
	if !ok {
		return nil, &db.Error{Op: db.OpIndexInfo, Err: errors.New("unexpected reply type")}
	}
	return parseIndexInfo(kv), nil
}

// Redis reports a missing index as "Unknown Index name" (older) or "no such index" (8.x).
func isUnknownIndex(err error) bool {
	return isRedisErr(err, "unknown index name") || isRedisErr(err, "no such index")
}

func parseIndexInfo(kv map[string]rueidis.RedisMessage) *db.IndexInfo {
	info := &db.IndexInfo{}
	for key, val := range kv {
		switch strings.ToLower(key) {
		case "index_name":
			info.Name, _ = messageString(val)
		case "num_docs":
			if v, ok := messageString(val); ok {
				if f, err := strconv.ParseFloat(v, 64); err == nil {
					info.NumDocs = int64(f)
				}
			}
		case "attributes":
			attrs, ok := messageArray(val)
			if !ok {
				continue
			}
			for _, a := range attrs {
				pairs, ok := messagePairs(a)
				if !ok {
					continue
				}
				info.Attributes = append(info.Attributes, parseAttributePairs(pairs))
			}
		}
	}
	return info
}

// parseAttributePairs flattens one FT.INFO attribute entry. Trailing flags without a value
// (SORTABLE, NOSTEM) and non-scalar values are ignored.
func parseAttributePairs(pairs map[string]rueidis.RedisMessage) map[string]string {
	m := make(map[string]string, len(pairs))
	for k, val := range pairs {
		if v, ok := messageString(val); ok {
			m[strings.ToLower(k)] = v
		}
	}
	return m
}

func buildCreateArgs(idx *db.IndexDefinition) ([]string, error) {
	if idx.Name == "" {
		return nil, errors.New("index name is required")
	}
	if len(idx.Fields) == 0 {
		return nil, errors.New("at least one field is required")
	}

	args := []string{idx.Name}

	storage := idx.StorageType
	if storage == "" {
		storage = db.StorageHash
	}
	args = append(args, "ON", string(storage))

	if len(idx.Prefixes) > 0 {
		args = append(args, "PREFIX", strconv.Itoa(len(idx.Prefixes)))
		args = append(args, idx.Prefixes...)
	}

	args = append(args, "SCHEMA")

	for i := range idx.Fields {
		fieldArgs, err := buildFieldArgs(&idx.Fields[i])
		if err != nil {
			return nil, err
		}
		args = append(args, fieldArgs...)
	}

	return args, nil
}

func buildFieldArgs(f *db.IndexField) ([]string, error) {
	if f.Name == "" {
		return nil, errors.New("field name is required")
	}

	args := []string{f.Name}

	switch f.Type {
	case db.IndexFieldNumeric:
		args = append(args, "NUMERIC")

	case db.IndexFieldText:
		args = append(args, "TEXT")

	case db.IndexFieldTag:
		args = append(args, "TAG")
		if f.TagSeparator != "" {
			args = append(args, "SEPARATOR", f.TagSeparator)
		}

	case db.IndexFieldVector:
		vectorArgs, err := buildVectorFieldArgs(f)
		if err != nil {
			return nil, err
		}
		args = append(args, vectorArgs...)

	default:
		return nil, errors.New("unknown field type")
	}

	return args, nil
}

func buildVectorFieldArgs(f *db.IndexField) ([]string, error) {
	if f.VectorDim <= 0 {
		return nil, errors.New("vector DIM must be positive")
	}

	algo := f.VectorAlgo
	if algo == "" {
		algo = db.VectorFlat
	}

	distance := f.VectorDistance
	if distance == "" {
		distance = db.DistanceCosine
	}

	vtype := f.VectorType
	if vtype == "" {
		vtype = db.VectorFloat32
	}

	attrs := []string{
		"TYPE", string(vtype),
		"DIM", strconv.Itoa(f.VectorDim),
		"DISTANCE_METRIC", string(distance),
	}

	if f.VectorInitialCap > 0 {
		attrs = append(attrs, "INITIAL_CAP", strconv.Itoa(f.VectorInitialCap))
	}

	switch algo {
	case db.VectorHNSW:
		if f.VectorM > 0 {
			attrs = append(attrs, "M", strconv.Itoa(f.VectorM))
		}
		if f.VectorEFConstruct > 0 {
			attrs = append(attrs, "EF_CONSTRUCTION", strconv.Itoa(f.VectorEFConstruct))
		}
		if f.VectorEFRuntime > 0 {
			attrs = append(attrs, "EF_RUNTIME", strconv.Itoa(f.VectorEFRuntime))
		}
		if f.VectorEpsilon > 0 {
			attrs = append(attrs, "EPSILON", strconv.FormatFloat(f.VectorEpsilon, 'g', -1, 64))
		}
	case db.VectorFlat:
		if f.VectorBlockSize > 0 {
			attrs = append(attrs, "BLOCK_SIZE", strconv.Itoa(f.VectorBlockSize))
		}
	default:
		return nil, errors.New("unknown vector algorithm: " + string(algo))
	}

	result := make([]string, 0, 3+len(attrs))
	result = append(result, "VECTOR", string(algo), strconv.Itoa(len(attrs)))
	result = append(result, attrs...)

	return result, nil
}
