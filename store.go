package redisvec

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/rueidis"
	"go.uber.org/zap"

	"github.com/kailas-cloud/redisvec/internal/db"
	dbRedis "github.com/kailas-cloud/redisvec/internal/db/redis"
	"github.com/kailas-cloud/redisvec/internal/domain"
	"github.com/kailas-cloud/redisvec/internal/domain/schema"
	documentrepo "github.com/kailas-cloud/redisvec/internal/repository/document"
	indexrepo "github.com/kailas-cloud/redisvec/internal/repository/index"
	searchrepo "github.com/kailas-cloud/redisvec/internal/repository/search"
	documentuc "github.com/kailas-cloud/redisvec/internal/usecase/document"
	indexuc "github.com/kailas-cloud/redisvec/internal/usecase/index"
	ingestuc "github.com/kailas-cloud/redisvec/internal/usecase/ingest"
	searchuc "github.com/kailas-cloud/redisvec/internal/usecase/search"
)

// Store is a vector store over one index.
//
// A Store holds no locks of its own beyond the lazily bound schema; it is as safe for
// concurrent use as the underlying rueidis client. Callers that need a logical sequence
// (drop then recreate, for example) must synchronize themselves.
type Store struct {
	db      db.Store
	caps    db.Capabilities
	binding *indexuc.Binding
	indexes *indexuc.Service
	ingest  *ingestuc.Service
	search  *searchuc.Service
	docs    *documentuc.Service

	embed     domain.Embedder
	relevance RelevanceFunc
	batchSize int
	logger    *zap.Logger
	obs       *observer
}

// New connects to the server, checks that a search module is loaded and prepares the index
// layout. It does not create the index; see CreateIndex, FromTexts and FromExistingIndex.
func New(ctx context.Context, opts ...Option) (*Store, error) {
	cfg := newStoreConfig(opts)
	if cfg.urlErr != nil {
		return nil, cfg.urlErr
	}
	if cfg.indexName == "" {
		id := uuid.New()
		cfg.indexName = hex.EncodeToString(id[:])
		cfg.logger.Info("Generated index name", zap.String("index", cfg.indexName))
	}

	layout, err := newLayout(cfg)
	if err != nil {
		return nil, err
	}

	st, err := openStore(cfg)
	if err != nil {
		return nil, err
	}

	s, err := connect(ctx, st, cfg, layout)
	if err != nil {
		st.Close()
		return nil, err
	}
	return s, nil
}

// newLayout validates the declared schema without touching the network.
func newLayout(cfg *storeConfig) (indexuc.Layout, error) {
	if cfg.dims < 0 {
		return indexuc.Layout{}, fmt.Errorf("%w: dimensions must not be negative, got %d", domain.ErrConfiguration, cfg.dims)
	}
	meta, err := schema.NewMetadata(cfg.metadata...)
	if err != nil {
		return indexuc.Layout{}, err
	}
	layout := indexuc.Layout{
		Name:         cfg.indexName,
		ContentField: cfg.contentField,
		Vector:       cfg.vector,
		Metadata:     meta,
		Dims:         cfg.dims,
	}

	// Probe with any positive dimension: names, metric and HNSW params are checked here.
	probe := cfg.dims
	if probe == 0 {
		probe = 1
	}
	if _, err := layout.Bind(probe); err != nil {
		return indexuc.Layout{}, err
	}
	return layout, nil
}

func openStore(cfg *storeConfig) (db.Store, error) {
	if cfg.client != nil {
		return dbRedis.NewStoreFromClient(cfg.client), nil
	}
	if len(cfg.addrs) == 0 {
		return nil, fmt.Errorf("%w: redis address is required (WithRedisURL or WithAddrs)", domain.ErrConfiguration)
	}
	st, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.addrs,
		Username: cfg.username,
		Password: cfg.password,
		DB:       cfg.db,
		TLS:      cfg.tls,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrConnection, err)
	}
	return st, nil
}

func connect(ctx context.Context, st db.Store, cfg *storeConfig, layout indexuc.Layout) (*Store, error) {
	if cfg.readinessTimeout > 0 {
		if err := st.WaitForReady(ctx, cfg.readinessTimeout); err != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrConnection, err)
		}
	} else if err := st.Ping(ctx); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrConnection, err)
	}

	caps, err := st.Capabilities(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: probe modules: %w", domain.ErrConnection, err)
	}
	if !caps.HasSearch() {
		return nil, fmt.Errorf("%w: server has no search module (need %s)", domain.ErrConnection, requiredModules())
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	logger := cfg.logger
	indexes := indexuc.New(indexrepo.New(st), logger)
	s := &Store{
		db:        st,
		caps:      caps,
		binding:   indexuc.NewBinding(indexes, layout),
		indexes:   indexes,
		ingest:    ingestuc.New(documentrepo.New(st), cfg.embedder, logger).WithBatchSize(cfg.batchSize),
		search:    searchuc.New(searchrepo.New(st), caps, cfg.embedder, logger),
		docs:      documentuc.New(documentrepo.New(st), logger),
		embed:     cfg.embedder,
		relevance: cfg.relevance,
		batchSize: cfg.batchSize,
		logger:    logger,
		obs:       obs,
	}

	logger.Debug("Store connected",
		zap.String("index", layout.Name),
		zap.String("search_module", caps.SearchModule),
		zap.Int("search_version", caps.SearchVersion),
		zap.Bool("vector_range", caps.SupportsVectorRange()),
	)
	return s, nil
}

func requiredModules() string {
	names := make([]string, 0, len(db.RequiredSearchModules))
	for _, m := range db.RequiredSearchModules {
		names = append(names, fmt.Sprintf("%s >= %d", m.Name, m.MinVersion))
	}
	return strings.Join(names, " or ")
}

// FromTexts embeds texts, creates the index with the dimension of the first embedding and
// stores the texts. metadatas may be nil; otherwise it must be parallel to texts.
// On a failed write the Store is closed and the keys already committed are returned.
func FromTexts(
	ctx context.Context, texts []string, metadatas []map[string]any, opts ...Option,
) (*Store, []string, error) {
	if len(texts) == 0 {
		return nil, nil, fmt.Errorf("%w: texts must not be empty", domain.ErrValidation)
	}
	if metadatas != nil && len(metadatas) != len(texts) {
		return nil, nil, fmt.Errorf("%w: %d metadatas for %d texts", domain.ErrValidation, len(metadatas), len(texts))
	}

	s, err := New(ctx, opts...)
	if err != nil {
		return nil, nil, err
	}
	if s.embed == nil {
		s.Close()
		return nil, nil, fmt.Errorf("%w: FromTexts needs an embedder", domain.ErrConfiguration)
	}

	vectors, err := s.embedAll(ctx, texts)
	if err != nil {
		s.Close()
		return nil, nil, err
	}
	if err := s.CreateIndex(ctx, len(vectors[0])); err != nil {
		s.Close()
		return nil, nil, err
	}

	keys, err := s.AddTexts(ctx, texts, WithMetadatas(metadatas), WithVectors(vectors))
	if err != nil {
		s.Close()
		return nil, keys, err
	}
	return s, keys, nil
}

// FromExistingIndex connects to an index that must already exist. The vector dimension is
// taken from WithDimensions or read back from the index.
func FromExistingIndex(ctx context.Context, opts ...Option) (*Store, error) {
	s, err := New(ctx, opts...)
	if err != nil {
		return nil, err
	}
	if err := s.indexes.Require(ctx, s.IndexName()); err != nil {
		s.Close()
		return nil, err
	}
	if _, err := s.binding.Descriptor(ctx); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

// IndexName returns the name of the index the Store operates on.
func (s *Store) IndexName() string { return s.binding.Layout().Name }

// KeyPrefix returns the key namespace of stored records.
func (s *Store) KeyPrefix() string { return schema.KeyPrefix(s.IndexName()) }

// SupportsRangeQueries reports whether the server can run SimilaritySearchLimitScore.
func (s *Store) SupportsRangeQueries() bool { return s.caps.SupportsVectorRange() }

// Ping checks server connectivity.
func (s *Store) Ping(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { s.obs.observe("ping", start, err) }()

	if err = s.db.Ping(ctx); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrConnection, err)
	}
	return nil
}

// CreateIndex creates the index for dims-sized vectors unless it already exists.
// dims 0 uses WithDimensions. A dims value that differs from an already bound dimension
// is a dimension mismatch.
func (s *Store) CreateIndex(ctx context.Context, dims int) (err error) {
	start := time.Now()
	defer func() { s.obs.observe("index.create", start, err) }()

	_, err = s.binding.Ensure(ctx, dims)
	return err
}

// Dimensions returns the bound vector dimension, reading it from the index when needed.
func (s *Store) Dimensions(ctx context.Context) (int, error) {
	desc, err := s.binding.Descriptor(ctx)
	if err != nil {
		return 0, err
	}
	return desc.Vector().Dims(), nil
}

// DropIndex drops the index and, when deleteDocuments is set, its records.
// It reports false when the index did not exist.
func (s *Store) DropIndex(ctx context.Context, deleteDocuments bool) (dropped bool, err error) {
	start := time.Now()
	defer func() { s.obs.observe("index.drop", start, err) }()

	dropped, err = s.indexes.Drop(ctx, s.IndexName(), deleteDocuments)
	if err != nil {
		return false, err
	}
	s.binding.Reset()
	return dropped, nil
}

// DropIndex drops index name through an existing client without building a Store.
// The client is not closed.
func DropIndex(ctx context.Context, client rueidis.Client, name string, deleteDocuments bool) (bool, error) {
	svc := indexuc.New(indexrepo.New(dbRedis.NewStoreFromClient(client)), nil)
	return svc.Drop(ctx, name, deleteDocuments)
}

// Delete removes records by key. It reports Deleted when at least one record existed.
func (s *Store) Delete(ctx context.Context, keys []string) (outcome DeleteOutcome, err error) {
	start := time.Now()
	defer func() { s.obs.observe("documents.delete", start, err) }()

	return s.docs.Delete(ctx, keys)
}

// CompileFilter turns a declarative filter into an expression, typing each field from
// the store's metadata schema.
func (s *Store) CompileFilter(spec *FilterSpec) (Filter, error) {
	return spec.Compile(s.binding.Layout().Metadata)
}

// Close releases the connection.
func (s *Store) Close() {
	s.db.Close()
}

// AddOption configures one AddTexts call.
type AddOption func(*addOptions)

type addOptions struct {
	metadatas []map[string]any
	vectors   [][]float32
	keys      []string
	batchSize int
}

// WithMetadatas attaches metadata parallel to texts.
func WithMetadatas(metadatas []map[string]any) AddOption {
	return func(o *addOptions) { o.metadatas = metadatas }
}

// WithVectors supplies precomputed embeddings parallel to texts; nothing is embedded.
func WithVectors(vectors [][]float32) AddOption {
	return func(o *addOptions) { o.vectors = vectors }
}

// WithKeys supplies record keys parallel to texts instead of generated ones.
func WithKeys(keys []string) AddOption {
	return func(o *addOptions) { o.keys = keys }
}

// WithAddBatchSize overrides the store batch size for one call.
func WithAddBatchSize(n int) AddOption {
	return func(o *addOptions) { o.batchSize = n }
}

// AddTexts stores texts with their embeddings and returns the record keys in input order.
//
// If the index does not exist yet and no dimension is known, all texts are embedded first
// and the index is created with the resulting dimension. Batches written before a failure
// stay committed; their keys are returned together with the error.
func (s *Store) AddTexts(ctx context.Context, texts []string, opts ...AddOption) (keys []string, err error) {
	start := time.Now()
	defer func() { s.obs.observe("texts.add", start, err) }()

	var o addOptions
	for _, opt := range opts {
		opt(&o)
	}

	in := ingestuc.Input{
		Texts:     texts,
		Metadatas: o.metadatas,
		Vectors:   o.vectors,
		Keys:      o.keys,
	}
	// Validate before binding, which may embed texts and create the index.
	if err := ingestuc.ValidateInput(s.binding.Layout().Metadata, in); err != nil {
		return nil, err
	}
	if len(texts) == 0 {
		return nil, nil
	}

	desc, vectors, err := s.writeDescriptor(ctx, texts, o.vectors)
	if err != nil {
		return nil, err
	}
	in.Vectors = vectors

	batch := o.batchSize
	if batch <= 0 {
		batch = s.batchSize
	}
	return s.ingest.AddTextsBatched(ctx, desc, in, batch)
}

// writeDescriptor resolves the descriptor for a write. An unbound store is bound from the
// supplied vectors, or from embedding texts when no vectors were given.
func (s *Store) writeDescriptor(
	ctx context.Context, texts []string, vectors [][]float32,
) (schema.IndexDescriptor, [][]float32, error) {
	desc, err := s.binding.Descriptor(ctx)
	if err == nil {
		return desc, vectors, nil
	}
	if !errors.Is(err, domain.ErrSchemaNotBound) || len(texts) == 0 {
		return schema.IndexDescriptor{}, nil, err
	}

	if len(vectors) == 0 {
		if s.embed == nil {
			return schema.IndexDescriptor{}, nil, fmt.Errorf("%w: no embedder configured", domain.ErrConfiguration)
		}
		if vectors, err = s.embedAll(ctx, texts); err != nil {
			return schema.IndexDescriptor{}, nil, err
		}
	}

	desc, err = s.binding.Ensure(ctx, len(vectors[0]))
	if err != nil {
		return schema.IndexDescriptor{}, nil, err
	}
	return desc, vectors, nil
}

func (s *Store) embedAll(ctx context.Context, texts []string) ([][]float32, error) {
	res, err := domain.EmbedAll(ctx, s.embed, texts)
	if err != nil {
		if errors.Is(err, domain.ErrEmbeddingProviderError) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", domain.ErrEmbeddingProviderError, err)
	}
	if len(res.Embeddings) == 0 || len(res.Embeddings[0]) == 0 {
		return nil, fmt.Errorf("%w: empty embedding", domain.ErrEmbeddingProviderError)
	}
	return res.Embeddings, nil
}
