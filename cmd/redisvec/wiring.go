package main

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/redisvec"
	"github.com/kailas-cloud/redisvec/internal/config"
	"github.com/kailas-cloud/redisvec/internal/domain"
	openaiEmb "github.com/kailas-cloud/redisvec/internal/transport/openai"
	embeddinguc "github.com/kailas-cloud/redisvec/internal/usecase/embedding"
)

// buildEmbedder assembles the decorator chain OpenAI -> Instrumented.
// It returns nil when no embedding model is configured.
func buildEmbedder(cfg config.EmbeddingConfig, logger *zap.Logger) domain.Embedder {
	if !cfg.Enabled() {
		return nil
	}
	base := openaiEmb.NewEmbedder(&openaiEmb.Config{
		APIKey:     cfg.APIKey,
		BaseURL:    cfg.BaseURL,
		Model:      cfg.Model,
		Dimensions: cfg.Dimensions,
		User:       cfg.User,
		Provider:   cfg.Provider,
		Logger:     logger,
	})
	return embeddinguc.NewInstrumentedEmbedder(base, cfg.Provider, cfg.Model, logger).
		WithChunkSize(cfg.MaxBatchSize)
}

// storeOptions translates the config file into redisvec options.
func storeOptions(cfg config.Config, logger *zap.Logger) ([]redisvec.Option, error) {
	vector, err := cfg.Index.VectorField()
	if err != nil {
		return nil, fmt.Errorf("index.vector: %w", err)
	}
	meta, err := cfg.Index.MetadataSchema()
	if err != nil {
		return nil, fmt.Errorf("index.metadata: %w", err)
	}

	opts := []redisvec.Option{
		redisvec.WithAddrs(cfg.Redis.Addrs...),
		redisvec.WithCredentials(cfg.Redis.Username, cfg.Redis.Password),
		redisvec.WithDB(cfg.Redis.DB),
		redisvec.WithReadinessTimeout(time.Duration(cfg.Redis.ReadinessTimeout) * time.Second),
		redisvec.WithIndexName(cfg.Index.Name),
		redisvec.WithContentField(cfg.Index.ContentField),
		redisvec.WithVectorField(vector),
		redisvec.WithDimensions(cfg.Index.Vector.Dims),
		redisvec.WithMetadata(meta.Fields()...),
		redisvec.WithBatchSize(cfg.Ingest.BatchSize),
		redisvec.WithLogger(logger),
	}
	if e := buildEmbedder(cfg.Embedding, logger); e != nil {
		opts = append(opts, redisvec.WithEmbedder(e))
	}
	return opts, nil
}

// openStore connects a redisvec.Store for the configured index.
func openStore(ctx context.Context, rt *app) (*redisvec.Store, error) {
	opts, err := storeOptions(rt.cfg, rt.logger)
	if err != nil {
		return nil, err
	}
	return redisvec.New(ctx, append(opts, rt.extra...)...)
}

// withStore opens the store, runs fn and closes the store.
func withStore(ctx context.Context, rt *app, fn func(context.Context, *redisvec.Store) error) error {
	s, err := openStore(ctx, rt)
	if err != nil {
		return err
	}
	defer s.Close()
	return fn(ctx, s)
}
