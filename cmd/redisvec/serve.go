package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	dbRedis "github.com/kailas-cloud/redisvec/internal/db/redis"
	"github.com/kailas-cloud/redisvec/internal/domain"
	"github.com/kailas-cloud/redisvec/internal/metrics"
	documentrepo "github.com/kailas-cloud/redisvec/internal/repository/document"
	indexrepo "github.com/kailas-cloud/redisvec/internal/repository/index"
	searchrepo "github.com/kailas-cloud/redisvec/internal/repository/search"
	chiTransport "github.com/kailas-cloud/redisvec/internal/transport/chi"
	documentuc "github.com/kailas-cloud/redisvec/internal/usecase/document"
	healthuc "github.com/kailas-cloud/redisvec/internal/usecase/health"
	indexuc "github.com/kailas-cloud/redisvec/internal/usecase/index"
	ingestuc "github.com/kailas-cloud/redisvec/internal/usecase/ingest"
	searchuc "github.com/kailas-cloud/redisvec/internal/usecase/search"
	"github.com/kailas-cloud/redisvec/internal/version"
)

const serveLongDesc string = `Run the HTTP API for the configured index.

The server connects to Redis, checks for a search module that supports vector
fields and serves /v1 routes, /health and /metrics until SIGINT or SIGTERM.

Example:
  redisvec serve
  redisvec serve --config config/prod.yaml --port 9090`

const serveShortDesc string = "Run the HTTP API server"

type serveCommander struct {
	port int
}

func newServeCmd() *cobra.Command {
	cmder := &serveCommander{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: serveShortDesc,
		Long:  serveLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := loadApp(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = rt.logger.Sync() }()

			if cmd.Flags().Changed("port") {
				rt.cfg.HTTP.Port = cmder.port
			}
			return cmder.run(cmd.Context(), rt)
		},
	}

	cmd.Flags().IntVarP(&cmder.port, "port", "p", 0, "HTTP port (overrides http.port)")

	return cmd
}

func (c *serveCommander) run(ctx context.Context, rt *app) error {
	cfg, logger := rt.cfg, rt.logger

	logger.Info("Starting redisvec API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", rt.env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Strings("redis_addrs", cfg.Redis.Addrs),
		zap.String("index", cfg.Index.Name),
	)

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Redis.Addrs,
		Username: cfg.Redis.Username,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrConnection, err)
	}
	defer store.Close()

	if err := store.WaitForReady(ctx, time.Duration(cfg.Redis.ReadinessTimeout)*time.Second); err != nil {
		return fmt.Errorf("%w: redis not ready: %w", domain.ErrConnection, err)
	}
	caps, err := store.Capabilities(ctx)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrConnection, err)
	}
	if !caps.HasSearch() {
		return fmt.Errorf("%w: server has no search module", domain.ErrConnection)
	}
	logger.Info("Connected to redis",
		zap.String("search_module", caps.SearchModule),
		zap.Int("search_version", caps.SearchVersion),
		zap.Bool("vector_range", caps.SupportsVectorRange()),
	)

	// Register metrics explicitly (no init())
	metrics.RegisterEmbeddingMetrics()
	metrics.RegisterStoreMetrics()
	metrics.RegisterHTTPMetrics()

	embedder := buildEmbedder(cfg.Embedding, logger)
	if embedder != nil {
		logger.Info("Embedder created",
			zap.String("provider", cfg.Embedding.Provider),
			zap.String("model", cfg.Embedding.Model),
			zap.Int("dimensions", cfg.Embedding.Dimensions),
		)
	} else {
		logger.Info("No embedding model configured, requests must carry vectors")
	}

	vector, err := cfg.Index.VectorField()
	if err != nil {
		return err
	}
	meta, err := cfg.Index.MetadataSchema()
	if err != nil {
		return err
	}

	// Repositories
	indexRepo := indexrepo.New(store)
	docRepo := documentrepo.New(store)
	searchRepo := searchrepo.New(store)

	// Use cases
	indexSvc := indexuc.New(indexRepo, logger)
	binding := indexuc.NewBinding(indexSvc, indexuc.Layout{
		Name:         cfg.Index.Name,
		ContentField: cfg.Index.ContentField,
		Vector:       vector,
		Metadata:     meta,
		Dims:         cfg.Index.Vector.Dims,
	})
	ingestSvc := ingestuc.New(docRepo, embedder, logger).WithBatchSize(cfg.Ingest.BatchSize)
	searchSvc := searchuc.New(searchRepo, caps, embedder, logger)
	documentSvc := documentuc.New(docRepo, logger)

	// Pass a nil interface, not a typed nil pointer, when embedding is off.
	var embeddingCheck healthuc.EmbeddingChecker
	if hc, ok := embedder.(healthuc.EmbeddingChecker); ok {
		embeddingCheck = hc
	}
	healthSvc := healthuc.New(store, store, embeddingCheck)

	// Bind to an existing index early so misconfigured dimensions fail at startup.
	if exists, err := indexSvc.Exists(ctx, cfg.Index.Name); err != nil {
		return err
	} else if exists {
		if _, err := binding.Descriptor(ctx); err != nil {
			return fmt.Errorf("binding index %q: %w", cfg.Index.Name, err)
		}
	}

	server := chiTransport.NewServer(binding, indexSvc, ingestSvc, searchSvc, documentSvc, healthSvc, logger)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      chiTransport.NewRouter(server, cfg.Auth.APIKeys),
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(quit)

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-quit:
		logger.Info("Received shutdown signal")
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
	return nil
}
