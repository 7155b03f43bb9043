package redisvec

import (
	"crypto/tls"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/rueidis"
	"go.uber.org/zap"

	"github.com/kailas-cloud/redisvec/internal/domain"
	"github.com/kailas-cloud/redisvec/internal/domain/schema"
	"github.com/kailas-cloud/redisvec/internal/usecase/ingest"
)

// Option configures a Store.
type Option interface {
	apply(*storeConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*storeConfig)

func (f optionFunc) apply(c *storeConfig) { f(c) }

type storeConfig struct {
	addrs    []string
	username string
	password string
	db       int
	tls      *tls.Config
	client   rueidis.Client
	urlErr   error

	indexName    string
	contentField string
	vector       schema.VectorField
	metadata     []schema.MetadataField
	dims         int

	embedder  domain.Embedder
	relevance RelevanceFunc
	batchSize int

	readinessTimeout time.Duration
	logger           *zap.Logger
	metricsReg       prometheus.Registerer
}

func newStoreConfig(opts []Option) *storeConfig {
	c := &storeConfig{
		contentField: schema.DefaultContentField,
		vector:       schema.NewVectorField(),
		batchSize:    ingest.DefaultBatchSize,
	}
	for _, o := range opts {
		o.apply(c)
	}
	if c.logger == nil {
		c.logger = zap.NewNop()
	}
	return c
}

// WithRedisURL parses a redis:// or rediss:// URL (address, credentials, database, TLS).
func WithRedisURL(url string) Option {
	return optionFunc(func(c *storeConfig) {
		opt, err := rueidis.ParseURL(url)
		if err != nil {
			c.urlErr = fmt.Errorf("%w: redis url: %w", domain.ErrConfiguration, err)
			return
		}
		c.addrs = opt.InitAddress
		c.username = opt.Username
		c.password = opt.Password
		c.db = opt.SelectDB
		c.tls = opt.TLSConfig
	})
}

// WithAddrs sets the server addresses ("host:port").
func WithAddrs(addrs ...string) Option {
	return optionFunc(func(c *storeConfig) {
		c.addrs = addrs
	})
}

// WithCredentials sets the ACL username and password.
func WithCredentials(username, password string) Option {
	return optionFunc(func(c *storeConfig) {
		c.username = username
		c.password = password
	})
}

// WithDB selects the logical database.
func WithDB(n int) Option {
	return optionFunc(func(c *storeConfig) {
		c.db = n
	})
}

// WithClient uses an existing rueidis client instead of dialing. Both RESP2 and RESP3
// clients work. Store.Close closes it.
func WithClient(client rueidis.Client) Option {
	return optionFunc(func(c *storeConfig) {
		c.client = client
	})
}

// WithReadinessTimeout waits up to d for the server to answer PING on connect.
// Zero (default) pings once.
func WithReadinessTimeout(d time.Duration) Option {
	return optionFunc(func(c *storeConfig) {
		c.readinessTimeout = d
	})
}

// WithIndexName sets the index name. A random hex name is generated when unset.
func WithIndexName(name string) Option {
	return optionFunc(func(c *storeConfig) {
		c.indexName = name
	})
}

// WithContentField sets the hash field that stores document text. Default: "content".
func WithContentField(name string) Option {
	return optionFunc(func(c *storeConfig) {
		c.contentField = name
	})
}

// WithVectorField replaces the vector field skeleton. Default: NewVectorField().
func WithVectorField(f VectorField) Option {
	return optionFunc(func(c *storeConfig) {
		c.vector = f
	})
}

// WithDistanceMetric sets the metric of the vector field.
func WithDistanceMetric(m Metric) Option {
	return optionFunc(func(c *storeConfig) {
		c.vector.Metric = m
	})
}

// WithHNSW switches the vector field to HNSW with params.
func WithHNSW(params HNSWParams) Option {
	return optionFunc(func(c *storeConfig) {
		c.vector.Algorithm = schema.HNSW
		c.vector.HNSW = params
	})
}

// WithDimensions fixes the vector dimension up front. Without it the dimension comes from
// the first embedded batch or from the existing index.
func WithDimensions(dims int) Option {
	return optionFunc(func(c *storeConfig) {
		c.dims = dims
	})
}

// WithMetadata declares the typed metadata fields. Writes with undeclared keys are rejected.
func WithMetadata(fields ...MetadataField) Option {
	return optionFunc(func(c *storeConfig) {
		c.metadata = append(c.metadata, fields...)
	})
}

// WithEmbedder sets the text embedding provider.
// Required for text operations; vector-only use works without it.
func WithEmbedder(e Embedder) Option {
	return optionFunc(func(c *storeConfig) {
		c.embedder = e
	})
}

// WithRelevanceFunc overrides the metric-derived distance to relevance mapping.
func WithRelevanceFunc(f RelevanceFunc) Option {
	return optionFunc(func(c *storeConfig) {
		c.relevance = f
	})
}

// WithBatchSize sets how many records are pipelined per write. Default: 1000.
func WithBatchSize(n int) Option {
	return optionFunc(func(c *storeConfig) {
		c.batchSize = n
	})
}

// WithLogger enables structured logging. Pass nil to disable (default).
func WithLogger(l *zap.Logger) Option {
	return optionFunc(func(c *storeConfig) {
		c.logger = l
	})
}

// WithPrometheus registers operation counts and durations on reg. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *storeConfig) {
		c.metricsReg = reg
	})
}
