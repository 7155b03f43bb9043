package ingest

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/redisvec/internal/domain"
	domdoc "github.com/kailas-cloud/redisvec/internal/domain/document"
	"github.com/kailas-cloud/redisvec/internal/domain/schema"
	"github.com/kailas-cloud/redisvec/internal/metrics"
)

// DefaultBatchSize is the number of records per pipelined flush.
const DefaultBatchSize = 1000

// Input is one ingestion request. Metadatas, Vectors and Keys are optional; when present
// they must be parallel to Texts. A nil Vectors slice means every text is embedded.
type Input struct {
	Texts     []string
	Metadatas []map[string]any
	Vectors   [][]float32
	Keys      []string
}

// Service embeds texts and writes them as hash records in fixed-size batches.
type Service struct {
	writer    Writer
	embed     domain.Embedder
	batchSize int
	logger    *zap.Logger
}

// New creates an ingestion service. embed may be nil when callers always supply vectors.
func New(writer Writer, embed domain.Embedder, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{writer: writer, embed: embed, batchSize: DefaultBatchSize, logger: logger}
}

// WithBatchSize configures the flush size. Non-positive values keep the default.
func (s *Service) WithBatchSize(size int) *Service {
	if size > 0 {
		s.batchSize = size
	}
	return s
}

// AddTexts writes every text as one record and returns the keys in input order.
// Input shape and metadata are checked before any network call. Batches flushed before a
// failure stay committed and their keys are returned alongside the error; the failing batch
// and everything after it are not written.
func (s *Service) AddTexts(ctx context.Context, desc schema.IndexDescriptor, in Input) ([]string, error) {
	return s.AddTextsBatched(ctx, desc, in, s.batchSize)
}

// AddTextsBatched is AddTexts with a per-call flush size; batchSize <= 0 selects the service default.
func (s *Service) AddTextsBatched(
	ctx context.Context, desc schema.IndexDescriptor, in Input, batchSize int,
) ([]string, error) {
	if err := s.validate(desc, in); err != nil {
		return nil, err
	}
	if batchSize <= 0 {
		batchSize = s.batchSize
	}

	keys := make([]string, 0, len(in.Texts))
	batch := make([]domdoc.Document, 0, min(batchSize, len(in.Texts)))
	flushed := 0

	for i, text := range in.Texts {
		key := ""
		if in.Keys != nil {
			key = in.Keys[i]
		}
		if key == "" {
			key = domdoc.NewKey(desc.KeyPrefix())
		}

		vector, err := s.vectorFor(ctx, in, i, text)
		if err != nil {
			return keys[:flushed], err
		}
		if err := desc.Vector().CheckVector(vector); err != nil {
			return keys[:flushed], fmt.Errorf("text %d: %w", i, err)
		}

		var meta map[string]any
		if in.Metadatas != nil {
			meta = in.Metadatas[i]
		}
		doc, err := domdoc.New(key, text, vector, meta)
		if err != nil {
			return keys[:flushed], fmt.Errorf("text %d: %w", i, err)
		}

		batch = append(batch, doc)
		keys = append(keys, key)

		if len(batch) >= batchSize {
			if err := s.flush(ctx, desc, batch); err != nil {
				return keys[:flushed], err
			}
			flushed = len(keys)
			batch = make([]domdoc.Document, 0, batchSize)
		}
	}

	if len(batch) > 0 {
		if err := s.flush(ctx, desc, batch); err != nil {
			return keys[:flushed], err
		}
	}

	s.logger.Debug("Texts ingested",
		zap.String("index", desc.IndexName()),
		zap.Int("count", len(keys)),
		zap.Int("batch_size", batchSize),
	)
	return keys, nil
}

func (s *Service) validate(desc schema.IndexDescriptor, in Input) error {
	if err := ValidateInput(desc.Metadata(), in); err != nil {
		return err
	}
	if in.Vectors == nil && s.embed == nil && len(in.Texts) > 0 {
		return fmt.Errorf("%w: no embedder configured and no vectors supplied", domain.ErrConfiguration)
	}
	return nil
}

// ValidateInput checks that the optional slices are parallel to Texts and that every
// metadata map conforms to meta. It needs no index and makes no network call.
func ValidateInput(meta schema.MetadataSchema, in Input) error {
	n := len(in.Texts)
	if in.Metadatas != nil && len(in.Metadatas) != n {
		return fmt.Errorf("%w: got %d metadatas for %d texts", domain.ErrValidation, len(in.Metadatas), n)
	}
	if in.Vectors != nil && len(in.Vectors) != n {
		return fmt.Errorf("%w: got %d vectors for %d texts", domain.ErrValidation, len(in.Vectors), n)
	}
	if in.Keys != nil && len(in.Keys) != n {
		return fmt.Errorf("%w: got %d keys for %d texts", domain.ErrValidation, len(in.Keys), n)
	}
	for i, m := range in.Metadatas {
		if err := meta.Validate(m); err != nil {
			return fmt.Errorf("metadata %d: %w", i, err)
		}
	}
	return nil
}

func (s *Service) vectorFor(ctx context.Context, in Input, i int, text string) ([]float32, error) {
	if in.Vectors != nil {
		return in.Vectors[i], nil
	}
	res, err := s.embed.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("%w: embed text %d: %w", domain.ErrEmbeddingProviderError, i, err)
	}
	return res.Embedding, nil
}

func (s *Service) flush(ctx context.Context, desc schema.IndexDescriptor, batch []domdoc.Document) error {
	if err := s.writer.WriteBatch(ctx, desc, batch); err != nil {
		metrics.IngestFlushesTotal.WithLabelValues(desc.IndexName(), metrics.StatusError).Inc()
		s.logger.Warn("Batch flush failed",
			zap.String("index", desc.IndexName()),
			zap.Int("batch_size", len(batch)),
			zap.Error(err),
		)
		return fmt.Errorf("flush batch: %w", err)
	}
	metrics.IngestFlushesTotal.WithLabelValues(desc.IndexName(), metrics.StatusOK).Inc()
	metrics.IngestRecordsTotal.WithLabelValues(desc.IndexName()).Add(float64(len(batch)))
	return nil
}
