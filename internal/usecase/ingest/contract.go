package ingest

import (
	"context"

	domdoc "github.com/kailas-cloud/redisvec/internal/domain/document"
	"github.com/kailas-cloud/redisvec/internal/domain/schema"
)

// Writer stores one batch of documents in a single pipelined round trip.
type Writer interface {
	WriteBatch(ctx context.Context, desc schema.IndexDescriptor, docs []domdoc.Document) error
}
