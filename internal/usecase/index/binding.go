package index

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/kailas-cloud/redisvec/internal/domain"
	"github.com/kailas-cloud/redisvec/internal/domain/schema"
)

// Layout is the declaration of one index whose vector dimension may still be unknown.
type Layout struct {
	Name         string
	ContentField string
	Vector       schema.VectorField
	Metadata     schema.MetadataSchema
	Dims         int // 0 until known
}

// Bind finalizes the vector field with dims and builds the descriptor.
func (l Layout) Bind(dims int) (schema.IndexDescriptor, error) {
	bound, err := l.Vector.Finalize(dims)
	if err != nil {
		return schema.IndexDescriptor{}, err
	}
	return schema.NewIndexDescriptor(l.Name, l.ContentField, bound, l.Metadata)
}

// Binding resolves the descriptor of one index once and shares it between requests.
// It is the only lock-protected state in the service; a Store used as a library has none.
type Binding struct {
	svc    *Service
	layout Layout

	mu    sync.RWMutex
	desc  schema.IndexDescriptor
	bound bool
}

// NewBinding creates a binding for layout.
func NewBinding(svc *Service, layout Layout) *Binding {
	return &Binding{svc: svc, layout: layout}
}

// Layout returns the declaration the binding was created with.
func (b *Binding) Layout() Layout { return b.layout }

// Descriptor returns the bound descriptor. On first use the dimension comes from the layout,
// or from FT.INFO of the existing index; a missing index yields domain.ErrSchemaNotBound.
func (b *Binding) Descriptor(ctx context.Context) (schema.IndexDescriptor, error) {
	if desc, ok := b.cached(); ok {
		return desc, nil
	}

	dims := b.layout.Dims
	if dims == 0 {
		d, err := b.svc.Dimensions(ctx, b.layout.Name, b.layout.Vector.Name)
		if errors.Is(err, domain.ErrIndexNotFound) {
			return schema.IndexDescriptor{}, fmt.Errorf("%w: index %s does not exist yet", domain.ErrSchemaNotBound, b.layout.Name)
		}
		if err != nil {
			return schema.IndexDescriptor{}, err
		}
		dims = d
	}

	desc, err := b.layout.Bind(dims)
	if err != nil {
		return schema.IndexDescriptor{}, err
	}
	b.store(desc)
	return desc, nil
}

// Ensure creates the index if needed and binds it. dims 0 falls back to the layout dimension.
// A dims value that disagrees with an already bound descriptor is a dimension mismatch.
func (b *Binding) Ensure(ctx context.Context, dims int) (schema.IndexDescriptor, error) {
	if dims == 0 {
		dims = b.layout.Dims
	}
	if desc, ok := b.cached(); ok {
		if dims != 0 && dims != desc.Vector().Dims() {
			return schema.IndexDescriptor{}, domain.NewDimensionError(desc.Vector().Dims(), dims)
		}
		if err := b.svc.Create(ctx, desc); err != nil {
			return schema.IndexDescriptor{}, err
		}
		return desc, nil
	}
	if dims == 0 {
		return schema.IndexDescriptor{}, fmt.Errorf("%w: index %s needs a vector dimension", domain.ErrSchemaNotBound, b.layout.Name)
	}

	desc, err := b.layout.Bind(dims)
	if err != nil {
		return schema.IndexDescriptor{}, err
	}
	if err := b.svc.Create(ctx, desc); err != nil {
		return schema.IndexDescriptor{}, err
	}
	b.store(desc)
	return desc, nil
}

// Reset forgets the bound descriptor, e.g. after the index was dropped.
func (b *Binding) Reset() {
	b.mu.Lock()
	b.desc, b.bound = schema.IndexDescriptor{}, false
	b.mu.Unlock()
}

func (b *Binding) cached() (schema.IndexDescriptor, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.desc, b.bound
}

func (b *Binding) store(desc schema.IndexDescriptor) {
	b.mu.Lock()
	b.desc, b.bound = desc, true
	b.mu.Unlock()
}
