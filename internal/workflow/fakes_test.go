package workflow

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"boutique-catalog/internal/client"
	"boutique-catalog/internal/domain"
	"boutique-catalog/internal/storage"

	"github.com/shopspring/decimal"
)

var errBackend = errors.New("backend unreachable")

// fakeProducts is an in-memory ProductAPI. gate, when set, blocks writes
// until it is closed.
type fakeProducts struct {
	mu       sync.Mutex
	products []*domain.Product
	fail     error
	gate     chan struct{}
	entered  chan struct{}

	lists      int
	creates    []domain.ProductInput
	updates    []domain.ProductPatch
	uploads    []*storage.Upload
	deletes    []string
	quantities []int
}

func newFakeProducts(n int) *fakeProducts {
	f := &fakeProducts{}
	for i := 0; i < n; i++ {
		f.products = append(f.products, &domain.Product{
			ID:          domain.NewID(),
			Name:        fmt.Sprintf("Kaftan %02d", i),
			Description: "Silk",
			Price:       decimal.NewFromInt(int64(1000 + i)),
			Quantity:    i,
			Size:        "S, M",
			IsAvailable: true,
			Images:      []string{fmt.Sprintf("/uploads/product-%d.jpg", i)},
			Version:     1,
		})
	}
	return f
}

func (f *fakeProducts) wait() error {
	if f.entered != nil {
		f.entered <- struct{}{}
	}
	if f.gate != nil {
		<-f.gate
	}
	return f.fail
}

func (f *fakeProducts) List(ctx context.Context) ([]*domain.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lists++
	out := make([]*domain.Product, len(f.products))
	for i, p := range f.products {
		copied := *p
		out[i] = &copied
	}
	return out, nil
}

func (f *fakeProducts) Create(ctx context.Context, in domain.ProductInput, image *storage.Upload) (*domain.Product, error) {
	if err := f.wait(); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.creates = append(f.creates, in)
	f.uploads = append(f.uploads, image)
	p := &domain.Product{ID: domain.NewID(), Name: in.Name, Price: *in.Price, Quantity: *in.Quantity, Version: 1}
	f.products = append(f.products, p)
	return p, nil
}

func (f *fakeProducts) Update(ctx context.Context, id string, patch domain.ProductPatch, image *storage.Upload) (*domain.Product, error) {
	if err := f.wait(); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates = append(f.updates, patch)
	f.uploads = append(f.uploads, image)
	for _, p := range f.products {
		if p.ID == id {
			if patch.Version != nil && *patch.Version != p.Version {
				return nil, &domain.ConflictError{Entity: "Product"}
			}
			patch.Apply(p)
			p.Version++
			copied := *p
			return &copied, nil
		}
	}
	return nil, &domain.NotFoundError{Entity: "Product"}
}

func (f *fakeProducts) UpdateQuantity(ctx context.Context, id string, quantity int) (*client.QuantityUpdate, error) {
	if err := f.wait(); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.quantities = append(f.quantities, quantity)
	for _, p := range f.products {
		if p.ID == id {
			p.Quantity = quantity
			p.Version++
			return &client.QuantityUpdate{ID: p.ID, Quantity: p.Quantity, Version: p.Version}, nil
		}
	}
	return nil, &domain.NotFoundError{Entity: "Product"}
}

func (f *fakeProducts) Delete(ctx context.Context, id string) (*domain.Product, error) {
	if err := f.wait(); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletes = append(f.deletes, id)
	for i, p := range f.products {
		if p.ID == id {
			f.products = append(f.products[:i], f.products[i+1:]...)
			return p, nil
		}
	}
	return nil, &domain.NotFoundError{Entity: "Product"}
}

type fakeCollections struct {
	kind        domain.Kind
	collections []*domain.Collection
	fail        error

	creates []domain.CollectionInput
	updates []domain.CollectionPatch
	uploads []*storage.Upload
}

func (f *fakeCollections) Kind() domain.Kind { return f.kind }

func (f *fakeCollections) List(ctx context.Context) ([]*domain.Collection, error) {
	return append([]*domain.Collection(nil), f.collections...), nil
}

func (f *fakeCollections) Create(ctx context.Context, in domain.CollectionInput, image *storage.Upload) (*domain.Collection, error) {
	if f.fail != nil {
		return nil, f.fail
	}
	f.creates = append(f.creates, in)
	f.uploads = append(f.uploads, image)
	c := &domain.Collection{ID: domain.NewID(), Name: in.Name, Image: "/uploads/new.png", Version: 1}
	f.collections = append(f.collections, c)
	return c, nil
}

func (f *fakeCollections) Update(ctx context.Context, id string, patch domain.CollectionPatch, image *storage.Upload) (*domain.Collection, error) {
	if f.fail != nil {
		return nil, f.fail
	}
	f.updates = append(f.updates, patch)
	f.uploads = append(f.uploads, image)
	for _, c := range f.collections {
		if c.ID == id {
			patch.Apply(c)
			return c, nil
		}
	}
	return nil, &domain.NotFoundError{Entity: f.kind.Label()}
}

func (f *fakeCollections) Delete(ctx context.Context, id string) (*domain.Collection, error) {
	for i, c := range f.collections {
		if c.ID == id {
			f.collections = append(f.collections[:i], f.collections[i+1:]...)
			return c, nil
		}
	}
	return nil, &domain.NotFoundError{Entity: f.kind.Label()}
}

type countingReloader struct {
	calls int
}

func (r *countingReloader) Reload(ctx context.Context) error {
	r.calls++
	return nil
}

var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00\x1f\x15\xc4\x89")
