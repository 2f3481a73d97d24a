package workflow

import (
	"context"
	"sync"

	"boutique-catalog/internal/catalog"
	"boutique-catalog/internal/domain"
)

// Listing is an admin list snapshot with search and pagination. The
// snapshot is only replaced by Reload, never merged from a mutation
// response.
type Listing[T any] struct {
	load   func(ctx context.Context) ([]T, error)
	search func(items []T, query string) []T
	remove func(ctx context.Context, id string) error
	id     func(T) string

	mu       sync.Mutex
	items    []T
	query    string
	page     int
	deleting bool
}

func newListing[T any](
	load func(context.Context) ([]T, error),
	search func([]T, string) []T,
	remove func(context.Context, string) error,
	id func(T) string,
) *Listing[T] {
	return &Listing[T]{load: load, search: search, remove: remove, id: id, page: 1}
}

// Reload re-fetches the snapshot and clamps the page to the new result.
func (l *Listing[T]) Reload(ctx context.Context) error {
	items, err := l.load(ctx)
	if err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.items = items
	l.page = catalog.ClampPage(l.page, len(l.search(l.items, l.query)), catalog.AdminPageSize)
	return nil
}

// SetQuery changes the search text and goes back to the first page.
func (l *Listing[T]) SetQuery(query string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if query != l.query {
		l.query = query
		l.page = 1
	}
}

func (l *Listing[T]) Query() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.query
}

// SetPage moves to page, clamped to the pages the matches fill.
func (l *Listing[T]) SetPage(page int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.page = catalog.ClampPage(page, len(l.search(l.items, l.query)), catalog.AdminPageSize)
}

func (l *Listing[T]) Page() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.page
}

// Matches returns every item matching the query.
func (l *Listing[T]) Matches() []T {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.search(l.items, l.query)
}

// Visible returns the matches on the current page.
func (l *Listing[T]) Visible() []T {
	l.mu.Lock()
	defer l.mu.Unlock()
	return catalog.Paginate(l.search(l.items, l.query), l.page, catalog.AdminPageSize)
}

func (l *Listing[T]) TotalPages() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return catalog.TotalPages(len(l.search(l.items, l.query)), catalog.AdminPageSize)
}

// Window returns the pagination markers for the current page.
func (l *Listing[T]) Window() []catalog.Marker {
	l.mu.Lock()
	defer l.mu.Unlock()
	total := catalog.TotalPages(len(l.search(l.items, l.query)), catalog.AdminPageSize)
	return catalog.PageWindow(l.page, total)
}

func (l *Listing[T]) find(id string) (T, bool) {
	for _, item := range l.items {
		if l.id(item) == id {
			return item, true
		}
	}
	var zero T
	return zero, false
}

// Delete removes the record with the given id once confirm approves it,
// then reloads. It reports whether a delete was sent.
func (l *Listing[T]) Delete(ctx context.Context, id string, confirm func(T) bool) (bool, error) {
	l.mu.Lock()
	if l.deleting {
		l.mu.Unlock()
		return false, ErrBusy
	}
	item, ok := l.find(id)
	l.mu.Unlock()
	if !ok {
		return false, &domain.NotFoundError{Entity: "Record"}
	}
	if confirm == nil || !confirm(item) {
		return false, nil
	}

	l.mu.Lock()
	if l.deleting {
		l.mu.Unlock()
		return false, ErrBusy
	}
	l.deleting = true
	l.mu.Unlock()
	defer func() {
		l.mu.Lock()
		l.deleting = false
		l.mu.Unlock()
	}()

	if err := l.remove(ctx, id); err != nil {
		return true, reloadIfStale(ctx, l, err)
	}
	return true, l.Reload(ctx)
}

// ProductListing is the admin product list.
type ProductListing struct {
	*Listing[*domain.Product]
	api ProductAPI

	mu       sync.Mutex
	inflight map[string]bool
}

func NewProductListing(api ProductAPI) *ProductListing {
	return &ProductListing{
		Listing: newListing(
			api.List,
			catalog.SearchProducts,
			func(ctx context.Context, id string) error {
				_, err := api.Delete(ctx, id)
				return err
			},
			func(p *domain.Product) string { return p.ID },
		),
		api:      api,
		inflight: make(map[string]bool),
	}
}

// UpdateQuantity sets the quantity in the local snapshot right away and
// then sends it. On failure the previous quantity is restored.
func (l *ProductListing) UpdateQuantity(ctx context.Context, id string, quantity int) error {
	if err := domain.ValidateQuantity(quantity); err != nil {
		return err
	}

	l.mu.Lock()
	if l.inflight[id] {
		l.mu.Unlock()
		return ErrBusy
	}
	l.inflight[id] = true
	l.mu.Unlock()
	defer func() {
		l.mu.Lock()
		delete(l.inflight, id)
		l.mu.Unlock()
	}()

	previous, ok := l.setQuantity(id, quantity, -1)
	if !ok {
		return &domain.NotFoundError{Entity: "Product"}
	}

	stored, err := l.api.UpdateQuantity(ctx, id, quantity)
	if err != nil {
		l.setQuantity(id, previous.Quantity, previous.Version)
		return err
	}
	// The server bumps the version, so the local copy takes it too.
	l.setQuantity(id, stored.Quantity, stored.Version)
	return nil
}

// setQuantity replaces the snapshot entry with a copy carrying quantity,
// and version when it is not negative, and returns the old entry.
func (l *ProductListing) setQuantity(id string, quantity, version int) (domain.Product, bool) {
	l.Listing.mu.Lock()
	defer l.Listing.mu.Unlock()
	for i, p := range l.items {
		if p.ID == id {
			previous := *p
			updated := *p
			updated.Quantity = quantity
			if version >= 0 {
				updated.Version = version
			}
			l.items[i] = &updated
			return previous, true
		}
	}
	return domain.Product{}, false
}

// CollectionListing is the admin list of one collection kind.
type CollectionListing struct {
	*Listing[*domain.Collection]
}

func NewCollectionListing(api CollectionAPI) *CollectionListing {
	return &CollectionListing{
		Listing: newListing(
			api.List,
			catalog.SearchCollections,
			func(ctx context.Context, id string) error {
				_, err := api.Delete(ctx, id)
				return err
			},
			func(c *domain.Collection) string { return c.ID },
		),
	}
}
