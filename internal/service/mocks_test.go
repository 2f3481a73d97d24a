package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"boutique-catalog/internal/domain"
	"boutique-catalog/internal/repository"
	"boutique-catalog/internal/storage"
)

// Mock repositories for testing
type mockCollectionRepository struct {
	mu      sync.Mutex
	records map[string]*domain.Collection
	failOn  string // operation that returns errStore
}

var errStore = errors.New("store unavailable")

func newMockCollectionRepository() *mockCollectionRepository {
	return &mockCollectionRepository{records: make(map[string]*domain.Collection)}
}

func (m *mockCollectionRepository) add(name string) *domain.Collection {
	c := &domain.Collection{ID: domain.NewID(), Name: name, Image: "/uploads/" + name + ".jpg", Version: 1, CreatedAt: time.Now()}
	m.records[c.ID] = c
	return c
}

func (m *mockCollectionRepository) Create(ctx context.Context, c *domain.Collection) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failOn == "create" {
		return errStore
	}
	for _, existing := range m.records {
		if existing.Name == c.Name {
			return repository.ErrCollectionAlreadyExists
		}
	}
	c.Version = 1
	c.CreatedAt = time.Now()
	c.UpdatedAt = c.CreatedAt
	copied := *c
	m.records[c.ID] = &copied
	return nil
}

func (m *mockCollectionRepository) Update(ctx context.Context, c *domain.Collection) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failOn == "update" {
		return errStore
	}
	stored, ok := m.records[c.ID]
	if !ok {
		return repository.ErrCollectionNotFound
	}
	if stored.Version != c.Version {
		return repository.ErrVersionConflict
	}
	c.Version++
	copied := *c
	m.records[c.ID] = &copied
	return nil
}

func (m *mockCollectionRepository) Delete(ctx context.Context, id string) (*domain.Collection, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.records[id]
	if !ok {
		return nil, repository.ErrCollectionNotFound
	}
	delete(m.records, id)
	return c, nil
}

func (m *mockCollectionRepository) FindByID(ctx context.Context, id string) (*domain.Collection, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.records[id]
	if !ok {
		return nil, repository.ErrCollectionNotFound
	}
	copied := *c
	return &copied, nil
}

func (m *mockCollectionRepository) FindByName(ctx context.Context, name string) (*domain.Collection, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.records {
		if c.Name == name {
			copied := *c
			return &copied, nil
		}
	}
	return nil, repository.ErrCollectionNotFound
}

func (m *mockCollectionRepository) List(ctx context.Context) ([]*domain.Collection, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*domain.Collection{}
	for _, c := range m.records {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

type mockProductRepository struct {
	mu         sync.Mutex
	products   map[string]*domain.Product
	categories *mockCollectionRepository
	failOn     string
}

func newMockProductRepository(categories *mockCollectionRepository) *mockProductRepository {
	return &mockProductRepository{products: make(map[string]*domain.Product), categories: categories}
}

func (m *mockProductRepository) withCategory(p *domain.Product) *domain.Product {
	copied := *p
	copied.Category = nil
	if c, err := m.categories.FindByID(context.Background(), p.CategoryID); err == nil {
		copied.Category = c
	}
	return &copied
}

func (m *mockProductRepository) Create(ctx context.Context, p *domain.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failOn == "create" {
		return errStore
	}
	p.Version = 1
	p.CreatedAt = time.Now()
	copied := *p
	m.products[p.ID] = &copied
	return nil
}

func (m *mockProductRepository) Update(ctx context.Context, p *domain.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failOn == "update" {
		return errStore
	}
	stored, ok := m.products[p.ID]
	if !ok {
		return repository.ErrProductNotFound
	}
	if stored.Version != p.Version {
		return repository.ErrVersionConflict
	}
	p.Version++
	copied := *p
	m.products[p.ID] = &copied
	return nil
}

func (m *mockProductRepository) UpdateQuantity(ctx context.Context, id string, quantity int) (*domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products[id]
	if !ok {
		return nil, repository.ErrProductNotFound
	}
	p.Quantity = quantity
	p.Version++
	copied := *p
	return &copied, nil
}

func (m *mockProductRepository) Delete(ctx context.Context, id string) (*domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products[id]
	if !ok {
		return nil, repository.ErrProductNotFound
	}
	delete(m.products, id)
	return p, nil
}

func (m *mockProductRepository) FindByID(ctx context.Context, id string) (*domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products[id]
	if !ok {
		return nil, repository.ErrProductNotFound
	}
	return m.withCategory(p), nil
}

func (m *mockProductRepository) filter(keep func(*domain.Product) bool) []*domain.Product {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*domain.Product{}
	for _, p := range m.products {
		if keep(p) {
			out = append(out, m.withCategory(p))
		}
	}
	return out
}

func (m *mockProductRepository) List(ctx context.Context) ([]*domain.Product, error) {
	return m.filter(func(*domain.Product) bool { return true }), nil
}

func (m *mockProductRepository) ListByCategory(ctx context.Context, categoryID string) ([]*domain.Product, error) {
	return m.filter(func(p *domain.Product) bool { return p.CategoryID == categoryID }), nil
}

func (m *mockProductRepository) ListByLookbook(ctx context.Context, lookbookID string) ([]*domain.Product, error) {
	return m.filter(func(p *domain.Product) bool { return p.LookbookID == lookbookID }), nil
}

// mockImageStore records saved and deleted URLs.
type mockImageStore struct {
	mu         sync.Mutex
	saved      []string
	deleted    []string
	failSave   bool
	failDelete bool
}

func (m *mockImageStore) Save(ctx context.Context, prefix string, upload *storage.Upload) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failSave {
		return "", errStore
	}
	url := fmt.Sprintf("/uploads/%s-%d%s", prefix, len(m.saved)+1, upload.Extension)
	m.saved = append(m.saved, url)
	return url, nil
}

func (m *mockImageStore) Delete(ctx context.Context, url string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failDelete {
		return errStore
	}
	m.deleted = append(m.deleted, url)
	return nil
}

func testUpload() *storage.Upload {
	return &storage.Upload{Filename: "kaftan.jpg", ContentType: "image/jpeg", Extension: ".jpg", Data: []byte{0xff, 0xd8, 0xff}}
}

type mockSessionRepository struct {
	revoked map[string]time.Duration
}

func (m *mockSessionRepository) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	m.revoked[tokenID] = ttl
	return nil
}

func (m *mockSessionRepository) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	_, ok := m.revoked[tokenID]
	return ok, nil
}
