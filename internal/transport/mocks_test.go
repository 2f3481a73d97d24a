package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"
	"time"

	"boutique-catalog/internal/config"
	"boutique-catalog/internal/domain"
	"boutique-catalog/internal/middleware"
	"boutique-catalog/internal/repository"
	"boutique-catalog/internal/service"
	"boutique-catalog/internal/storage"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const (
	testSecret   = "transport-secret"
	testPassword = "s3cret-pass"
)

var pngImage = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00\x1f\x15\xc4\x89")

// memoryCollections is an in-memory CollectionRepository.
type memoryCollections struct {
	mu      sync.Mutex
	records map[string]*domain.Collection
}

func newMemoryCollections() *memoryCollections {
	return &memoryCollections{records: map[string]*domain.Collection{}}
}

func (m *memoryCollections) Create(ctx context.Context, c *domain.Collection) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.records {
		if existing.Name == c.Name {
			return repository.ErrCollectionAlreadyExists
		}
	}
	c.Version = 1
	c.CreatedAt = time.Now()
	c.UpdatedAt = c.CreatedAt
	stored := *c
	m.records[c.ID] = &stored
	return nil
}

func (m *memoryCollections) Update(ctx context.Context, c *domain.Collection) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.records[c.ID]
	if !ok {
		return repository.ErrCollectionNotFound
	}
	if stored.Version != c.Version {
		return repository.ErrVersionConflict
	}
	c.Version++
	updated := *c
	m.records[c.ID] = &updated
	return nil
}

func (m *memoryCollections) Delete(ctx context.Context, id string) (*domain.Collection, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.records[id]
	if !ok {
		return nil, repository.ErrCollectionNotFound
	}
	delete(m.records, id)
	return c, nil
}

func (m *memoryCollections) FindByID(ctx context.Context, id string) (*domain.Collection, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.records[id]
	if !ok {
		return nil, repository.ErrCollectionNotFound
	}
	found := *c
	return &found, nil
}

func (m *memoryCollections) FindByName(ctx context.Context, name string) (*domain.Collection, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.records {
		if c.Name == name {
			found := *c
			return &found, nil
		}
	}
	return nil, repository.ErrCollectionNotFound
}

func (m *memoryCollections) List(ctx context.Context) ([]*domain.Collection, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.Collection
	for _, c := range m.records {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// memoryProducts is an in-memory ProductRepository that joins categories
// on reads.
type memoryProducts struct {
	mu         sync.Mutex
	records    map[string]*domain.Product
	categories *memoryCollections
}

func newMemoryProducts(categories *memoryCollections) *memoryProducts {
	return &memoryProducts{records: map[string]*domain.Product{}, categories: categories}
}

func (m *memoryProducts) join(p *domain.Product) *domain.Product {
	out := *p
	out.Category, _ = m.categories.FindByID(context.Background(), p.CategoryID)
	return &out
}

func (m *memoryProducts) Create(ctx context.Context, p *domain.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p.Version = 1
	p.CreatedAt = time.Now()
	stored := *p
	m.records[p.ID] = &stored
	return nil
}

func (m *memoryProducts) Update(ctx context.Context, p *domain.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.records[p.ID]
	if !ok {
		return repository.ErrProductNotFound
	}
	if stored.Version != p.Version {
		return repository.ErrVersionConflict
	}
	p.Version++
	updated := *p
	m.records[p.ID] = &updated
	return nil
}

func (m *memoryProducts) UpdateQuantity(ctx context.Context, id string, quantity int) (*domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.records[id]
	if !ok {
		return nil, repository.ErrProductNotFound
	}
	p.Quantity = quantity
	p.Version++
	return m.join(p), nil
}

func (m *memoryProducts) Delete(ctx context.Context, id string) (*domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.records[id]
	if !ok {
		return nil, repository.ErrProductNotFound
	}
	delete(m.records, id)
	return p, nil
}

func (m *memoryProducts) FindByID(ctx context.Context, id string) (*domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.records[id]
	if !ok {
		return nil, repository.ErrProductNotFound
	}
	return m.join(p), nil
}

func (m *memoryProducts) filter(keep func(*domain.Product) bool) []*domain.Product {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.Product
	for _, p := range m.records {
		if keep(p) {
			out = append(out, m.join(p))
		}
	}
	return out
}

func (m *memoryProducts) List(ctx context.Context) ([]*domain.Product, error) {
	return m.filter(func(*domain.Product) bool { return true }), nil
}

func (m *memoryProducts) ListByCategory(ctx context.Context, id string) ([]*domain.Product, error) {
	return m.filter(func(p *domain.Product) bool { return p.CategoryID == id }), nil
}

func (m *memoryProducts) ListByLookbook(ctx context.Context, id string) ([]*domain.Product, error) {
	return m.filter(func(p *domain.Product) bool { return p.LookbookID == id }), nil
}

// memorySessions is an in-memory SessionRepository.
type memorySessions struct {
	mu      sync.Mutex
	revoked map[string]bool
}

func (m *memorySessions) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if ttl > 0 {
		m.revoked[tokenID] = true
	}
	return nil
}

func (m *memorySessions) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.revoked[tokenID], nil
}

// testAPI is a router wired with real services over in-memory
// repositories and a local image store.
type testAPI struct {
	t          *testing.T
	router     chi.Router
	products   *memoryProducts
	categories *memoryCollections
	lookbooks  *memoryCollections
	uploadsDir string
	token      string
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	logger := zap.NewNop()

	uploadsDir := t.TempDir()
	images, err := storage.NewLocalStore(uploadsDir, "/uploads", "")
	require.NoError(t, err)

	categories := newMemoryCollections()
	lookbooks := newMemoryCollections()
	products := newMemoryProducts(categories)
	sessions := &memorySessions{revoked: map[string]bool{}}

	auth, err := service.NewAuthService(
		config.AdminConfig{Username: "admin", Password: testPassword},
		config.JWTConfig{Secret: testSecret, AccessExpiry: 60},
		sessions,
	)
	require.NoError(t, err)

	const maxImageBytes = 1 << 20
	authMiddleware := middleware.AuthMiddleware(testSecret, sessions, logger)
	noLimit := func(next http.Handler) http.Handler { return next }

	router := chi.NewRouter()
	NewProductHandler(service.NewProductService(products, categories, lookbooks, images, logger), maxImageBytes, logger).
		RegisterRoutes(router, authMiddleware)
	NewCollectionHandler(service.NewCollectionService(domain.KindCategory, categories, images, logger), "/api/categories", maxImageBytes, logger).
		RegisterRoutes(router, authMiddleware)
	NewCollectionHandler(service.NewCollectionService(domain.KindLookbook, lookbooks, images, logger), "/api/lookbook", maxImageBytes, logger).
		RegisterRoutes(router, authMiddleware)
	NewAuthHandler(auth, logger).RegisterRoutes(router, noLimit, authMiddleware)

	api := &testAPI{
		t:          t,
		router:     router,
		products:   products,
		categories: categories,
		lookbooks:  lookbooks,
		uploadsDir: uploadsDir,
	}
	api.token = api.login()
	return api
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

func (a *testAPI) do(req *http.Request) (*httptest.ResponseRecorder, envelope) {
	a.t.Helper()
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)

	var body envelope
	require.NoError(a.t, json.Unmarshal(w.Body.Bytes(), &body), "body: %s", w.Body.String())
	return w, body
}

func (a *testAPI) login() string {
	a.t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login",
		bytes.NewBufferString(`{"username":"admin","password":"`+testPassword+`"}`))
	req.Header.Set("Content-Type", "application/json")

	w, body := a.do(req)
	require.Equal(a.t, http.StatusOK, w.Code)

	var session service.Session
	require.NoError(a.t, json.Unmarshal(body.Data, &session))
	return session.Token
}

// form builds a multipart request; an empty filename sends no image.
func (a *testAPI) form(method, path string, fields map[string]string, filename string, image []byte) *http.Request {
	a.t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(a.t, mw.WriteField(k, v))
	}
	if filename != "" {
		part, err := mw.CreateFormFile("image", filename)
		require.NoError(a.t, err)
		_, err = part.Write(image)
		require.NoError(a.t, err)
	}
	require.NoError(a.t, mw.Close())

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+a.token)
	return req
}

func (a *testAPI) authorized(method, path, body string) *http.Request {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+a.token)
	return req
}

func (a *testAPI) createCollection(path, name string) domain.Collection {
	a.t.Helper()
	w, body := a.do(a.form(http.MethodPost, path, map[string]string{"name": name}, "cover.png", pngImage))
	require.Equal(a.t, http.StatusCreated, w.Code, body.Message)

	var c domain.Collection
	require.NoError(a.t, json.Unmarshal(body.Data, &c))
	return c
}
