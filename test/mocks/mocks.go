package mocks

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/avatarctic/product-catalog-api/internal/core/domain/product"
	"github.com/avatarctic/product-catalog-api/internal/core/ports"
	"github.com/google/uuid"
)

// ProductRepositoryMock is a lightweight mock for ProductRepository
type ProductRepositoryMock struct {
	FindPageFn func(ctx context.Context, filter product.Filter, page, perPage int) ([]*product.Product, int, error)
	GetByIDFn  func(ctx context.Context, id uuid.UUID) (*product.Product, error)
	CreateFn   func(ctx context.Context, p *product.Product) error
	UpdateFn   func(ctx context.Context, p *product.Product) error
	DeleteFn   func(ctx context.Context, id uuid.UUID) error
}

func (m *ProductRepositoryMock) FindPage(ctx context.Context, filter product.Filter, page, perPage int) ([]*product.Product, int, error) {
	if m.FindPageFn != nil {
		return m.FindPageFn(ctx, filter, page, perPage)
	}
	return nil, 0, nil
}
func (m *ProductRepositoryMock) GetByID(ctx context.Context, id uuid.UUID) (*product.Product, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	return nil, fmt.Errorf("product %s: %w", id, product.ErrNotFound)
}
func (m *ProductRepositoryMock) Create(ctx context.Context, p *product.Product) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, p)
	}
	return nil
}
func (m *ProductRepositoryMock) Update(ctx context.Context, p *product.Product) error {
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, p)
	}
	return nil
}
func (m *ProductRepositoryMock) Delete(ctx context.Context, id uuid.UUID) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, id)
	}
	return nil
}

// InMemoryProductRepository behaves like the SQL repository over a map and counts reads.
type InMemoryProductRepository struct {
	mu       sync.Mutex
	items    map[uuid.UUID]product.Product
	Reads    int
	FailWith error
}

func NewInMemoryProductRepository(seed ...*product.Product) *InMemoryProductRepository {
	r := &InMemoryProductRepository{items: map[uuid.UUID]product.Product{}}
	for _, p := range seed {
		r.items[p.ID] = *p
	}
	return r
}

func (r *InMemoryProductRepository) FindPage(ctx context.Context, filter product.Filter, page, perPage int) ([]*product.Product, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Reads++
	if r.FailWith != nil {
		return nil, 0, r.FailWith
	}
	matched := make([]product.Product, 0, len(r.items))
	for _, p := range r.items {
		if filter.NameContains != nil && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(*filter.NameContains)) {
			continue
		}
		matched = append(matched, p)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })
	out := []*product.Product{}
	start := (page - 1) * perPage
	for i := start; i < len(matched) && i < start+perPage; i++ {
		p := matched[i]
		out = append(out, &p)
	}
	return out, len(matched), nil
}

func (r *InMemoryProductRepository) GetByID(ctx context.Context, id uuid.UUID) (*product.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Reads++
	if r.FailWith != nil {
		return nil, r.FailWith
	}
	p, ok := r.items[id]
	if !ok {
		return nil, fmt.Errorf("product %s: %w", id, product.ErrNotFound)
	}
	return &p, nil
}

func (r *InMemoryProductRepository) Create(ctx context.Context, p *product.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailWith != nil {
		return r.FailWith
	}
	r.items[p.ID] = *p
	return nil
}

func (r *InMemoryProductRepository) Update(ctx context.Context, p *product.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailWith != nil {
		return r.FailWith
	}
	if _, ok := r.items[p.ID]; !ok {
		return product.ErrNotFound
	}
	r.items[p.ID] = *p
	return nil
}

func (r *InMemoryProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailWith != nil {
		return r.FailWith
	}
	if _, ok := r.items[id]; !ok {
		return product.ErrNotFound
	}
	delete(r.items, id)
	return nil
}

// CacheFake is an in-memory ports.Cache that ignores TTLs.
type CacheFake struct {
	mu      sync.Mutex
	data    map[string][]byte
	Flushes int
	GetErr  error
	SetErr  error
	FlushFn func() error
}

func NewCacheFake() *CacheFake {
	return &CacheFake{data: map[string][]byte{}}
}

func (c *CacheFake) Get(ctx context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.GetErr != nil {
		return nil, false, c.GetErr
	}
	v, ok := c.data[key]
	return v, ok, nil
}
func (c *CacheFake) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.SetErr != nil {
		return c.SetErr
	}
	c.data[key] = value
	return nil
}
func (c *CacheFake) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	return nil
}
func (c *CacheFake) Flush(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Flushes++
	if c.FlushFn != nil {
		if err := c.FlushFn(); err != nil {
			return err
		}
	}
	c.data = map[string][]byte{}
	return nil
}

// Keys returns the cached keys, sorted.
func (c *CacheFake) Keys() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	keys := make([]string, 0, len(c.data))
	for k := range c.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ProductServiceMock mock
type ProductServiceMock struct {
	ListProductsFn    func(ctx context.Context, q product.ListQuery) (*product.Page, error)
	GetProductFn      func(ctx context.Context, id uuid.UUID) (*product.Product, error)
	CreateProductFn   func(ctx context.Context, req *product.CreateProductRequest) (*product.Product, error)
	UpdateProductFn   func(ctx context.Context, id uuid.UUID, req *product.UpdateProductRequest) (*product.Product, error)
	DeleteProductFn   func(ctx context.Context, id uuid.UUID) error
	InvalidateCacheFn func(ctx context.Context) error
}

func (m *ProductServiceMock) ListProducts(ctx context.Context, q product.ListQuery) (*product.Page, error) {
	if m.ListProductsFn != nil {
		return m.ListProductsFn(ctx, q)
	}
	return &product.Page{Items: []*product.Product{}, Page: q.Page, PerPage: q.PerPage}, nil
}
func (m *ProductServiceMock) GetProduct(ctx context.Context, id uuid.UUID) (*product.Product, error) {
	if m.GetProductFn != nil {
		return m.GetProductFn(ctx, id)
	}
	return nil, product.NewOperationError(product.OpGet, product.ErrNotFound)
}
func (m *ProductServiceMock) CreateProduct(ctx context.Context, req *product.CreateProductRequest) (*product.Product, error) {
	if m.CreateProductFn != nil {
		return m.CreateProductFn(ctx, req)
	}
	return product.New(req, time.Now().UTC()), nil
}
func (m *ProductServiceMock) UpdateProduct(ctx context.Context, id uuid.UUID, req *product.UpdateProductRequest) (*product.Product, error) {
	if m.UpdateProductFn != nil {
		return m.UpdateProductFn(ctx, id, req)
	}
	return nil, product.NewOperationError(product.OpUpdate, product.ErrNotFound)
}
func (m *ProductServiceMock) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	if m.DeleteProductFn != nil {
		return m.DeleteProductFn(ctx, id)
	}
	return nil
}
func (m *ProductServiceMock) InvalidateCache(ctx context.Context) error {
	if m.InvalidateCacheFn != nil {
		return m.InvalidateCacheFn(ctx)
	}
	return nil
}

// RateLimiterServiceMock mock
type RateLimiterServiceMock struct {
	AllowFn func(ctx context.Context, clientKey string) (bool, int, int, time.Time, error)
}

func (m *RateLimiterServiceMock) Allow(ctx context.Context, clientKey string) (bool, int, int, time.Time, error) {
	if m.AllowFn != nil {
		return m.AllowFn(ctx, clientKey)
	}
	return true, 100, 100, time.Now().Add(time.Minute), nil
}

// RateLimitRepositoryMock mock
type RateLimitRepositoryMock struct {
	IncrementWindowFn func(ctx context.Context, clientKey string, window time.Duration, keyPrefix string, ttl time.Duration) (int, time.Time, error)
}

func (m *RateLimitRepositoryMock) IncrementWindow(ctx context.Context, clientKey string, window time.Duration, keyPrefix string, ttl time.Duration) (int, time.Time, error) {
	if m.IncrementWindowFn != nil {
		return m.IncrementWindowFn(ctx, clientKey, window, keyPrefix, ttl)
	}
	return 1, time.Now().Truncate(window), nil
}

// HealthCheckerMock mock
type HealthCheckerMock struct {
	NameValue string
	CheckFn   func(ctx context.Context) error
}

func (m *HealthCheckerMock) Name() string { return m.NameValue }
func (m *HealthCheckerMock) Check(ctx context.Context) error {
	if m.CheckFn != nil {
		return m.CheckFn(ctx)
	}
	return nil
}

var (
	_ ports.ProductRepository   = (*ProductRepositoryMock)(nil)
	_ ports.ProductRepository   = (*InMemoryProductRepository)(nil)
	_ ports.Cache               = (*CacheFake)(nil)
	_ ports.ProductService      = (*ProductServiceMock)(nil)
	_ ports.RateLimiterService  = (*RateLimiterServiceMock)(nil)
	_ ports.RateLimitRepository = (*RateLimitRepositoryMock)(nil)
	_ ports.HealthChecker       = (*HealthCheckerMock)(nil)
)
