package services_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	impl "github.com/avatarctic/product-catalog-api/internal/application/services"
	"github.com/avatarctic/product-catalog-api/internal/core/domain/product"
	"github.com/avatarctic/product-catalog-api/test/mocks"
)

func seedProducts(n int) []*product.Product {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	out := make([]*product.Product, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, &product.Product{
			ID:        uuid.New(),
			Name:      fmt.Sprintf("Product %02d", i),
			Price:     decimal.NewFromInt(int64(i + 1)),
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
			UpdatedAt: base.Add(time.Duration(i) * time.Minute),
		})
	}
	return out
}

func newService(repo *mocks.InMemoryProductRepository, cache *mocks.CacheFake) *impl.ProductService {
	return impl.NewProductService(repo, cache, &impl.ProductServiceConfig{CacheTTL: time.Hour}, nil)
}

func TestListProducts_CacheHitIsReproducible(t *testing.T) {
	repo := mocks.NewInMemoryProductRepository(seedProducts(25)...)
	cache := mocks.NewCacheFake()
	svc := newService(repo, cache)
	ctx := context.Background()
	q := product.NewListQuery(1, 10, "", 10, 100)

	first, err := svc.ListProducts(ctx, q)
	require.NoError(t, err)
	second, err := svc.ListProducts(ctx, q)
	require.NoError(t, err)

	a, _ := json.Marshal(first)
	b, _ := json.Marshal(second)
	require.JSONEq(t, string(a), string(b))
	assert.Equal(t, 1, repo.Reads, "second call must be served from cache")
	assert.Equal(t, 25, second.Total)
	assert.Len(t, second.Items, 10)
	assert.Equal(t, "Product 24", second.Items[0].Name, "newest first")
}

func TestListProducts_SearchAndAbsentSearchUseDistinctEntries(t *testing.T) {
	repo := mocks.NewInMemoryProductRepository(seedProducts(5)...)
	cache := mocks.NewCacheFake()
	svc := newService(repo, cache)
	ctx := context.Background()

	all, err := svc.ListProducts(ctx, product.NewListQuery(1, 10, "", 10, 100))
	require.NoError(t, err)
	filtered, err := svc.ListProducts(ctx, product.NewListQuery(1, 10, "03", 10, 100))
	require.NoError(t, err)

	assert.Equal(t, 5, all.Total)
	assert.Equal(t, 1, filtered.Total)
	assert.Len(t, cache.Keys(), 2)
}

func TestWrites_FlushWholeCache(t *testing.T) {
	seed := seedProducts(3)
	repo := mocks.NewInMemoryProductRepository(seed...)
	cache := mocks.NewCacheFake()
	svc := newService(repo, cache)
	ctx := context.Background()
	q := product.NewListQuery(1, 10, "", 10, 100)

	_, err := svc.ListProducts(ctx, q)
	require.NoError(t, err)
	_, err = svc.GetProduct(ctx, seed[0].ID)
	require.NoError(t, err)
	require.Len(t, cache.Keys(), 2)

	price := decimal.RequireFromString("9.99")
	created, err := svc.CreateProduct(ctx, &product.CreateProductRequest{Name: "Widget", Price: &price})
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, created.ID)
	assert.Empty(t, cache.Keys())

	page, err := svc.ListProducts(ctx, q)
	require.NoError(t, err)
	assert.Equal(t, 4, page.Total)
	assert.Equal(t, "Widget", page.Items[0].Name)

	name := "Renamed"
	_, err = svc.GetProduct(ctx, seed[0].ID)
	require.NoError(t, err)
	updated, err := svc.UpdateProduct(ctx, seed[0].ID, &product.UpdateProductRequest{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Name)
	assert.True(t, updated.Price.Equal(seed[0].Price))
	got, err := svc.GetProduct(ctx, seed[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Name)

	require.NoError(t, svc.DeleteProduct(ctx, seed[0].ID))
	_, err = svc.GetProduct(ctx, seed[0].ID)
	var opErr *product.OperationError
	require.ErrorAs(t, err, &opErr)
	assert.Equal(t, product.KindNotFound, opErr.Kind)
	assert.Equal(t, 3, cache.Flushes)
}

func TestGetProduct_NotFoundIsTypedAndNotCached(t *testing.T) {
	repo := mocks.NewInMemoryProductRepository()
	cache := mocks.NewCacheFake()
	svc := newService(repo, cache)

	_, err := svc.GetProduct(context.Background(), uuid.New())
	var opErr *product.OperationError
	require.ErrorAs(t, err, &opErr)
	assert.Equal(t, product.OpGet, opErr.Op)
	assert.Equal(t, product.KindNotFound, opErr.Kind)
	assert.Empty(t, cache.Keys())
}

func TestUpdateAndDelete_MissingProductFailsWithoutFlush(t *testing.T) {
	repo := mocks.NewInMemoryProductRepository()
	cache := mocks.NewCacheFake()
	svc := newService(repo, cache)
	ctx := context.Background()

	name := "x"
	_, err := svc.UpdateProduct(ctx, uuid.New(), &product.UpdateProductRequest{Name: &name})
	var opErr *product.OperationError
	require.ErrorAs(t, err, &opErr)
	assert.Equal(t, product.OpUpdate, opErr.Op)

	err = svc.DeleteProduct(ctx, uuid.New())
	require.ErrorAs(t, err, &opErr)
	assert.Equal(t, product.OpDelete, opErr.Op)
	assert.Equal(t, 0, cache.Flushes)
}

func TestCreateProduct_PersistenceFailure(t *testing.T) {
	repo := &mocks.ProductRepositoryMock{CreateFn: func(ctx context.Context, p *product.Product) error {
		return errors.New("pq: connection refused")
	}}
	cache := mocks.NewCacheFake()
	svc := impl.NewProductService(repo, cache, nil, nil)

	price := decimal.NewFromInt(1)
	_, err := svc.CreateProduct(context.Background(), &product.CreateProductRequest{Name: "n", Price: &price})
	var opErr *product.OperationError
	require.ErrorAs(t, err, &opErr)
	assert.Equal(t, product.KindPersistence, opErr.Kind)
	assert.Equal(t, 0, cache.Flushes)
}

func TestCacheFailures_DegradeToStore(t *testing.T) {
	repo := mocks.NewInMemoryProductRepository(seedProducts(2)...)
	cache := mocks.NewCacheFake()
	cache.GetErr = errors.New("redis down")
	cache.SetErr = errors.New("redis down")
	cache.FlushFn = func() error { return errors.New("redis down") }
	svc := newService(repo, cache)
	ctx := context.Background()

	page, err := svc.ListProducts(ctx, product.NewListQuery(1, 10, "", 10, 100))
	require.NoError(t, err)
	assert.Equal(t, 2, page.Total)

	price := decimal.NewFromInt(3)
	_, err = svc.CreateProduct(ctx, &product.CreateProductRequest{Name: "still saved", Price: &price})
	require.NoError(t, err, "a failed flush must not fail a committed write")
}

func TestListProducts_ConcurrentMissesShareOneLoad(t *testing.T) {
	var loads int32
	release := make(chan struct{})
	repo := &mocks.ProductRepositoryMock{FindPageFn: func(ctx context.Context, f product.Filter, page, perPage int) ([]*product.Product, int, error) {
		atomic.AddInt32(&loads, 1)
		<-release
		return []*product.Product{}, 0, nil
	}}
	svc := impl.NewProductService(repo, mocks.NewCacheFake(), nil, nil)
	q := product.NewListQuery(1, 10, "", 10, 100)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.ListProducts(context.Background(), q)
			assert.NoError(t, err)
		}()
	}
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&loads))
}

func TestListProducts_SharedLoadSurvivesLeaderCancellation(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	repo := &mocks.ProductRepositoryMock{FindPageFn: func(ctx context.Context, f product.Filter, page, perPage int) ([]*product.Product, int, error) {
		once.Do(func() { close(started) })
		<-release
		if err := ctx.Err(); err != nil {
			return nil, 0, err
		}
		return []*product.Product{}, 0, nil
	}}
	svc := impl.NewProductService(repo, mocks.NewCacheFake(), nil, nil)
	q := product.NewListQuery(1, 10, "", 10, 100)

	leaderCtx, cancelLeader := context.WithCancel(context.Background())
	leaderDone := make(chan struct{})
	go func() {
		defer close(leaderDone)
		_, _ = svc.ListProducts(leaderCtx, q)
	}()
	<-started

	followerErr := make(chan error, 1)
	go func() {
		_, err := svc.ListProducts(context.Background(), q)
		followerErr <- err
	}()
	time.Sleep(50 * time.Millisecond)
	cancelLeader()
	close(release)

	require.NoError(t, <-followerErr)
	<-leaderDone
}

func TestListProducts_StoreFailureIsTyped(t *testing.T) {
	repo := mocks.NewInMemoryProductRepository()
	repo.FailWith = errors.New("timeout")
	svc := newService(repo, mocks.NewCacheFake())

	_, err := svc.ListProducts(context.Background(), product.NewListQuery(1, 10, "", 10, 100))
	var opErr *product.OperationError
	require.ErrorAs(t, err, &opErr)
	assert.Equal(t, product.OpList, opErr.Op)
	assert.Equal(t, product.KindPersistence, opErr.Kind)
}
