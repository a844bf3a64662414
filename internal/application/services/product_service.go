package services

import (
	"context"
	"io"
	"sync/atomic"
	"time"

	"github.com/avatarctic/product-catalog-api/internal/core/domain/product"
	"github.com/avatarctic/product-catalog-api/internal/core/ports"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

// ProductServiceConfig groups the cache and deadline settings of the product service.
type ProductServiceConfig struct {
	CacheTTL     time.Duration
	CacheTimeout time.Duration
	StoreTimeout time.Duration
}

// ProductService serves product reads through the cache and flushes the
// whole cache after every successful write.
type ProductService struct {
	repo   ports.ProductRepository
	cache  ports.Cache
	cfg    ProductServiceConfig
	logger *logrus.Logger
	now    func() time.Time

	sf         singleflight.Group
	generation atomic.Uint64
}

func NewProductService(repo ports.ProductRepository, cache ports.Cache, cfg *ProductServiceConfig, logger *logrus.Logger) *ProductService {
	c := ProductServiceConfig{
		CacheTTL:     time.Hour,
		CacheTimeout: time.Second,
		StoreTimeout: 5 * time.Second,
	}
	if cfg != nil {
		if cfg.CacheTTL > 0 {
			c.CacheTTL = cfg.CacheTTL
		}
		if cfg.CacheTimeout > 0 {
			c.CacheTimeout = cfg.CacheTimeout
		}
		if cfg.StoreTimeout > 0 {
			c.StoreTimeout = cfg.StoreTimeout
		}
	}
	if logger == nil {
		logger = logrus.New()
		logger.SetOutput(io.Discard)
	}
	return &ProductService{
		repo:   repo,
		cache:  cache,
		cfg:    c,
		logger: logger,
		now:    time.Now,
	}
}

func (s *ProductService) ListProducts(ctx context.Context, q product.ListQuery) (*product.Page, error) {
	page, err := readThrough(ctx, s, collectionCacheKey(q), func(ctx context.Context) (*product.Page, error) {
		items, total, err := s.repo.FindPage(ctx, q.Filter(), q.Page, q.PerPage)
		if err != nil {
			return nil, err
		}
		if items == nil {
			items = []*product.Product{}
		}
		return &product.Page{Items: items, Total: total, Page: q.Page, PerPage: q.PerPage}, nil
	})
	if err != nil {
		fields := logrus.Fields{"page": q.Page, "per_page": q.PerPage}
		if q.Search != nil {
			fields["search"] = *q.Search
		}
		return nil, s.fail(product.OpList, err, fields)
	}
	return page, nil
}

func (s *ProductService) GetProduct(ctx context.Context, id uuid.UUID) (*product.Product, error) {
	p, err := readThrough(ctx, s, singleCacheKey(id), func(ctx context.Context) (*product.Product, error) {
		return s.repo.GetByID(ctx, id)
	})
	if err != nil {
		return nil, s.fail(product.OpGet, err, logrus.Fields{"product_id": id})
	}
	return p, nil
}

func (s *ProductService) CreateProduct(ctx context.Context, req *product.CreateProductRequest) (*product.Product, error) {
	p := product.New(req, s.timestamp())

	sctx, cancel := context.WithTimeout(ctx, s.cfg.StoreTimeout)
	defer cancel()
	if err := s.repo.Create(sctx, p); err != nil {
		return nil, s.fail(product.OpCreate, err, logrus.Fields{"name": req.Name})
	}
	s.flush(ctx, product.OpCreate)

	s.logger.WithFields(logrus.Fields{"product_id": p.ID, "name": p.Name}).Info("product created")
	return p, nil
}

func (s *ProductService) UpdateProduct(ctx context.Context, id uuid.UUID, req *product.UpdateProductRequest) (*product.Product, error) {
	sctx, cancel := context.WithTimeout(ctx, s.cfg.StoreTimeout)
	defer cancel()

	p, err := s.repo.GetByID(sctx, id)
	if err != nil {
		return nil, s.fail(product.OpUpdate, err, logrus.Fields{"product_id": id})
	}
	p.ApplyUpdate(req, s.timestamp())
	if err := s.repo.Update(sctx, p); err != nil {
		return nil, s.fail(product.OpUpdate, err, logrus.Fields{"product_id": id})
	}
	s.flush(ctx, product.OpUpdate)

	s.logger.WithFields(logrus.Fields{"product_id": id}).Info("product updated")
	return p, nil
}

func (s *ProductService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	sctx, cancel := context.WithTimeout(ctx, s.cfg.StoreTimeout)
	defer cancel()

	if _, err := s.repo.GetByID(sctx, id); err != nil {
		return s.fail(product.OpDelete, err, logrus.Fields{"product_id": id})
	}
	if err := s.repo.Delete(sctx, id); err != nil {
		return s.fail(product.OpDelete, err, logrus.Fields{"product_id": id})
	}
	s.flush(ctx, product.OpDelete)

	s.logger.WithFields(logrus.Fields{"product_id": id}).Info("product deleted")
	return nil
}

// InvalidateCache drops every cached read; used after out-of-band writes such as seeding.
func (s *ProductService) InvalidateCache(ctx context.Context) error {
	s.generation.Add(1)
	if s.cache == nil {
		return nil
	}
	cctx, cancel := context.WithTimeout(ctx, s.cfg.CacheTimeout)
	defer cancel()
	return s.cache.Flush(cctx)
}

// flush runs after a committed write, so a cache error is logged but does not fail the write.
func (s *ProductService) flush(ctx context.Context, op product.Operation) {
	if err := s.InvalidateCache(ctx); err != nil {
		s.logger.WithField("operation", op).WithError(err).Error("failed to flush product cache after write")
	}
}

func (s *ProductService) fail(op product.Operation, err error, fields logrus.Fields) error {
	opErr := product.NewOperationError(op, err)
	entry := s.logger.WithFields(fields).WithField("operation", op).WithError(err)
	if opErr.Kind == product.KindNotFound {
		entry.Warn("product operation failed")
	} else {
		entry.Error("product operation failed")
	}
	return opErr
}

// timestamp matches the microsecond precision Postgres stores.
func (s *ProductService) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Microsecond)
}

var _ ports.ProductService = (*ProductService)(nil)
