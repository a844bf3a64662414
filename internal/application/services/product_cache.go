package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/avatarctic/product-catalog-api/internal/core/domain/product"
	"github.com/google/uuid"
)

const (
	cacheKeyCollection = "products"
	cacheKeySingle     = "product"
	noSearchToken      = "nosearch"
)

// collectionCacheKey encodes the list parameters. A present search term is
// always quoted, so it can never produce the bare absent token.
func collectionCacheKey(q product.ListQuery) string {
	search := noSearchToken
	if q.Search != nil {
		search = "search=" + strconv.Quote(*q.Search)
	}
	return fmt.Sprintf("%s:page=%d:per_page=%d:%s", cacheKeyCollection, q.Page, q.PerPage, search)
}

func singleCacheKey(id uuid.UUID) string {
	return cacheKeySingle + ":" + id.String()
}

func cacheGet[T any](ctx context.Context, s *ProductService, key string) (*T, bool) {
	if s.cache == nil {
		return nil, false
	}
	cctx, cancel := context.WithTimeout(ctx, s.cfg.CacheTimeout)
	defer cancel()
	b, ok, err := s.cache.Get(cctx, key)
	if err != nil {
		s.logger.WithField("key", key).WithError(err).Warn("cache read failed; falling back to store")
		return nil, false
	}
	if !ok {
		return nil, false
	}
	var v T
	if err := json.Unmarshal(b, &v); err != nil {
		s.logger.WithField("key", key).WithError(err).Warn("discarding undecodable cache entry")
		return nil, false
	}
	return &v, true
}

func cacheSetSilently(ctx context.Context, s *ProductService, key string, v any) {
	if s.cache == nil {
		return
	}
	b, err := json.Marshal(v)
	if err != nil {
		return
	}
	cctx, cancel := context.WithTimeout(ctx, s.cfg.CacheTimeout)
	defer cancel()
	if err := s.cache.Set(cctx, key, b, s.cfg.CacheTTL); err != nil {
		s.logger.WithField("key", key).WithError(err).Warn("cache write failed")
	}
}

// readThrough serves key from the cache, or loads it once per generation and
// caches the result. Loads started before a flush never repopulate the cache.
// The shared load is detached from the first caller's cancellation so that
// callers waiting on the same key are not failed by it.
func readThrough[T any](ctx context.Context, s *ProductService, key string, load func(ctx context.Context) (*T, error)) (*T, error) {
	if v, ok := cacheGet[T](ctx, s, key); ok {
		return v, nil
	}
	gen := s.generation.Load()
	res, err, _ := s.sf.Do(fmt.Sprintf("%d|%s", gen, key), func() (any, error) {
		shared := context.WithoutCancel(ctx)
		if v, ok := cacheGet[T](shared, s, key); ok {
			return v, nil
		}
		sctx, cancel := context.WithTimeout(shared, s.cfg.StoreTimeout)
		defer cancel()
		v, err := load(sctx)
		if err != nil {
			return nil, err
		}
		if s.generation.Load() == gen {
			cacheSetSilently(shared, s, key, v)
		}
		return v, nil
	})
	if err != nil {
		return nil, err
	}
	v, ok := res.(*T)
	if !ok {
		return nil, fmt.Errorf("unexpected type from singleflight result")
	}
	return v, nil
}
