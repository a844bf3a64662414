// Package metrics instruments infrastructure adapters with Prometheus collectors.
package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/avatarctic/product-catalog-api/internal/core/ports"
)

const (
	resultHit   = "hit"
	resultMiss  = "miss"
	resultOK    = "ok"
	resultError = "error"
)

// InstrumentedCache counts every operation of the wrapped cache by outcome.
type InstrumentedCache struct {
	next ports.Cache
	ops  *prometheus.CounterVec
}

// NewInstrumentedCache wraps next and registers cache_operations_total on reg.
// Registering twice on the same registry reuses the existing collector.
func NewInstrumentedCache(next ports.Cache, reg prometheus.Registerer) (*InstrumentedCache, error) {
	ops := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_operations_total",
			Help: "The total number of cache operations",
		},
		[]string{"operation", "result"},
	)
	ops, err := register(reg, ops)
	if err != nil {
		return nil, err
	}
	return &InstrumentedCache{next: next, ops: ops}, nil
}

func (c *InstrumentedCache) observe(op string, err error) {
	result := resultOK
	if err != nil {
		result = resultError
	}
	c.ops.WithLabelValues(op, result).Inc()
}

func (c *InstrumentedCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	val, ok, err := c.next.Get(ctx, key)
	switch {
	case err != nil:
		c.ops.WithLabelValues("get", resultError).Inc()
	case ok:
		c.ops.WithLabelValues("get", resultHit).Inc()
	default:
		c.ops.WithLabelValues("get", resultMiss).Inc()
	}
	return val, ok, err
}

func (c *InstrumentedCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	err := c.next.Set(ctx, key, value, ttl)
	c.observe("set", err)
	return err
}

func (c *InstrumentedCache) Delete(ctx context.Context, key string) error {
	err := c.next.Delete(ctx, key)
	c.observe("delete", err)
	return err
}

func (c *InstrumentedCache) Flush(ctx context.Context) error {
	err := c.next.Flush(ctx)
	c.observe("flush", err)
	return err
}

var _ ports.Cache = (*InstrumentedCache)(nil)
