// Package health checks the catalog's backing services for the /health endpoint.
package health

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
	"golang.org/x/sync/errgroup"

	"github.com/avatarctic/product-catalog-api/internal/core/ports"
	"github.com/avatarctic/product-catalog-api/internal/infrastructure/db"
)

const (
	StatusHealthy   = "healthy"
	StatusUnhealthy = "unhealthy"
	StatusDegraded  = "degraded"
)

// Dependency is a named health check for one backing service.
type Dependency struct {
	name  string
	check func(ctx context.Context) error
}

func (d Dependency) Name() string                    { return d.name }
func (d Dependency) Check(ctx context.Context) error { return d.check(ctx) }

// Database pings the product store.
func Database(d *db.Database) Dependency {
	return Dependency{name: "database", check: d.DB.PingContext}
}

// Redis pings the cache and rate limit backend.
func Redis(client redis.UniversalClient) Dependency {
	return Dependency{name: "redis", check: func(ctx context.Context) error {
		return client.Ping(ctx).Err()
	}}
}

// Report is the outcome of one round of checks.
type Report struct {
	Status       string
	Dependencies map[string]string
	Failures     map[string]error
}

func (r Report) Healthy() bool { return r.Status == StatusHealthy }

// Run checks every dependency concurrently, each bounded by timeout.
// A nil checker is skipped.
func Run(ctx context.Context, timeout time.Duration, checkers []ports.HealthChecker) Report {
	errs := make([]error, len(checkers))
	var g errgroup.Group
	for i, hc := range checkers {
		if hc == nil {
			continue
		}
		g.Go(func() error {
			cctx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()
			errs[i] = hc.Check(cctx)
			return nil
		})
	}
	_ = g.Wait()

	r := Report{
		Status:       StatusHealthy,
		Dependencies: make(map[string]string, len(checkers)),
		Failures:     map[string]error{},
	}
	for i, hc := range checkers {
		if hc == nil {
			continue
		}
		if errs[i] != nil {
			r.Dependencies[hc.Name()] = StatusUnhealthy
			r.Failures[hc.Name()] = errs[i]
			r.Status = StatusDegraded
			continue
		}
		r.Dependencies[hc.Name()] = StatusHealthy
	}
	return r
}

var _ ports.HealthChecker = Dependency{}
