package ports

import "context"

// HealthChecker checks one dependency the catalog needs to serve requests.
// Name labels the dependency in the /health report.
type HealthChecker interface {
	Name() string
	Check(ctx context.Context) error
}
