package httpserver

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/avatarctic/product-catalog-api/internal/infrastructure/health"
	"github.com/avatarctic/product-catalog-api/internal/infrastructure/httpserver/response"
)

const healthCheckTimeout = 2 * time.Second

// Health check handler
func (s *Server) healthCheck(c echo.Context) error {
	report := health.Run(c.Request().Context(), healthCheckTimeout, s.healthCheckers)

	if !report.Healthy() {
		for name, err := range report.Failures {
			s.logger.WithError(err).WithField("dependency", name).Warn("health check failed")
		}
		return response.Write(c, response.Error(http.StatusServiceUnavailable, "Service degraded", report.Dependencies))
	}
	return response.Write(c, response.Success(map[string]interface{}{
		"status":       report.Status,
		"timestamp":    time.Now().UTC().Format(time.RFC3339),
		"version":      "1.0.0",
		"service":      "product-catalog-api",
		"dependencies": report.Dependencies,
	}, nil))
}
