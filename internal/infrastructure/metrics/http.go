package metrics

import (
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// HTTPCollectors are the request counters shared by the HTTP middleware.
type HTTPCollectors struct {
	Requests *prometheus.CounterVec
	Duration *prometheus.HistogramVec
}

// NewHTTPCollectors registers http_requests_total and
// http_request_duration_seconds on reg, reusing collectors already there.
func NewHTTPCollectors(reg prometheus.Registerer) (*HTTPCollectors, error) {
	requests, err := register(reg, prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "The total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	))
	if err != nil {
		return nil, err
	}
	duration, err := register(reg, prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "http_request_duration_seconds",
			Help: "The HTTP request latencies in seconds",
		},
		[]string{"method", "endpoint"},
	))
	if err != nil {
		return nil, err
	}
	return &HTTPCollectors{Requests: requests, Duration: duration}, nil
}

// register adds c to reg. When an equal collector is already registered the
// existing one is returned so counts keep accumulating in one place.
func register[T prometheus.Collector](reg prometheus.Registerer, c T) (T, error) {
	if reg == nil {
		return c, nil
	}
	err := reg.Register(c)
	if err == nil {
		return c, nil
	}
	var are prometheus.AlreadyRegisteredError
	if !errors.As(err, &are) {
		return c, err
	}
	existing, ok := are.ExistingCollector.(T)
	if !ok {
		return c, fmt.Errorf("collector registered with a different type: %w", err)
	}
	return existing, nil
}
