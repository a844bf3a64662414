package httpserver

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/avatarctic/product-catalog-api/internal/core/ports"
	customMiddleware "github.com/avatarctic/product-catalog-api/internal/infrastructure/httpserver/middleware"
	"github.com/avatarctic/product-catalog-api/internal/infrastructure/metrics"
)

type ServerConfig struct {
	Host         string
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
	TLSCertFile  string
	TLSKeyFile   string
	// PublicBaseURL overrides the scheme and host used in pagination links.
	PublicBaseURL    string
	DefaultPerPage   int
	MaxPerPage       int
	RateLimitEnabled bool
}

type ServerDeps struct {
	ProductService     ports.ProductService
	RateLimiterService ports.RateLimiterService
	HealthCheckers     []ports.HealthChecker
}

type Server struct {
	echo           *echo.Echo
	config         *ServerConfig
	logger         *logrus.Logger
	productService ports.ProductService
	middleware     *customMiddleware.MiddlewareCollection
	healthCheckers []ports.HealthChecker
}

func NewServer(serverConfig *ServerConfig, logger *logrus.Logger, deps ServerDeps) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	if serverConfig.DefaultPerPage < 1 {
		serverConfig.DefaultPerPage = 10
	}

	collectors, err := metrics.NewHTTPCollectors(prometheus.DefaultRegisterer)
	if err != nil {
		panic(err)
	}

	server := &Server{
		echo:           e,
		config:         serverConfig,
		logger:         logger,
		productService: deps.ProductService,
		healthCheckers: deps.HealthCheckers,
		middleware: customMiddleware.NewMiddlewareCollection(
			deps.RateLimiterService,
			logger,
			collectors.Requests,
			collectors.Duration,
		),
	}

	e.Validator = newRequestValidator()
	e.HTTPErrorHandler = server.handleError

	server.setupMiddleware()
	server.setupRoutes()

	return server
}
