package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	config "github.com/avatarctic/product-catalog-api/configs"
	"github.com/avatarctic/product-catalog-api/internal/application/services"
	"github.com/avatarctic/product-catalog-api/internal/core/ports"
	"github.com/avatarctic/product-catalog-api/internal/infrastructure/db"
	"github.com/avatarctic/product-catalog-api/internal/infrastructure/health"
	"github.com/avatarctic/product-catalog-api/internal/infrastructure/httpserver"
	"github.com/avatarctic/product-catalog-api/internal/infrastructure/logging"
	"github.com/avatarctic/product-catalog-api/internal/infrastructure/memory"
	"github.com/avatarctic/product-catalog-api/internal/infrastructure/metrics"
	"github.com/avatarctic/product-catalog-api/internal/infrastructure/redis"
	"github.com/avatarctic/product-catalog-api/internal/infrastructure/repositories"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	logger := logging.NewLogger(cfg.Log)
	logger.Info("Starting product catalog API...")

	// Initialize database (apply pool settings from config)
	database, err := db.NewDatabaseWithConfig(&cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database:", err)
	}
	defer database.Close()

	logger.Info("Connected to database successfully")

	if err := database.Migrate(cfg.Database.MigrationsPath); err != nil {
		logger.Fatal("Failed to run migrations:", err)
	}

	hcSlice := []ports.HealthChecker{health.Database(database)}

	// Redis backs the cache (redis driver) and the rate limiter.
	var redisClient *goredis.Client
	if cfg.Cache.Driver == config.CacheDriverRedis || cfg.RateLimit.Enabled {
		redisClient, err = redis.NewRedisClient(&cfg.Redis)
		if err != nil {
			logger.Fatal("Failed to connect to Redis:", err)
		}
		defer redisClient.Close()
		hcSlice = append(hcSlice, health.Redis(redisClient))
		logger.Info("Connected to Redis successfully")
	}

	cache, err := newCache(cfg, redisClient)
	if err != nil {
		logger.Fatal("Failed to initialize cache:", err)
	}
	logger.WithFields(logrus.Fields{"driver": cfg.Cache.Driver, "ttl": cfg.Cache.TTL.String()}).Info("Cache initialized")

	productRepo := repositories.NewProductRepository(database, logger)
	productService := services.NewProductService(productRepo, cache, &services.ProductServiceConfig{
		CacheTTL:     cfg.Cache.TTL,
		CacheTimeout: cfg.Cache.OpTimeout,
		StoreTimeout: cfg.Database.QueryTimeout,
	}, logger)

	var rateLimiterService ports.RateLimiterService
	if cfg.RateLimit.Enabled {
		rateLimiterService = services.NewRateLimiterService(
			repositories.NewRateLimitRedisRepository(redisClient),
			&services.RateLimiterConfig{
				RequestsPerMinute: cfg.RateLimit.RequestsPerMinute,
				BurstMultiplier:   cfg.RateLimit.BurstMultiplier,
				Window:            cfg.RateLimit.Window,
				KeyPrefix:         cfg.RateLimit.KeyPrefix,
			},
			logger,
		)
	}

	// Create server configuration
	serverConfig := &httpserver.ServerConfig{
		Host:             cfg.Server.Host,
		Port:             cfg.Server.Port,
		ReadTimeout:      cfg.Server.ReadTimeout,
		WriteTimeout:     cfg.Server.WriteTimeout,
		IdleTimeout:      cfg.Server.IdleTimeout,
		TLSCertFile:      cfg.Server.TLSCertFile,
		TLSKeyFile:       cfg.Server.TLSKeyFile,
		PublicBaseURL:    cfg.Server.PublicBaseURL,
		DefaultPerPage:   cfg.Pagination.DefaultPerPage,
		MaxPerPage:       cfg.Pagination.MaxPerPage,
		RateLimitEnabled: cfg.RateLimit.Enabled,
	}

	deps := httpserver.ServerDeps{
		ProductService:     productService,
		RateLimiterService: rateLimiterService,
		HealthCheckers:     hcSlice,
	}

	server := httpserver.NewServer(serverConfig, logger, deps)

	// Start server in a goroutine
	go func() {
		if err := server.Start(); err != nil {
			logger.Fatal("Failed to start server:", err)
		}
	}()

	logger.Infof("Server started on %s:%s", cfg.Server.Host, cfg.Server.Port)

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown: ", err)
	}

	logger.Info("Server exited")
}

// newCache builds the configured cache store wrapped with Prometheus counters.
func newCache(cfg *config.Config, redisClient *goredis.Client) (ports.Cache, error) {
	var base ports.Cache
	switch cfg.Cache.Driver {
	case config.CacheDriverMemory:
		c, err := memory.NewCache(cfg.Cache.MemoryCapacity, cfg.Cache.MemoryShards, cfg.Cache.TTL)
		if err != nil {
			return nil, err
		}
		base = c
	default:
		base = redis.NewRedisCache(redisClient, cfg.Cache.Prefix)
	}
	return metrics.NewInstrumentedCache(base, prometheus.DefaultRegisterer)
}
