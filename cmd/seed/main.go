package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	config "github.com/avatarctic/product-catalog-api/configs"
	"github.com/avatarctic/product-catalog-api/internal/core/domain/product"
	"github.com/avatarctic/product-catalog-api/internal/core/ports"
	"github.com/avatarctic/product-catalog-api/internal/infrastructure/db"
	"github.com/avatarctic/product-catalog-api/internal/infrastructure/logging"
	"github.com/avatarctic/product-catalog-api/internal/infrastructure/redis"
	"github.com/avatarctic/product-catalog-api/internal/infrastructure/repositories"
)

var (
	adjectives = []string{"Compact", "Deluxe", "Ergonomic", "Handmade", "Portable", "Rustic", "Sleek", "Smart", "Vintage", "Wireless"}
	nouns      = []string{"Backpack", "Chair", "Desk Lamp", "Headphones", "Kettle", "Keyboard", "Mug", "Notebook", "Speaker", "Watch"}
)

func main() {
	count := flag.Int("count", 10, "number of products to create")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}
	logger := logging.NewLogger(cfg.Log)

	database, err := db.NewDatabaseWithConfig(&cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database:", err)
	}
	defer database.Close()

	if err := database.Migrate(cfg.Database.MigrationsPath); err != nil {
		logger.Fatal("Failed to run migrations:", err)
	}

	// Only a shared cache can be flushed from here; an in-memory cache
	// belongs to the server process.
	var cache ports.Cache
	if cfg.Cache.Driver == config.CacheDriverRedis {
		client, err := redis.NewRedisClient(&cfg.Redis)
		if err != nil {
			logger.Fatal("Failed to connect to Redis:", err)
		}
		defer client.Close()
		cache = redis.NewRedisCache(client, cfg.Cache.Prefix)
	}

	repo := repositories.NewProductRepository(database, logger)

	ctx := context.Background()
	created, err := seed(ctx, repo, *count, rand.New(rand.NewSource(time.Now().UnixNano())), time.Now)
	if err != nil {
		logger.WithError(err).WithField("created", created).Fatal("Seeding failed")
	}
	flushServerCache(ctx, cache, cfg.Cache.OpTimeout, logger)

	logger.WithFields(logrus.Fields{"created": created}).Info("Seeding complete")
}

// flushServerCache drops cached reads so a running server sees the new rows.
// A nil cache means the server keeps its cache in process and cannot be reached.
func flushServerCache(ctx context.Context, cache ports.Cache, timeout time.Duration, logger *logrus.Logger) {
	if cache == nil {
		logger.Warn("In-memory cache is private to the server; seeded products appear once cached pages expire or the server restarts")
		return
	}
	if timeout <= 0 {
		timeout = time.Second
	}
	cctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := cache.Flush(cctx); err != nil {
		logger.WithError(err).Warn("Failed to flush product cache after seeding")
		return
	}
	logger.Info("Product cache flushed")
}

// seed inserts n generated products and returns how many were stored.
// Creation times are spaced a second apart so listing order is stable.
func seed(ctx context.Context, repo ports.ProductRepository, n int, rnd *rand.Rand, now func() time.Time) (int, error) {
	base := now().UTC().Truncate(time.Second).Add(-time.Duration(n) * time.Second)
	for i := 0; i < n; i++ {
		ts := base.Add(time.Duration(i) * time.Second)
		p := &product.Product{
			ID:          uuid.New(),
			Name:        fmt.Sprintf("%s %s", adjectives[rnd.Intn(len(adjectives))], nouns[rnd.Intn(len(nouns))]),
			Description: fmt.Sprintf("Demo product #%d generated by the seeder.", i+1),
			Price:       decimal.New(int64(100+rnd.Intn(99900)), -2),
			Stock:       rnd.Intn(101),
			CreatedAt:   ts,
			UpdatedAt:   ts,
		}
		if err := repo.Create(ctx, p); err != nil {
			return i, fmt.Errorf("failed to create product %d: %w", i+1, err)
		}
	}
	return n, nil
}
