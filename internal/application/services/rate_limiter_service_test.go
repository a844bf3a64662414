package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	impl "github.com/avatarctic/product-catalog-api/internal/application/services"
	"github.com/avatarctic/product-catalog-api/test/mocks"
)

func TestRateLimiter_AllowsWithinBurst(t *testing.T) {
	repo := &mocks.RateLimitRepositoryMock{IncrementWindowFn: func(ctx context.Context, key string, w time.Duration, prefix string, ttl time.Duration) (int, time.Time, error) {
		require.Equal(t, "10.0.0.1", key)
		require.Equal(t, "rl", prefix)
		require.Equal(t, 2*w, ttl)
		return 3, time.Now().Truncate(w), nil
	}}
	svc := impl.NewRateLimiterService(repo, &impl.RateLimiterConfig{RequestsPerMinute: 5, BurstMultiplier: 1, Window: time.Minute, KeyPrefix: "rl"}, nil)

	allowed, remaining, limit, _, err := svc.Allow(context.Background(), "10.0.0.1")
	require.NoError(t, err)
	require.True(t, allowed)
	require.Equal(t, 2, remaining)
	require.Equal(t, 5, limit)
}

func TestRateLimiter_RejectsOverBurst(t *testing.T) {
	repo := &mocks.RateLimitRepositoryMock{IncrementWindowFn: func(ctx context.Context, key string, w time.Duration, prefix string, ttl time.Duration) (int, time.Time, error) {
		return 11, time.Now().Truncate(w), nil
	}}
	svc := impl.NewRateLimiterService(repo, &impl.RateLimiterConfig{RequestsPerMinute: 5, BurstMultiplier: 2}, nil)

	allowed, remaining, _, _, err := svc.Allow(context.Background(), "c")
	require.NoError(t, err)
	require.False(t, allowed)
	require.Equal(t, 0, remaining)
}

func TestRateLimiter_FailsOpen(t *testing.T) {
	repo := &mocks.RateLimitRepositoryMock{IncrementWindowFn: func(ctx context.Context, key string, w time.Duration, prefix string, ttl time.Duration) (int, time.Time, error) {
		return 0, time.Now(), errors.New("redis down")
	}}
	svc := impl.NewRateLimiterService(repo, nil, nil)

	allowed, _, _, _, err := svc.Allow(context.Background(), "c")
	require.Error(t, err)
	require.True(t, allowed)
}
