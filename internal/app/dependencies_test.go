package app

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	redis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-pricing/internal/config"
	"github.com/noah-isme/backend-pricing/internal/quote"
	"github.com/noah-isme/backend-pricing/internal/ratelimit"
)

func TestNewWithoutRedis(t *testing.T) {
	cfg := &config.Config{RateLimitBackend: config.RateLimitMemory, QuoteTTL: time.Minute, QuoteMaxItems: 5, IncludeCalculatedTax: true}
	deps, err := New(context.Background(), cfg, zerolog.Nop(), nil)
	require.NoError(t, err)
	require.IsType(t, &quote.MemoryStore{}, deps.QuoteStore)
	require.IsType(t, ratelimit.StoreLimiter{}, deps.Limiter)

	svc := deps.QuoteService()
	require.Equal(t, 5, svc.MaxItems)
	require.True(t, svc.IncludeCalculatedTax)
	require.Same(t, deps.Validator, svc.Validate)
}

func TestNewWithRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	cfg := &config.Config{RateLimitBackend: config.RateLimitRedis, QuoteTTL: time.Minute}
	deps, err := New(context.Background(), cfg, zerolog.Nop(), client)
	require.NoError(t, err)
	require.IsType(t, &quote.RedisStore{}, deps.QuoteStore)
	require.NotNil(t, deps.Limiter)
}

func TestNewSlidingBackend(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	cfg := &config.Config{RateLimitBackend: config.RateLimitSliding, QuoteTTL: time.Minute}
	deps, err := New(context.Background(), cfg, zerolog.Nop(), client)
	require.NoError(t, err)
	require.IsType(t, ratelimit.SlidingWindow{}, deps.Limiter)

	allowed, remaining, _, err := deps.Limiter.Allow(context.Background(), "quotes:203.0.113.7", time.Minute, 2)
	require.NoError(t, err)
	require.True(t, allowed)
	require.Equal(t, 1, remaining)
}

func TestNewRedisBackendNeedsClient(t *testing.T) {
	_, err := New(context.Background(), &config.Config{RateLimitBackend: config.RateLimitRedis}, zerolog.Nop(), nil)
	require.Error(t, err)
}
