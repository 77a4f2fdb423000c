package app

import (
	"context"
	"fmt"

	validator "github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus"
	redis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	limiter "github.com/ulule/limiter/v3"
	limiterredis "github.com/ulule/limiter/v3/drivers/store/redis"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/noah-isme/backend-pricing/internal/config"
	"github.com/noah-isme/backend-pricing/internal/quote"
	"github.com/noah-isme/backend-pricing/internal/ratelimit"
)

// Dependencies enumerates core services shared across modules to make wiring explicit.
type Dependencies struct {
	Context         context.Context
	Config          *config.Config
	Logger          zerolog.Logger
	Redis           *redis.Client
	Validator       *validator.Validate
	Limiter         ratelimit.Limiter
	QuoteStore      quote.Store
	MetricsRegistry prometheus.Registerer
	TracerProvider  trace.TracerProvider
	MeterProvider   metric.MeterProvider
}

// New assembles the dependencies. rdb may be nil when Redis is not configured.
func New(ctx context.Context, cfg *config.Config, logger zerolog.Logger, rdb *redis.Client) (*Dependencies, error) {
	deps := &Dependencies{
		Context:         ctx,
		Config:          cfg,
		Logger:          logger,
		Redis:           rdb,
		Validator:       quote.NewValidator(),
		MetricsRegistry: prometheus.DefaultRegisterer,
		TracerProvider:  otel.GetTracerProvider(),
		MeterProvider:   otel.GetMeterProvider(),
	}

	switch cfg.RateLimitBackend {
	case config.RateLimitRedis, config.RateLimitSliding:
		if rdb == nil {
			return nil, fmt.Errorf("rate limit backend %q needs redis", cfg.RateLimitBackend)
		}
		if cfg.RateLimitBackend == config.RateLimitSliding {
			deps.Limiter = ratelimit.SlidingWindow{Client: rdb, Prefix: "ratelimit:sliding:"}
			break
		}
		store, err := NewLimiterStore(rdb)
		if err != nil {
			return nil, fmt.Errorf("limiter store: %w", err)
		}
		deps.Limiter = ratelimit.StoreLimiter{Store: store}
	default:
		deps.Limiter = ratelimit.NewMemoryLimiter("ratelimit")
	}

	if rdb != nil {
		deps.QuoteStore = quote.NewRedisStore(rdb, cfg.QuoteTTL)
	} else {
		deps.QuoteStore = quote.NewMemoryStore(cfg.QuoteTTL)
	}
	return deps, nil
}

// QuoteService builds the quote service from the configuration.
func (d *Dependencies) QuoteService() *quote.Service {
	return &quote.Service{
		Logger:               d.Logger.With().Str("component", "quote").Logger(),
		Validate:             d.Validator,
		Store:                d.QuoteStore,
		DiscountsAffectTaxes: d.Config.DiscountsAffectTaxes,
		IncludeCalculatedTax: d.Config.IncludeCalculatedTax,
		MaxItems:             d.Config.QuoteMaxItems,
	}
}

// NewLimiterStore wires a rate limiter store backed by Redis.
func NewLimiterStore(rdb *redis.Client) (limiter.Store, error) {
	return limiterredis.NewStoreWithOptions(rdb, limiter.StoreOptions{Prefix: "ratelimit"})
}

// Tracer returns the default OpenTelemetry tracer for instrumentation hooks.
func Tracer(name string) trace.Tracer {
	return otel.Tracer(name)
}

// Meter returns the default OpenTelemetry meter for instrumentation hooks.
func Meter(name string) metric.Meter {
	return otel.Meter(name)
}
