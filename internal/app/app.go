// Package app wires together all dependencies and runs the cart service.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/zhangrongwu/windsurf-shop-cart/internal/catalog"
	"github.com/zhangrongwu/windsurf-shop-cart/internal/config"
	"github.com/zhangrongwu/windsurf-shop-cart/internal/coupon"
	couponredis "github.com/zhangrongwu/windsurf-shop-cart/internal/coupon/redis"
	"github.com/zhangrongwu/windsurf-shop-cart/internal/domain"
	handler "github.com/zhangrongwu/windsurf-shop-cart/internal/handler/http"
	"github.com/zhangrongwu/windsurf-shop-cart/internal/notify"
	persistredis "github.com/zhangrongwu/windsurf-shop-cart/internal/persistence/redis"
	"github.com/zhangrongwu/windsurf-shop-cart/internal/pricing"
	"github.com/zhangrongwu/windsurf-shop-cart/internal/store"
	"github.com/zhangrongwu/windsurf-shop-cart/pkg/health"
	"github.com/zhangrongwu/windsurf-shop-cart/pkg/httpclient"
)

// App holds the wired components of the cart service.
type App struct {
	cfg        *config.Config
	logger     *slog.Logger
	rdb        *redis.Client
	sessions   *handler.Sessions
	httpServer *http.Server
}

// NewApp creates a new application instance, initializing all dependencies.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Initialize Redis client.
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPass,
		DB:       cfg.RedisDB,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	logger.Info("connected to Redis",
		slog.String("addr", cfg.RedisAddr),
		slog.Int("db", cfg.RedisDB),
	)

	// Coupon source.
	couponSource := couponredis.NewSource(rdb)
	if cfg.SeedDemoCoupons {
		if err := couponSource.Seed(ctx, demoCoupons()...); err != nil {
			return nil, fmt.Errorf("seed demo coupons: %w", err)
		}
		logger.Info("demo coupons seeded")
	}
	evaluator := coupon.NewEvaluator(couponSource, logger)

	// Pricing.
	calculator := pricing.NewCalculator(pricing.Config{
		TaxRate:               cfg.TaxRate,
		ShippingFlatRate:      cfg.ShippingFlatRate,
		FreeShippingThreshold: cfg.FreeShippingThreshold,
	})

	sink := notify.NewSlogSink(logger)

	// Catalog client behind a circuit breaker.
	catalogClient := catalog.NewClient(
		httpclient.NewCircuitBreakerClient(
			httpclient.New(httpclient.DefaultConfig()),
			httpclient.DefaultCircuitBreakerConfig("catalog"),
			logger,
		),
		cfg.CatalogBaseURL,
		logger,
	)

	// Per-session cart stores, each with its own snapshot key in Redis.
	snapshotTTL := time.Duration(cfg.SnapshotTTL) * time.Hour
	sessions := handler.NewSessions(func(ctx context.Context, sessionID string) (*store.Store, error) {
		return store.New(ctx, store.Options{
			Adapter:    persistredis.NewAdapter(rdb, sessionID, snapshotTTL, sink),
			Evaluator:  evaluator,
			Calculator: calculator,
			Sink:       sink,
			Logger:     logger,
		})
	})

	// Health checks.
	healthHandler := health.NewHandler()
	healthHandler.Register("redis", func(ctx context.Context) error {
		return rdb.Ping(ctx).Err()
	})

	// HTTP router.
	router := handler.NewRouter(sessions, catalogClient, healthHandler, logger)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &App{
		cfg:        cfg,
		logger:     logger,
		rdb:        rdb,
		sessions:   sessions,
		httpServer: httpServer,
	}, nil
}

// Run starts the HTTP server and blocks until the context is canceled.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info("starting HTTP server",
			slog.String("addr", a.httpServer.Addr),
		)
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		return err
	}

	return a.Shutdown()
}

// Shutdown gracefully stops all components.
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	// Graceful HTTP server shutdown with a 10-second deadline.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
	}

	// Flush outstanding cart snapshot writes before dropping Redis.
	a.sessions.Shutdown()

	if err := a.rdb.Close(); err != nil {
		a.logger.Error("redis close error", slog.String("error", err.Error()))
	}

	a.logger.Info("application shutdown complete")
	return nil
}

// demoCoupons returns the storefront's built-in coupon set.
func demoCoupons() []domain.Coupon {
	return []domain.Coupon{
		{
			Code:        "WELCOME10",
			Kind:        domain.CouponKindPercentage,
			Value:       decimal.RequireFromString("10"),
			MinPurchase: decimal.RequireFromString("50"),
		},
		{
			Code:        "SUMMER20",
			Kind:        domain.CouponKindPercentage,
			Value:       decimal.RequireFromString("20"),
			MinPurchase: decimal.RequireFromString("100"),
			ExpiresAt:   time.Date(2026, 12, 31, 23, 59, 59, 0, time.UTC),
		},
		{
			Code:        "FIXED15",
			Kind:        domain.CouponKindFixedAmount,
			Value:       decimal.RequireFromString("15"),
			MinPurchase: decimal.RequireFromString("75"),
		},
	}
}
