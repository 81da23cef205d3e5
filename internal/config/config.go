package config

import (
	"fmt"

	"github.com/shopspring/decimal"

	pkgconfig "github.com/zhangrongwu/windsurf-shop-cart/pkg/config"
)

// Config holds all configuration for the cart service.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// HTTP server
	HTTPPort int `env:"CART_HTTP_PORT" envDefault:"8004"`

	// Redis
	RedisAddr string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPass string `env:"REDIS_PASSWORD" envDefault:""`
	RedisDB   int    `env:"REDIS_DB" envDefault:"0"`

	// Snapshot TTL in hours (default: 7 days)
	SnapshotTTL int `env:"CART_SNAPSHOT_TTL_HOURS" envDefault:"168"`

	// Pricing
	TaxRate               decimal.Decimal `env:"TAX_RATE" envDefault:"0.10"`
	ShippingFlatRate      decimal.Decimal `env:"SHIPPING_FLAT_RATE" envDefault:"10.00"`
	FreeShippingThreshold decimal.Decimal `env:"FREE_SHIPPING_THRESHOLD" envDefault:"100.00"`

	// Catalog service
	CatalogBaseURL string `env:"CATALOG_BASE_URL" envDefault:"http://localhost:8001"`

	// SeedDemoCoupons loads the demo coupon set into Redis on startup.
	SeedDemoCoupons bool `env:"SEED_DEMO_COUPONS" envDefault:"true"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load cart config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// validate checks configuration invariants.
func (c *Config) validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.HTTPPort)
	}
	if c.SnapshotTTL < 1 {
		return fmt.Errorf("invalid snapshot TTL: %d", c.SnapshotTTL)
	}
	if c.TaxRate.IsNegative() || c.TaxRate.GreaterThan(decimal.NewFromInt(1)) {
		return fmt.Errorf("tax rate must be between 0 and 1, got %s", c.TaxRate)
	}
	if c.ShippingFlatRate.IsNegative() {
		return fmt.Errorf("shipping flat rate must not be negative, got %s", c.ShippingFlatRate)
	}
	if c.FreeShippingThreshold.IsNegative() {
		return fmt.Errorf("free shipping threshold must not be negative, got %s", c.FreeShippingThreshold)
	}
	return nil
}
