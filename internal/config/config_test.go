package config

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8004, cfg.HTTPPort)
	assert.Equal(t, 168, cfg.SnapshotTTL)
	assert.True(t, cfg.TaxRate.Equal(decimal.RequireFromString("0.10")))
	assert.True(t, cfg.ShippingFlatRate.Equal(decimal.RequireFromString("10.00")))
	assert.True(t, cfg.FreeShippingThreshold.Equal(decimal.RequireFromString("100.00")))
	assert.True(t, cfg.SeedDemoCoupons)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("CART_HTTP_PORT", "9100")
	t.Setenv("TAX_RATE", "0.25")
	t.Setenv("SEED_DEMO_COUPONS", "false")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 9100, cfg.HTTPPort)
	assert.True(t, cfg.TaxRate.Equal(decimal.RequireFromString("0.25")))
	assert.False(t, cfg.SeedDemoCoupons)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		value   string
		wantErr string
	}{
		{name: "bad port", key: "CART_HTTP_PORT", value: "0", wantErr: "invalid HTTP port"},
		{name: "bad TTL", key: "CART_SNAPSHOT_TTL_HOURS", value: "0", wantErr: "invalid snapshot TTL"},
		{name: "tax above 1", key: "TAX_RATE", value: "1.5", wantErr: "tax rate"},
		{name: "negative shipping", key: "SHIPPING_FLAT_RATE", value: "-1", wantErr: "shipping flat rate"},
		{name: "negative threshold", key: "FREE_SHIPPING_THRESHOLD", value: "-10", wantErr: "free shipping threshold"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
