// Package pricing computes the derived price breakdown of a cart: discount,
// shipping, tax, and total. All computation is pure; the calculator holds
// only configuration.
package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/zhangrongwu/windsurf-shop-cart/internal/coupon"
	"github.com/zhangrongwu/windsurf-shop-cart/internal/domain"
	"github.com/zhangrongwu/windsurf-shop-cart/internal/money"
)

// Config holds the pricing parameters of the storefront.
type Config struct {
	// TaxRate is the fraction of the discounted subtotal charged as tax,
	// e.g. 0.10 for 10%.
	TaxRate decimal.Decimal

	// ShippingFlatRate is the flat shipping charge.
	ShippingFlatRate decimal.Decimal

	// FreeShippingThreshold waives shipping when the subtotal strictly
	// exceeds it.
	FreeShippingThreshold decimal.Decimal
}

// DefaultConfig returns the storefront's standard rates: 10% tax, 10.00 flat
// shipping, free shipping above 100.00.
func DefaultConfig() Config {
	return Config{
		TaxRate:               decimal.RequireFromString("0.10"),
		ShippingFlatRate:      decimal.RequireFromString("10.00"),
		FreeShippingThreshold: decimal.RequireFromString("100.00"),
	}
}

// Calculator derives price breakdowns from a subtotal and an optional coupon.
type Calculator struct {
	cfg Config
}

// NewCalculator creates a calculator with the given configuration.
func NewCalculator(cfg Config) *Calculator {
	return &Calculator{cfg: cfg}
}

// Breakdown computes the full price breakdown:
//
//	discount = coupon discount against the subtotal (0 if none)
//	shipping = 0 if subtotal > free-shipping threshold, else the flat rate
//	tax      = (subtotal - discount) * tax rate
//	total    = subtotal - discount + shipping + tax
//
// The coupon's discount is always recomputed from the subtotal passed in;
// nothing is cached. All amounts are rounded to the currency precision.
func (c *Calculator) Breakdown(subtotal decimal.Decimal, applied *domain.Coupon) domain.PriceBreakdown {
	subtotal = money.Round(subtotal)
	discount := coupon.Discount(applied, subtotal)

	shipping := c.cfg.ShippingFlatRate
	if subtotal.GreaterThan(c.cfg.FreeShippingThreshold) {
		shipping = decimal.Zero
	}

	taxable := subtotal.Sub(discount)
	tax := money.Round(taxable.Mul(c.cfg.TaxRate))

	return domain.PriceBreakdown{
		Subtotal: subtotal,
		Discount: discount,
		Shipping: money.Round(shipping),
		Tax:      tax,
		Total:    money.Round(taxable.Add(shipping).Add(tax)),
	}
}
