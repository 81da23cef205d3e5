package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Coupon kind constants.
const (
	CouponKindPercentage  = "percentage"
	CouponKindFixedAmount = "fixed_amount"
)

// Coupon is a discount rule looked up by code. Immutable once defined.
// Value is a percentage (0-100) for percentage coupons and a monetary
// amount for fixed-amount coupons. A zero MinPurchase means no minimum,
// a zero ExpiresAt means no expiry.
type Coupon struct {
	Code        string          `json:"code"`
	Kind        string          `json:"kind"`
	Value       decimal.Decimal `json:"value"`
	MinPurchase decimal.Decimal `json:"min_purchase,omitempty"`
	ExpiresAt   time.Time       `json:"expires_at,omitzero"`
}

// HasMinPurchase reports whether the coupon requires a minimum subtotal.
func (c *Coupon) HasMinPurchase() bool {
	return c.MinPurchase.IsPositive()
}

// Expired reports whether the coupon's expiry has passed at the given time.
func (c *Coupon) Expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && now.After(c.ExpiresAt)
}

// IsValidCouponKind checks whether the given string is a known coupon kind.
func IsValidCouponKind(kind string) bool {
	return kind == CouponKindPercentage || kind == CouponKindFixedAmount
}

// NormalizeCouponCode canonicalizes a coupon code for case-insensitive lookup.
func NormalizeCouponCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// PriceBreakdown is the fully derived pricing of a cart at a point in time.
// It is recomputed on demand and never stored.
type PriceBreakdown struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Discount decimal.Decimal `json:"discount"`
	Shipping decimal.Decimal `json:"shipping"`
	Tax      decimal.Decimal `json:"tax"`
	Total    decimal.Decimal `json:"total"`
}
