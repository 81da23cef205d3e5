// Package coupon validates coupon codes and computes their discounts.
// Coupons are looked up through a Source, which may be a suspending call
// (Redis, network); the evaluator itself holds no state.
package coupon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/zhangrongwu/windsurf-shop-cart/internal/domain"
	"github.com/zhangrongwu/windsurf-shop-cart/internal/money"
)

// Source looks up a coupon by its normalized code. Implementations return
// domain.ErrCouponNotFound (possibly wrapped) when no coupon exists for the
// code.
type Source interface {
	GetByCode(ctx context.Context, code string) (*domain.Coupon, error)
}

// Evaluator decides whether a coupon code is currently applicable.
type Evaluator struct {
	source Source
	logger *slog.Logger
}

// NewEvaluator creates an evaluator backed by the given source.
func NewEvaluator(source Source, logger *slog.Logger) *Evaluator {
	return &Evaluator{
		source: source,
		logger: logger,
	}
}

// Evaluate validates the code against the given subtotal at the given time.
// On success it returns the coupon to be held as the applied coupon. The
// returned errors carry the specific rejection reason: domain.ErrCouponNotFound,
// domain.ErrCouponExpired, or a domain.MinPurchaseError with the shortfall.
func (e *Evaluator) Evaluate(ctx context.Context, code string, subtotal decimal.Decimal, now time.Time) (*domain.Coupon, error) {
	normalized := domain.NormalizeCouponCode(code)

	c, err := e.source.GetByCode(ctx, normalized)
	if err != nil {
		if errors.Is(err, domain.ErrCouponNotFound) {
			return nil, fmt.Errorf("coupon %q: %w", normalized, domain.ErrCouponNotFound)
		}
		return nil, fmt.Errorf("look up coupon %q: %w", normalized, err)
	}

	if c.Expired(now) {
		return nil, fmt.Errorf("coupon %q: %w", normalized, domain.ErrCouponExpired)
	}

	if c.HasMinPurchase() && subtotal.LessThan(c.MinPurchase) {
		return nil, domain.NewMinPurchaseError(c.Code, c.MinPurchase, subtotal)
	}

	e.logger.DebugContext(ctx, "coupon evaluated",
		slog.String("code", c.Code),
		slog.String("kind", c.Kind),
		slog.String("subtotal", subtotal.StringFixed(2)),
	)

	return c, nil
}

// Discount computes the discount amount a coupon yields against a subtotal.
// For percentage coupons the result is subtotal*value/100 rounded to the
// currency precision; for fixed-amount coupons it is capped at the subtotal
// so the post-discount amount can never go negative. A nil coupon yields
// zero. The discount is always derived from the subtotal passed in, never
// from any apply-time snapshot.
func Discount(c *domain.Coupon, subtotal decimal.Decimal) decimal.Decimal {
	if c == nil {
		return decimal.Zero
	}

	switch c.Kind {
	case domain.CouponKindPercentage:
		return money.Round(subtotal.Mul(c.Value).Div(decimal.NewFromInt(100)))
	case domain.CouponKindFixedAmount:
		return money.Round(money.Min(c.Value, subtotal))
	default:
		return decimal.Zero
	}
}
