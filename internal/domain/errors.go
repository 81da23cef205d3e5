package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Sentinel errors for cart and coupon business-rule violations. Mutation
// errors leave the cart unchanged; there are no fatal conditions in this
// engine.
var (
	ErrInvalidQuantity   = errors.New("quantity must be at least 1")
	ErrItemNotFound      = errors.New("item not found in cart")
	ErrStockExceeded     = errors.New("stock limit exceeded")
	ErrCouponNotFound    = errors.New("coupon not found")
	ErrCouponExpired     = errors.New("coupon has expired")
	ErrMinPurchaseNotMet = errors.New("minimum purchase not met")
)

// StockExceededError reports a quantity that would exceed a product's stock
// ceiling. It carries the ceiling so the caller can show it.
type StockExceededError struct {
	ProductID  string
	StockLimit int
	Requested  int
}

func (e *StockExceededError) Error() string {
	return fmt.Sprintf("product %s: requested quantity %d exceeds stock limit %d",
		e.ProductID, e.Requested, e.StockLimit)
}

func (e *StockExceededError) Unwrap() error {
	return ErrStockExceeded
}

// MinPurchaseError reports a coupon whose minimum purchase requirement is not
// met by the current subtotal. Shortfall is the amount still missing.
type MinPurchaseError struct {
	Code        string
	MinPurchase decimal.Decimal
	Subtotal    decimal.Decimal
	Shortfall   decimal.Decimal
}

// NewMinPurchaseError builds a MinPurchaseError with the shortfall derived
// from the minimum and the current subtotal.
func NewMinPurchaseError(code string, minPurchase, subtotal decimal.Decimal) *MinPurchaseError {
	return &MinPurchaseError{
		Code:        code,
		MinPurchase: minPurchase,
		Subtotal:    subtotal,
		Shortfall:   minPurchase.Sub(subtotal),
	}
}

func (e *MinPurchaseError) Error() string {
	return fmt.Sprintf("coupon %s requires a minimum purchase of %s, %s short",
		e.Code, e.MinPurchase.StringFixed(2), e.Shortfall.StringFixed(2))
}

func (e *MinPurchaseError) Unwrap() error {
	return ErrMinPurchaseNotMet
}
