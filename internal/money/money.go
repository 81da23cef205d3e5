// Package money holds the monetary primitives shared by the pricing and
// coupon packages. All amounts in the engine are decimals; binary floating
// point is never used for money.
package money

import "github.com/shopspring/decimal"

// Places is the currency precision all displayed amounts round to.
const Places = 2

// Round rounds a monetary amount to the currency precision, half away from
// zero (round-half-up for the nonnegative amounts this engine produces).
func Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(Places)
}

// Min returns the smaller of two amounts.
func Min(a, b decimal.Decimal) decimal.Decimal {
	if a.LessThan(b) {
		return a
	}
	return b
}
