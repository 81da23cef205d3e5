// Package catalog resolves product details for items being added to the
// cart. The cart engine stores a snapshot of these details per line item and
// never calls back into the catalog afterwards.
package catalog

import (
	"context"

	"github.com/shopspring/decimal"
)

// Product is the catalog's view of a sellable item.
// StockLimit nil means the catalog enforces no per-order ceiling.
type Product struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Price      decimal.Decimal `json:"price"`
	StockLimit *int            `json:"stock_limit,omitempty"`
	ImageRef   string          `json:"image_ref,omitempty"`
}

// Lookup resolves a product by id. Implementations return
// apperrors-style not-found errors for unknown ids.
type Lookup interface {
	GetProduct(ctx context.Context, id string) (*Product, error)
}
