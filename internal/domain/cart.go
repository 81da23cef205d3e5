package domain

import "github.com/shopspring/decimal"

// LineItem is one product entry in the cart with its quantity.
// StockLimit is the per-product purchase ceiling; nil means unlimited.
type LineItem struct {
	ProductID  string          `json:"product_id"`
	Name       string          `json:"name"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	Quantity   int             `json:"quantity"`
	StockLimit *int            `json:"stock_limit,omitempty"`
	ImageRef   string          `json:"image_ref,omitempty"`
}

// LineTotal returns unit price times quantity.
func (li LineItem) LineTotal() decimal.Decimal {
	return li.UnitPrice.Mul(decimal.NewFromInt(int64(li.Quantity)))
}

// Valid reports whether the line item satisfies the cart invariants:
// a product id, a quantity of at least 1 within the stock limit (when set),
// and a nonnegative unit price.
func (li LineItem) Valid() bool {
	if li.ProductID == "" || li.Quantity < 1 || li.UnitPrice.IsNegative() {
		return false
	}
	if li.StockLimit != nil && li.Quantity > *li.StockLimit {
		return false
	}
	return true
}

// Cart holds the ordered line items of one shopping session.
// Totals are always derived, never stored.
type Cart struct {
	Items []LineItem `json:"items"`
}

// Subtotal returns the sum of unit price times quantity across all items.
func (c *Cart) Subtotal() decimal.Decimal {
	total := decimal.Zero
	for _, item := range c.Items {
		total = total.Add(item.LineTotal())
	}
	return total
}

// ItemCount returns the total number of units in the cart.
func (c *Cart) ItemCount() int {
	var count int
	for _, item := range c.Items {
		count += item.Quantity
	}
	return count
}

// FindItemIndex returns the index of the line item with the given product ID,
// or -1 if not found. At most one line item exists per product ID.
func (c *Cart) FindItemIndex(productID string) int {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			return i
		}
	}
	return -1
}

// Clone returns a deep copy of the cart. Line items are value types, so
// copying the slice is sufficient.
func (c *Cart) Clone() Cart {
	items := make([]LineItem, len(c.Items))
	copy(items, c.Items)
	return Cart{Items: items}
}
