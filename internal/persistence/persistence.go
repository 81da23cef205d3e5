// Package persistence defines the best-effort durability contract for cart
// snapshots. Adapters hold serialized snapshots only, never a live cart
// reference; the cart store remains the sole owner of cart state.
package persistence

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/zhangrongwu/windsurf-shop-cart/internal/domain"
)

// Adapter persists cart snapshots across process restarts.
//
// Load never fails: a missing snapshot yields an empty one, and a corrupt
// payload yields an empty one after reporting a warning through the sink the
// adapter was constructed with. Save may fail; callers treat the write as
// best-effort and never roll back in-memory state. Clear is idempotent.
type Adapter interface {
	Save(ctx context.Context, snap Snapshot) error
	Load(ctx context.Context) Snapshot
	Clear(ctx context.Context) error
}

// Snapshot is the persisted wire form of a cart. Unknown extra fields in a
// stored payload are ignored on load for forward compatibility.
type Snapshot struct {
	Items []SnapshotItem `json:"items"`
}

// SnapshotItem is one persisted line item.
type SnapshotItem struct {
	ProductID  string          `json:"productId"`
	Name       string          `json:"name"`
	UnitPrice  decimal.Decimal `json:"unitPrice"`
	Quantity   int             `json:"quantity"`
	StockLimit *int            `json:"stockLimit,omitempty"`
	ImageRef   string          `json:"imageRef,omitempty"`
}

// FromCart builds a snapshot of the given cart.
func FromCart(cart domain.Cart) Snapshot {
	items := make([]SnapshotItem, len(cart.Items))
	for i, li := range cart.Items {
		items[i] = SnapshotItem{
			ProductID:  li.ProductID,
			Name:       li.Name,
			UnitPrice:  li.UnitPrice,
			Quantity:   li.Quantity,
			StockLimit: li.StockLimit,
			ImageRef:   li.ImageRef,
		}
	}
	return Snapshot{Items: items}
}

// Cart converts the snapshot back into a cart.
func (s Snapshot) Cart() domain.Cart {
	items := make([]domain.LineItem, len(s.Items))
	for i, si := range s.Items {
		items[i] = domain.LineItem{
			ProductID:  si.ProductID,
			Name:       si.Name,
			UnitPrice:  si.UnitPrice,
			Quantity:   si.Quantity,
			StockLimit: si.StockLimit,
			ImageRef:   si.ImageRef,
		}
	}
	return domain.Cart{Items: items}
}
