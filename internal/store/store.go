// Package store holds the authoritative in-memory cart state for one
// shopping session and coordinates the surrounding concerns: pricing,
// coupon evaluation, best-effort snapshot persistence, and anomaly
// reporting.
package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/zhangrongwu/windsurf-shop-cart/internal/coupon"
	"github.com/zhangrongwu/windsurf-shop-cart/internal/domain"
	"github.com/zhangrongwu/windsurf-shop-cart/internal/notify"
	"github.com/zhangrongwu/windsurf-shop-cart/internal/persistence"
	"github.com/zhangrongwu/windsurf-shop-cart/internal/pricing"
	apperrors "github.com/zhangrongwu/windsurf-shop-cart/pkg/errors"
)

// ErrCartReset reports that a coupon evaluation finished after the cart was
// cleared or reset, so the result no longer applies to the current contents.
var ErrCartReset = errors.New("cart was reset during coupon evaluation")

const defaultSaveTimeout = 5 * time.Second

// Options configure a Store.
type Options struct {
	// Adapter persists cart snapshots. Required.
	Adapter persistence.Adapter
	// Evaluator resolves and validates coupon codes. Required.
	Evaluator *coupon.Evaluator
	// Calculator prices the cart. Defaults to the standard rates.
	Calculator *pricing.Calculator
	// Sink receives anomaly reports. Defaults to a no-op sink.
	Sink notify.Sink
	// Logger defaults to slog.Default.
	Logger *slog.Logger
	// Now overrides the clock, for tests.
	Now func() time.Time
	// SaveTimeout bounds each background snapshot write.
	SaveTimeout time.Duration
}

// Store is safe for concurrent use. Every operation runs to completion under
// one mutex; only coupon evaluation, which may do I/O, runs outside it and is
// fenced by an epoch counter.
type Store struct {
	mu      sync.Mutex
	cart    domain.Cart
	applied *domain.Coupon
	epoch   uint64

	adapter persistence.Adapter
	saver   *saver
	eval    *coupon.Evaluator
	calc    *pricing.Calculator
	sink    notify.Sink
	logger  *slog.Logger
	now     func() time.Time
}

// AddInput describes the product being added. A zero Quantity means 1.
type AddInput struct {
	ProductID  string
	Name       string
	UnitPrice  decimal.Decimal
	Quantity   int
	StockLimit *int
	ImageRef   string
}

// New builds a store and rehydrates it from the adapter's stored snapshot.
// Snapshot lines that violate the cart invariants, and duplicate product
// lines, are dropped with a warning rather than failing the session.
func New(ctx context.Context, opts Options) (*Store, error) {
	if opts.Adapter == nil {
		return nil, apperrors.InvalidInput("store: persistence adapter is required")
	}
	if opts.Evaluator == nil {
		return nil, apperrors.InvalidInput("store: coupon evaluator is required")
	}
	if opts.Calculator == nil {
		opts.Calculator = pricing.NewCalculator(pricing.DefaultConfig())
	}
	if opts.Sink == nil {
		opts.Sink = notify.NopSink{}
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.SaveTimeout <= 0 {
		opts.SaveTimeout = defaultSaveTimeout
	}

	s := &Store{
		adapter: opts.Adapter,
		saver:   newSaver(opts.Adapter, opts.Sink, opts.SaveTimeout),
		eval:    opts.Evaluator,
		calc:    opts.Calculator,
		sink:    opts.Sink,
		logger:  opts.Logger,
		now:     opts.Now,
	}
	s.cart = s.sanitize(ctx, opts.Adapter.Load(ctx).Cart())
	return s, nil
}

func (s *Store) sanitize(ctx context.Context, cart domain.Cart) domain.Cart {
	seen := make(map[string]struct{}, len(cart.Items))
	kept := cart.Items[:0]
	var dropped int
	for _, li := range cart.Items {
		if _, dup := seen[li.ProductID]; dup || !li.Valid() {
			dropped++
			s.logger.Warn("dropping invalid snapshot line",
				"product_id", li.ProductID,
				"quantity", li.Quantity,
			)
			continue
		}
		seen[li.ProductID] = struct{}{}
		kept = append(kept, li)
	}
	if dropped > 0 {
		s.sink.Report(ctx, notify.SeverityWarning,
			fmt.Sprintf("dropped %d invalid line(s) from stored cart snapshot", dropped))
	}
	cart.Items = kept
	return cart
}

// Add inserts the product or, when a line for it already exists, increases
// that line's quantity. The stock check covers the combined quantity and runs
// before any mutation, so a rejected add leaves the cart untouched.
func (s *Store) Add(ctx context.Context, in AddInput) (err error) {
	defer func() { recordMutation("add", err) }()

	if in.ProductID == "" {
		return apperrors.InvalidInput("product id is required")
	}
	if in.UnitPrice.IsNegative() {
		return apperrors.InvalidInput("unit price must not be negative")
	}
	qty := in.Quantity
	if qty == 0 {
		qty = 1
	}
	if qty < 0 {
		return domain.ErrInvalidQuantity
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.cart.FindItemIndex(in.ProductID)
	newQty := qty
	limit := in.StockLimit
	if idx >= 0 {
		newQty += s.cart.Items[idx].Quantity
		if limit == nil {
			limit = s.cart.Items[idx].StockLimit
		}
	}
	if limit != nil && newQty > *limit {
		return &domain.StockExceededError{
			ProductID:  in.ProductID,
			StockLimit: *limit,
			Requested:  newQty,
		}
	}

	if idx >= 0 {
		s.cart.Items[idx].Quantity = newQty
		if in.StockLimit != nil {
			s.cart.Items[idx].StockLimit = in.StockLimit
		}
	} else {
		s.cart.Items = append(s.cart.Items, domain.LineItem{
			ProductID:  in.ProductID,
			Name:       in.Name,
			UnitPrice:  in.UnitPrice,
			Quantity:   qty,
			StockLimit: in.StockLimit,
			ImageRef:   in.ImageRef,
		})
	}

	s.persistLocked()
	s.logger.InfoContext(ctx, "item added to cart",
		"product_id", in.ProductID,
		"quantity", newQty,
		"item_count", s.cart.ItemCount(),
	)
	return nil
}

// UpdateQuantity sets the line's quantity to an absolute value of at least 1.
// Removal goes through Remove, never through a zero quantity.
func (s *Store) UpdateQuantity(ctx context.Context, productID string, quantity int) (err error) {
	defer func() { recordMutation("update_quantity", err) }()

	if quantity < 1 {
		return domain.ErrInvalidQuantity
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.cart.FindItemIndex(productID)
	if idx < 0 {
		return fmt.Errorf("product %s: %w", productID, domain.ErrItemNotFound)
	}
	if limit := s.cart.Items[idx].StockLimit; limit != nil && quantity > *limit {
		return &domain.StockExceededError{
			ProductID:  productID,
			StockLimit: *limit,
			Requested:  quantity,
		}
	}

	s.cart.Items[idx].Quantity = quantity
	s.persistLocked()
	s.logger.InfoContext(ctx, "cart quantity updated",
		"product_id", productID,
		"quantity", quantity,
	)
	return nil
}

// Remove deletes the product's line. Removing an absent product is a no-op
// and triggers no snapshot write.
func (s *Store) Remove(ctx context.Context, productID string) (err error) {
	defer func() { recordMutation("remove", err) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.cart.FindItemIndex(productID)
	if idx < 0 {
		return nil
	}

	s.cart.Items = append(s.cart.Items[:idx], s.cart.Items[idx+1:]...)
	s.persistLocked()
	s.logger.InfoContext(ctx, "item removed from cart", "product_id", productID)
	return nil
}

// Clear empties the cart but keeps any applied coupon for the next purchase.
// In-flight coupon evaluations are invalidated.
func (s *Store) Clear(ctx context.Context) (err error) {
	defer func() { recordMutation("clear", err) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.cart.Items = nil
	s.epoch++
	s.persistLocked()
	s.logger.InfoContext(ctx, "cart cleared")
	return nil
}

// Reset returns the session to its initial state: no items, no coupon, no
// stored snapshot. Checkout completion uses it. Deleting the snapshot is
// best-effort; a failure is reported through the sink, not returned.
func (s *Store) Reset(ctx context.Context) (err error) {
	defer func() { recordMutation("reset", err) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.cart.Items = nil
	s.applied = nil
	s.epoch++

	// Stop any queued snapshot write so it cannot recreate the key we are
	// about to delete.
	s.saver.drain()
	if err := s.adapter.Clear(ctx); err != nil {
		s.sink.Report(ctx, notify.SeverityWarning,
			fmt.Sprintf("cart snapshot delete failed: %v", err))
	}
	s.logger.InfoContext(ctx, "cart reset")
	return nil
}

// ApplyCoupon evaluates the code against the current subtotal and, on
// success, installs it as the single applied coupon, replacing any previous
// one. Evaluation may reach external storage, so it runs outside the cart
// lock; if the cart is cleared or reset meanwhile, the result is discarded
// and ErrCartReset is returned.
func (s *Store) ApplyCoupon(ctx context.Context, code string) (err error) {
	defer func() { recordMutation("apply_coupon", err) }()

	s.mu.Lock()
	subtotal := s.cart.Subtotal()
	epoch := s.epoch
	s.mu.Unlock()

	c, err := s.eval.Evaluate(ctx, code, subtotal, s.now())
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.epoch != epoch {
		return ErrCartReset
	}
	s.applied = c
	s.logger.InfoContext(ctx, "coupon applied",
		"code", c.Code,
		"kind", c.Kind,
	)
	return nil
}

// RemoveCoupon detaches the applied coupon, if any.
func (s *Store) RemoveCoupon(ctx context.Context) (err error) {
	defer func() { recordMutation("remove_coupon", err) }()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.applied == nil {
		return nil
	}
	code := s.applied.Code
	s.applied = nil
	s.logger.InfoContext(ctx, "coupon removed", "code", code)
	return nil
}

// Items returns a copy of the current line items.
func (s *Store) Items() []domain.LineItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.Clone().Items
}

// Subtotal returns the exact pre-discount sum of line totals.
func (s *Store) Subtotal() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.Subtotal()
}

// ItemCount returns the total number of units in the cart.
func (s *Store) ItemCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.ItemCount()
}

// AppliedCoupon returns a copy of the applied coupon, or nil.
func (s *Store) AppliedCoupon() *domain.Coupon {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.applied == nil {
		return nil
	}
	c := *s.applied
	return &c
}

// Breakdown prices the current cart contents with the applied coupon.
func (s *Store) Breakdown() domain.PriceBreakdown {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calc.Breakdown(s.cart.Subtotal(), s.applied)
}

// Flush blocks until all queued snapshot writes have completed.
func (s *Store) Flush() {
	s.saver.flush()
}

// Close flushes outstanding snapshot writes and stops accepting new ones.
func (s *Store) Close() {
	s.saver.close()
}

func (s *Store) persistLocked() {
	s.saver.enqueue(persistence.FromCart(s.cart.Clone()))
}
