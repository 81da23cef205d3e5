package coupon

import (
	"context"
	"sync"

	"github.com/zhangrongwu/windsurf-shop-cart/internal/domain"
)

// MemorySource is an in-process coupon table keyed by normalized code.
// Useful for tests and single-process deployments.
type MemorySource struct {
	mu      sync.RWMutex
	coupons map[string]domain.Coupon
}

// NewMemorySource creates a source preloaded with the given coupons.
func NewMemorySource(coupons ...domain.Coupon) *MemorySource {
	s := &MemorySource{coupons: make(map[string]domain.Coupon, len(coupons))}
	for _, c := range coupons {
		s.Put(c)
	}
	return s
}

// Put adds or replaces a coupon, keyed by its normalized code.
func (s *MemorySource) Put(c domain.Coupon) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.Code = domain.NormalizeCouponCode(c.Code)
	s.coupons[c.Code] = c
}

// GetByCode returns the coupon for the given normalized code, or
// domain.ErrCouponNotFound.
func (s *MemorySource) GetByCode(ctx context.Context, code string) (*domain.Coupon, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.coupons[domain.NormalizeCouponCode(code)]
	if !ok {
		return nil, domain.ErrCouponNotFound
	}
	return &c, nil
}
