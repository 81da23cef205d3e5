// Package redis provides a coupon source backed by Redis, with coupon JSON
// stored under a per-code key. The coupon table is written by the admin
// tooling; this engine only reads it, plus a Seed helper for bootstrapping
// demo data.
package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/zhangrongwu/windsurf-shop-cart/internal/domain"
)

const keyPrefix = "coupon:"

// Source implements coupon.Source using Redis.
type Source struct {
	client *redis.Client
}

// NewSource creates a Redis-backed coupon source.
func NewSource(client *redis.Client) *Source {
	return &Source{client: client}
}

// GetByCode retrieves a coupon by its code, case-insensitively.
func (s *Source) GetByCode(ctx context.Context, code string) (*domain.Coupon, error) {
	key := keyPrefix + domain.NormalizeCouponCode(code)

	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, domain.ErrCouponNotFound
		}
		return nil, fmt.Errorf("redis get coupon: %w", err)
	}

	var c domain.Coupon
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("unmarshal coupon: %w", err)
	}

	return &c, nil
}

// Seed writes the given coupons to Redis, keyed by normalized code. Existing
// entries for the same codes are overwritten. Coupons have no TTL; expiry is
// a property of the coupon itself.
func (s *Source) Seed(ctx context.Context, coupons ...domain.Coupon) error {
	for _, c := range coupons {
		c.Code = domain.NormalizeCouponCode(c.Code)

		data, err := json.Marshal(c)
		if err != nil {
			return fmt.Errorf("marshal coupon %s: %w", c.Code, err)
		}

		if err := s.client.Set(ctx, keyPrefix+c.Code, data, 0).Err(); err != nil {
			return fmt.Errorf("redis set coupon %s: %w", c.Code, err)
		}
	}
	return nil
}
