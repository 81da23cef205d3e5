package catalog

import (
	"context"
	"sync"

	apperrors "github.com/zhangrongwu/windsurf-shop-cart/pkg/errors"
)

// Memory is an in-process catalog for single-binary deployments and tests.
type Memory struct {
	mu       sync.RWMutex
	products map[string]Product
}

// NewMemory creates a catalog preloaded with the given products.
func NewMemory(products ...Product) *Memory {
	m := &Memory{products: make(map[string]Product, len(products))}
	for _, p := range products {
		m.products[p.ID] = p
	}
	return m
}

// Put adds or replaces a product.
func (m *Memory) Put(p Product) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.products[p.ID] = p
}

// GetProduct resolves a product by id.
func (m *Memory) GetProduct(_ context.Context, id string) (*Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.products[id]
	if !ok {
		return nil, apperrors.NotFound("product", id)
	}
	return &p, nil
}
