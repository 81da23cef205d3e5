package http

import (
	"context"
	"sync"

	"github.com/zhangrongwu/windsurf-shop-cart/internal/store"
)

// StoreFactory builds the cart store for a session, wiring its persistence
// adapter to the session's snapshot key.
type StoreFactory func(ctx context.Context, sessionID string) (*store.Store, error)

// Sessions maps session IDs to their live cart stores, creating them lazily
// on first use. Creation rehydrates the store from its stored snapshot.
type Sessions struct {
	mu      sync.Mutex
	factory StoreFactory
	stores  map[string]*store.Store
}

// NewSessions creates an empty session registry.
func NewSessions(factory StoreFactory) *Sessions {
	return &Sessions{
		factory: factory,
		stores:  make(map[string]*store.Store),
	}
}

// Get returns the session's cart store, creating it on first use.
func (s *Sessions) Get(ctx context.Context, sessionID string) (*store.Store, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if st, ok := s.stores[sessionID]; ok {
		return st, nil
	}
	st, err := s.factory(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	s.stores[sessionID] = st
	return st, nil
}

// Shutdown closes every live store, flushing outstanding snapshot writes.
func (s *Sessions) Shutdown() {
	s.mu.Lock()
	stores := make([]*store.Store, 0, len(s.stores))
	for _, st := range s.stores {
		stores = append(stores, st)
	}
	s.stores = make(map[string]*store.Store)
	s.mu.Unlock()

	for _, st := range stores {
		st.Close()
	}
}
