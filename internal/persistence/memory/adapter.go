// Package memory implements the snapshot adapter as an in-process byte slot.
// It backs single-process deployments and tests.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/zhangrongwu/windsurf-shop-cart/internal/notify"
	"github.com/zhangrongwu/windsurf-shop-cart/internal/persistence"
)

// Adapter keeps the serialized snapshot in memory. It stores bytes rather
// than a decoded struct so load paths exercise the same decode behavior as
// the Redis adapter.
type Adapter struct {
	mu      sync.Mutex
	payload []byte
	sink    notify.Sink

	// failSave, when set, makes Save return this error without storing.
	failSave error
}

// NewAdapter creates an empty in-memory snapshot adapter.
func NewAdapter(sink notify.Sink) *Adapter {
	if sink == nil {
		sink = notify.NopSink{}
	}
	return &Adapter{sink: sink}
}

// Save overwrites the stored snapshot.
func (a *Adapter) Save(_ context.Context, snap persistence.Snapshot) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.failSave != nil {
		return a.failSave
	}
	payload, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal cart snapshot: %w", err)
	}
	a.payload = payload
	return nil
}

// Load reads the stored snapshot; missing or corrupt payloads yield an empty
// snapshot, the latter with a single warning through the sink.
func (a *Adapter) Load(ctx context.Context) persistence.Snapshot {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.payload == nil {
		return persistence.Snapshot{}
	}
	var snap persistence.Snapshot
	if err := json.Unmarshal(a.payload, &snap); err != nil {
		a.sink.Report(ctx, notify.SeverityWarning,
			fmt.Sprintf("cart snapshot corrupt, starting empty: %v", err))
		a.payload = nil
		return persistence.Snapshot{}
	}
	return snap
}

// Clear removes the stored snapshot.
func (a *Adapter) Clear(context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.payload = nil
	return nil
}

// SetRaw replaces the stored payload verbatim. Tests use it to stage legacy
// or malformed snapshots.
func (a *Adapter) SetRaw(payload []byte) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.payload = payload
}

// FailSaves makes subsequent Save calls return err; pass nil to restore
// normal behavior.
func (a *Adapter) FailSaves(err error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.failSave = err
}
