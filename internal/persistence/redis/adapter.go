// Package redis implements the snapshot adapter on top of Redis.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/zhangrongwu/windsurf-shop-cart/internal/notify"
	"github.com/zhangrongwu/windsurf-shop-cart/internal/persistence"
)

const keyPrefix = "cart:snapshot:"

// Adapter stores one JSON snapshot per session key with a sliding TTL.
type Adapter struct {
	client    *redis.Client
	sessionID string
	ttl       time.Duration
	sink      notify.Sink
}

// NewAdapter creates a snapshot adapter for the given session.
func NewAdapter(client *redis.Client, sessionID string, ttl time.Duration, sink notify.Sink) *Adapter {
	if sink == nil {
		sink = notify.NopSink{}
	}
	return &Adapter{
		client:    client,
		sessionID: sessionID,
		ttl:       ttl,
		sink:      sink,
	}
}

func (a *Adapter) key() string {
	return keyPrefix + a.sessionID
}

// Save overwrites the stored snapshot and refreshes its TTL.
func (a *Adapter) Save(ctx context.Context, snap persistence.Snapshot) error {
	payload, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal cart snapshot: %w", err)
	}
	if err := a.client.Set(ctx, a.key(), payload, a.ttl).Err(); err != nil {
		return fmt.Errorf("write cart snapshot: %w", err)
	}
	return nil
}

// Load reads the stored snapshot. A missing key yields an empty snapshot.
// A payload that fails to decode is treated as absent: the adapter reports a
// single warning through its sink, deletes the bad key, and returns an empty
// snapshot so the session starts clean.
func (a *Adapter) Load(ctx context.Context) persistence.Snapshot {
	payload, err := a.client.Get(ctx, a.key()).Bytes()
	if err == redis.Nil {
		return persistence.Snapshot{}
	}
	if err != nil {
		a.sink.Report(ctx, notify.SeverityWarning,
			fmt.Sprintf("cart snapshot read failed for session %s: %v", a.sessionID, err))
		return persistence.Snapshot{}
	}

	var snap persistence.Snapshot
	if err := json.Unmarshal(payload, &snap); err != nil {
		a.sink.Report(ctx, notify.SeverityWarning,
			fmt.Sprintf("cart snapshot corrupt for session %s, starting empty: %v", a.sessionID, err))
		// Drop the bad payload so the warning fires once, not on every load.
		_ = a.client.Del(ctx, a.key()).Err()
		return persistence.Snapshot{}
	}
	return snap
}

// Clear removes the stored snapshot. Deleting an absent key is not an error.
func (a *Adapter) Clear(ctx context.Context) error {
	if err := a.client.Del(ctx, a.key()).Err(); err != nil {
		return fmt.Errorf("delete cart snapshot: %w", err)
	}
	return nil
}
