package redis

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhangrongwu/windsurf-shop-cart/internal/notify"
	"github.com/zhangrongwu/windsurf-shop-cart/internal/persistence"
)

type recordingSink struct {
	mu      sync.Mutex
	reports []string
}

func (r *recordingSink) Report(_ context.Context, _ notify.Severity, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reports = append(r.reports, message)
}

func (r *recordingSink) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.reports)
}

func setup(t *testing.T) (*miniredis.Miniredis, *goredis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return mr, client
}

func testSnapshot() persistence.Snapshot {
	return persistence.Snapshot{Items: []persistence.SnapshotItem{{
		ProductID: "sku-1",
		Name:      "Desk Lamp",
		UnitPrice: decimal.RequireFromString("24.99"),
		Quantity:  2,
	}}}
}

func TestSaveAndLoad(t *testing.T) {
	_, client := setup(t)
	adapter := NewAdapter(client, "sess-1", time.Hour, notify.NopSink{})

	require.NoError(t, adapter.Save(context.Background(), testSnapshot()))

	got := adapter.Load(context.Background())
	require.Len(t, got.Items, 1)
	assert.Equal(t, "sku-1", got.Items[0].ProductID)
	assert.Equal(t, 2, got.Items[0].Quantity)
	assert.True(t, got.Items[0].UnitPrice.Equal(decimal.RequireFromString("24.99")))
}

func TestSaveSetsTTL(t *testing.T) {
	mr, client := setup(t)
	adapter := NewAdapter(client, "sess-1", time.Hour, notify.NopSink{})

	require.NoError(t, adapter.Save(context.Background(), testSnapshot()))

	ttl := mr.TTL("cart:snapshot:sess-1")
	assert.Greater(t, ttl, time.Duration(0))
	assert.LessOrEqual(t, ttl, time.Hour)
}

func TestLoadMissingReturnsEmpty(t *testing.T) {
	_, client := setup(t)
	sink := &recordingSink{}
	adapter := NewAdapter(client, "sess-1", time.Hour, sink)

	got := adapter.Load(context.Background())

	assert.Empty(t, got.Items)
	assert.Zero(t, sink.count(), "missing snapshot is not an anomaly")
}

func TestLoadCorruptPayloadStartsEmpty(t *testing.T) {
	mr, client := setup(t)
	sink := &recordingSink{}
	adapter := NewAdapter(client, "sess-1", time.Hour, sink)

	require.NoError(t, mr.Set("cart:snapshot:sess-1", `{"items": not-json`))

	got := adapter.Load(context.Background())
	assert.Empty(t, got.Items)
	assert.Equal(t, 1, sink.count())

	// The bad payload is gone, so a second load reports nothing new.
	got = adapter.Load(context.Background())
	assert.Empty(t, got.Items)
	assert.Equal(t, 1, sink.count())
}

func TestSessionsAreIsolated(t *testing.T) {
	_, client := setup(t)
	a := NewAdapter(client, "sess-a", time.Hour, notify.NopSink{})
	b := NewAdapter(client, "sess-b", time.Hour, notify.NopSink{})

	require.NoError(t, a.Save(context.Background(), testSnapshot()))

	assert.Empty(t, b.Load(context.Background()).Items)
	assert.Len(t, a.Load(context.Background()).Items, 1)
}

func TestClear(t *testing.T) {
	_, client := setup(t)
	adapter := NewAdapter(client, "sess-1", time.Hour, notify.NopSink{})

	require.NoError(t, adapter.Save(context.Background(), testSnapshot()))
	require.NoError(t, adapter.Clear(context.Background()))

	assert.Empty(t, adapter.Load(context.Background()).Items)

	// Clearing an already-empty snapshot is fine.
	require.NoError(t, adapter.Clear(context.Background()))
}
