package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhangrongwu/windsurf-shop-cart/internal/catalog"
	"github.com/zhangrongwu/windsurf-shop-cart/internal/coupon"
	"github.com/zhangrongwu/windsurf-shop-cart/internal/domain"
	"github.com/zhangrongwu/windsurf-shop-cart/internal/persistence/memory"
	"github.com/zhangrongwu/windsurf-shop-cart/internal/store"
	"github.com/zhangrongwu/windsurf-shop-cart/pkg/health"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testCatalog() *catalog.Memory {
	limit := 3
	return catalog.NewMemory(
		catalog.Product{ID: "lamp", Name: "Desk Lamp", Price: dec("24.99")},
		catalog.Product{ID: "rug", Name: "Rug", Price: dec("55.00"), StockLimit: &limit},
	)
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	coupons := coupon.NewMemorySource(
		domain.Coupon{Code: "WELCOME10", Kind: domain.CouponKindPercentage, Value: dec("10"), MinPurchase: dec("50")},
		domain.Coupon{
			Code: "SUMMER20", Kind: domain.CouponKindPercentage, Value: dec("20"),
			MinPurchase: dec("100"), ExpiresAt: time.Date(2024, 12, 31, 23, 59, 59, 0, time.UTC),
		},
	)
	evaluator := coupon.NewEvaluator(coupons, discardLogger())

	sessions := NewSessions(func(ctx context.Context, sessionID string) (*store.Store, error) {
		return store.New(ctx, store.Options{
			Adapter:   memory.NewAdapter(nil),
			Evaluator: evaluator,
			Logger:    discardLogger(),
		})
	})
	t.Cleanup(sessions.Shutdown)

	return NewRouter(sessions, testCatalog(), health.NewHandler(), discardLogger())
}

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Fields  map[string]string `json:"fields"`
	} `json:"error"`
}

type cartData struct {
	Items []struct {
		ProductID string `json:"product_id"`
		Quantity  int    `json:"quantity"`
	} `json:"items"`
	ItemCount int `json:"item_count"`
	Coupon    *struct {
		Code string `json:"code"`
	} `json:"coupon"`
	Breakdown struct {
		Subtotal string `json:"subtotal"`
		Discount string `json:"discount"`
		Shipping string `json:"shipping"`
		Tax      string `json:"tax"`
		Total    string `json:"total"`
	} `json:"breakdown"`
}

func doRequest(t *testing.T, router http.Handler, method, path, session string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if session != "" {
		req.Header.Set("X-Session-ID", session)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return rec, env
}

func cartOf(t *testing.T, env envelope) cartData {
	t.Helper()
	var data cartData
	require.NoError(t, json.Unmarshal(env.Data, &data))
	return data
}

func TestGetCartStartsSession(t *testing.T) {
	router := newTestRouter(t)

	rec, env := doRequest(t, router, http.MethodGet, "/api/v1/cart", "", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Session-ID"), "server assigns a session id")
	data := cartOf(t, env)
	assert.Empty(t, data.Items)
	assert.Equal(t, 0, data.ItemCount)
}

func TestAddItem(t *testing.T) {
	router := newTestRouter(t)

	rec, env := doRequest(t, router, http.MethodPost, "/api/v1/cart/items", "s1",
		AddItemRequest{ProductID: "lamp", Quantity: 2})

	require.Equal(t, http.StatusOK, rec.Code)
	data := cartOf(t, env)
	require.Len(t, data.Items, 1)
	assert.Equal(t, "lamp", data.Items[0].ProductID)
	assert.Equal(t, 2, data.Items[0].Quantity)
	assert.Equal(t, "49.98", data.Breakdown.Subtotal)
}

func TestAddItemDefaultsQuantity(t *testing.T) {
	router := newTestRouter(t)

	rec, env := doRequest(t, router, http.MethodPost, "/api/v1/cart/items", "s1",
		AddItemRequest{ProductID: "lamp"})

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, cartOf(t, env).ItemCount)
}

func TestAddUnknownProduct(t *testing.T) {
	router := newTestRouter(t)

	rec, env := doRequest(t, router, http.MethodPost, "/api/v1/cart/items", "s1",
		AddItemRequest{ProductID: "ghost"})

	assert.Equal(t, http.StatusNotFound, rec.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "NOT_FOUND", env.Error.Code)
}

func TestAddItemValidation(t *testing.T) {
	router := newTestRouter(t)

	rec, env := doRequest(t, router, http.MethodPost, "/api/v1/cart/items", "s1",
		map[string]any{"quantity": 1})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
	assert.Contains(t, env.Error.Fields, "ProductID")
}

func TestStockExceeded(t *testing.T) {
	router := newTestRouter(t)

	rec, _ := doRequest(t, router, http.MethodPost, "/api/v1/cart/items", "s1",
		AddItemRequest{ProductID: "rug", Quantity: 3})
	require.Equal(t, http.StatusOK, rec.Code)

	rec, env := doRequest(t, router, http.MethodPost, "/api/v1/cart/items", "s1",
		AddItemRequest{ProductID: "rug", Quantity: 1})

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "STOCK_EXCEEDED", env.Error.Code)

	// Rejected add left the cart unchanged.
	_, env = doRequest(t, router, http.MethodGet, "/api/v1/cart", "s1", nil)
	assert.Equal(t, 3, cartOf(t, env).ItemCount)
}

func TestUpdateQuantity(t *testing.T) {
	router := newTestRouter(t)
	doRequest(t, router, http.MethodPost, "/api/v1/cart/items", "s1",
		AddItemRequest{ProductID: "lamp", Quantity: 1})

	rec, env := doRequest(t, router, http.MethodPut, "/api/v1/cart/items/lamp", "s1",
		UpdateQuantityRequest{Quantity: 4})

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 4, cartOf(t, env).ItemCount)
}

func TestUpdateQuantityZeroRejected(t *testing.T) {
	router := newTestRouter(t)
	doRequest(t, router, http.MethodPost, "/api/v1/cart/items", "s1",
		AddItemRequest{ProductID: "lamp", Quantity: 1})

	rec, env := doRequest(t, router, http.MethodPut, "/api/v1/cart/items/lamp", "s1",
		UpdateQuantityRequest{Quantity: 0})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "INVALID_QUANTITY", env.Error.Code)
}

func TestUpdateQuantityMissingItem(t *testing.T) {
	router := newTestRouter(t)

	rec, env := doRequest(t, router, http.MethodPut, "/api/v1/cart/items/ghost", "s1",
		UpdateQuantityRequest{Quantity: 2})

	assert.Equal(t, http.StatusNotFound, rec.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "ITEM_NOT_FOUND", env.Error.Code)
}

func TestRemoveItemIdempotent(t *testing.T) {
	router := newTestRouter(t)
	doRequest(t, router, http.MethodPost, "/api/v1/cart/items", "s1",
		AddItemRequest{ProductID: "lamp", Quantity: 1})

	rec, env := doRequest(t, router, http.MethodDelete, "/api/v1/cart/items/lamp", "s1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, cartOf(t, env).Items)

	rec, _ = doRequest(t, router, http.MethodDelete, "/api/v1/cart/items/lamp", "s1", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCouponLifecycle(t *testing.T) {
	router := newTestRouter(t)
	doRequest(t, router, http.MethodPost, "/api/v1/cart/items", "s1",
		AddItemRequest{ProductID: "lamp", Quantity: 3}) // 74.97

	rec, env := doRequest(t, router, http.MethodPost, "/api/v1/cart/coupon", "s1",
		ApplyCouponRequest{Code: "welcome10"})
	require.Equal(t, http.StatusOK, rec.Code)
	data := cartOf(t, env)
	require.NotNil(t, data.Coupon)
	assert.Equal(t, "WELCOME10", data.Coupon.Code)
	assert.Equal(t, "7.50", data.Breakdown.Discount)

	rec, env = doRequest(t, router, http.MethodDelete, "/api/v1/cart/coupon", "s1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, cartOf(t, env).Coupon)
}

func TestCouponErrors(t *testing.T) {
	router := newTestRouter(t)
	doRequest(t, router, http.MethodPost, "/api/v1/cart/items", "s1",
		AddItemRequest{ProductID: "lamp", Quantity: 1}) // 24.99

	rec, env := doRequest(t, router, http.MethodPost, "/api/v1/cart/coupon", "s1",
		ApplyCouponRequest{Code: "NOPE"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "COUPON_NOT_FOUND", env.Error.Code)

	rec, env = doRequest(t, router, http.MethodPost, "/api/v1/cart/coupon", "s1",
		ApplyCouponRequest{Code: "SUMMER20"})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "COUPON_EXPIRED", env.Error.Code)

	rec, env = doRequest(t, router, http.MethodPost, "/api/v1/cart/coupon", "s1",
		ApplyCouponRequest{Code: "WELCOME10"})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "MIN_PURCHASE_NOT_MET", env.Error.Code)
	assert.Contains(t, env.Error.Message, "25.01")
}

func TestCheckout(t *testing.T) {
	router := newTestRouter(t)

	rec, env := doRequest(t, router, http.MethodPost, "/api/v1/cart/checkout", "s1", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "EMPTY_CART", env.Error.Code)

	doRequest(t, router, http.MethodPost, "/api/v1/cart/items", "s1",
		AddItemRequest{ProductID: "lamp", Quantity: 2})

	rec, _ = doRequest(t, router, http.MethodPost, "/api/v1/cart/checkout", "s1", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	_, env = doRequest(t, router, http.MethodGet, "/api/v1/cart", "s1", nil)
	data := cartOf(t, env)
	assert.Empty(t, data.Items)
	assert.Nil(t, data.Coupon)
}

func TestSessionsAreIsolated(t *testing.T) {
	router := newTestRouter(t)

	doRequest(t, router, http.MethodPost, "/api/v1/cart/items", "alice",
		AddItemRequest{ProductID: "lamp", Quantity: 2})

	_, env := doRequest(t, router, http.MethodGet, "/api/v1/cart", "bob", nil)
	assert.Empty(t, cartOf(t, env).Items)

	_, env = doRequest(t, router, http.MethodGet, "/api/v1/cart", "alice", nil)
	assert.Equal(t, 2, cartOf(t, env).ItemCount)
}

func TestContentTypeEnforced(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/cart/items", bytes.NewReader([]byte(`{}`)))
	req.Header.Set("Content-Type", "text/plain")
	req.Header.Set("X-Session-ID", "s1")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
}

func TestHealthEndpoints(t *testing.T) {
	router := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/live", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
