package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/zhangrongwu/windsurf-shop-cart/internal/catalog"
	"github.com/zhangrongwu/windsurf-shop-cart/internal/domain"
	"github.com/zhangrongwu/windsurf-shop-cart/internal/store"
	apperrors "github.com/zhangrongwu/windsurf-shop-cart/pkg/errors"
	"github.com/zhangrongwu/windsurf-shop-cart/pkg/validator"
)

// CartHandler handles HTTP requests for cart endpoints.
type CartHandler struct {
	sessions *Sessions
	catalog  catalog.Lookup
	logger   *slog.Logger
}

// NewCartHandler creates a new cart HTTP handler.
func NewCartHandler(sessions *Sessions, catalog catalog.Lookup, logger *slog.Logger) *CartHandler {
	return &CartHandler{
		sessions: sessions,
		catalog:  catalog,
		logger:   logger,
	}
}

// --- Request DTOs ---

// AddItemRequest is the JSON request body for adding a product to the cart.
// Product details (name, price, stock limit) come from the catalog, never
// from the client. A zero quantity means 1.
type AddItemRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	Quantity  int    `json:"quantity" validate:"gte=0"`
}

// UpdateQuantityRequest is the JSON request body for setting an item's
// absolute quantity.
type UpdateQuantityRequest struct {
	Quantity int `json:"quantity" validate:"gte=0"`
}

// ApplyCouponRequest is the JSON request body for applying a coupon code.
type ApplyCouponRequest struct {
	Code string `json:"code" validate:"required"`
}

// --- Response envelope ---

type response struct {
	Data  any            `json:"data,omitempty"`
	Error *errorResponse `json:"error,omitempty"`
}

type errorResponse struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// cartView is the full cart state returned by every cart endpoint, so
// clients never need a follow-up read after a mutation.
type cartView struct {
	Items     []domain.LineItem     `json:"items"`
	ItemCount int                   `json:"item_count"`
	Coupon    *domain.Coupon        `json:"coupon,omitempty"`
	Breakdown domain.PriceBreakdown `json:"breakdown"`
}

func viewOf(st *store.Store) cartView {
	return cartView{
		Items:     st.Items(),
		ItemCount: st.ItemCount(),
		Coupon:    st.AppliedCoupon(),
		Breakdown: st.Breakdown(),
	}
}

// --- Handlers ---

// GetCart handles GET /api/v1/cart
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	st, ok := h.sessionStore(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, response{Data: viewOf(st)})
}

// AddItem handles POST /api/v1/cart/items
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	st, ok := h.sessionStore(w, r)
	if !ok {
		return
	}

	var req AddItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, response{
			Error: &errorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}
	if err := validator.Validate(req); err != nil {
		h.writeValidationError(w, err)
		return
	}

	product, err := h.catalog.GetProduct(r.Context(), req.ProductID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	err = st.Add(r.Context(), store.AddInput{
		ProductID:  product.ID,
		Name:       product.Name,
		UnitPrice:  product.Price,
		Quantity:   req.Quantity,
		StockLimit: product.StockLimit,
		ImageRef:   product.ImageRef,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, response{Data: viewOf(st)})
}

// UpdateItemQuantity handles PUT /api/v1/cart/items/{productId}
func (h *CartHandler) UpdateItemQuantity(w http.ResponseWriter, r *http.Request) {
	st, ok := h.sessionStore(w, r)
	if !ok {
		return
	}

	productID := chi.URLParam(r, "productId")
	if productID == "" {
		writeJSON(w, http.StatusBadRequest, response{
			Error: &errorResponse{Code: "INVALID_INPUT", Message: "productId is required"},
		})
		return
	}

	var req UpdateQuantityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, response{
			Error: &errorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}
	if err := validator.Validate(req); err != nil {
		h.writeValidationError(w, err)
		return
	}

	if err := st.UpdateQuantity(r.Context(), productID, req.Quantity); err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, response{Data: viewOf(st)})
}

// RemoveItem handles DELETE /api/v1/cart/items/{productId}
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	st, ok := h.sessionStore(w, r)
	if !ok {
		return
	}

	productID := chi.URLParam(r, "productId")
	if productID == "" {
		writeJSON(w, http.StatusBadRequest, response{
			Error: &errorResponse{Code: "INVALID_INPUT", Message: "productId is required"},
		})
		return
	}

	if err := st.Remove(r.Context(), productID); err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, response{Data: viewOf(st)})
}

// ClearCart handles DELETE /api/v1/cart
func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	st, ok := h.sessionStore(w, r)
	if !ok {
		return
	}

	if err := st.Clear(r.Context()); err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, response{Data: viewOf(st)})
}

// ApplyCoupon handles POST /api/v1/cart/coupon
func (h *CartHandler) ApplyCoupon(w http.ResponseWriter, r *http.Request) {
	st, ok := h.sessionStore(w, r)
	if !ok {
		return
	}

	var req ApplyCouponRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, response{
			Error: &errorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}
	if err := validator.Validate(req); err != nil {
		h.writeValidationError(w, err)
		return
	}

	if err := st.ApplyCoupon(r.Context(), req.Code); err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, response{Data: viewOf(st)})
}

// RemoveCoupon handles DELETE /api/v1/cart/coupon
func (h *CartHandler) RemoveCoupon(w http.ResponseWriter, r *http.Request) {
	st, ok := h.sessionStore(w, r)
	if !ok {
		return
	}

	if err := st.RemoveCoupon(r.Context()); err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, response{Data: viewOf(st)})
}

// GetBreakdown handles GET /api/v1/cart/breakdown
func (h *CartHandler) GetBreakdown(w http.ResponseWriter, r *http.Request) {
	st, ok := h.sessionStore(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, response{Data: st.Breakdown()})
}

// Checkout handles POST /api/v1/cart/checkout. It finalizes the purchase by
// returning the priced order and resetting the session to a fresh cart.
func (h *CartHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	st, ok := h.sessionStore(w, r)
	if !ok {
		return
	}

	order := viewOf(st)
	if len(order.Items) == 0 {
		writeJSON(w, http.StatusUnprocessableEntity, response{
			Error: &errorResponse{Code: "EMPTY_CART", Message: "cannot check out an empty cart"},
		})
		return
	}

	if err := st.Reset(r.Context()); err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, response{Data: map[string]any{
		"status": "completed",
		"order":  order,
	}})
}

// --- Helpers ---

func (h *CartHandler) sessionStore(w http.ResponseWriter, r *http.Request) (*store.Store, bool) {
	sid, ok := sessionIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusBadRequest, response{
			Error: &errorResponse{Code: "INVALID_INPUT", Message: "X-Session-ID header is required"},
		})
		return nil, false
	}

	st, err := h.sessions.Get(r.Context(), sid)
	if err != nil {
		h.writeError(w, r, err)
		return nil, false
	}
	return st, true
}

func (h *CartHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		stockErr *domain.StockExceededError
		minErr   *domain.MinPurchaseError
		appErr   *apperrors.AppError
	)

	switch {
	case errors.Is(err, domain.ErrInvalidQuantity):
		writeJSON(w, http.StatusBadRequest, response{
			Error: &errorResponse{Code: "INVALID_QUANTITY", Message: err.Error()},
		})
	case errors.Is(err, domain.ErrItemNotFound):
		writeJSON(w, http.StatusNotFound, response{
			Error: &errorResponse{Code: "ITEM_NOT_FOUND", Message: err.Error()},
		})
	case errors.As(err, &stockErr):
		writeJSON(w, http.StatusUnprocessableEntity, response{
			Error: &errorResponse{Code: "STOCK_EXCEEDED", Message: stockErr.Error()},
		})
	case errors.Is(err, domain.ErrCouponNotFound):
		writeJSON(w, http.StatusNotFound, response{
			Error: &errorResponse{Code: "COUPON_NOT_FOUND", Message: err.Error()},
		})
	case errors.Is(err, domain.ErrCouponExpired):
		writeJSON(w, http.StatusUnprocessableEntity, response{
			Error: &errorResponse{Code: "COUPON_EXPIRED", Message: err.Error()},
		})
	case errors.As(err, &minErr):
		writeJSON(w, http.StatusUnprocessableEntity, response{
			Error: &errorResponse{Code: "MIN_PURCHASE_NOT_MET", Message: minErr.Error()},
		})
	case errors.Is(err, store.ErrCartReset):
		writeJSON(w, http.StatusConflict, response{
			Error: &errorResponse{Code: "CART_RESET", Message: err.Error()},
		})
	case errors.As(err, &appErr):
		writeJSON(w, appErr.Status, response{
			Error: &errorResponse{Code: appErr.Code, Message: appErr.Message},
		})
	default:
		h.logger.ErrorContext(r.Context(), "internal error",
			slog.String("error", err.Error()),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
		)
		writeJSON(w, http.StatusInternalServerError, response{
			Error: &errorResponse{Code: "INTERNAL_ERROR", Message: "an internal error occurred"},
		})
	}
}

func (h *CartHandler) writeValidationError(w http.ResponseWriter, err error) {
	var valErr *validator.ValidationError
	if errors.As(err, &valErr) {
		writeJSON(w, http.StatusBadRequest, response{
			Error: &errorResponse{
				Code:    "VALIDATION_ERROR",
				Message: "request validation failed",
				Fields:  valErr.Fields(),
			},
		})
		return
	}

	writeJSON(w, http.StatusBadRequest, response{
		Error: &errorResponse{Code: "INVALID_INPUT", Message: err.Error()},
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Headers are already sent; nothing meaningful can be done if encoding fails.
	_ = json.NewEncoder(w).Encode(v)
}
