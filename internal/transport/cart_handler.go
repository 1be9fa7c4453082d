package transport

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"storefront/internal/cart"
	"storefront/internal/catalog"
	"storefront/internal/domain"
	"storefront/internal/middleware"
	"storefront/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// MaxLineQuantity caps the quantity a single add or update request may set,
// matching the product page stepper
const MaxLineQuantity = 10

// AddItemRequest represents the add-to-cart payload
type AddItemRequest struct {
	ProductID int    `json:"productId" validate:"required,gt=0"`
	Quantity  int    `json:"quantity" validate:"required,gte=1,lte=10"`
	Color     string `json:"color" validate:"max=32"`
}

// UpdateItemRequest represents the quantity update payload. Zero removes the line.
type UpdateItemRequest struct {
	Quantity int    `json:"quantity" validate:"gte=0,lte=10"`
	Color    string `json:"color" validate:"max=32"`
}

// CheckoutRequest represents the checkout payload
type CheckoutRequest struct {
	Customer domain.CustomerInfo `json:"customer"`
	Shipping decimal.Decimal     `json:"shipping"`
}

// SessionResponse is returned when a cart session is opened
type SessionResponse struct {
	SessionID string `json:"sessionId"`
}

// CartHandler handles HTTP requests for cart operations
type CartHandler struct {
	carts    *cart.Registry
	store    *catalog.Store
	checkout service.CheckoutService
	logger   *zap.Logger
}

// NewCartHandler creates a new CartHandler
func NewCartHandler(carts *cart.Registry, store *catalog.Store, checkout service.CheckoutService, logger *zap.Logger) *CartHandler {
	return &CartHandler{
		carts:    carts,
		store:    store,
		checkout: checkout,
		logger:   logger,
	}
}

// RegisterRoutes registers all cart routes
func (h *CartHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/cart", func(r chi.Router) {
		r.Post("/", h.CreateSession)

		r.Group(func(r chi.Router) {
			r.Use(h.requireSession)
			r.Get("/", h.GetCart)
			r.Delete("/", h.ClearCart)
			r.Delete("/session", h.CloseSession)
			r.Post("/items", h.AddItem)
			r.Put("/items/{productId}", h.UpdateItem)
			r.Delete("/items/{productId}", h.RemoveItem)
			r.Get("/events", h.Events)
			r.Post("/checkout", h.Checkout)
		})
	})
}

// requireSession resolves the X-Cart-Session header to a cart
func (h *CartHandler) requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(middleware.CartSessionHeader)
		if id == "" {
			id = r.URL.Query().Get("session")
		}
		if id == "" {
			middleware.RespondWithError(w, http.StatusBadRequest, "missing cart session")
			return
		}

		c, err := h.carts.Get(id)
		if errors.Is(err, cart.ErrSessionNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "cart session not found")
			return
		}

		next.ServeHTTP(w, r.WithContext(withCart(r.Context(), id, c)))
	})
}

// CreateSession opens a new cart
func (h *CartHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	id, _ := h.carts.Create()
	middleware.RespondWithJSON(w, http.StatusCreated, SessionResponse{SessionID: id})
}

// CloseSession drops the session and its cart
func (h *CartHandler) CloseSession(w http.ResponseWriter, r *http.Request) {
	if !h.carts.Delete(sessionFrom(r.Context())) {
		middleware.RespondWithError(w, http.StatusNotFound, "cart session not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetCart returns the lines and totals
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	middleware.RespondWithJSON(w, http.StatusOK, cartFrom(r.Context()).Summary())
}

// ClearCart removes every line
func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	c := cartFrom(r.Context())
	c.Clear()
	middleware.RespondWithJSON(w, http.StatusOK, c.Summary())
}

// AddItem adds a catalog product to the cart
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req AddItemRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Add to cart validation failed", zap.Error(err))
		middleware.RespondWithDecodeError(w, err)
		return
	}

	product, ok := h.store.ProductRef(req.ProductID)
	if !ok {
		middleware.RespondWithError(w, http.StatusNotFound, "product not found")
		return
	}
	if !product.InStock {
		middleware.RespondWithError(w, http.StatusConflict, "product is out of stock")
		return
	}

	c := cartFrom(r.Context())
	if err := c.AddToCart(product, req.Quantity, req.Color); err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, c.Summary())
}

// UpdateItem sets the quantity of a line
func (h *CartHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	productID, ok := productIDParam(w, r)
	if !ok {
		return
	}

	var req UpdateItemRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Cart update validation failed", zap.Error(err))
		middleware.RespondWithDecodeError(w, err)
		return
	}

	c := cartFrom(r.Context())
	c.UpdateQuantity(productID, req.Quantity, req.Color)
	middleware.RespondWithJSON(w, http.StatusOK, c.Summary())
}

// RemoveItem deletes a line; the color comes from the query string
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	productID, ok := productIDParam(w, r)
	if !ok {
		return
	}

	c := cartFrom(r.Context())
	c.RemoveFromCart(productID, r.URL.Query().Get("color"))
	middleware.RespondWithJSON(w, http.StatusOK, c.Summary())
}

// Events streams cart summaries as server-sent events, starting with the
// current cart
func (h *CartHandler) Events(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		middleware.RespondWithError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	// the stream outlives the server write timeout
	if err := http.NewResponseController(w).SetWriteDeadline(time.Time{}); err != nil {
		h.logger.Debug("Cannot clear write deadline for cart events", zap.Error(err))
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for lines := range cartFrom(r.Context()).Subscribe(r.Context()) {
		payload, err := json.Marshal(cart.Summarize(lines))
		if err != nil {
			h.logger.Error("Failed to encode cart event", zap.Error(err))
			return
		}
		if _, err := fmt.Fprintf(w, "event: cart\ndata: %s\n\n", payload); err != nil {
			return
		}
		flusher.Flush()
	}
}

// Checkout returns an order draft for the cart
func (h *CartHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	var req CheckoutRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Checkout validation failed", zap.Error(err))
		middleware.RespondWithDecodeError(w, err)
		return
	}

	order, err := h.checkout.Checkout(r.Context(), cartFrom(r.Context()), req.Customer, req.Shipping)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmptyCart):
			middleware.RespondWithError(w, http.StatusConflict, "cart is empty")
		case errors.Is(err, service.ErrInvalidCustomer), errors.Is(err, service.ErrNegativeShipping):
			middleware.RespondWithError(w, http.StatusBadRequest, err.Error())
		default:
			h.logger.Error("Checkout failed", zap.Error(err))
			middleware.RespondWithError(w, http.StatusInternalServerError, "failed to check out")
		}
		return
	}

	middleware.RespondWithJSON(w, http.StatusCreated, order)
}

func productIDParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "productId"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product id")
		return 0, false
	}
	return id, true
}
