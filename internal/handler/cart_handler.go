package handler

import (
	"encoding/json"
	"net/http"

	"photo-market/internal/model"
	"photo-market/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// CartHandler handles cart HTTP requests.
type CartHandler struct {
	service service.CartService
	logger  zerolog.Logger
}

// NewCartHandler creates a new cart handler.
func NewCartHandler(service service.CartService, logger zerolog.Logger) *CartHandler {
	return &CartHandler{
		service: service,
		logger:  logger.With().Str("handler", "cart").Logger(),
	}
}

// Get handles GET /api/cart requests.
func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(r)
	if !ok {
		writeError(w, model.NewDomainError(model.ErrCodeUnauthorised, "Identity is required"), h.logger)
		return
	}

	cart, err := h.service.GetCart(r.Context(), actor.ID)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, cart)
}

// addItemRequest names the photo to add.
type addItemRequest struct {
	PhotoID uuid.UUID `json:"photoId"`
}

// AddItem handles POST /api/cart/items requests.
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(r)
	if !ok {
		writeError(w, model.NewDomainError(model.ErrCodeUnauthorised, "Identity is required"), h.logger)
		return
	}

	var req addItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, model.ErrCodeInvalidJSON, "invalid request body")
		return
	}
	if req.PhotoID == uuid.Nil {
		writeBadRequest(w, model.ErrCodeMissingField, "photoId is required")
		return
	}

	cart, added, err := h.service.AddItem(r.Context(), actor.ID, req.PhotoID)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	// 201 for a new item, 200 when the photo was already in the cart.
	status := http.StatusOK
	if added {
		status = http.StatusCreated
	}
	writeJSON(w, status, cart)
}

// RemoveItem handles DELETE /api/cart/items/{id} requests.
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(r)
	if !ok {
		writeError(w, model.NewDomainError(model.ErrCodeUnauthorised, "Identity is required"), h.logger)
		return
	}

	itemID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeBadRequest(w, model.ErrCodeMissingField, "invalid item ID format")
		return
	}

	cart, err := h.service.RemoveItem(r.Context(), actor.ID, itemID)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, cart)
}

// applyCouponRequest carries the coupon code; empty clears the coupon.
type applyCouponRequest struct {
	Code string `json:"code"`
}

// ApplyCoupon handles POST /api/cart/coupon requests.
func (h *CartHandler) ApplyCoupon(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(r)
	if !ok {
		writeError(w, model.NewDomainError(model.ErrCodeUnauthorised, "Identity is required"), h.logger)
		return
	}

	var req applyCouponRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, model.ErrCodeInvalidJSON, "invalid request body")
		return
	}

	cart, err := h.service.ApplyCoupon(r.Context(), actor.ID, req.Code)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, cart)
}
