package handler

import (
	"net/http"

	"photo-market/internal/model"
	"photo-market/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// OrderHandler handles checkout, order and sales HTTP requests.
type OrderHandler struct {
	service service.OrderService
	logger  zerolog.Logger
}

// NewOrderHandler creates a new order handler.
func NewOrderHandler(service service.OrderService, logger zerolog.Logger) *OrderHandler {
	return &OrderHandler{
		service: service,
		logger:  logger.With().Str("handler", "order").Logger(),
	}
}

// Checkout handles POST /api/checkout requests.
func (h *OrderHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(r)
	if !ok {
		writeError(w, model.NewDomainError(model.ErrCodeUnauthorised, "Identity is required"), h.logger)
		return
	}

	resp, err := h.service.Checkout(r.Context(), actor.ID)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, resp)
}

// GetByID handles GET /api/orders/{id} requests.
func (h *OrderHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(r)
	if !ok {
		writeError(w, model.NewDomainError(model.ErrCodeUnauthorised, "Identity is required"), h.logger)
		return
	}

	orderID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeBadRequest(w, model.ErrCodeMissingField, "invalid order ID format")
		return
	}

	order, err := h.service.GetOrder(r.Context(), actor.ID, orderID)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}
	if order == nil {
		writeError(w, model.ErrOrderNotFound, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, order)
}

// ListPurchases handles GET /api/orders requests.
func (h *OrderHandler) ListPurchases(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(r)
	if !ok {
		writeError(w, model.NewDomainError(model.ErrCodeUnauthorised, "Identity is required"), h.logger)
		return
	}

	orders, err := h.service.ListPurchases(r.Context(), actor.ID)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, orders)
}

// ListSales handles GET /api/sales requests.
func (h *OrderHandler) ListSales(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(r)
	if !ok {
		writeError(w, model.NewDomainError(model.ErrCodeUnauthorised, "Identity is required"), h.logger)
		return
	}

	sales, err := h.service.ListSales(r.Context(), actor.ID)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, sales)
}
