package handler

import (
	"encoding/json"
	"net/http"

	"photo-market/internal/model"
	"photo-market/internal/service"

	"github.com/rs/zerolog"
)

// CouponHandler handles coupon management HTTP requests.
type CouponHandler struct {
	service service.CouponService
	logger  zerolog.Logger
}

// NewCouponHandler creates a new coupon handler.
func NewCouponHandler(service service.CouponService, logger zerolog.Logger) *CouponHandler {
	return &CouponHandler{
		service: service,
		logger:  logger.With().Str("handler", "coupon").Logger(),
	}
}

// Create handles POST /api/coupons requests.
func (h *CouponHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(r)
	if !ok {
		writeError(w, model.NewDomainError(model.ErrCodeUnauthorised, "Identity is required"), h.logger)
		return
	}

	var req model.CouponRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, model.ErrCodeInvalidJSON, "invalid request body")
		return
	}

	coupon, err := h.service.CreateCoupon(r.Context(), actor, &req)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, coupon)
}

// List handles GET /api/coupons requests.
func (h *CouponHandler) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(r)
	if !ok {
		writeError(w, model.NewDomainError(model.ErrCodeUnauthorised, "Identity is required"), h.logger)
		return
	}

	coupons, err := h.service.ListCoupons(r.Context(), actor)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, coupons)
}
