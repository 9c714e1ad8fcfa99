package handler

import (
	"io"
	"net/http"

	"photo-market/internal/model"
	"photo-market/internal/service"

	"github.com/rs/zerolog"
)

// maxWebhookBytes caps webhook payload reads; provider events are small.
const maxWebhookBytes = 1 << 20

// WebhookHandler receives payment provider webhook deliveries.
type WebhookHandler struct {
	service service.OrderService
	logger  zerolog.Logger
}

// NewWebhookHandler creates a new webhook handler.
func NewWebhookHandler(service service.OrderService, logger zerolog.Logger) *WebhookHandler {
	return &WebhookHandler{
		service: service,
		logger:  logger.With().Str("handler", "webhook").Logger(),
	}
}

// HandlePayment handles POST /webhooks/payment requests. The raw body is
// needed verbatim for signature verification, so it is read before any
// decoding happens.
func (h *WebhookHandler) HandlePayment(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBytes))
	if err != nil {
		h.logger.Warn().Err(err).Msg("failed to read webhook payload")
		writeBadRequest(w, model.ErrCodeWebhookInvalid, "unreadable payload")
		return
	}

	if err := h.service.HandleWebhook(r.Context(), payload, r.Header.Get("Stripe-Signature")); err != nil {
		writeError(w, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusOK)
}
