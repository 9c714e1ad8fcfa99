package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"photo-market/internal/middleware"
	"photo-market/internal/model"

	"github.com/rs/zerolog"
)

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Log the error but don't expose it to the client
		return
	}
}

// statusForCode maps domain error codes to HTTP status codes.
var statusForCode = map[string]int{
	model.ErrCodeInvalidJSON:         http.StatusBadRequest,
	model.ErrCodeMissingField:        http.StatusBadRequest,
	model.ErrCodeAlbumNotFound:       http.StatusNotFound,
	model.ErrCodeMediaNotFound:       http.StatusNotFound,
	model.ErrCodeNotPurchasable:      http.StatusBadRequest,
	model.ErrCodeCartItemNotFound:    http.StatusNotFound,
	model.ErrCodeCouponNotFound:      http.StatusNotFound,
	model.ErrCodeCouponExpired:       http.StatusBadRequest,
	model.ErrCodeCouponScopeMismatch: http.StatusBadRequest,
	model.ErrCodeEmptyCart:           http.StatusBadRequest,
	model.ErrCodeNonPositiveTotal:    http.StatusBadRequest,
	model.ErrCodeOrderNotFound:       http.StatusNotFound,
	model.ErrCodeDownloadForbidden:   http.StatusForbidden,
	model.ErrCodeNotOwner:            http.StatusForbidden,
	model.ErrCodeWebhookInvalid:      http.StatusBadRequest,
	model.ErrCodeUnauthorised:        http.StatusUnauthorized,
	model.ErrCodeForbidden:           http.StatusForbidden,
}

// writeError translates a service error into an HTTP response. Domain
// errors carry their own code and message; anything else is an opaque 500.
func writeError(w http.ResponseWriter, err error, logger zerolog.Logger) {
	var domainErr *model.DomainError
	if errors.As(err, &domainErr) {
		status, ok := statusForCode[domainErr.Code]
		if !ok {
			status = http.StatusInternalServerError
		}
		logger.Debug().
			Str("code", domainErr.Code).
			Int("status", status).
			Msg("request rejected")
		writeJSON(w, status, model.ErrorResponse{Error: domainErr.Code, Message: domainErr.Message})
		return
	}

	logger.Error().Err(err).Msg("handler error")
	writeJSON(w, http.StatusInternalServerError, model.ErrorResponse{
		Error:   model.ErrCodeInternalError,
		Message: "An internal error occurred",
	})
}

// writeBadRequest rejects a malformed request.
func writeBadRequest(w http.ResponseWriter, code, message string) {
	writeJSON(w, http.StatusBadRequest, model.ErrorResponse{Error: code, Message: message})
}

// actorFrom extracts the caller; route guards guarantee it is present on
// the routes that use it.
func actorFrom(r *http.Request) (model.Actor, bool) {
	return middleware.ActorFrom(r.Context())
}
