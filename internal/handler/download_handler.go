package handler

import (
	"net/http"

	"photo-market/internal/model"
	"photo-market/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// DownloadHandler gates access to purchased originals.
type DownloadHandler struct {
	service service.DownloadService
	logger  zerolog.Logger
}

// NewDownloadHandler creates a new download handler.
func NewDownloadHandler(service service.DownloadService, logger zerolog.Logger) *DownloadHandler {
	return &DownloadHandler{
		service: service,
		logger:  logger.With().Str("handler", "download").Logger(),
	}
}

// downloadResponse carries the signed URL the client follows.
type downloadResponse struct {
	URL string `json:"url"`
}

// Get handles GET /api/photos/{id}/download requests.
func (h *DownloadHandler) Get(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(r)
	if !ok {
		writeError(w, model.NewDomainError(model.ErrCodeUnauthorised, "Identity is required"), h.logger)
		return
	}

	photoID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeBadRequest(w, model.ErrCodeMissingField, "invalid photo ID format")
		return
	}

	url, err := h.service.GetDownloadURL(r.Context(), actor.ID, photoID)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, downloadResponse{URL: url})
}
