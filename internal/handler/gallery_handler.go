package handler

import (
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"

	"photo-market/internal/model"
	"photo-market/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// maxUploadBytes caps multipart upload memory buffering.
const maxUploadBytes = 64 << 20

// GalleryHandler handles album and media HTTP requests.
type GalleryHandler struct {
	service service.GalleryService
	logger  zerolog.Logger
}

// NewGalleryHandler creates a new gallery handler.
func NewGalleryHandler(service service.GalleryService, logger zerolog.Logger) *GalleryHandler {
	return &GalleryHandler{
		service: service,
		logger:  logger.With().Str("handler", "gallery").Logger(),
	}
}

// CreateAlbum handles POST /api/albums requests.
func (h *GalleryHandler) CreateAlbum(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(r)
	if !ok {
		writeError(w, model.NewDomainError(model.ErrCodeUnauthorised, "Identity is required"), h.logger)
		return
	}

	var req model.AlbumRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, model.ErrCodeInvalidJSON, "invalid request body")
		return
	}

	album, err := h.service.CreateAlbum(r.Context(), actor, &req)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, album)
}

// ListAlbums handles GET /api/albums requests.
func (h *GalleryHandler) ListAlbums(w http.ResponseWriter, r *http.Request) {
	albums, err := h.service.ListAlbums(r.Context())
	if err != nil {
		writeError(w, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, albums)
}

// GetAlbum handles GET /api/albums/{id} requests.
func (h *GalleryHandler) GetAlbum(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeBadRequest(w, model.ErrCodeMissingField, "invalid album ID format")
		return
	}

	detail, err := h.service.GetAlbum(r.Context(), id)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}
	if detail == nil {
		writeError(w, model.ErrAlbumNotFound, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, detail)
}

// UploadPhoto handles POST /api/albums/{id}/photos multipart requests.
func (h *GalleryHandler) UploadPhoto(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(r)
	if !ok {
		writeError(w, model.NewDomainError(model.ErrCodeUnauthorised, "Identity is required"), h.logger)
		return
	}

	albumID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeBadRequest(w, model.ErrCodeMissingField, "invalid album ID format")
		return
	}

	data, contentType, err := readUpload(r)
	if err != nil {
		writeBadRequest(w, model.ErrCodeMissingField, "a file upload is required")
		return
	}

	price, err := decimal.NewFromString(r.FormValue("price"))
	if err != nil || price.IsNegative() {
		writeBadRequest(w, model.ErrCodeMissingField, "a non-negative price is required")
		return
	}

	var caption *string
	if c := r.FormValue("caption"); c != "" {
		caption = &c
	}

	photo, err := h.service.UploadPhoto(r.Context(), actor, albumID, data, contentType, caption, price)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, photo)
}

// UploadVideo handles POST /api/albums/{id}/videos multipart requests.
func (h *GalleryHandler) UploadVideo(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(r)
	if !ok {
		writeError(w, model.NewDomainError(model.ErrCodeUnauthorised, "Identity is required"), h.logger)
		return
	}

	albumID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeBadRequest(w, model.ErrCodeMissingField, "invalid album ID format")
		return
	}

	data, contentType, err := readUpload(r)
	if err != nil {
		writeBadRequest(w, model.ErrCodeMissingField, "a file upload is required")
		return
	}

	price, err := decimal.NewFromString(r.FormValue("price"))
	if err != nil || price.IsNegative() {
		writeBadRequest(w, model.ErrCodeMissingField, "a non-negative price is required")
		return
	}

	video, err := h.service.UploadVideo(r.Context(), actor, albumID, data, contentType, r.FormValue("title"), price)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, video)
}

// SearchByFace handles POST /api/photos/face-search multipart requests.
func (h *GalleryHandler) SearchByFace(w http.ResponseWriter, r *http.Request) {
	data, _, err := readUpload(r)
	if err != nil {
		writeBadRequest(w, model.ErrCodeMissingField, "a reference image is required")
		return
	}

	photos, err := h.service.SearchByFace(r.Context(), data)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, photos)
}

// archiveRequest toggles the archived flag of an album or photo.
type archiveRequest struct {
	Archived bool `json:"archived"`
}

// ArchiveAlbum handles PATCH /api/albums/{id}/archive requests.
func (h *GalleryHandler) ArchiveAlbum(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(r)
	if !ok {
		writeError(w, model.NewDomainError(model.ErrCodeUnauthorised, "Identity is required"), h.logger)
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeBadRequest(w, model.ErrCodeMissingField, "invalid album ID format")
		return
	}

	var req archiveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, model.ErrCodeInvalidJSON, "invalid request body")
		return
	}

	if err := h.service.SetAlbumArchived(r.Context(), actor, id, req.Archived); err != nil {
		writeError(w, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ArchivePhoto handles PATCH /api/photos/{id}/archive requests.
func (h *GalleryHandler) ArchivePhoto(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(r)
	if !ok {
		writeError(w, model.NewDomainError(model.ErrCodeUnauthorised, "Identity is required"), h.logger)
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeBadRequest(w, model.ErrCodeMissingField, "invalid photo ID format")
		return
	}

	var req archiveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, model.ErrCodeInvalidJSON, "invalid request body")
		return
	}

	if err := h.service.SetPhotoArchived(r.Context(), actor, id, req.Archived); err != nil {
		writeError(w, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// readUpload pulls the "file" part out of a multipart request.
func readUpload(r *http.Request) ([]byte, string, error) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		return nil, "", err
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, "", err
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, "", err
	}

	return data, uploadContentType(header), nil
}

func uploadContentType(header *multipart.FileHeader) string {
	if ct := header.Header.Get("Content-Type"); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
