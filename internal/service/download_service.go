package service

import (
	"context"
	"fmt"
	"time"

	"photo-market/internal/blob"
	"photo-market/internal/model"
	"photo-market/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// downloadService implements DownloadService.
type downloadService struct {
	orderRepo repository.OrderRepository
	mediaRepo repository.MediaRepository
	store     blob.Store
	urlTTL    time.Duration
	logger    zerolog.Logger
}

// NewDownloadService creates a new download service.
func NewDownloadService(
	orderRepo repository.OrderRepository,
	mediaRepo repository.MediaRepository,
	store blob.Store,
	urlTTL time.Duration,
	logger zerolog.Logger,
) DownloadService {
	return &downloadService{
		orderRepo: orderRepo,
		mediaRepo: mediaRepo,
		store:     store,
		urlTTL:    urlTTL,
		logger:    logger.With().Str("service", "download").Logger(),
	}
}

// GetDownloadURL issues a short-lived signed URL for a photo original,
// provided the customer holds an unexpired entitlement for it. Expired
// entitlements, absent entitlements and nonexistent photos are all
// indistinguishable to the caller; a probing denial never confirms that
// a photo id exists.
func (s *downloadService) GetDownloadURL(ctx context.Context, customerID, photoID uuid.UUID) (string, error) {
	entitlement, err := s.orderRepo.GetValidEntitlement(ctx, customerID, photoID, time.Now())
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("customer_id", customerID.String()).
			Str("photo_id", photoID.String()).
			Msg("failed to check entitlement")
		return "", fmt.Errorf("failed to issue download URL: %w", err)
	}
	if entitlement == nil {
		return "", model.ErrDownloadForbidden
	}

	photo, err := s.mediaRepo.GetPhoto(ctx, photoID)
	if err != nil {
		s.logger.Error().Err(err).Str("photo_id", photoID.String()).Msg("failed to load photo")
		return "", fmt.Errorf("failed to issue download URL: %w", err)
	}
	if photo == nil {
		return "", model.ErrDownloadForbidden
	}

	url, err := s.store.SignedGetURL(ctx, photo.OriginalKey, s.urlTTL, downloadFilename(photo))
	if err != nil {
		s.logger.Error().Err(err).Str("photo_id", photoID.String()).Msg("failed to sign download URL")
		return "", fmt.Errorf("failed to issue download URL: %w", err)
	}

	s.logger.Info().
		Str("customer_id", customerID.String()).
		Str("photo_id", photoID.String()).
		Msg("download URL issued")

	return url, nil
}

// downloadFilename picks the save-as name hinted to the browser.
func downloadFilename(photo *model.Photo) string {
	if photo.Caption != nil && *photo.Caption != "" {
		return *photo.Caption + ".jpg"
	}
	return photo.ID.String() + ".jpg"
}
