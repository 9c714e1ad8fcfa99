package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"photo-market/internal/blob"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ProcessPhoto produces the face index entries and the watermarked preview
// for one photo. Both steps check their own guard first, so a retried or
// duplicate job repeats nothing that already completed.
func (p *Processor) ProcessPhoto(ctx context.Context, photoID uuid.UUID) error {
	logger := p.logger.With().Str("photo_id", photoID.String()).Logger()

	photo, err := p.media.GetPhoto(ctx, photoID)
	if err != nil {
		return fmt.Errorf("failed to load photo %s: %w", photoID, err)
	}
	if photo == nil {
		// Deleted between enqueue and processing.
		logger.Info().Msg("photo no longer exists, skipping job")
		return nil
	}
	if photo.OriginalKey == "" {
		logger.Warn().Msg("photo has no original blob, skipping job")
		return nil
	}

	original, err := p.store.GetPrivate(ctx, photo.OriginalKey)
	if err != nil {
		if errors.Is(err, blob.ErrNotFound) {
			logger.Warn().Str("key", photo.OriginalKey).Msg("original blob missing, skipping job")
			return nil
		}
		return fmt.Errorf("failed to read original for photo %s: %w", photoID, err)
	}

	if err := p.indexPhotoFaces(ctx, photoID, original, logger); err != nil {
		return err
	}

	if photo.WatermarkKey == nil {
		if err := p.producePreview(ctx, photoID, photo.OriginalKey, original, logger); err != nil {
			return err
		}
	}

	logger.Info().Msg("photo derivation complete")
	return nil
}

// indexPhotoFaces sends the photo to the face index unless entries already
// exist. Oversized originals are downscaled for the index call only; that
// downscaled copy is never persisted as a derivative.
func (p *Processor) indexPhotoFaces(ctx context.Context, photoID uuid.UUID, original []byte, logger zerolog.Logger) error {
	count, err := p.media.CountFaceEntries(ctx, photoID)
	if err != nil {
		return fmt.Errorf("failed to check face entries for photo %s: %w", photoID, err)
	}
	if count > 0 {
		logger.Debug().Int("entries", count).Msg("photo already indexed, skipping")
		return nil
	}

	indexBytes := original
	if len(original) > faceUploadLimitBytes {
		indexBytes, err = downscaleForIndex(original)
		if err != nil {
			return fmt.Errorf("failed to downscale photo %s for indexing: %w", photoID, err)
		}
		logger.Debug().
			Int("original_bytes", len(original)).
			Int("index_bytes", len(indexBytes)).
			Msg("downscaled oversized original for indexing")
	}

	faceIDs, err := p.faces.IndexFaces(ctx, indexBytes, photoID.String())
	if err != nil {
		return fmt.Errorf("failed to index faces for photo %s: %w", photoID, err)
	}

	if len(faceIDs) == 0 {
		logger.Debug().Msg("no faces found in photo")
		return nil
	}

	if err := p.media.AddFaceEntries(ctx, photoID, faceIDs); err != nil {
		return fmt.Errorf("failed to persist face entries for photo %s: %w", photoID, err)
	}

	logger.Info().Int("faces", len(faceIDs)).Msg("faces indexed")
	return nil
}

// producePreview renders the watermarked preview and persists its reference.
func (p *Processor) producePreview(ctx context.Context, photoID uuid.UUID, originalKey string, original []byte, logger zerolog.Logger) error {
	src, err := imaging.Decode(bytes.NewReader(original), imaging.AutoOrientation(true))
	if err != nil {
		return fmt.Errorf("failed to decode photo %s: %w", photoID, err)
	}

	preview := imaging.Fit(src, previewMaxSize, previewMaxSize, imaging.Lanczos)
	watermarked := ApplyWatermark(preview, p.watermark)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, watermarked, imaging.JPEG, imaging.JPEGQuality(previewJPEGQuality)); err != nil {
		return fmt.Errorf("failed to encode preview for photo %s: %w", photoID, err)
	}

	key := previewKey(photoID, originalKey)
	if err := p.store.PutPublic(ctx, key, buf.Bytes(), jpegContentType); err != nil {
		return fmt.Errorf("failed to store preview for photo %s: %w", photoID, err)
	}

	if err := p.media.SetPhotoWatermarkKey(ctx, photoID, key); err != nil {
		return fmt.Errorf("failed to persist preview key for photo %s: %w", photoID, err)
	}

	logger.Info().Str("key", key).Msg("watermarked preview stored")
	return nil
}

// downscaleForIndex bounds the image for the face service upload limit,
// preserving aspect ratio.
func downscaleForIndex(original []byte) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(original))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	img = imaging.Fit(img, indexMaxWidth, indexMaxHeight, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(indexJPEGQuality)); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}

	return buf.Bytes(), nil
}

// previewKey derives the public preview key from the original's filename.
func previewKey(photoID uuid.UUID, originalKey string) string {
	name := path.Base(originalKey)
	if ext := path.Ext(name); ext != "" {
		name = strings.TrimSuffix(name, ext)
	}
	return fmt.Sprintf("previews/%s-%s.jpg", photoID, name)
}
