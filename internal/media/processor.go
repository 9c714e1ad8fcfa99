package media

import (
	"context"
	"image"

	"photo-market/internal/blob"
	"photo-market/internal/face"
	"photo-market/internal/model"
	"photo-market/internal/queue"
	"photo-market/internal/repository"

	"github.com/rs/zerolog"
)

// Derivation constants. The index downscale bound matches the face
// service's 5MB upload limit; the preview/watermark geometry matches the
// production watermark so previews are not easily croppable.
const (
	faceUploadLimitBytes = 5 * 1024 * 1024
	indexMaxWidth        = 1920
	indexMaxHeight       = 1080
	indexJPEGQuality     = 95

	previewMaxSize     = 1024
	previewJPEGQuality = 90

	watermarkWidthFraction = 0.20
	watermarkOpacity       = 0.30
	watermarkGapFraction   = 0.10
)

// Processor turns one uploaded original into its public-safe derivatives:
// watermarked preview and face index entries for photos, a poster frame
// for videos. Every step is individually idempotent so at-least-once job
// delivery is safe.
type Processor struct {
	media     repository.MediaRepository
	store     blob.Store
	faces     face.Index
	extractor FrameExtractor
	watermark image.Image
	logger    zerolog.Logger
}

// NewProcessor creates a derivation processor.
func NewProcessor(
	media repository.MediaRepository,
	store blob.Store,
	faces face.Index,
	extractor FrameExtractor,
	watermark image.Image,
	logger zerolog.Logger,
) *Processor {
	return &Processor{
		media:     media,
		store:     store,
		faces:     faces,
		extractor: extractor,
		watermark: watermark,
		logger:    logger.With().Str("component", "media-processor").Logger(),
	}
}

// Process runs the derivation pipeline for one job.
func (p *Processor) Process(ctx context.Context, job queue.DeriveJob) error {
	switch job.MediaKind {
	case model.MediaKindPhoto:
		return p.ProcessPhoto(ctx, job.MediaID)
	case model.MediaKindVideo:
		return p.ProcessVideo(ctx, job.MediaID)
	default:
		// Unknown kinds are dropped, not retried.
		p.logger.Warn().
			Str("media_kind", string(job.MediaKind)).
			Str("media_id", job.MediaID.String()).
			Msg("unknown media kind, dropping job")
		return nil
	}
}

const jpegContentType = "image/jpeg"
