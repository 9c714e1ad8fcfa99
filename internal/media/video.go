package media

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"photo-market/internal/blob"

	"github.com/google/uuid"
)

// posterFrameOffset is where in the timeline the poster frame is captured.
const posterFrameOffset = 1 * time.Second

// ProcessVideo captures a poster thumbnail for one video. The original is
// materialised into a transient local file for the frame-extraction tool;
// all transient files are removed on every exit path.
func (p *Processor) ProcessVideo(ctx context.Context, videoID uuid.UUID) error {
	logger := p.logger.With().Str("video_id", videoID.String()).Logger()

	video, err := p.media.GetVideo(ctx, videoID)
	if err != nil {
		return fmt.Errorf("failed to load video %s: %w", videoID, err)
	}
	if video == nil {
		logger.Info().Msg("video no longer exists, skipping job")
		return nil
	}
	if video.OriginalKey == "" {
		logger.Warn().Msg("video has no original blob, skipping job")
		return nil
	}
	if video.ThumbnailKey != nil {
		logger.Debug().Msg("poster thumbnail already exists, skipping job")
		return nil
	}

	original, err := p.store.GetPrivate(ctx, video.OriginalKey)
	if err != nil {
		if errors.Is(err, blob.ErrNotFound) {
			logger.Warn().Str("key", video.OriginalKey).Msg("original blob missing, skipping job")
			return nil
		}
		return fmt.Errorf("failed to read original for video %s: %w", videoID, err)
	}

	videoFile, err := os.CreateTemp("", "derive-*.mp4")
	if err != nil {
		return fmt.Errorf("failed to create temp video file: %w", err)
	}
	defer os.Remove(videoFile.Name())

	frameFile, err := os.CreateTemp("", "derive-*.jpg")
	if err != nil {
		videoFile.Close()
		return fmt.Errorf("failed to create temp frame file: %w", err)
	}
	defer os.Remove(frameFile.Name())
	frameFile.Close()

	if _, err := videoFile.Write(original); err != nil {
		videoFile.Close()
		return fmt.Errorf("failed to write temp video file: %w", err)
	}
	if err := videoFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp video file: %w", err)
	}

	if err := p.extractor.ExtractFrame(ctx, videoFile.Name(), frameFile.Name(), posterFrameOffset); err != nil {
		return fmt.Errorf("failed to extract poster frame for video %s: %w", videoID, err)
	}

	frame, err := os.ReadFile(frameFile.Name())
	if err != nil {
		return fmt.Errorf("failed to read extracted frame: %w", err)
	}

	key := fmt.Sprintf("video_thumbs/%s.jpg", videoID)
	if err := p.store.PutPublic(ctx, key, frame, jpegContentType); err != nil {
		return fmt.Errorf("failed to store poster thumbnail for video %s: %w", videoID, err)
	}

	if err := p.media.SetVideoThumbnailKey(ctx, videoID, key); err != nil {
		return fmt.Errorf("failed to persist thumbnail key for video %s: %w", videoID, err)
	}

	logger.Info().Str("key", key).Msg("poster thumbnail stored")
	return nil
}
