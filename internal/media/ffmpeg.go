package media

import (
	"context"
	"fmt"
	"os/exec"
	"time"
)

// FrameExtractor captures a single frame from a local video file.
type FrameExtractor interface {
	ExtractFrame(ctx context.Context, videoPath, framePath string, offset time.Duration) error
}

// ffmpegExtractor shells out to the ffmpeg binary.
type ffmpegExtractor struct {
	binary string
}

// NewFfmpegExtractor creates a frame extractor using the given ffmpeg binary.
func NewFfmpegExtractor(binary string) FrameExtractor {
	if binary == "" {
		binary = "ffmpeg"
	}
	return &ffmpegExtractor{binary: binary}
}

func (e *ffmpegExtractor) ExtractFrame(ctx context.Context, videoPath, framePath string, offset time.Duration) error {
	cmd := exec.CommandContext(ctx, e.binary,
		"-ss", fmt.Sprintf("%.3f", offset.Seconds()),
		"-i", videoPath,
		"-frames:v", "1",
		"-y",
		framePath,
	)

	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("ffmpeg frame extraction failed: %w (output: %s)", err, string(out))
	}

	return nil
}
