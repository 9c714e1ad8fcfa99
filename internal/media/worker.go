package media

import (
	"context"
	"fmt"
	"time"

	"photo-market/internal/queue"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
)

// attemptKeyTTL bounds how long a job's delivery count survives in Redis.
const attemptKeyTTL = 24 * time.Hour

// Worker consumes derivation jobs and runs them through the processor.
// Delivery counts are tracked in Redis so a job that keeps failing is
// eventually dropped instead of poisoning the partition.
type Worker struct {
	processor   *Processor
	rdb         *redis.Client
	maxAttempts int
	logger      zerolog.Logger
}

// NewWorker creates a job worker.
func NewWorker(processor *Processor, rdb *redis.Client, maxAttempts int, logger zerolog.Logger) *Worker {
	if maxAttempts <= 0 {
		maxAttempts = 1
	}
	return &Worker{
		processor:   processor,
		rdb:         rdb,
		maxAttempts: maxAttempts,
		logger:      logger.With().Str("component", "media-worker").Logger(),
	}
}

// Handle processes one queue message. Returning nil commits the offset, so
// malformed payloads and exhausted jobs return nil to drop the message.
func (w *Worker) Handle(ctx context.Context, m kafka.Message) error {
	job, err := queue.UnmarshalDeriveJob(m.Value)
	if err != nil {
		w.logger.Error().Err(err).Msg("dropping malformed job payload")
		return nil
	}

	logger := w.logger.With().
		Str("job_id", job.JobID.String()).
		Str("media_kind", string(job.MediaKind)).
		Str("media_id", job.MediaID.String()).
		Logger()

	attempts, err := w.recordAttempt(ctx, job)
	if err != nil {
		// Redis being down must not wedge the pipeline; process anyway.
		logger.Warn().Err(err).Msg("failed to record job attempt")
	} else if attempts > int64(w.maxAttempts) {
		logger.Error().Int64("attempts", attempts).Msg("job exhausted retries, dropping")
		return nil
	}

	if err := w.processor.Process(ctx, job); err != nil {
		logger.Warn().Err(err).Msg("job failed, leaving for redelivery")
		return err
	}
	return nil
}

func (w *Worker) recordAttempt(ctx context.Context, job queue.DeriveJob) (int64, error) {
	key := fmt.Sprintf("derive:attempts:%s", job.JobID)
	attempts, err := w.rdb.Incr(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	if attempts == 1 {
		if err := w.rdb.Expire(ctx, key, attemptKeyTTL).Err(); err != nil {
			return attempts, err
		}
	}
	return attempts, nil
}
