package queue

import (
	"encoding/json"
	"fmt"
	"time"

	"photo-market/internal/model"

	"github.com/google/uuid"
)

// TopicMediaDerive carries derivation jobs from upload handling to the
// worker fleet.
const TopicMediaDerive = "media.derive"

// DeriveJob asks the worker to produce all derivatives for one media item.
// Delivery is at-least-once; every processing step re-checks its own
// idempotency guard.
type DeriveJob struct {
	JobID      uuid.UUID       `json:"job_id"`
	MediaKind  model.MediaKind `json:"media_kind"`
	MediaID    uuid.UUID       `json:"media_id"`
	EnqueuedAt time.Time       `json:"enqueued_at"`
}

// NewDeriveJob builds a job for one media item.
func NewDeriveJob(kind model.MediaKind, mediaID uuid.UUID) DeriveJob {
	return DeriveJob{
		JobID:      uuid.New(),
		MediaKind:  kind,
		MediaID:    mediaID,
		EnqueuedAt: time.Now(),
	}
}

// Key partitions by media id so redeliveries of the same item stay ordered.
func (j DeriveJob) Key() []byte {
	return []byte(j.MediaID.String())
}

// Marshal encodes the job for the wire.
func (j DeriveJob) Marshal() ([]byte, error) {
	b, err := json.Marshal(j)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal derive job: %w", err)
	}
	return b, nil
}

// UnmarshalDeriveJob decodes a job from the wire.
func UnmarshalDeriveJob(b []byte) (DeriveJob, error) {
	var j DeriveJob
	if err := json.Unmarshal(b, &j); err != nil {
		return j, fmt.Errorf("failed to unmarshal derive job: %w", err)
	}
	return j, nil
}
