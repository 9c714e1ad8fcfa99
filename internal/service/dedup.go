package service

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// webhookEventTTL bounds how long processed event ids are remembered.
// Providers stop retrying well before this window closes.
const webhookEventTTL = 72 * time.Hour

// redisDeduper implements EventDeduper on Redis SET NX.
type redisDeduper struct {
	rdb *redis.Client
}

// NewRedisDeduper creates a Redis-backed webhook event deduper.
func NewRedisDeduper(rdb *redis.Client) EventDeduper {
	return &redisDeduper{rdb: rdb}
}

func (d *redisDeduper) MarkEvent(ctx context.Context, eventID string) (bool, error) {
	ok, err := d.rdb.SetNX(ctx, eventKey(eventID), 1, webhookEventTTL).Result()
	if err != nil {
		return false, fmt.Errorf("failed to mark webhook event %s: %w", eventID, err)
	}
	return ok, nil
}

func (d *redisDeduper) UnmarkEvent(ctx context.Context, eventID string) error {
	if err := d.rdb.Del(ctx, eventKey(eventID)).Err(); err != nil {
		return fmt.Errorf("failed to unmark webhook event %s: %w", eventID, err)
	}
	return nil
}

func eventKey(eventID string) string {
	return "webhook:event:" + eventID
}
