package queue

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
)

// Producer publishes derivation jobs. Writes are synchronous so upload
// handling learns about enqueue failures instead of losing jobs silently.
type Producer struct {
	w      *kafka.Writer
	logger zerolog.Logger
}

// NewProducer creates a producer for the given topic.
func NewProducer(brokers []string, topic string, logger zerolog.Logger) *Producer {
	return &Producer{
		w: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
		},
		logger: logger.With().Str("component", "queue-producer").Str("topic", topic).Logger(),
	}
}

// Publish writes one message keyed for partition ordering.
func (p *Producer) Publish(ctx context.Context, key, value []byte) error {
	err := p.w.WriteMessages(ctx, kafka.Message{
		Key:   key,
		Value: value,
		Time:  time.Now(),
	})
	if err != nil {
		p.logger.Error().Err(err).Msg("failed to publish message")
		return fmt.Errorf("failed to publish message: %w", err)
	}
	return nil
}

// Close flushes and closes the underlying writer.
func (p *Producer) Close() error {
	return p.w.Close()
}
