package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"photo-market/internal/blob"
	"photo-market/internal/config"
	"photo-market/internal/database"
	"photo-market/internal/face"
	"photo-market/internal/media"
	"photo-market/internal/queue"
	"photo-market/internal/repository"

	"github.com/disintegration/imaging"
	"github.com/redis/go-redis/v9"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize logger
	logger := config.NewLogger(cfg.Logger)
	logger.Info().Msg("starting photo-market derivation worker")

	// Cancel the consumer context on shutdown signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize database connection pool
	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer pool.Close()

	// Initialize external services
	store, err := blob.NewS3Store(ctx, cfg.S3, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize blob store: %w", err)
	}

	faces, err := face.NewRekognitionIndex(ctx, cfg.Rekognition, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize face index: %w", err)
	}

	rdb := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr})
	defer rdb.Close()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to connect to redis: %w", err)
	}

	// The watermark is stamped over every preview; refusing to start
	// without it beats shipping unprotected previews.
	watermark, err := imaging.Open(cfg.Worker.WatermarkPath)
	if err != nil {
		return fmt.Errorf("failed to load watermark image: %w", err)
	}

	mediaRepo := repository.NewMediaRepository(pool, logger)
	extractor := media.NewFfmpegExtractor(cfg.Worker.FfmpegPath)
	processor := media.NewProcessor(mediaRepo, store, faces, extractor, watermark, logger)
	worker := media.NewWorker(processor, rdb, cfg.Worker.MaxJobAttempts, logger)

	consumer := queue.NewConsumer(
		cfg.Kafka.Brokers,
		cfg.Kafka.ConsumerGroup,
		queue.TopicMediaDerive,
		cfg.Kafka.Workers,
		logger,
	)

	logger.Info().
		Strs("brokers", cfg.Kafka.Brokers).
		Str("group", cfg.Kafka.ConsumerGroup).
		Int("workers", cfg.Kafka.Workers).
		Msg("consuming derivation jobs")

	if err := consumer.Start(ctx, worker.Handle); err != nil {
		return fmt.Errorf("consumer stopped: %w", err)
	}

	logger.Info().Msg("worker shutdown completed")
	return nil
}
