package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"photo-market/internal/blob"
	"photo-market/internal/config"
	"photo-market/internal/database"
	"photo-market/internal/face"
	"photo-market/internal/handler"
	"photo-market/internal/payment"
	"photo-market/internal/pricing"
	"photo-market/internal/queue"
	"photo-market/internal/repository"
	"photo-market/internal/router"
	"photo-market/internal/service"

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
	logger.Info().Msg("starting photo-market API server")

	// Create context for application lifecycle
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

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

	provider := payment.NewStripeProvider(cfg.Stripe, logger)

	rdb := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr})
	defer rdb.Close()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to connect to redis: %w", err)
	}

	producer := queue.NewProducer(cfg.Kafka.Brokers, queue.TopicMediaDerive, logger)
	defer producer.Close()

	// Initialize repositories
	mediaRepo := repository.NewMediaRepository(pool, logger)
	cartRepo := repository.NewCartRepository(pool, logger)
	orderRepo := repository.NewOrderRepository(pool, logger)

	// Initialize services
	engine := pricing.NewEngine(cfg.Store.BulkDiscountThreshold, cfg.Store.BulkDiscountPercent)
	deduper := service.NewRedisDeduper(rdb)

	galleryService := service.NewGalleryService(mediaRepo, store, faces, producer, logger)
	cartService := service.NewCartService(cartRepo, mediaRepo, store, engine, logger)
	couponService := service.NewCouponService(cartRepo, logger)
	orderService := service.NewOrderService(orderRepo, cartRepo, provider, deduper, engine, cfg.Store.EntitlementTTL(), logger)
	downloadService := service.NewDownloadService(orderRepo, mediaRepo, store, cfg.Store.DownloadURLTTL, logger)

	// Initialize HTTP handlers and router
	mux := router.New(router.Handlers{
		Gallery:  handler.NewGalleryHandler(galleryService, logger),
		Cart:     handler.NewCartHandler(cartService, logger),
		Coupon:   handler.NewCouponHandler(couponService, logger),
		Order:    handler.NewOrderHandler(orderService, logger),
		Download: handler.NewDownloadHandler(downloadService, logger),
		Webhook:  handler.NewWebhookHandler(orderService, logger),
	}, cfg.Auth.APIKey, logger)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Channel to listen for errors from the server
	serverErrors := make(chan error, 1)

	// Start HTTP server in a goroutine
	go func() {
		logger.Info().
			Str("address", cfg.Server.Address()).
			Msg("HTTP server started")
		serverErrors <- server.ListenAndServe()
	}()

	// Channel to listen for interrupt signals
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a signal or an error
	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		logger.Info().
			Str("signal", sig.String()).
			Msg("shutdown signal received, starting graceful shutdown")

		// Create a context with timeout for shutdown
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		// Attempt graceful shutdown
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("failed to shutdown server gracefully")
			// Force close
			if closeErr := server.Close(); closeErr != nil {
				logger.Error().Err(closeErr).Msg("failed to close server")
			}
			return fmt.Errorf("server shutdown failed: %w", err)
		}

		logger.Info().Msg("server shutdown completed")
	}

	return nil
}
