package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	Server      ServerConfig
	Database    DatabaseConfig
	Logger      LoggerConfig
	Auth        AuthConfig
	S3          S3Config
	Rekognition RekognitionConfig
	Stripe      StripeConfig
	Kafka       KafkaConfig
	Redis       RedisConfig
	Store       StoreConfig
	Worker      WorkerConfig
}

// ServerConfig holds server-related configuration.
type ServerConfig struct {
	Host string
	Port int
}

// DatabaseConfig holds database-related configuration.
type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	Database        string
	MaxConnections  int
	MinConnections  int
	MaxConnLifetime int // seconds
}

// LoggerConfig holds logger-related configuration.
type LoggerConfig struct {
	Level  string
	Format string // "json" or "console"
}

// AuthConfig holds authentication configuration for the API gateway.
type AuthConfig struct {
	APIKey string
}

// S3Config holds the two media buckets. Originals live in the private
// bucket and are only ever exposed through signed URLs; derivatives live
// in the public bucket.
type S3Config struct {
	Region        string
	PublicBucket  string
	PrivateBucket string
}

// RekognitionConfig holds the face index collection settings.
type RekognitionConfig struct {
	Region       string
	CollectionID string
}

// StripeConfig holds payment provider credentials.
type StripeConfig struct {
	SecretKey     string
	WebhookSecret string
	Currency      string
}

// KafkaConfig holds the derivation job queue settings.
type KafkaConfig struct {
	Brokers       []string
	ConsumerGroup string
	Workers       int
}

// RedisConfig holds the dedup store settings.
type RedisConfig struct {
	Addr string
}

// StoreConfig holds the commerce policy knobs. Defaults match the
// production values: 5-item bulk threshold, 10% off, 60-day downloads.
type StoreConfig struct {
	BulkDiscountThreshold int
	BulkDiscountPercent   float64
	EntitlementTTLDays    int
	DownloadURLTTL        time.Duration
}

// WorkerConfig holds derivation worker settings.
type WorkerConfig struct {
	WatermarkPath  string
	FfmpegPath     string
	MaxJobAttempts int
}

// Load loads configuration from environment variables. A .env file in the
// working directory is applied first when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
			Port: getEnvAsInt("SERVER_PORT", 8080),
		},
		Database: DatabaseConfig{
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnvAsInt("DB_PORT", 5432),
			User:            getEnv("DB_USER", "postgres"),
			Password:        getEnv("DB_PASSWORD", ""),
			Database:        getEnv("DB_NAME", "photomarket"),
			MaxConnections:  getEnvAsInt("DB_MAX_CONNECTIONS", 25),
			MinConnections:  getEnvAsInt("DB_MIN_CONNECTIONS", 5),
			MaxConnLifetime: getEnvAsInt("DB_MAX_CONN_LIFETIME", 300),
		},
		Logger: LoggerConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		Auth: AuthConfig{
			APIKey: getEnv("API_KEY", ""),
		},
		S3: S3Config{
			Region:        getEnv("S3_REGION", "us-east-1"),
			PublicBucket:  getEnv("S3_PUBLIC_BUCKET", ""),
			PrivateBucket: getEnv("S3_PRIVATE_BUCKET", ""),
		},
		Rekognition: RekognitionConfig{
			Region:       getEnv("REKOGNITION_REGION", "us-east-1"),
			CollectionID: getEnv("REKOGNITION_COLLECTION_ID", "photomarket-faces"),
		},
		Stripe: StripeConfig{
			SecretKey:     getEnv("STRIPE_SECRET_KEY", ""),
			WebhookSecret: getEnv("STRIPE_WEBHOOK_SECRET", ""),
			Currency:      getEnv("STRIPE_CURRENCY", "brl"),
		},
		Kafka: KafkaConfig{
			Brokers:       strings.Split(getEnv("KAFKA_BROKERS", "localhost:9092"), ","),
			ConsumerGroup: getEnv("KAFKA_CONSUMER_GROUP", "media-derivation"),
			Workers:       getEnvAsInt("KAFKA_WORKERS", 4),
		},
		Redis: RedisConfig{
			Addr: getEnv("REDIS_ADDR", "localhost:6379"),
		},
		Store: StoreConfig{
			BulkDiscountThreshold: getEnvAsInt("BULK_DISCOUNT_THRESHOLD", 5),
			BulkDiscountPercent:   getEnvAsFloat("BULK_DISCOUNT_PERCENT", 10),
			EntitlementTTLDays:    getEnvAsInt("ENTITLEMENT_TTL_DAYS", 60),
			DownloadURLTTL:        time.Duration(getEnvAsInt("DOWNLOAD_URL_TTL_SECONDS", 300)) * time.Second,
		},
		Worker: WorkerConfig{
			WatermarkPath:  getEnv("WATERMARK_PATH", "assets/watermark.png"),
			FfmpegPath:     getEnv("FFMPEG_PATH", "ffmpeg"),
			MaxJobAttempts: getEnvAsInt("WORKER_MAX_JOB_ATTEMPTS", 5),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}

	if c.Database.Port < 1 || c.Database.Port > 65535 {
		return fmt.Errorf("invalid database port: %d", c.Database.Port)
	}

	if c.Database.User == "" {
		return fmt.Errorf("database user is required")
	}

	if c.Database.Database == "" {
		return fmt.Errorf("database name is required")
	}

	if c.Database.MaxConnections < 1 {
		return fmt.Errorf("database max connections must be at least 1")
	}

	if c.Database.MinConnections < 1 {
		return fmt.Errorf("database min connections must be at least 1")
	}

	if c.Database.MinConnections > c.Database.MaxConnections {
		return fmt.Errorf("database min connections cannot exceed max connections")
	}

	if c.Auth.APIKey == "" {
		return fmt.Errorf("API key is required")
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}

	if !validLogLevels[c.Logger.Level] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	if c.Logger.Format != "json" && c.Logger.Format != "console" {
		return fmt.Errorf("invalid log format: %s (must be json or console)", c.Logger.Format)
	}

	if c.S3.PublicBucket == "" || c.S3.PrivateBucket == "" {
		return fmt.Errorf("both S3 buckets are required")
	}

	if c.Stripe.SecretKey == "" {
		return fmt.Errorf("stripe secret key is required")
	}

	if c.Stripe.WebhookSecret == "" {
		return fmt.Errorf("stripe webhook secret is required")
	}

	if len(c.Kafka.Brokers) == 0 || c.Kafka.Brokers[0] == "" {
		return fmt.Errorf("at least one kafka broker is required")
	}

	if c.Store.BulkDiscountThreshold < 1 {
		return fmt.Errorf("bulk discount threshold must be at least 1")
	}

	if c.Store.BulkDiscountPercent < 0 || c.Store.BulkDiscountPercent > 100 {
		return fmt.Errorf("bulk discount percent must be between 0 and 100")
	}

	if c.Store.EntitlementTTLDays < 1 {
		return fmt.Errorf("entitlement TTL must be at least one day")
	}

	return nil
}

// EntitlementTTL returns the download access window as a duration.
func (c *StoreConfig) EntitlementTTL() time.Duration {
	return time.Duration(c.EntitlementTTLDays) * 24 * time.Hour
}

// ConnectionString returns the PostgreSQL connection string.
func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.User,
		c.Password,
		c.Host,
		c.Port,
		c.Database,
	)
}

// Address returns the server address.
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// getEnv retrieves an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value.
func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvAsFloat retrieves an environment variable as a float or returns a default value.
func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}
