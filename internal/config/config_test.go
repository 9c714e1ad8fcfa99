package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setRequiredEnv sets the minimum environment a valid config needs.
func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("API_KEY", "test-key")
	t.Setenv("S3_PUBLIC_BUCKET", "previews")
	t.Setenv("S3_PRIVATE_BUCKET", "originals")
	t.Setenv("STRIPE_SECRET_KEY", "sk_test_123")
	t.Setenv("STRIPE_WEBHOOK_SECRET", "whsec_123")
}

func TestLoad_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, "info", cfg.Logger.Level)
	assert.Equal(t, "brl", cfg.Stripe.Currency)
	assert.Equal(t, []string{"localhost:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, 5, cfg.Store.BulkDiscountThreshold)
	assert.Equal(t, 10.0, cfg.Store.BulkDiscountPercent)
	assert.Equal(t, 60, cfg.Store.EntitlementTTLDays)
	assert.Equal(t, 300*time.Second, cfg.Store.DownloadURLTTL)
	assert.Equal(t, 5, cfg.Worker.MaxJobAttempts)
}

func TestLoad_Overrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("ENTITLEMENT_TTL_DAYS", "30")
	t.Setenv("BULK_DISCOUNT_PERCENT", "15.5")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, 30, cfg.Store.EntitlementTTLDays)
	assert.Equal(t, 15.5, cfg.Store.BulkDiscountPercent)
}

func TestLoad_MissingAPIKey(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("API_KEY", "")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_MissingBuckets(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("S3_PRIVATE_BUCKET", "")

	_, err := Load()
	assert.Error(t, err)
}

func TestValidate_InvalidLogLevel(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("LOG_LEVEL", "verbose")

	_, err := Load()
	assert.Error(t, err)
}

func TestValidate_BadDiscountPercent(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("BULK_DISCOUNT_PERCENT", "150")

	_, err := Load()
	assert.Error(t, err)
}

func TestStoreConfig_EntitlementTTL(t *testing.T) {
	cfg := StoreConfig{EntitlementTTLDays: 60}
	assert.Equal(t, 60*24*time.Hour, cfg.EntitlementTTL())
}
