package integration

import (
	"context"
	"os"
	"testing"
	"time"

	"photo-market/internal/model"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	pgxdecimal "github.com/jackc/pgx-shopspring-decimal"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// TestDB represents a test database instance.
type TestDB struct {
	Container *postgres.PostgresContainer
	Pool      *pgxpool.Pool
	ConnStr   string
}

// SetupTestDB creates a PostgreSQL test container and connection pool.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	ctx := context.Background()

	// Create PostgreSQL container
	postgresContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	// Get connection string
	connStr, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get connection string: %v", err)
	}

	// Create connection pool with the same decimal mapping production uses
	poolConfig, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		t.Fatalf("failed to parse connection string: %v", err)
	}
	poolConfig.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		pgxdecimal.Register(conn.TypeMap())
		return nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		t.Fatalf("failed to create connection pool: %v", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		t.Fatalf("failed to ping database: %v", err)
	}

	// Create schema
	createSchema(t, pool)

	t.Cleanup(func() {
		pool.Close()
		if err := postgresContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	return &TestDB{
		Container: postgresContainer,
		Pool:      pool,
		ConnStr:   connStr,
	}
}

// createSchema applies the production migration to the test database.
func createSchema(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	ctx := context.Background()

	schema, err := os.ReadFile("../../migrations/001_init.sql")
	if err != nil {
		t.Fatalf("failed to read migration: %v", err)
	}

	if _, err := pool.Exec(ctx, string(schema)); err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}
}

// CleanupDB truncates every table between tests.
func CleanupDB(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	ctx := context.Background()

	_, err := pool.Exec(ctx, `
		TRUNCATE entitlements, order_items, orders, cart_items, carts,
			coupons, face_index_entries, videos, photos, albums CASCADE
	`)
	if err != nil {
		t.Fatalf("failed to clean database: %v", err)
	}
}

// SeedAlbum inserts an album with generated metadata and returns it.
func SeedAlbum(t *testing.T, pool *pgxpool.Pool, photographerID uuid.UUID) *model.Album {
	t.Helper()

	ctx := context.Background()

	album := &model.Album{
		ID:             uuid.New(),
		PhotographerID: photographerID,
		Title:          gofakeit.Sentence(3),
		Category:       model.CategoryFutsal,
		EventDate:      gofakeit.DateRange(time.Now().AddDate(-1, 0, 0), time.Now()),
		IsPublic:       true,
	}

	_, err := pool.Exec(ctx, `
		INSERT INTO albums (id, photographer_id, title, category, event_date, is_public)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, album.ID, album.PhotographerID, album.Title, album.Category, album.EventDate, album.IsPublic)
	if err != nil {
		t.Fatalf("failed to seed album: %v", err)
	}

	return album
}

// SeedPhoto inserts a photo into the album and returns it.
func SeedPhoto(t *testing.T, pool *pgxpool.Pool, albumID uuid.UUID, price string) *model.Photo {
	t.Helper()

	ctx := context.Background()

	caption := gofakeit.Word()
	photo := &model.Photo{
		ID:      uuid.New(),
		AlbumID: albumID,
		Caption: &caption,
		Price:   decimal.RequireFromString(price),
	}
	photo.OriginalKey = "originals/photos/" + photo.ID.String()

	_, err := pool.Exec(ctx, `
		INSERT INTO photos (id, album_id, original_key, caption, price)
		VALUES ($1, $2, $3, $4, $5)
	`, photo.ID, photo.AlbumID, photo.OriginalKey, photo.Caption, photo.Price)
	if err != nil {
		t.Fatalf("failed to seed photo: %v", err)
	}

	return photo
}
