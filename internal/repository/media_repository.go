package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"photo-market/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// mediaRepository implements the MediaRepository interface using PostgreSQL.
type mediaRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewMediaRepository creates a new PostgreSQL-backed media repository.
func NewMediaRepository(pool *pgxpool.Pool, logger zerolog.Logger) MediaRepository {
	return &mediaRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "media").Logger(),
	}
}

func (r *mediaRepository) CreateAlbum(ctx context.Context, album *model.Album) error {
	query := `
		INSERT INTO albums (id, photographer_id, title, category, event_date, location, is_public, is_archived, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.pool.Exec(ctx, query,
		album.ID, album.PhotographerID, album.Title, album.Category,
		album.EventDate, album.Location, album.IsPublic, album.IsArchived, album.CreatedAt)
	if err != nil {
		r.logger.Error().Err(err).Str("album_id", album.ID.String()).Msg("failed to create album")
		return fmt.Errorf("failed to create album: %w", err)
	}

	return nil
}

func (r *mediaRepository) GetAlbum(ctx context.Context, id uuid.UUID) (*model.Album, error) {
	query := `
		SELECT id, photographer_id, title, category, event_date, location, is_public, is_archived, created_at
		FROM albums
		WHERE id = $1
	`

	var album model.Album
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&album.ID, &album.PhotographerID, &album.Title, &album.Category,
		&album.EventDate, &album.Location, &album.IsPublic, &album.IsArchived, &album.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error().Err(err).Str("album_id", id.String()).Msg("failed to query album")
		return nil, fmt.Errorf("failed to query album: %w", err)
	}

	return &album, nil
}

func (r *mediaRepository) ListPublicAlbums(ctx context.Context) ([]model.Album, error) {
	query := `
		SELECT id, photographer_id, title, category, event_date, location, is_public, is_archived, created_at
		FROM albums
		WHERE is_public = TRUE AND is_archived = FALSE
		ORDER BY event_date DESC
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query public albums")
		return nil, fmt.Errorf("failed to query public albums: %w", err)
	}
	defer rows.Close()

	var albums []model.Album
	for rows.Next() {
		var album model.Album
		if err := rows.Scan(
			&album.ID, &album.PhotographerID, &album.Title, &album.Category,
			&album.EventDate, &album.Location, &album.IsPublic, &album.IsArchived, &album.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan album: %w", err)
		}
		albums = append(albums, album)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating albums: %w", err)
	}

	return albums, nil
}

func (r *mediaRepository) SetAlbumArchived(ctx context.Context, id uuid.UUID, archived bool) error {
	_, err := r.pool.Exec(ctx, `UPDATE albums SET is_archived = $2 WHERE id = $1`, id, archived)
	if err != nil {
		r.logger.Error().Err(err).Str("album_id", id.String()).Msg("failed to update album archived flag")
		return fmt.Errorf("failed to update album: %w", err)
	}
	return nil
}

func (r *mediaRepository) CreatePhoto(ctx context.Context, photo *model.Photo) error {
	query := `
		INSERT INTO photos (id, album_id, original_key, caption, price, watermark_key, is_archived, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.pool.Exec(ctx, query,
		photo.ID, photo.AlbumID, photo.OriginalKey, photo.Caption,
		photo.Price, photo.WatermarkKey, photo.IsArchived, photo.CreatedAt)
	if err != nil {
		r.logger.Error().Err(err).Str("photo_id", photo.ID.String()).Msg("failed to create photo")
		return fmt.Errorf("failed to create photo: %w", err)
	}

	return nil
}

func (r *mediaRepository) CreateVideo(ctx context.Context, video *model.Video) error {
	query := `
		INSERT INTO videos (id, album_id, title, original_key, thumbnail_key, price, is_archived, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.pool.Exec(ctx, query,
		video.ID, video.AlbumID, video.Title, video.OriginalKey,
		video.ThumbnailKey, video.Price, video.IsArchived, video.CreatedAt)
	if err != nil {
		r.logger.Error().Err(err).Str("video_id", video.ID.String()).Msg("failed to create video")
		return fmt.Errorf("failed to create video: %w", err)
	}

	return nil
}

const photoColumns = `id, album_id, original_key, caption, price, watermark_key, is_archived, created_at`

func scanPhoto(row pgx.Row) (*model.Photo, error) {
	var photo model.Photo
	err := row.Scan(
		&photo.ID, &photo.AlbumID, &photo.OriginalKey, &photo.Caption,
		&photo.Price, &photo.WatermarkKey, &photo.IsArchived, &photo.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &photo, nil
}

func (r *mediaRepository) GetPhoto(ctx context.Context, id uuid.UUID) (*model.Photo, error) {
	query := `SELECT ` + photoColumns + ` FROM photos WHERE id = $1`

	photo, err := scanPhoto(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error().Err(err).Str("photo_id", id.String()).Msg("failed to query photo")
		return nil, fmt.Errorf("failed to query photo: %w", err)
	}

	return photo, nil
}

func (r *mediaRepository) GetVideo(ctx context.Context, id uuid.UUID) (*model.Video, error) {
	query := `
		SELECT id, album_id, title, original_key, thumbnail_key, price, is_archived, created_at
		FROM videos
		WHERE id = $1
	`

	var video model.Video
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&video.ID, &video.AlbumID, &video.Title, &video.OriginalKey,
		&video.ThumbnailKey, &video.Price, &video.IsArchived, &video.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error().Err(err).Str("video_id", id.String()).Msg("failed to query video")
		return nil, fmt.Errorf("failed to query video: %w", err)
	}

	return &video, nil
}

func (r *mediaRepository) GetPurchasablePhoto(ctx context.Context, id uuid.UUID) (*model.Photo, error) {
	query := `
		SELECT p.id, p.album_id, p.original_key, p.caption, p.price, p.watermark_key, p.is_archived, p.created_at
		FROM photos p
		JOIN albums a ON a.id = p.album_id
		WHERE p.id = $1
		  AND p.is_archived = FALSE
		  AND a.is_archived = FALSE
		  AND a.is_public = TRUE
	`

	photo, err := scanPhoto(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error().Err(err).Str("photo_id", id.String()).Msg("failed to query purchasable photo")
		return nil, fmt.Errorf("failed to query purchasable photo: %w", err)
	}

	return photo, nil
}

func (r *mediaRepository) ListAlbumPhotos(ctx context.Context, albumID uuid.UUID) ([]model.Photo, error) {
	query := `SELECT ` + photoColumns + ` FROM photos WHERE album_id = $1 AND is_archived = FALSE ORDER BY created_at`

	rows, err := r.pool.Query(ctx, query, albumID)
	if err != nil {
		return nil, fmt.Errorf("failed to query album photos: %w", err)
	}
	defer rows.Close()

	var photos []model.Photo
	for rows.Next() {
		photo, err := scanPhoto(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan photo: %w", err)
		}
		photos = append(photos, *photo)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating photos: %w", err)
	}

	return photos, nil
}

func (r *mediaRepository) ListAlbumVideos(ctx context.Context, albumID uuid.UUID) ([]model.Video, error) {
	query := `
		SELECT id, album_id, title, original_key, thumbnail_key, price, is_archived, created_at
		FROM videos
		WHERE album_id = $1 AND is_archived = FALSE
		ORDER BY created_at
	`

	rows, err := r.pool.Query(ctx, query, albumID)
	if err != nil {
		return nil, fmt.Errorf("failed to query album videos: %w", err)
	}
	defer rows.Close()

	var videos []model.Video
	for rows.Next() {
		var video model.Video
		if err := rows.Scan(
			&video.ID, &video.AlbumID, &video.Title, &video.OriginalKey,
			&video.ThumbnailKey, &video.Price, &video.IsArchived, &video.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan video: %w", err)
		}
		videos = append(videos, video)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating videos: %w", err)
	}

	return videos, nil
}

func (r *mediaRepository) SetPhotoWatermarkKey(ctx context.Context, id uuid.UUID, key string) error {
	// Only set once: a retried job must not overwrite an existing derivative.
	_, err := r.pool.Exec(ctx,
		`UPDATE photos SET watermark_key = $2 WHERE id = $1 AND watermark_key IS NULL`, id, key)
	if err != nil {
		r.logger.Error().Err(err).Str("photo_id", id.String()).Msg("failed to set watermark key")
		return fmt.Errorf("failed to set watermark key: %w", err)
	}
	return nil
}

func (r *mediaRepository) SetVideoThumbnailKey(ctx context.Context, id uuid.UUID, key string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE videos SET thumbnail_key = $2 WHERE id = $1 AND thumbnail_key IS NULL`, id, key)
	if err != nil {
		r.logger.Error().Err(err).Str("video_id", id.String()).Msg("failed to set thumbnail key")
		return fmt.Errorf("failed to set thumbnail key: %w", err)
	}
	return nil
}

func (r *mediaRepository) SetPhotoArchived(ctx context.Context, id uuid.UUID, archived bool) error {
	_, err := r.pool.Exec(ctx, `UPDATE photos SET is_archived = $2 WHERE id = $1`, id, archived)
	if err != nil {
		r.logger.Error().Err(err).Str("photo_id", id.String()).Msg("failed to update photo archived flag")
		return fmt.Errorf("failed to update photo: %w", err)
	}
	return nil
}

func (r *mediaRepository) CountFaceEntries(ctx context.Context, photoID uuid.UUID) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM face_index_entries WHERE photo_id = $1`, photoID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count face entries: %w", err)
	}
	return count, nil
}

func (r *mediaRepository) AddFaceEntries(ctx context.Context, photoID uuid.UUID, faceIDs []string) error {
	if len(faceIDs) == 0 {
		return nil
	}

	query := `
		INSERT INTO face_index_entries (id, photo_id, face_id, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (face_id) DO NOTHING
	`

	now := time.Now()
	batch := &pgx.Batch{}
	for _, faceID := range faceIDs {
		batch.Queue(query, uuid.New(), photoID, faceID, now)
	}

	results := r.pool.SendBatch(ctx, batch)
	defer results.Close()

	for i := 0; i < len(faceIDs); i++ {
		if _, err := results.Exec(); err != nil {
			r.logger.Error().
				Err(err).
				Str("photo_id", photoID.String()).
				Msg("failed to insert face entry")
			return fmt.Errorf("failed to insert face entry: %w", err)
		}
	}

	r.logger.Debug().
		Str("photo_id", photoID.String()).
		Int("count", len(faceIDs)).
		Msg("face entries inserted")

	return nil
}

func (r *mediaRepository) FindPhotosByFaceIDs(ctx context.Context, faceIDs []string) ([]model.Photo, error) {
	if len(faceIDs) == 0 {
		return nil, nil
	}

	query := `
		SELECT DISTINCT p.id, p.album_id, p.original_key, p.caption, p.price, p.watermark_key, p.is_archived, p.created_at
		FROM photos p
		JOIN face_index_entries f ON f.photo_id = p.id
		JOIN albums a ON a.id = p.album_id
		WHERE f.face_id = ANY($1)
		  AND p.is_archived = FALSE
		  AND a.is_archived = FALSE
		  AND a.is_public = TRUE
	`

	rows, err := r.pool.Query(ctx, query, faceIDs)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query photos by face ids")
		return nil, fmt.Errorf("failed to query photos by face ids: %w", err)
	}
	defer rows.Close()

	var photos []model.Photo
	for rows.Next() {
		photo, err := scanPhoto(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan photo: %w", err)
		}
		photos = append(photos, *photo)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating photos: %w", err)
	}

	return photos, nil
}
