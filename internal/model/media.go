package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MediaKind distinguishes the two derivation pipelines.
type MediaKind string

const (
	MediaKindPhoto MediaKind = "photo"
	MediaKindVideo MediaKind = "video"
)

// Photo is a purchasable image. The original blob lives in the private
// bucket; WatermarkKey points at the public watermarked preview once the
// derivation worker has produced it.
type Photo struct {
	ID           uuid.UUID       `json:"id" db:"id"`
	AlbumID      uuid.UUID       `json:"albumId" db:"album_id"`
	OriginalKey  string          `json:"-" db:"original_key"`
	Caption      *string         `json:"caption,omitempty" db:"caption"`
	Price        decimal.Decimal `json:"price" db:"price"`
	WatermarkKey *string         `json:"-" db:"watermark_key"`
	IsArchived   bool            `json:"isArchived" db:"is_archived"`
	CreatedAt    time.Time       `json:"createdAt" db:"created_at"`
}

// Video holds a purchasable video with a public poster thumbnail derivative.
type Video struct {
	ID           uuid.UUID       `json:"id" db:"id"`
	AlbumID      uuid.UUID       `json:"albumId" db:"album_id"`
	Title        string          `json:"title" db:"title"`
	OriginalKey  string          `json:"-" db:"original_key"`
	ThumbnailKey *string         `json:"-" db:"thumbnail_key"`
	Price        decimal.Decimal `json:"price" db:"price"`
	IsArchived   bool            `json:"isArchived" db:"is_archived"`
	CreatedAt    time.Time       `json:"createdAt" db:"created_at"`
}

// FaceIndexEntry links one indexed face to the photo it was found in.
// FaceID is unique across the whole collection.
type FaceIndexEntry struct {
	ID        uuid.UUID `json:"id" db:"id"`
	PhotoID   uuid.UUID `json:"photoId" db:"photo_id"`
	FaceID    string    `json:"faceId" db:"face_id"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// PhotoView is the public shape of a photo: the private original is never
// exposed, only the watermarked preview URL (nil until the worker ran).
type PhotoView struct {
	ID         uuid.UUID       `json:"id"`
	AlbumID    uuid.UUID       `json:"albumId"`
	Caption    *string         `json:"caption,omitempty"`
	Price      decimal.Decimal `json:"price"`
	PreviewURL *string         `json:"previewUrl"`
}

// VideoView is the public shape of a video.
type VideoView struct {
	ID           uuid.UUID       `json:"id"`
	AlbumID      uuid.UUID       `json:"albumId"`
	Title        string          `json:"title"`
	Price        decimal.Decimal `json:"price"`
	ThumbnailURL *string         `json:"thumbnailUrl"`
}
