package model

import (
	"time"

	"github.com/google/uuid"
)

// Album categories mirror the sports the marketplace covers.
const (
	CategoryMartialArts  = "MARTIAL_ARTS"
	CategoryMotorsport   = "MOTORSPORT"
	CategoryFootball     = "FOOTBALL"
	CategoryFutsal       = "FUTSAL"
	CategoryBasketball   = "BASKETBALL"
	CategoryAthletics    = "ATHLETICS"
	CategorySwimming     = "SWIMMING"
	CategoryVolleyball   = "VOLLEYBALL"
	CategoryRugby        = "RUGBY"
	CategoryOther        = "OTHER"
)

// Album groups the photos and videos of one event, owned by one photographer.
type Album struct {
	ID             uuid.UUID  `json:"id" db:"id"`
	PhotographerID uuid.UUID  `json:"photographerId" db:"photographer_id"`
	Title          string     `json:"title" db:"title"`
	Category       string     `json:"category" db:"category"`
	EventDate      time.Time  `json:"eventDate" db:"event_date"`
	Location       *string    `json:"location,omitempty" db:"location"`
	IsPublic       bool       `json:"isPublic" db:"is_public"`
	IsArchived     bool       `json:"isArchived" db:"is_archived"`
	CreatedAt      time.Time  `json:"createdAt" db:"created_at"`
}

// AlbumRequest represents the request payload for creating an album.
type AlbumRequest struct {
	Title     string  `json:"title"`
	Category  string  `json:"category"`
	EventDate string  `json:"eventDate"`
	Location  *string `json:"location,omitempty"`
	IsPublic  *bool   `json:"isPublic,omitempty"`
}

// AlbumDetail is an album together with its browsable media.
type AlbumDetail struct {
	Album  Album       `json:"album"`
	Photos []PhotoView `json:"photos"`
	Videos []VideoView `json:"videos"`
}
