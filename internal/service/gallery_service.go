package service

import (
	"context"
	"fmt"
	"time"

	"photo-market/internal/blob"
	"photo-market/internal/face"
	"photo-market/internal/model"
	"photo-market/internal/queue"
	"photo-market/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// Face search parameters: up to five matched faces per probe, accepted
// only at very high similarity so strangers never see each other's photos.
const (
	faceSearchMaxResults = 5
	faceSearchThreshold  = 95
)

// galleryService implements GalleryService.
type galleryService struct {
	mediaRepo repository.MediaRepository
	store     blob.Store
	faces     face.Index
	publisher JobPublisher
	logger    zerolog.Logger
}

// NewGalleryService creates a new gallery service.
func NewGalleryService(
	mediaRepo repository.MediaRepository,
	store blob.Store,
	faces face.Index,
	publisher JobPublisher,
	logger zerolog.Logger,
) GalleryService {
	return &galleryService{
		mediaRepo: mediaRepo,
		store:     store,
		faces:     faces,
		publisher: publisher,
		logger:    logger.With().Str("service", "gallery").Logger(),
	}
}

// CreateAlbum creates a new album owned by the acting photographer.
func (s *galleryService) CreateAlbum(ctx context.Context, actor model.Actor, req *model.AlbumRequest) (*model.Album, error) {
	if req == nil {
		return nil, model.NewDomainError(model.ErrCodeMissingField, "Album payload is required")
	}
	if req.Title == "" {
		return nil, model.NewDomainError(model.ErrCodeMissingField, "Album title is required")
	}
	if req.Category == "" {
		return nil, model.NewDomainError(model.ErrCodeMissingField, "Album category is required")
	}

	eventDate, err := time.Parse("2006-01-02", req.EventDate)
	if err != nil {
		return nil, model.NewDomainError(model.ErrCodeMissingField, "Event date must be formatted YYYY-MM-DD")
	}

	isPublic := true
	if req.IsPublic != nil {
		isPublic = *req.IsPublic
	}

	album := &model.Album{
		ID:             uuid.New(),
		PhotographerID: actor.ID,
		Title:          req.Title,
		Category:       req.Category,
		EventDate:      eventDate,
		Location:       req.Location,
		IsPublic:       isPublic,
		CreatedAt:      time.Now(),
	}

	if err := s.mediaRepo.CreateAlbum(ctx, album); err != nil {
		s.logger.Error().Err(err).Str("title", req.Title).Msg("failed to create album")
		return nil, fmt.Errorf("failed to create album: %w", err)
	}

	s.logger.Info().
		Str("album_id", album.ID.String()).
		Str("photographer_id", actor.ID.String()).
		Msg("album created")

	return album, nil
}

// ListAlbums retrieves all browsable albums, newest event first.
func (s *galleryService) ListAlbums(ctx context.Context) ([]model.Album, error) {
	albums, err := s.mediaRepo.ListPublicAlbums(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list albums")
		return nil, fmt.Errorf("failed to list albums: %w", err)
	}
	return albums, nil
}

// GetAlbum retrieves an album with its browsable media.
func (s *galleryService) GetAlbum(ctx context.Context, id uuid.UUID) (*model.AlbumDetail, error) {
	album, err := s.mediaRepo.GetAlbum(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Str("album_id", id.String()).Msg("failed to get album")
		return nil, fmt.Errorf("failed to get album: %w", err)
	}
	if album == nil || album.IsArchived {
		return nil, nil
	}

	photos, err := s.mediaRepo.ListAlbumPhotos(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Str("album_id", id.String()).Msg("failed to list album photos")
		return nil, fmt.Errorf("failed to get album: %w", err)
	}

	videos, err := s.mediaRepo.ListAlbumVideos(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Str("album_id", id.String()).Msg("failed to list album videos")
		return nil, fmt.Errorf("failed to get album: %w", err)
	}

	return &model.AlbumDetail{
		Album:  *album,
		Photos: lo.Map(photos, func(p model.Photo, _ int) model.PhotoView { return s.photoView(p) }),
		Videos: lo.Map(videos, func(v model.Video, _ int) model.VideoView { return s.videoView(v) }),
	}, nil
}

// UploadPhoto stores a photo original and enqueues its derivation job.
func (s *galleryService) UploadPhoto(ctx context.Context, actor model.Actor, albumID uuid.UUID, data []byte, contentType string, caption *string, price decimal.Decimal) (*model.Photo, error) {
	album, err := s.ownedAlbum(ctx, actor, albumID)
	if err != nil {
		return nil, err
	}

	photo := &model.Photo{
		ID:        uuid.New(),
		AlbumID:   album.ID,
		Caption:   caption,
		Price:     price,
		CreatedAt: time.Now(),
	}
	photo.OriginalKey = fmt.Sprintf("originals/photos/%s", photo.ID)

	if err := s.store.PutPrivate(ctx, photo.OriginalKey, data, contentType); err != nil {
		s.logger.Error().Err(err).Str("photo_id", photo.ID.String()).Msg("failed to store photo original")
		return nil, fmt.Errorf("failed to upload photo: %w", err)
	}

	if err := s.mediaRepo.CreatePhoto(ctx, photo); err != nil {
		s.logger.Error().Err(err).Str("photo_id", photo.ID.String()).Msg("failed to create photo")
		return nil, fmt.Errorf("failed to upload photo: %w", err)
	}

	s.enqueueDerivation(ctx, model.MediaKindPhoto, photo.ID)

	s.logger.Info().
		Str("photo_id", photo.ID.String()).
		Str("album_id", album.ID.String()).
		Int("size", len(data)).
		Msg("photo uploaded")

	return photo, nil
}

// UploadVideo stores a video original and enqueues its derivation job.
func (s *galleryService) UploadVideo(ctx context.Context, actor model.Actor, albumID uuid.UUID, data []byte, contentType, title string, price decimal.Decimal) (*model.Video, error) {
	album, err := s.ownedAlbum(ctx, actor, albumID)
	if err != nil {
		return nil, err
	}
	if title == "" {
		return nil, model.NewDomainError(model.ErrCodeMissingField, "Video title is required")
	}

	video := &model.Video{
		ID:        uuid.New(),
		AlbumID:   album.ID,
		Title:     title,
		Price:     price,
		CreatedAt: time.Now(),
	}
	video.OriginalKey = fmt.Sprintf("originals/videos/%s", video.ID)

	if err := s.store.PutPrivate(ctx, video.OriginalKey, data, contentType); err != nil {
		s.logger.Error().Err(err).Str("video_id", video.ID.String()).Msg("failed to store video original")
		return nil, fmt.Errorf("failed to upload video: %w", err)
	}

	if err := s.mediaRepo.CreateVideo(ctx, video); err != nil {
		s.logger.Error().Err(err).Str("video_id", video.ID.String()).Msg("failed to create video")
		return nil, fmt.Errorf("failed to upload video: %w", err)
	}

	s.enqueueDerivation(ctx, model.MediaKindVideo, video.ID)

	s.logger.Info().
		Str("video_id", video.ID.String()).
		Str("album_id", album.ID.String()).
		Int("size", len(data)).
		Msg("video uploaded")

	return video, nil
}

// SearchByFace finds browsable photos containing a face similar to the one
// in the reference image.
func (s *galleryService) SearchByFace(ctx context.Context, image []byte) ([]model.PhotoView, error) {
	matches, err := s.faces.SearchFaces(ctx, image, faceSearchMaxResults, faceSearchThreshold)
	if err != nil {
		s.logger.Error().Err(err).Msg("face search failed")
		return nil, fmt.Errorf("failed to search by face: %w", err)
	}
	if len(matches) == 0 {
		return []model.PhotoView{}, nil
	}

	faceIDs := lo.Uniq(lo.Map(matches, func(m face.Match, _ int) string { return m.FaceID }))

	photos, err := s.mediaRepo.FindPhotosByFaceIDs(ctx, faceIDs)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to resolve face matches")
		return nil, fmt.Errorf("failed to search by face: %w", err)
	}

	s.logger.Info().
		Int("matches", len(matches)).
		Int("photos", len(photos)).
		Msg("face search completed")

	return lo.Map(photos, func(p model.Photo, _ int) model.PhotoView { return s.photoView(p) }), nil
}

// SetAlbumArchived flips an album's archived flag.
func (s *galleryService) SetAlbumArchived(ctx context.Context, actor model.Actor, id uuid.UUID, archived bool) error {
	if _, err := s.ownedAlbum(ctx, actor, id); err != nil {
		return err
	}

	if err := s.mediaRepo.SetAlbumArchived(ctx, id, archived); err != nil {
		s.logger.Error().Err(err).Str("album_id", id.String()).Msg("failed to archive album")
		return fmt.Errorf("failed to archive album: %w", err)
	}
	return nil
}

// SetPhotoArchived flips a photo's archived flag.
func (s *galleryService) SetPhotoArchived(ctx context.Context, actor model.Actor, id uuid.UUID, archived bool) error {
	photo, err := s.mediaRepo.GetPhoto(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Str("photo_id", id.String()).Msg("failed to load photo")
		return fmt.Errorf("failed to archive photo: %w", err)
	}
	if photo == nil {
		return model.ErrMediaNotFound
	}

	if _, err := s.ownedAlbum(ctx, actor, photo.AlbumID); err != nil {
		return err
	}

	if err := s.mediaRepo.SetPhotoArchived(ctx, id, archived); err != nil {
		s.logger.Error().Err(err).Str("photo_id", id.String()).Msg("failed to archive photo")
		return fmt.Errorf("failed to archive photo: %w", err)
	}
	return nil
}

// ownedAlbum loads an album and checks the actor may manage it.
func (s *galleryService) ownedAlbum(ctx context.Context, actor model.Actor, id uuid.UUID) (*model.Album, error) {
	album, err := s.mediaRepo.GetAlbum(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Str("album_id", id.String()).Msg("failed to load album")
		return nil, fmt.Errorf("failed to load album: %w", err)
	}
	if album == nil {
		return nil, model.ErrAlbumNotFound
	}
	if !actor.CanManage(album.PhotographerID) {
		return nil, model.ErrNotOwner
	}
	return album, nil
}

// enqueueDerivation publishes a derivation job. Enqueue failure is logged
// rather than failing the upload; the original is already durable and the
// job can be re-published.
func (s *galleryService) enqueueDerivation(ctx context.Context, kind model.MediaKind, mediaID uuid.UUID) {
	job := queue.NewDeriveJob(kind, mediaID)
	value, err := job.Marshal()
	if err != nil {
		s.logger.Error().Err(err).Str("media_id", mediaID.String()).Msg("failed to marshal derivation job")
		return
	}
	if err := s.publisher.Publish(ctx, job.Key(), value); err != nil {
		s.logger.Error().
			Err(err).
			Str("media_id", mediaID.String()).
			Str("media_kind", string(kind)).
			Msg("failed to enqueue derivation job")
	}
}

func (s *galleryService) photoView(p model.Photo) model.PhotoView {
	view := model.PhotoView{
		ID:      p.ID,
		AlbumID: p.AlbumID,
		Caption: p.Caption,
		Price:   p.Price,
	}
	if p.WatermarkKey != nil {
		url := s.store.PublicURL(*p.WatermarkKey)
		view.PreviewURL = &url
	}
	return view
}

func (s *galleryService) videoView(v model.Video) model.VideoView {
	view := model.VideoView{
		ID:      v.ID,
		AlbumID: v.AlbumID,
		Title:   v.Title,
		Price:   v.Price,
	}
	if v.ThumbnailKey != nil {
		url := s.store.PublicURL(*v.ThumbnailKey)
		view.ThumbnailURL = &url
	}
	return view
}
