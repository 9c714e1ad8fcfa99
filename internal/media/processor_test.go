package media

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"testing"
	"time"

	"photo-market/internal/blob"
	"photo-market/internal/face"
	"photo-market/internal/model"
	"photo-market/internal/queue"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockMediaRepository is a mock implementation of repository.MediaRepository.
type MockMediaRepository struct {
	mock.Mock
}

func (m *MockMediaRepository) CreateAlbum(ctx context.Context, album *model.Album) error {
	return m.Called(ctx, album).Error(0)
}

func (m *MockMediaRepository) GetAlbum(ctx context.Context, id uuid.UUID) (*model.Album, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Album), args.Error(1)
}

func (m *MockMediaRepository) ListPublicAlbums(ctx context.Context) ([]model.Album, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Album), args.Error(1)
}

func (m *MockMediaRepository) SetAlbumArchived(ctx context.Context, id uuid.UUID, archived bool) error {
	return m.Called(ctx, id, archived).Error(0)
}

func (m *MockMediaRepository) CreatePhoto(ctx context.Context, photo *model.Photo) error {
	return m.Called(ctx, photo).Error(0)
}

func (m *MockMediaRepository) CreateVideo(ctx context.Context, video *model.Video) error {
	return m.Called(ctx, video).Error(0)
}

func (m *MockMediaRepository) GetPhoto(ctx context.Context, id uuid.UUID) (*model.Photo, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Photo), args.Error(1)
}

func (m *MockMediaRepository) GetVideo(ctx context.Context, id uuid.UUID) (*model.Video, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Video), args.Error(1)
}

func (m *MockMediaRepository) GetPurchasablePhoto(ctx context.Context, id uuid.UUID) (*model.Photo, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Photo), args.Error(1)
}

func (m *MockMediaRepository) ListAlbumPhotos(ctx context.Context, albumID uuid.UUID) ([]model.Photo, error) {
	args := m.Called(ctx, albumID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Photo), args.Error(1)
}

func (m *MockMediaRepository) ListAlbumVideos(ctx context.Context, albumID uuid.UUID) ([]model.Video, error) {
	args := m.Called(ctx, albumID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Video), args.Error(1)
}

func (m *MockMediaRepository) SetPhotoWatermarkKey(ctx context.Context, id uuid.UUID, key string) error {
	return m.Called(ctx, id, key).Error(0)
}

func (m *MockMediaRepository) SetVideoThumbnailKey(ctx context.Context, id uuid.UUID, key string) error {
	return m.Called(ctx, id, key).Error(0)
}

func (m *MockMediaRepository) SetPhotoArchived(ctx context.Context, id uuid.UUID, archived bool) error {
	return m.Called(ctx, id, archived).Error(0)
}

func (m *MockMediaRepository) CountFaceEntries(ctx context.Context, photoID uuid.UUID) (int, error) {
	args := m.Called(ctx, photoID)
	return args.Int(0), args.Error(1)
}

func (m *MockMediaRepository) AddFaceEntries(ctx context.Context, photoID uuid.UUID, faceIDs []string) error {
	return m.Called(ctx, photoID, faceIDs).Error(0)
}

func (m *MockMediaRepository) FindPhotosByFaceIDs(ctx context.Context, faceIDs []string) ([]model.Photo, error) {
	args := m.Called(ctx, faceIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Photo), args.Error(1)
}

// MockBlobStore is a mock implementation of blob.Store.
type MockBlobStore struct {
	mock.Mock
}

func (m *MockBlobStore) PutPublic(ctx context.Context, key string, body []byte, contentType string) error {
	return m.Called(ctx, key, body, contentType).Error(0)
}

func (m *MockBlobStore) PutPrivate(ctx context.Context, key string, body []byte, contentType string) error {
	return m.Called(ctx, key, body, contentType).Error(0)
}

func (m *MockBlobStore) GetPrivate(ctx context.Context, key string) ([]byte, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockBlobStore) PublicURL(key string) string {
	return m.Called(key).String(0)
}

func (m *MockBlobStore) SignedGetURL(ctx context.Context, key string, ttl time.Duration, filename string) (string, error) {
	args := m.Called(ctx, key, ttl, filename)
	return args.String(0), args.Error(1)
}

// MockFaceIndex is a mock implementation of face.Index.
type MockFaceIndex struct {
	mock.Mock
}

func (m *MockFaceIndex) IndexFaces(ctx context.Context, image []byte, externalID string) ([]string, error) {
	args := m.Called(ctx, image, externalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockFaceIndex) SearchFaces(ctx context.Context, image []byte, maxResults int32, threshold float32) ([]face.Match, error) {
	args := m.Called(ctx, image, maxResults, threshold)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]face.Match), args.Error(1)
}

// MockFrameExtractor is a mock implementation of FrameExtractor.
type MockFrameExtractor struct {
	mock.Mock
}

func (m *MockFrameExtractor) ExtractFrame(ctx context.Context, videoPath, framePath string, offset time.Duration) error {
	return m.Called(ctx, videoPath, framePath, offset).Error(0)
}

// testJPEG renders a small valid JPEG for pipeline tests.
func testJPEG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := imaging.New(w, h, color.NRGBA{R: 40, G: 80, B: 120, A: 255})
	var buf bytes.Buffer
	require.NoError(t, imaging.Encode(&buf, img, imaging.JPEG))
	return buf.Bytes()
}

func testWatermark() image.Image {
	return imaging.New(8, 4, color.NRGBA{R: 255, G: 255, B: 255, A: 255})
}

func newTestProcessor(media *MockMediaRepository, store *MockBlobStore, faces *MockFaceIndex, extractor *MockFrameExtractor) *Processor {
	return NewProcessor(media, store, faces, extractor, testWatermark(), zerolog.Nop())
}

func TestProcessPhoto_FullDerivation(t *testing.T) {
	ctx := context.Background()
	photoID := uuid.New()
	original := testJPEG(t, 64, 48)

	photo := &model.Photo{
		ID:          photoID,
		OriginalKey: "originals/photos/" + photoID.String(),
	}

	mockRepo := new(MockMediaRepository)
	mockRepo.On("GetPhoto", ctx, photoID).Return(photo, nil)
	mockRepo.On("CountFaceEntries", ctx, photoID).Return(0, nil)
	mockRepo.On("AddFaceEntries", ctx, photoID, []string{"f-1", "f-2"}).Return(nil)
	mockRepo.On("SetPhotoWatermarkKey", ctx, photoID, mock.AnythingOfType("string")).Return(nil)

	mockStore := new(MockBlobStore)
	mockStore.On("GetPrivate", ctx, photo.OriginalKey).Return(original, nil)
	mockStore.On("PutPublic", ctx, mock.AnythingOfType("string"), mock.Anything, "image/jpeg").Return(nil)

	mockFaces := new(MockFaceIndex)
	mockFaces.On("IndexFaces", ctx, original, photoID.String()).Return([]string{"f-1", "f-2"}, nil)

	p := newTestProcessor(mockRepo, mockStore, mockFaces, new(MockFrameExtractor))

	err := p.ProcessPhoto(ctx, photoID)

	require.NoError(t, err)

	// The preview landed under previews/ as a JPEG.
	var previewCall mock.Call
	for _, call := range mockStore.Calls {
		if call.Method == "PutPublic" {
			previewCall = call
		}
	}
	key := previewCall.Arguments.String(1)
	assert.Contains(t, key, "previews/")
	preview, err := imaging.Decode(bytes.NewReader(previewCall.Arguments.Get(2).([]byte)))
	require.NoError(t, err)
	assert.LessOrEqual(t, preview.Bounds().Dx(), 1024)

	mockRepo.AssertExpectations(t)
	mockFaces.AssertExpectations(t)
}

func TestProcessPhoto_AlreadyDerivedSkipsAllSteps(t *testing.T) {
	ctx := context.Background()
	photoID := uuid.New()
	existingKey := "previews/existing.jpg"

	photo := &model.Photo{
		ID:           photoID,
		OriginalKey:  "originals/photos/" + photoID.String(),
		WatermarkKey: &existingKey,
	}

	mockRepo := new(MockMediaRepository)
	mockRepo.On("GetPhoto", ctx, photoID).Return(photo, nil)
	mockRepo.On("CountFaceEntries", ctx, photoID).Return(3, nil)

	mockStore := new(MockBlobStore)
	// Redelivered jobs still fetch the original once, then find nothing to do.
	mockStore.On("GetPrivate", ctx, photo.OriginalKey).Return([]byte("not-even-an-image"), nil)

	mockFaces := new(MockFaceIndex)

	p := newTestProcessor(mockRepo, mockStore, mockFaces, new(MockFrameExtractor))

	err := p.ProcessPhoto(ctx, photoID)

	require.NoError(t, err)
	mockFaces.AssertNotCalled(t, "IndexFaces", mock.Anything, mock.Anything, mock.Anything)
	mockStore.AssertNotCalled(t, "PutPublic", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	mockRepo.AssertNotCalled(t, "SetPhotoWatermarkKey", mock.Anything, mock.Anything, mock.Anything)
}

func TestProcessPhoto_DeletedPhotoDropsJob(t *testing.T) {
	ctx := context.Background()
	photoID := uuid.New()

	mockRepo := new(MockMediaRepository)
	mockRepo.On("GetPhoto", ctx, photoID).Return(nil, nil)

	mockStore := new(MockBlobStore)

	p := newTestProcessor(mockRepo, mockStore, new(MockFaceIndex), new(MockFrameExtractor))

	err := p.ProcessPhoto(ctx, photoID)

	require.NoError(t, err)
	mockStore.AssertNotCalled(t, "GetPrivate", mock.Anything, mock.Anything)
}

func TestProcessPhoto_MissingBlobDropsJob(t *testing.T) {
	ctx := context.Background()
	photoID := uuid.New()

	photo := &model.Photo{ID: photoID, OriginalKey: "originals/photos/gone"}

	mockRepo := new(MockMediaRepository)
	mockRepo.On("GetPhoto", ctx, photoID).Return(photo, nil)

	mockStore := new(MockBlobStore)
	mockStore.On("GetPrivate", ctx, photo.OriginalKey).Return(nil, blob.ErrNotFound)

	p := newTestProcessor(mockRepo, mockStore, new(MockFaceIndex), new(MockFrameExtractor))

	err := p.ProcessPhoto(ctx, photoID)

	require.NoError(t, err)
}

func TestProcessVideo_ExistingThumbnailSkipsExtraction(t *testing.T) {
	ctx := context.Background()
	videoID := uuid.New()
	existingKey := "video_thumbs/existing.jpg"

	video := &model.Video{
		ID:           videoID,
		OriginalKey:  "originals/videos/" + videoID.String(),
		ThumbnailKey: &existingKey,
	}

	mockRepo := new(MockMediaRepository)
	mockRepo.On("GetVideo", ctx, videoID).Return(video, nil)

	mockStore := new(MockBlobStore)
	mockExtractor := new(MockFrameExtractor)

	p := newTestProcessor(mockRepo, mockStore, new(MockFaceIndex), mockExtractor)

	err := p.ProcessVideo(ctx, videoID)

	require.NoError(t, err)
	mockStore.AssertNotCalled(t, "GetPrivate", mock.Anything, mock.Anything)
	mockExtractor.AssertNotCalled(t, "ExtractFrame", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestProcessVideo_DeletedVideoDropsJob(t *testing.T) {
	ctx := context.Background()
	videoID := uuid.New()

	mockRepo := new(MockMediaRepository)
	mockRepo.On("GetVideo", ctx, videoID).Return(nil, nil)

	p := newTestProcessor(mockRepo, new(MockBlobStore), new(MockFaceIndex), new(MockFrameExtractor))

	err := p.ProcessVideo(ctx, videoID)

	require.NoError(t, err)
}

func TestProcess_UnknownKindIsDropped(t *testing.T) {
	ctx := context.Background()

	mockRepo := new(MockMediaRepository)
	p := newTestProcessor(mockRepo, new(MockBlobStore), new(MockFaceIndex), new(MockFrameExtractor))

	err := p.Process(ctx, queue.DeriveJob{
		JobID:     uuid.New(),
		MediaKind: model.MediaKind("audio"),
		MediaID:   uuid.New(),
	})

	require.NoError(t, err)
	mockRepo.AssertNotCalled(t, "GetPhoto", mock.Anything, mock.Anything)
	mockRepo.AssertNotCalled(t, "GetVideo", mock.Anything, mock.Anything)
}

func TestApplyWatermark_PreservesDimensions(t *testing.T) {
	src := imaging.New(200, 150, color.NRGBA{R: 10, G: 10, B: 10, A: 255})

	out := ApplyWatermark(src, testWatermark())

	assert.Equal(t, 200, out.Bounds().Dx())
	assert.Equal(t, 150, out.Bounds().Dy())
}

func TestWorker_MalformedPayloadIsDropped(t *testing.T) {
	w := NewWorker(nil, nil, 5, zerolog.Nop())

	err := w.Handle(context.Background(), kafka.Message{Value: []byte("{not json")})
	require.NoError(t, err)
}

func TestPreviewKey(t *testing.T) {
	photoID := uuid.New()

	key := previewKey(photoID, "originals/photos/race-day.png")
	assert.Equal(t, "previews/"+photoID.String()+"-race-day.jpg", key)
}
