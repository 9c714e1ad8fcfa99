package service

import (
	"context"
	"testing"
	"time"

	"photo-market/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestDownloadService(orderRepo *MockOrderRepository, mediaRepo *MockMediaRepository, store *MockBlobStore) DownloadService {
	return NewDownloadService(orderRepo, mediaRepo, store, 5*time.Minute, zerolog.Nop())
}

func TestDownloadService_GetDownloadURL_Success(t *testing.T) {
	ctx := context.Background()
	customerID := uuid.New()
	photoID := uuid.New()
	caption := "final-lap"

	photo := &model.Photo{
		ID:          photoID,
		OriginalKey: "originals/photos/" + photoID.String(),
		Caption:     &caption,
	}
	entitlement := &model.Entitlement{
		ID:         uuid.New(),
		CustomerID: customerID,
		PhotoID:    photoID,
		ExpiresAt:  time.Now().Add(24 * time.Hour),
	}

	mockMediaRepo := new(MockMediaRepository)
	mockMediaRepo.On("GetPhoto", ctx, photoID).Return(photo, nil)

	mockOrderRepo := new(MockOrderRepository)
	mockOrderRepo.On("GetValidEntitlement", ctx, customerID, photoID, mock.AnythingOfType("time.Time")).
		Return(entitlement, nil)

	mockStore := new(MockBlobStore)
	mockStore.On("SignedGetURL", ctx, photo.OriginalKey, 5*time.Minute, "final-lap.jpg").
		Return("https://signed.example.com/u", nil)

	service := newTestDownloadService(mockOrderRepo, mockMediaRepo, mockStore)

	url, err := service.GetDownloadURL(ctx, customerID, photoID)

	require.NoError(t, err)
	assert.Equal(t, "https://signed.example.com/u", url)
	mockStore.AssertExpectations(t)
}

func TestDownloadService_GetDownloadURL_NoEntitlement(t *testing.T) {
	ctx := context.Background()
	customerID := uuid.New()
	photoID := uuid.New()

	mockMediaRepo := new(MockMediaRepository)

	mockOrderRepo := new(MockOrderRepository)
	mockOrderRepo.On("GetValidEntitlement", ctx, customerID, photoID, mock.AnythingOfType("time.Time")).
		Return(nil, nil)

	mockStore := new(MockBlobStore)

	service := newTestDownloadService(mockOrderRepo, mockMediaRepo, mockStore)

	url, err := service.GetDownloadURL(ctx, customerID, photoID)

	assert.Empty(t, url)
	assert.ErrorIs(t, err, model.ErrDownloadForbidden)
	// Denial never touches the media row, so the response cannot depend
	// on whether the photo exists.
	mockMediaRepo.AssertNotCalled(t, "GetPhoto", mock.Anything, mock.Anything)
	mockStore.AssertNotCalled(t, "SignedGetURL", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestDownloadService_GetDownloadURL_PhotoMissingLooksForbidden(t *testing.T) {
	ctx := context.Background()
	customerID := uuid.New()
	photoID := uuid.New()

	// Entitled but the photo row is gone: the caller still sees the same
	// denial as a customer with no entitlement at all.
	mockOrderRepo := new(MockOrderRepository)
	mockOrderRepo.On("GetValidEntitlement", ctx, customerID, photoID, mock.AnythingOfType("time.Time")).
		Return(&model.Entitlement{ID: uuid.New(), CustomerID: customerID, PhotoID: photoID}, nil)

	mockMediaRepo := new(MockMediaRepository)
	mockMediaRepo.On("GetPhoto", ctx, photoID).Return(nil, nil)

	service := newTestDownloadService(mockOrderRepo, mockMediaRepo, new(MockBlobStore))

	url, err := service.GetDownloadURL(ctx, customerID, photoID)

	assert.Empty(t, url)
	assert.ErrorIs(t, err, model.ErrDownloadForbidden)
}

func TestDownloadService_FilenameFallsBackToID(t *testing.T) {
	photoID := uuid.New()
	photo := &model.Photo{ID: photoID}

	assert.Equal(t, photoID.String()+".jpg", downloadFilename(photo))
}
