package service

import (
	"context"
	"time"

	"photo-market/internal/face"
	"photo-market/internal/model"
	"photo-market/internal/payment"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// MockMediaRepository is a mock implementation of repository.MediaRepository.
type MockMediaRepository struct {
	mock.Mock
}

func (m *MockMediaRepository) CreateAlbum(ctx context.Context, album *model.Album) error {
	args := m.Called(ctx, album)
	return args.Error(0)
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
	args := m.Called(ctx, id, archived)
	return args.Error(0)
}

func (m *MockMediaRepository) CreatePhoto(ctx context.Context, photo *model.Photo) error {
	args := m.Called(ctx, photo)
	return args.Error(0)
}

func (m *MockMediaRepository) CreateVideo(ctx context.Context, video *model.Video) error {
	args := m.Called(ctx, video)
	return args.Error(0)
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
	args := m.Called(ctx, id, key)
	return args.Error(0)
}

func (m *MockMediaRepository) SetVideoThumbnailKey(ctx context.Context, id uuid.UUID, key string) error {
	args := m.Called(ctx, id, key)
	return args.Error(0)
}

func (m *MockMediaRepository) SetPhotoArchived(ctx context.Context, id uuid.UUID, archived bool) error {
	args := m.Called(ctx, id, archived)
	return args.Error(0)
}

func (m *MockMediaRepository) CountFaceEntries(ctx context.Context, photoID uuid.UUID) (int, error) {
	args := m.Called(ctx, photoID)
	return args.Int(0), args.Error(1)
}

func (m *MockMediaRepository) AddFaceEntries(ctx context.Context, photoID uuid.UUID, faceIDs []string) error {
	args := m.Called(ctx, photoID, faceIDs)
	return args.Error(0)
}

func (m *MockMediaRepository) FindPhotosByFaceIDs(ctx context.Context, faceIDs []string) ([]model.Photo, error) {
	args := m.Called(ctx, faceIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Photo), args.Error(1)
}

// MockCartRepository is a mock implementation of repository.CartRepository.
type MockCartRepository struct {
	mock.Mock
}

func (m *MockCartRepository) GetOrCreateCart(ctx context.Context, customerID uuid.UUID) (*model.Cart, error) {
	args := m.Called(ctx, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Cart), args.Error(1)
}

func (m *MockCartRepository) GetCartWithItems(ctx context.Context, customerID uuid.UUID) (*model.Cart, []model.CartItem, *model.Coupon, error) {
	args := m.Called(ctx, customerID)
	var cart *model.Cart
	if args.Get(0) != nil {
		cart = args.Get(0).(*model.Cart)
	}
	var items []model.CartItem
	if args.Get(1) != nil {
		items = args.Get(1).([]model.CartItem)
	}
	var coupon *model.Coupon
	if args.Get(2) != nil {
		coupon = args.Get(2).(*model.Coupon)
	}
	return cart, items, coupon, args.Error(3)
}

func (m *MockCartRepository) AddItem(ctx context.Context, cartID, photoID uuid.UUID) (bool, error) {
	args := m.Called(ctx, cartID, photoID)
	return args.Bool(0), args.Error(1)
}

func (m *MockCartRepository) RemoveItem(ctx context.Context, customerID, itemID uuid.UUID) (bool, error) {
	args := m.Called(ctx, customerID, itemID)
	return args.Bool(0), args.Error(1)
}

func (m *MockCartRepository) SetCoupon(ctx context.Context, cartID uuid.UUID, couponID *uuid.UUID) error {
	args := m.Called(ctx, cartID, couponID)
	return args.Error(0)
}

func (m *MockCartRepository) GetCouponByCode(ctx context.Context, code string) (*model.Coupon, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Coupon), args.Error(1)
}

func (m *MockCartRepository) CreateCoupon(ctx context.Context, coupon *model.Coupon) error {
	args := m.Called(ctx, coupon)
	return args.Error(0)
}

func (m *MockCartRepository) ListCouponsByPhotographer(ctx context.Context, photographerID uuid.UUID) ([]model.Coupon, error) {
	args := m.Called(ctx, photographerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Coupon), args.Error(1)
}

// MockOrderRepository is a mock implementation of repository.OrderRepository.
type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	args := m.Called(ctx)
	if tx, ok := args.Get(0).(pgx.Tx); ok {
		return tx, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockOrderRepository) CreateOrder(ctx context.Context, tx pgx.Tx, order *model.Order) error {
	args := m.Called(ctx, tx, order)
	return args.Error(0)
}

func (m *MockOrderRepository) CreateOrderItems(ctx context.Context, tx pgx.Tx, items []model.OrderItem) error {
	args := m.Called(ctx, tx, items)
	return args.Error(0)
}

func (m *MockOrderRepository) SetProviderIntent(ctx context.Context, tx pgx.Tx, orderID uuid.UUID, intentID string) error {
	args := m.Called(ctx, tx, orderID, intentID)
	return args.Error(0)
}

func (m *MockOrderRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Order, []model.OrderItem, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*model.Order), args.Get(1).([]model.OrderItem), args.Error(2)
}

func (m *MockOrderRepository) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*model.Order, []model.OrderItem, error) {
	args := m.Called(ctx, tx, id)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*model.Order), args.Get(1).([]model.OrderItem), args.Error(2)
}

func (m *MockOrderRepository) UpdateStatus(ctx context.Context, tx pgx.Tx, id uuid.UUID, status model.OrderStatus) error {
	args := m.Called(ctx, tx, id, status)
	return args.Error(0)
}

func (m *MockOrderRepository) CreateEntitlements(ctx context.Context, tx pgx.Tx, entitlements []model.Entitlement) error {
	args := m.Called(ctx, tx, entitlements)
	return args.Error(0)
}

func (m *MockOrderRepository) DeleteCartItems(ctx context.Context, tx pgx.Tx, customerID uuid.UUID, photoIDs []uuid.UUID) error {
	args := m.Called(ctx, tx, customerID, photoIDs)
	return args.Error(0)
}

func (m *MockOrderRepository) GetValidEntitlement(ctx context.Context, customerID, photoID uuid.UUID, now time.Time) (*model.Entitlement, error) {
	args := m.Called(ctx, customerID, photoID, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Entitlement), args.Error(1)
}

func (m *MockOrderRepository) ListPaidByCustomer(ctx context.Context, customerID uuid.UUID) ([]model.OrderResponse, error) {
	args := m.Called(ctx, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.OrderResponse), args.Error(1)
}

func (m *MockOrderRepository) ListSalesByPhotographer(ctx context.Context, photographerID uuid.UUID) ([]model.Sale, error) {
	args := m.Called(ctx, photographerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Sale), args.Error(1)
}

// MockBlobStore is a mock implementation of blob.Store.
type MockBlobStore struct {
	mock.Mock
}

func (m *MockBlobStore) PutPublic(ctx context.Context, key string, body []byte, contentType string) error {
	args := m.Called(ctx, key, body, contentType)
	return args.Error(0)
}

func (m *MockBlobStore) PutPrivate(ctx context.Context, key string, body []byte, contentType string) error {
	args := m.Called(ctx, key, body, contentType)
	return args.Error(0)
}

func (m *MockBlobStore) GetPrivate(ctx context.Context, key string) ([]byte, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockBlobStore) PublicURL(key string) string {
	args := m.Called(key)
	return args.String(0)
}

func (m *MockBlobStore) SignedGetURL(ctx context.Context, key string, ttl time.Duration, filename string) (string, error) {
	args := m.Called(ctx, key, ttl, filename)
	return args.String(0), args.Error(1)
}

// MockPaymentProvider is a mock implementation of payment.Provider.
type MockPaymentProvider struct {
	mock.Mock
}

func (m *MockPaymentProvider) CreateIntent(ctx context.Context, amount decimal.Decimal, orderRef string) (payment.Intent, error) {
	args := m.Called(ctx, amount, orderRef)
	return args.Get(0).(payment.Intent), args.Error(1)
}

func (m *MockPaymentProvider) VerifyWebhook(payload []byte, signature string) (payment.Event, error) {
	args := m.Called(payload, signature)
	return args.Get(0).(payment.Event), args.Error(1)
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

// MockJobPublisher is a mock implementation of JobPublisher.
type MockJobPublisher struct {
	mock.Mock
}

func (m *MockJobPublisher) Publish(ctx context.Context, key, value []byte) error {
	args := m.Called(ctx, key, value)
	return args.Error(0)
}

// MockEventDeduper is a mock implementation of EventDeduper.
type MockEventDeduper struct {
	mock.Mock
}

func (m *MockEventDeduper) MarkEvent(ctx context.Context, eventID string) (bool, error) {
	args := m.Called(ctx, eventID)
	return args.Bool(0), args.Error(1)
}

func (m *MockEventDeduper) UnmarkEvent(ctx context.Context, eventID string) error {
	args := m.Called(ctx, eventID)
	return args.Error(0)
}

// MockTx is a minimal mock implementation of pgx.Tx for testing.
type MockTx struct {
	mock.Mock
	committed  bool
	rolledBack bool
}

func (m *MockTx) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	m.committed = true
	return args.Error(0)
}

func (m *MockTx) Rollback(ctx context.Context) error {
	args := m.Called(ctx)
	m.rolledBack = true
	return args.Error(0)
}

// Stub methods to satisfy pgx.Tx interface - these are not used in our tests
func (m *MockTx) Begin(ctx context.Context) (pgx.Tx, error) { return nil, nil }
func (m *MockTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, nil
}
func (m *MockTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults { return nil }
func (m *MockTx) LargeObjects() pgx.LargeObjects                               { return pgx.LargeObjects{} }
func (m *MockTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	return nil, nil
}
func (m *MockTx) Exec(ctx context.Context, sql string, arguments ...any) (commandTag pgconn.CommandTag, err error) {
	return
}
func (m *MockTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, nil
}
func (m *MockTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row { return nil }
func (m *MockTx) Conn() *pgx.Conn                                               { return nil }
