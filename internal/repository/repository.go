package repository

import (
	"context"
	"time"

	"photo-market/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// MediaRepository defines the interface for album, photo and video data access.
type MediaRepository interface {
	// CreateAlbum inserts a new album.
	CreateAlbum(ctx context.Context, album *model.Album) error

	// GetAlbum retrieves an album by its ID. Returns nil when absent.
	GetAlbum(ctx context.Context, id uuid.UUID) (*model.Album, error)

	// ListPublicAlbums retrieves all public, non-archived albums, newest event first.
	ListPublicAlbums(ctx context.Context) ([]model.Album, error)

	// SetAlbumArchived flips the archived flag of an album.
	SetAlbumArchived(ctx context.Context, id uuid.UUID, archived bool) error

	// CreatePhoto inserts a new photo row.
	CreatePhoto(ctx context.Context, photo *model.Photo) error

	// CreateVideo inserts a new video row.
	CreateVideo(ctx context.Context, video *model.Video) error

	// GetPhoto retrieves a photo by its ID. Returns nil when absent.
	GetPhoto(ctx context.Context, id uuid.UUID) (*model.Photo, error)

	// GetVideo retrieves a video by its ID. Returns nil when absent.
	GetVideo(ctx context.Context, id uuid.UUID) (*model.Video, error)

	// GetPurchasablePhoto retrieves a photo only if neither it nor its album
	// is archived and the album is public. Returns nil otherwise.
	GetPurchasablePhoto(ctx context.Context, id uuid.UUID) (*model.Photo, error)

	// ListAlbumPhotos retrieves the non-archived photos of an album.
	ListAlbumPhotos(ctx context.Context, albumID uuid.UUID) ([]model.Photo, error)

	// ListAlbumVideos retrieves the non-archived videos of an album.
	ListAlbumVideos(ctx context.Context, albumID uuid.UUID) ([]model.Video, error)

	// SetPhotoWatermarkKey persists the watermarked preview reference.
	SetPhotoWatermarkKey(ctx context.Context, id uuid.UUID, key string) error

	// SetVideoThumbnailKey persists the poster thumbnail reference.
	SetVideoThumbnailKey(ctx context.Context, id uuid.UUID, key string) error

	// SetPhotoArchived flips the archived flag of a photo.
	SetPhotoArchived(ctx context.Context, id uuid.UUID, archived bool) error

	// CountFaceEntries returns how many face index entries exist for a photo.
	CountFaceEntries(ctx context.Context, photoID uuid.UUID) (int, error)

	// AddFaceEntries inserts one entry per face ID for a photo.
	AddFaceEntries(ctx context.Context, photoID uuid.UUID, faceIDs []string) error

	// FindPhotosByFaceIDs retrieves the distinct photos matching any of the
	// given face IDs.
	FindPhotosByFaceIDs(ctx context.Context, faceIDs []string) ([]model.Photo, error)
}

// CartRepository defines the interface for cart and coupon data access.
// Mutations lock the cart row so concurrent requests from the same
// customer serialize instead of losing updates.
type CartRepository interface {
	// GetOrCreateCart returns the customer's cart, creating it lazily.
	GetOrCreateCart(ctx context.Context, customerID uuid.UUID) (*model.Cart, error)

	// GetCartWithItems returns the cart, its items (with joined photo price
	// and owning photographer) and the applied coupon, if any.
	GetCartWithItems(ctx context.Context, customerID uuid.UUID) (*model.Cart, []model.CartItem, *model.Coupon, error)

	// AddItem inserts a photo into the cart. Returns false when the photo
	// was already present (idempotent no-op).
	AddItem(ctx context.Context, cartID, photoID uuid.UUID) (bool, error)

	// RemoveItem deletes a cart item only if it belongs to the customer's
	// own cart. Returns false when no such item exists.
	RemoveItem(ctx context.Context, customerID, itemID uuid.UUID) (bool, error)

	// SetCoupon stores (or clears, with nil) the cart's coupon.
	SetCoupon(ctx context.Context, cartID uuid.UUID, couponID *uuid.UUID) error

	// GetCouponByCode retrieves a coupon by code, case-insensitively.
	// Returns nil when absent.
	GetCouponByCode(ctx context.Context, code string) (*model.Coupon, error)

	// CreateCoupon inserts a new coupon.
	CreateCoupon(ctx context.Context, coupon *model.Coupon) error

	// ListCouponsByPhotographer retrieves the coupons scoped to one photographer.
	ListCouponsByPhotographer(ctx context.Context, photographerID uuid.UUID) ([]model.Coupon, error)
}

// OrderRepository defines the interface for order, entitlement and sales
// data access. The paid transition is transactional: status flip,
// entitlement batch and cart wipe commit together or not at all.
type OrderRepository interface {
	// BeginTx starts a new database transaction.
	BeginTx(ctx context.Context) (pgx.Tx, error)

	// CreateOrder inserts a new order within the provided transaction.
	CreateOrder(ctx context.Context, tx pgx.Tx, order *model.Order) error

	// CreateOrderItems inserts multiple order items within the provided transaction.
	CreateOrderItems(ctx context.Context, tx pgx.Tx, items []model.OrderItem) error

	// SetProviderIntent stores the payment provider's intent reference.
	SetProviderIntent(ctx context.Context, tx pgx.Tx, orderID uuid.UUID, intentID string) error

	// GetByID retrieves an order with its items. Returns nil when absent.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Order, []model.OrderItem, error)

	// GetByIDForUpdate locks and retrieves an order within a transaction.
	GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*model.Order, []model.OrderItem, error)

	// UpdateStatus sets the order status within a transaction.
	UpdateStatus(ctx context.Context, tx pgx.Tx, id uuid.UUID, status model.OrderStatus) error

	// CreateEntitlements inserts an entitlement batch within a transaction.
	CreateEntitlements(ctx context.Context, tx pgx.Tx, entitlements []model.Entitlement) error

	// DeleteCartItems removes the given photos from the customer's cart
	// within a transaction.
	DeleteCartItems(ctx context.Context, tx pgx.Tx, customerID uuid.UUID, photoIDs []uuid.UUID) error

	// GetValidEntitlement retrieves an unexpired entitlement for the
	// customer/photo pair. Returns nil when absent or expired.
	GetValidEntitlement(ctx context.Context, customerID, photoID uuid.UUID, now time.Time) (*model.Entitlement, error)

	// ListPaidByCustomer retrieves the customer's paid orders, newest first.
	ListPaidByCustomer(ctx context.Context, customerID uuid.UUID) ([]model.OrderResponse, error)

	// ListSalesByPhotographer retrieves paid order lines for the
	// photographer's photos, newest first.
	ListSalesByPhotographer(ctx context.Context, photographerID uuid.UUID) ([]model.Sale, error)
}
