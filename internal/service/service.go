package service

import (
	"context"

	"photo-market/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// GalleryService defines operations for albums and their media.
type GalleryService interface {
	// CreateAlbum creates a new album owned by the acting photographer.
	CreateAlbum(ctx context.Context, actor model.Actor, req *model.AlbumRequest) (*model.Album, error)

	// ListAlbums retrieves all browsable albums, newest event first.
	ListAlbums(ctx context.Context) ([]model.Album, error)

	// GetAlbum retrieves an album with its browsable media. Returns nil
	// when absent.
	GetAlbum(ctx context.Context, id uuid.UUID) (*model.AlbumDetail, error)

	// UploadPhoto stores a photo original and enqueues its derivation job.
	UploadPhoto(ctx context.Context, actor model.Actor, albumID uuid.UUID, data []byte, contentType string, caption *string, price decimal.Decimal) (*model.Photo, error)

	// UploadVideo stores a video original and enqueues its derivation job.
	UploadVideo(ctx context.Context, actor model.Actor, albumID uuid.UUID, data []byte, contentType, title string, price decimal.Decimal) (*model.Video, error)

	// SearchByFace finds browsable photos containing a face similar to the
	// one in the reference image.
	SearchByFace(ctx context.Context, image []byte) ([]model.PhotoView, error)

	// SetAlbumArchived flips an album's archived flag.
	SetAlbumArchived(ctx context.Context, actor model.Actor, id uuid.UUID, archived bool) error

	// SetPhotoArchived flips a photo's archived flag.
	SetPhotoArchived(ctx context.Context, actor model.Actor, id uuid.UUID, archived bool) error
}

// CartService defines operations for the customer's cart.
type CartService interface {
	// GetCart retrieves the customer's priced cart, creating it lazily.
	GetCart(ctx context.Context, customerID uuid.UUID) (*model.CartResponse, error)

	// AddItem puts a photo in the cart. Adding a photo already present is
	// a no-op returning the unchanged cart; the bool reports whether a new
	// item actually landed.
	AddItem(ctx context.Context, customerID, photoID uuid.UUID) (*model.CartResponse, bool, error)

	// RemoveItem takes an item out of the cart.
	RemoveItem(ctx context.Context, customerID, itemID uuid.UUID) (*model.CartResponse, error)

	// ApplyCoupon attaches a coupon to the cart; an empty code detaches
	// the current one.
	ApplyCoupon(ctx context.Context, customerID uuid.UUID, code string) (*model.CartResponse, error)
}

// CouponService defines operations for coupon management.
type CouponService interface {
	// CreateCoupon creates a coupon. Photographers may only create coupons
	// scoped to themselves; platform-wide coupons require an admin.
	CreateCoupon(ctx context.Context, actor model.Actor, req *model.CouponRequest) (*model.Coupon, error)

	// ListCoupons retrieves the acting photographer's coupons.
	ListCoupons(ctx context.Context, actor model.Actor) ([]model.Coupon, error)
}

// OrderService defines operations for checkout and fulfillment.
type OrderService interface {
	// Checkout snapshots the customer's cart into a pending order and
	// registers a payment intent for it.
	Checkout(ctx context.Context, customerID uuid.UUID) (*model.CheckoutResponse, error)

	// HandleWebhook processes a payment provider webhook delivery.
	HandleWebhook(ctx context.Context, payload []byte, signature string) error

	// GetOrder retrieves one of the customer's orders. Returns nil when
	// absent.
	GetOrder(ctx context.Context, customerID, orderID uuid.UUID) (*model.OrderResponse, error)

	// ListPurchases retrieves the customer's paid orders, newest first.
	ListPurchases(ctx context.Context, customerID uuid.UUID) ([]model.OrderResponse, error)

	// ListSales retrieves paid order lines for the photographer's photos.
	ListSales(ctx context.Context, photographerID uuid.UUID) ([]model.Sale, error)
}

// DownloadService defines the gate in front of original downloads.
type DownloadService interface {
	// GetDownloadURL issues a short-lived signed URL for a photo original,
	// provided the customer holds an unexpired entitlement for it.
	GetDownloadURL(ctx context.Context, customerID, photoID uuid.UUID) (string, error)
}

// JobPublisher publishes derivation jobs for uploaded media.
type JobPublisher interface {
	Publish(ctx context.Context, key, value []byte) error
}

// EventDeduper remembers processed webhook event ids so redeliveries are
// acknowledged without being re-applied.
type EventDeduper interface {
	// MarkEvent records an event id. Returns false when it was already
	// recorded.
	MarkEvent(ctx context.Context, eventID string) (bool, error)

	// UnmarkEvent forgets an event id so a redelivery can retry it.
	UnmarkEvent(ctx context.Context, eventID string) error
}
