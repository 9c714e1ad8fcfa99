package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Cart is the single active cart of one customer, created lazily.
type Cart struct {
	ID         uuid.UUID  `json:"id" db:"id"`
	CustomerID uuid.UUID  `json:"customerId" db:"customer_id"`
	CouponID   *uuid.UUID `json:"-" db:"coupon_id"`
	CreatedAt  time.Time  `json:"createdAt" db:"created_at"`
}

// CartItem is one photo in a cart. The photo price and owning photographer
// are joined in so pricing never needs a second round trip.
type CartItem struct {
	ID             uuid.UUID       `json:"id" db:"id"`
	CartID         uuid.UUID       `json:"-" db:"cart_id"`
	PhotoID        uuid.UUID       `json:"photoId" db:"photo_id"`
	Price          decimal.Decimal `json:"price" db:"price"`
	PhotographerID uuid.UUID       `json:"-" db:"photographer_id"`
	Caption        *string         `json:"caption,omitempty" db:"caption"`
	WatermarkKey   *string         `json:"-" db:"watermark_key"`
	AddedAt        time.Time       `json:"addedAt" db:"added_at"`
}

// Coupon is a percentage discount, optionally scoped to one photographer.
// A nil PhotographerID means platform-wide.
type Coupon struct {
	ID             uuid.UUID       `json:"id" db:"id"`
	Code           string          `json:"code" db:"code"`
	PercentOff     decimal.Decimal `json:"percentOff" db:"percent_off"`
	Active         bool            `json:"active" db:"active"`
	ExpiresAt      *time.Time      `json:"expiresAt,omitempty" db:"expires_at"`
	PhotographerID *uuid.UUID      `json:"photographerId,omitempty" db:"photographer_id"`
	CreatedAt      time.Time       `json:"createdAt" db:"created_at"`
}

// IsValid reports whether the coupon may still be applied at the given time.
func (c *Coupon) IsValid(now time.Time) bool {
	if !c.Active {
		return false
	}
	if c.ExpiresAt != nil && c.ExpiresAt.Before(now) {
		return false
	}
	return true
}

// CouponRequest represents the request payload for creating a coupon.
type CouponRequest struct {
	Code           string          `json:"code"`
	PercentOff     decimal.Decimal `json:"percentOff"`
	ExpiresAt      *time.Time      `json:"expiresAt,omitempty"`
	PhotographerID *uuid.UUID      `json:"photographerId,omitempty"`
}

// CartItemView is the browsable shape of a cart item.
type CartItemView struct {
	ID         uuid.UUID       `json:"id"`
	PhotoID    uuid.UUID       `json:"photoId"`
	Caption    *string         `json:"caption,omitempty"`
	Price      decimal.Decimal `json:"price"`
	PreviewURL *string         `json:"previewUrl"`
	AddedAt    time.Time       `json:"addedAt"`
}

// CartResponse is a cart with its priced breakdown.
type CartResponse struct {
	ID       uuid.UUID       `json:"id"`
	Items    []CartItemView  `json:"items"`
	Coupon   *Coupon         `json:"coupon,omitempty"`
	Subtotal decimal.Decimal `json:"subtotal"`
	Discount decimal.Decimal `json:"discount"`
	Total    decimal.Decimal `json:"total"`
}
