package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderStatus is the payment state of an order.
type OrderStatus string

const (
	OrderStatusPending OrderStatus = "PENDING"
	OrderStatusPaid    OrderStatus = "PAID"
	OrderStatusFailed  OrderStatus = "FAILED"
)

// PAID and FAILED are terminal: an order never leaves either state.
var validNext = map[OrderStatus]map[OrderStatus]bool{
	OrderStatusPending: {OrderStatusPaid: true, OrderStatusFailed: true},
	OrderStatusPaid:    {},
	OrderStatusFailed:  {},
}

// CanTransition reports whether an order may move from one status to another.
func CanTransition(from, to OrderStatus) bool {
	return validNext[from][to]
}

// Order is a snapshot of a cart at checkout time.
type Order struct {
	ID               uuid.UUID       `json:"id" db:"id"`
	CustomerID       uuid.UUID       `json:"customerId" db:"customer_id"`
	Total            decimal.Decimal `json:"total" db:"total"`
	Status           OrderStatus     `json:"status" db:"status"`
	ProviderIntentID *string         `json:"-" db:"provider_intent_id"`
	CreatedAt        time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt        time.Time       `json:"updatedAt" db:"updated_at"`
}

// OrderItem freezes a photo's price at checkout time. The stored price is
// immutable even if the photo is later repriced.
type OrderItem struct {
	ID      uuid.UUID       `json:"id" db:"id"`
	OrderID uuid.UUID       `json:"-" db:"order_id"`
	PhotoID uuid.UUID       `json:"photoId" db:"photo_id"`
	Price   decimal.Decimal `json:"price" db:"price"`
}

// Entitlement grants one customer time-bounded download access to one
// photo's original. Expiry is fixed at creation and never extended.
type Entitlement struct {
	ID          uuid.UUID `json:"id" db:"id"`
	CustomerID  uuid.UUID `json:"customerId" db:"customer_id"`
	PhotoID     uuid.UUID `json:"photoId" db:"photo_id"`
	PurchasedAt time.Time `json:"purchasedAt" db:"purchased_at"`
	ExpiresAt   time.Time `json:"expiresAt" db:"expires_at"`
}

// IsValid reports whether the entitlement still grants access.
func (e *Entitlement) IsValid(now time.Time) bool {
	return now.Before(e.ExpiresAt)
}

// CheckoutResponse is returned to the client so it can complete payment.
type CheckoutResponse struct {
	OrderID      uuid.UUID `json:"orderId"`
	ClientSecret string    `json:"clientSecret"`
}

// OrderResponse is an order with its line items.
type OrderResponse struct {
	ID        uuid.UUID       `json:"id"`
	Total     decimal.Decimal `json:"total"`
	Status    OrderStatus     `json:"status"`
	CreatedAt time.Time       `json:"createdAt"`
	Items     []OrderItem     `json:"items"`
}

// Sale is one paid order line seen from the owning photographer's side.
type Sale struct {
	OrderItemID uuid.UUID       `json:"orderItemId" db:"order_item_id"`
	PhotoID     uuid.UUID       `json:"photoId" db:"photo_id"`
	Caption     *string         `json:"caption,omitempty" db:"caption"`
	AlbumTitle  string          `json:"albumTitle" db:"album_title"`
	Price       decimal.Decimal `json:"price" db:"price"`
	OrderedAt   time.Time       `json:"orderedAt" db:"ordered_at"`
	CustomerID  uuid.UUID       `json:"customerId" db:"customer_id"`
}
