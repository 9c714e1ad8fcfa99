package model

// ErrorResponse represents a standardised error response.
type ErrorResponse struct {
	Error         string `json:"error"`
	Message       string `json:"message"`
	CorrelationID string `json:"correlationId,omitempty"`
}

// Standard error codes for API responses
const (
	ErrCodeInvalidJSON         = "INVALID_JSON"
	ErrCodeMissingField        = "MISSING_FIELD"
	ErrCodeAlbumNotFound       = "ALBUM_NOT_FOUND"
	ErrCodeMediaNotFound       = "MEDIA_NOT_FOUND"
	ErrCodeNotPurchasable      = "NOT_PURCHASABLE"
	ErrCodeCartItemNotFound    = "CART_ITEM_NOT_FOUND"
	ErrCodeCouponNotFound      = "COUPON_NOT_FOUND"
	ErrCodeCouponExpired       = "COUPON_EXPIRED"
	ErrCodeCouponScopeMismatch = "COUPON_SCOPE_MISMATCH"
	ErrCodeEmptyCart           = "EMPTY_CART"
	ErrCodeNonPositiveTotal    = "NON_POSITIVE_TOTAL"
	ErrCodeOrderNotFound       = "ORDER_NOT_FOUND"
	ErrCodeDownloadForbidden   = "DOWNLOAD_FORBIDDEN"
	ErrCodeNotOwner            = "NOT_OWNER"
	ErrCodeWebhookInvalid      = "WEBHOOK_INVALID"
	ErrCodeUnauthorised        = "UNAUTHORIZED"
	ErrCodeForbidden           = "FORBIDDEN"
	ErrCodeInternalError       = "INTERNAL_ERROR"
)

// DomainError carries a machine-readable code alongside a caller-facing message.
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrAlbumNotFound       = NewDomainError(ErrCodeAlbumNotFound, "Album not found")
	ErrMediaNotFound       = NewDomainError(ErrCodeMediaNotFound, "Photo or video not found")
	ErrNotPurchasable      = NewDomainError(ErrCodeNotPurchasable, "This item is not available for purchase")
	ErrCartItemNotFound    = NewDomainError(ErrCodeCartItemNotFound, "Cart item not found")
	ErrCouponNotFound      = NewDomainError(ErrCodeCouponNotFound, "Coupon code not found")
	ErrCouponExpired       = NewDomainError(ErrCodeCouponExpired, "This coupon is no longer valid")
	ErrCouponScopeMismatch = NewDomainError(ErrCodeCouponScopeMismatch, "This coupon does not apply to the items in your cart")
	ErrEmptyCart           = NewDomainError(ErrCodeEmptyCart, "Your cart is empty")
	ErrNonPositiveTotal    = NewDomainError(ErrCodeNonPositiveTotal, "Order total must be positive")
	ErrOrderNotFound       = NewDomainError(ErrCodeOrderNotFound, "Order not found")
	ErrDownloadForbidden   = NewDomainError(ErrCodeDownloadForbidden, "Permission denied or access expired")
	ErrNotOwner            = NewDomainError(ErrCodeNotOwner, "You do not own this resource")
	ErrWebhookInvalid      = NewDomainError(ErrCodeWebhookInvalid, "Webhook payload could not be verified")
)
