package pricing

import (
	"time"

	"photo-market/internal/model"

	"github.com/shopspring/decimal"
)

// Quote is a deterministic price breakdown for a set of cart items.
type Quote struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Discount decimal.Decimal `json:"discount"`
	Total    decimal.Decimal `json:"total"`
}

// Engine computes cart pricing under a single coupon-or-bulk-discount
// policy: a valid coupon suppresses the bulk discount entirely, even when
// the bulk discount would have been larger.
type Engine struct {
	bulkThreshold int
	bulkPercent   decimal.Decimal
}

// NewEngine creates a pricing engine with the given bulk discount policy.
func NewEngine(bulkThreshold int, bulkPercent float64) *Engine {
	return &Engine{
		bulkThreshold: bulkThreshold,
		bulkPercent:   decimal.NewFromFloat(bulkPercent),
	}
}

var hundred = decimal.NewFromInt(100)

// Quote prices the items. A photographer-scoped coupon discounts only that
// photographer's items; a platform-wide coupon discounts everything. An
// invalid or absent coupon falls back to the bulk discount when the item
// count reaches the threshold.
func (e *Engine) Quote(items []model.CartItem, coupon *model.Coupon, now time.Time) Quote {
	subtotal := decimal.Zero
	for _, item := range items {
		subtotal = subtotal.Add(item.Price)
	}

	discount := decimal.Zero
	switch {
	case coupon != nil && coupon.IsValid(now):
		fraction := coupon.PercentOff.Div(hundred)
		for _, item := range items {
			if coupon.PhotographerID != nil && *coupon.PhotographerID != item.PhotographerID {
				continue
			}
			discount = discount.Add(item.Price.Mul(fraction))
		}
		discount = discount.Round(2)

	case len(items) >= e.bulkThreshold:
		discount = subtotal.Mul(e.bulkPercent).Div(hundred).Round(2)
	}

	total := subtotal.Sub(discount).Round(2)
	if total.IsNegative() {
		total = decimal.Zero
	}

	return Quote{
		Subtotal: subtotal.Round(2),
		Discount: discount,
		Total:    total,
	}
}
