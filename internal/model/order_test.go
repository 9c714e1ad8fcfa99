package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		name string
		from OrderStatus
		to   OrderStatus
		want bool
	}{
		{"pending to paid", OrderStatusPending, OrderStatusPaid, true},
		{"pending to failed", OrderStatusPending, OrderStatusFailed, true},
		{"paid is terminal", OrderStatusPaid, OrderStatusFailed, false},
		{"paid cannot go back", OrderStatusPaid, OrderStatusPending, false},
		{"failed is terminal", OrderStatusFailed, OrderStatusPaid, false},
		{"no self transition", OrderStatusPending, OrderStatusPending, false},
		{"unknown status goes nowhere", OrderStatus("REFUNDED"), OrderStatusPaid, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanTransition(tt.from, tt.to))
		})
	}
}

func TestEntitlement_IsValid(t *testing.T) {
	now := time.Now()
	e := &Entitlement{ExpiresAt: now}

	assert.True(t, e.IsValid(now.Add(-time.Second)))
	assert.False(t, e.IsValid(now))
	assert.False(t, e.IsValid(now.Add(time.Second)))
}

func TestCoupon_IsValid(t *testing.T) {
	now := time.Now()
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	tests := []struct {
		name   string
		coupon Coupon
		want   bool
	}{
		{"active without expiry", Coupon{Active: true}, true},
		{"active before expiry", Coupon{Active: true, ExpiresAt: &future}, true},
		{"expired", Coupon{Active: true, ExpiresAt: &past}, false},
		{"deactivated", Coupon{Active: false}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.coupon.IsValid(now))
		})
	}
}
