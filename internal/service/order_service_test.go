package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"photo-market/internal/model"
	"photo-market/internal/payment"
	"photo-market/internal/pricing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestOrderService(orderRepo *MockOrderRepository, cartRepo *MockCartRepository, provider *MockPaymentProvider, deduper *MockEventDeduper) OrderService {
	return NewOrderService(
		orderRepo,
		cartRepo,
		provider,
		deduper,
		pricing.NewEngine(5, 10),
		60*24*time.Hour,
		zerolog.Nop(),
	)
}

func cartItems(n int, price string) []model.CartItem {
	items := make([]model.CartItem, n)
	for i := range items {
		items[i] = model.CartItem{
			ID:             uuid.New(),
			PhotoID:        uuid.New(),
			Price:          decimal.RequireFromString(price),
			PhotographerID: uuid.New(),
		}
	}
	return items
}

func TestOrderService_Checkout_Success(t *testing.T) {
	ctx := context.Background()
	customerID := uuid.New()
	items := cartItems(2, "15.00")

	mockOrderRepo := new(MockOrderRepository)
	mockCartRepo := new(MockCartRepository)
	mockProvider := new(MockPaymentProvider)
	mockTx := new(MockTx)

	service := newTestOrderService(mockOrderRepo, mockCartRepo, mockProvider, new(MockEventDeduper))

	mockCartRepo.On("GetCartWithItems", ctx, customerID).
		Return(&model.Cart{ID: uuid.New(), CustomerID: customerID}, items, nil, nil)
	mockOrderRepo.On("BeginTx", ctx).Return(mockTx, nil)
	mockOrderRepo.On("CreateOrder", ctx, mockTx, mock.AnythingOfType("*model.Order")).Return(nil)
	mockOrderRepo.On("CreateOrderItems", ctx, mockTx, mock.AnythingOfType("[]model.OrderItem")).Return(nil)
	mockProvider.On("CreateIntent", ctx, mock.Anything, mock.AnythingOfType("string")).
		Return(payment.Intent{ProviderID: "pi_123", ClientSecret: "pi_123_secret"}, nil)
	mockOrderRepo.On("SetProviderIntent", ctx, mockTx, mock.AnythingOfType("uuid.UUID"), "pi_123").Return(nil)
	mockTx.On("Commit", ctx).Return(nil)

	resp, err := service.Checkout(ctx, customerID)

	require.NoError(t, err)
	require.NotNil(t, resp)
	assert.NotEqual(t, uuid.Nil, resp.OrderID)
	assert.Equal(t, "pi_123_secret", resp.ClientSecret)
	assert.True(t, mockTx.committed)

	// The charged amount is the priced total, two items at full price.
	chargedAmount := mockProvider.Calls[0].Arguments.Get(1).(decimal.Decimal)
	assert.True(t, chargedAmount.Equal(decimal.RequireFromString("30.00")))

	mockOrderRepo.AssertExpectations(t)
	mockProvider.AssertExpectations(t)
}

func TestOrderService_Checkout_EmptyCart(t *testing.T) {
	ctx := context.Background()
	customerID := uuid.New()

	mockCartRepo := new(MockCartRepository)
	mockCartRepo.On("GetCartWithItems", ctx, customerID).
		Return(&model.Cart{ID: uuid.New(), CustomerID: customerID}, []model.CartItem{}, nil, nil)

	service := newTestOrderService(new(MockOrderRepository), mockCartRepo, new(MockPaymentProvider), new(MockEventDeduper))

	resp, err := service.Checkout(ctx, customerID)

	assert.Nil(t, resp)
	assert.ErrorIs(t, err, model.ErrEmptyCart)
}

func TestOrderService_Checkout_NonPositiveTotal(t *testing.T) {
	ctx := context.Background()
	customerID := uuid.New()
	items := cartItems(1, "10.00")

	coupon := &model.Coupon{
		ID:         uuid.New(),
		PercentOff: decimal.RequireFromString("100"),
		Active:     true,
	}

	mockCartRepo := new(MockCartRepository)
	mockCartRepo.On("GetCartWithItems", ctx, customerID).
		Return(&model.Cart{ID: uuid.New(), CustomerID: customerID}, items, coupon, nil)

	service := newTestOrderService(new(MockOrderRepository), mockCartRepo, new(MockPaymentProvider), new(MockEventDeduper))

	resp, err := service.Checkout(ctx, customerID)

	assert.Nil(t, resp)
	assert.ErrorIs(t, err, model.ErrNonPositiveTotal)
}

func TestOrderService_Checkout_ProviderFailureRollsBack(t *testing.T) {
	ctx := context.Background()
	customerID := uuid.New()
	items := cartItems(1, "20.00")

	mockOrderRepo := new(MockOrderRepository)
	mockCartRepo := new(MockCartRepository)
	mockProvider := new(MockPaymentProvider)
	mockTx := new(MockTx)

	service := newTestOrderService(mockOrderRepo, mockCartRepo, mockProvider, new(MockEventDeduper))

	mockCartRepo.On("GetCartWithItems", ctx, customerID).
		Return(&model.Cart{ID: uuid.New(), CustomerID: customerID}, items, nil, nil)
	mockOrderRepo.On("BeginTx", ctx).Return(mockTx, nil)
	mockOrderRepo.On("CreateOrder", ctx, mockTx, mock.AnythingOfType("*model.Order")).Return(nil)
	mockOrderRepo.On("CreateOrderItems", ctx, mockTx, mock.AnythingOfType("[]model.OrderItem")).Return(nil)
	mockProvider.On("CreateIntent", ctx, mock.Anything, mock.AnythingOfType("string")).
		Return(payment.Intent{}, errors.New("provider unavailable"))
	mockTx.On("Rollback", ctx).Return(nil)

	resp, err := service.Checkout(ctx, customerID)

	assert.Nil(t, resp)
	assert.Error(t, err)
	assert.True(t, mockTx.rolledBack)
	assert.False(t, mockTx.committed)
}

func TestOrderService_HandleWebhook_InvalidSignature(t *testing.T) {
	ctx := context.Background()

	mockProvider := new(MockPaymentProvider)
	mockProvider.On("VerifyWebhook", []byte("payload"), "bad-sig").
		Return(payment.Event{}, errors.New("signature mismatch"))

	service := newTestOrderService(new(MockOrderRepository), new(MockCartRepository), mockProvider, new(MockEventDeduper))

	err := service.HandleWebhook(ctx, []byte("payload"), "bad-sig")
	assert.ErrorIs(t, err, model.ErrWebhookInvalid)
}

func TestOrderService_HandleWebhook_IgnoredEvent(t *testing.T) {
	ctx := context.Background()

	mockProvider := new(MockPaymentProvider)
	mockProvider.On("VerifyWebhook", mock.Anything, mock.Anything).
		Return(payment.Event{ID: "evt_1", Status: payment.StatusIgnored}, nil)

	mockDeduper := new(MockEventDeduper)

	service := newTestOrderService(new(MockOrderRepository), new(MockCartRepository), mockProvider, mockDeduper)

	err := service.HandleWebhook(ctx, []byte("{}"), "sig")
	require.NoError(t, err)

	// Non-terminal events never touch the dedup store.
	mockDeduper.AssertNotCalled(t, "MarkEvent", mock.Anything, mock.Anything)
}

func TestOrderService_HandleWebhook_DuplicateEvent(t *testing.T) {
	ctx := context.Background()
	orderID := uuid.New()

	mockProvider := new(MockPaymentProvider)
	mockProvider.On("VerifyWebhook", mock.Anything, mock.Anything).
		Return(payment.Event{ID: "evt_1", Status: payment.StatusSucceeded, OrderRef: orderID.String()}, nil)

	mockDeduper := new(MockEventDeduper)
	mockDeduper.On("MarkEvent", ctx, "evt_1").Return(false, nil)

	mockOrderRepo := new(MockOrderRepository)

	service := newTestOrderService(mockOrderRepo, new(MockCartRepository), mockProvider, mockDeduper)

	err := service.HandleWebhook(ctx, []byte("{}"), "sig")
	require.NoError(t, err)

	mockOrderRepo.AssertNotCalled(t, "BeginTx", mock.Anything)
}

func TestOrderService_HandleWebhook_PaymentSucceeded(t *testing.T) {
	ctx := context.Background()
	customerID := uuid.New()
	orderID := uuid.New()

	order := &model.Order{
		ID:         orderID,
		CustomerID: customerID,
		Total:      decimal.RequireFromString("30.00"),
		Status:     model.OrderStatusPending,
	}
	items := []model.OrderItem{
		{ID: uuid.New(), OrderID: orderID, PhotoID: uuid.New(), Price: decimal.RequireFromString("15.00")},
		{ID: uuid.New(), OrderID: orderID, PhotoID: uuid.New(), Price: decimal.RequireFromString("15.00")},
	}

	mockProvider := new(MockPaymentProvider)
	mockProvider.On("VerifyWebhook", mock.Anything, mock.Anything).
		Return(payment.Event{ID: "evt_1", Status: payment.StatusSucceeded, OrderRef: orderID.String()}, nil)

	mockDeduper := new(MockEventDeduper)
	mockDeduper.On("MarkEvent", ctx, "evt_1").Return(true, nil)

	mockOrderRepo := new(MockOrderRepository)
	mockTx := new(MockTx)
	mockOrderRepo.On("BeginTx", ctx).Return(mockTx, nil)
	mockOrderRepo.On("GetByIDForUpdate", ctx, mockTx, orderID).Return(order, items, nil)
	mockOrderRepo.On("UpdateStatus", ctx, mockTx, orderID, model.OrderStatusPaid).Return(nil)
	mockOrderRepo.On("CreateEntitlements", ctx, mockTx, mock.AnythingOfType("[]model.Entitlement")).Return(nil)
	mockOrderRepo.On("DeleteCartItems", ctx, mockTx, customerID, mock.AnythingOfType("[]uuid.UUID")).Return(nil)
	mockTx.On("Commit", ctx).Return(nil)

	service := newTestOrderService(mockOrderRepo, new(MockCartRepository), mockProvider, mockDeduper)

	err := service.HandleWebhook(ctx, []byte("{}"), "sig")
	require.NoError(t, err)
	assert.True(t, mockTx.committed)

	// One entitlement per order item, expiring together in the future.
	var entitlements []model.Entitlement
	for _, call := range mockOrderRepo.Calls {
		if call.Method == "CreateEntitlements" {
			entitlements = call.Arguments.Get(2).([]model.Entitlement)
		}
	}
	require.Len(t, entitlements, 2)
	for _, e := range entitlements {
		assert.Equal(t, customerID, e.CustomerID)
		assert.True(t, e.ExpiresAt.After(time.Now().Add(59*24*time.Hour)))
	}

	mockOrderRepo.AssertExpectations(t)
}

func TestOrderService_HandleWebhook_AlreadyPaidIsNoOp(t *testing.T) {
	ctx := context.Background()
	orderID := uuid.New()

	order := &model.Order{
		ID:         orderID,
		CustomerID: uuid.New(),
		Status:     model.OrderStatusPaid,
	}

	mockProvider := new(MockPaymentProvider)
	mockProvider.On("VerifyWebhook", mock.Anything, mock.Anything).
		Return(payment.Event{ID: "evt_2", Status: payment.StatusSucceeded, OrderRef: orderID.String()}, nil)

	mockDeduper := new(MockEventDeduper)
	mockDeduper.On("MarkEvent", ctx, "evt_2").Return(true, nil)

	mockOrderRepo := new(MockOrderRepository)
	mockTx := new(MockTx)
	mockOrderRepo.On("BeginTx", ctx).Return(mockTx, nil)
	mockOrderRepo.On("GetByIDForUpdate", ctx, mockTx, orderID).Return(order, []model.OrderItem{}, nil)
	mockTx.On("Commit", ctx).Return(nil)

	service := newTestOrderService(mockOrderRepo, new(MockCartRepository), mockProvider, mockDeduper)

	err := service.HandleWebhook(ctx, []byte("{}"), "sig")
	require.NoError(t, err)

	mockOrderRepo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	mockOrderRepo.AssertNotCalled(t, "CreateEntitlements", mock.Anything, mock.Anything, mock.Anything)
}

func TestOrderService_HandleWebhook_PaymentFailed(t *testing.T) {
	ctx := context.Background()
	orderID := uuid.New()

	order := &model.Order{
		ID:         orderID,
		CustomerID: uuid.New(),
		Status:     model.OrderStatusPending,
	}

	mockProvider := new(MockPaymentProvider)
	mockProvider.On("VerifyWebhook", mock.Anything, mock.Anything).
		Return(payment.Event{ID: "evt_3", Status: payment.StatusFailed, OrderRef: orderID.String()}, nil)

	mockDeduper := new(MockEventDeduper)
	mockDeduper.On("MarkEvent", ctx, "evt_3").Return(true, nil)

	mockOrderRepo := new(MockOrderRepository)
	mockTx := new(MockTx)
	mockOrderRepo.On("BeginTx", ctx).Return(mockTx, nil)
	mockOrderRepo.On("GetByIDForUpdate", ctx, mockTx, orderID).Return(order, []model.OrderItem{}, nil)
	mockOrderRepo.On("UpdateStatus", ctx, mockTx, orderID, model.OrderStatusFailed).Return(nil)
	mockTx.On("Commit", ctx).Return(nil)

	service := newTestOrderService(mockOrderRepo, new(MockCartRepository), mockProvider, mockDeduper)

	err := service.HandleWebhook(ctx, []byte("{}"), "sig")
	require.NoError(t, err)

	// Failed orders grant nothing and keep the cart intact.
	mockOrderRepo.AssertNotCalled(t, "CreateEntitlements", mock.Anything, mock.Anything, mock.Anything)
	mockOrderRepo.AssertNotCalled(t, "DeleteCartItems", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	mockOrderRepo.AssertExpectations(t)
}

func TestOrderService_HandleWebhook_UnknownOrderUnmarksEvent(t *testing.T) {
	ctx := context.Background()
	orderID := uuid.New()

	mockProvider := new(MockPaymentProvider)
	mockProvider.On("VerifyWebhook", mock.Anything, mock.Anything).
		Return(payment.Event{ID: "evt_4", Status: payment.StatusSucceeded, OrderRef: orderID.String()}, nil)

	mockDeduper := new(MockEventDeduper)
	mockDeduper.On("MarkEvent", ctx, "evt_4").Return(true, nil)
	mockDeduper.On("UnmarkEvent", ctx, "evt_4").Return(nil)

	mockOrderRepo := new(MockOrderRepository)
	mockTx := new(MockTx)
	mockOrderRepo.On("BeginTx", ctx).Return(mockTx, nil)
	mockOrderRepo.On("GetByIDForUpdate", ctx, mockTx, orderID).Return(nil, nil, nil)
	mockTx.On("Rollback", ctx).Return(nil)

	service := newTestOrderService(mockOrderRepo, new(MockCartRepository), mockProvider, mockDeduper)

	err := service.HandleWebhook(ctx, []byte("{}"), "sig")
	assert.ErrorIs(t, err, model.ErrOrderNotFound)

	mockDeduper.AssertExpectations(t)
}

func TestOrderService_GetOrder_WrongCustomer(t *testing.T) {
	ctx := context.Background()
	orderID := uuid.New()

	order := &model.Order{ID: orderID, CustomerID: uuid.New(), Status: model.OrderStatusPaid}

	mockOrderRepo := new(MockOrderRepository)
	mockOrderRepo.On("GetByID", ctx, orderID).Return(order, []model.OrderItem{}, nil)

	service := newTestOrderService(mockOrderRepo, new(MockCartRepository), new(MockPaymentProvider), new(MockEventDeduper))

	got, err := service.GetOrder(ctx, uuid.New(), orderID)
	require.NoError(t, err)
	assert.Nil(t, got)
}
