package service

import (
	"context"
	"fmt"
	"time"

	"photo-market/internal/model"
	"photo-market/internal/payment"
	"photo-market/internal/pricing"
	"photo-market/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// orderService implements OrderService.
type orderService struct {
	orderRepo      repository.OrderRepository
	cartRepo       repository.CartRepository
	provider       payment.Provider
	deduper        EventDeduper
	engine         *pricing.Engine
	entitlementTTL time.Duration
	logger         zerolog.Logger
}

// NewOrderService creates a new order service.
func NewOrderService(
	orderRepo repository.OrderRepository,
	cartRepo repository.CartRepository,
	provider payment.Provider,
	deduper EventDeduper,
	engine *pricing.Engine,
	entitlementTTL time.Duration,
	logger zerolog.Logger,
) OrderService {
	return &orderService{
		orderRepo:      orderRepo,
		cartRepo:       cartRepo,
		provider:       provider,
		deduper:        deduper,
		engine:         engine,
		entitlementTTL: entitlementTTL,
		logger:         logger.With().Str("service", "order").Logger(),
	}
}

// Checkout snapshots the customer's cart into a pending order and registers
// a payment intent for it. The intent is created before the transaction
// commits, so a provider failure leaves no orphaned order behind.
func (s *orderService) Checkout(ctx context.Context, customerID uuid.UUID) (*model.CheckoutResponse, error) {
	_, items, coupon, err := s.cartRepo.GetCartWithItems(ctx, customerID)
	if err != nil {
		s.logger.Error().Err(err).Str("customer_id", customerID.String()).Msg("failed to load cart")
		return nil, fmt.Errorf("failed to checkout: %w", err)
	}
	if len(items) == 0 {
		return nil, model.ErrEmptyCart
	}

	quote := s.engine.Quote(items, coupon, time.Now())
	if !quote.Total.IsPositive() {
		return nil, model.ErrNonPositiveTotal
	}

	tx, err := s.orderRepo.BeginTx(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to checkout: %w", err)
	}

	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	now := time.Now()
	order := &model.Order{
		ID:         uuid.New(),
		CustomerID: customerID,
		Total:      quote.Total,
		Status:     model.OrderStatusPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err = s.orderRepo.CreateOrder(ctx, tx, order); err != nil {
		s.logger.Error().Err(err).Str("order_id", order.ID.String()).Msg("failed to create order")
		return nil, fmt.Errorf("failed to checkout: %w", err)
	}

	orderItems := make([]model.OrderItem, len(items))
	for i, item := range items {
		orderItems[i] = model.OrderItem{
			ID:      uuid.New(),
			OrderID: order.ID,
			PhotoID: item.PhotoID,
			Price:   item.Price,
		}
	}

	if err = s.orderRepo.CreateOrderItems(ctx, tx, orderItems); err != nil {
		s.logger.Error().
			Err(err).
			Str("order_id", order.ID.String()).
			Int("item_count", len(orderItems)).
			Msg("failed to create order items")
		return nil, fmt.Errorf("failed to checkout: %w", err)
	}

	var intent payment.Intent
	if intent, err = s.provider.CreateIntent(ctx, quote.Total, order.ID.String()); err != nil {
		s.logger.Error().Err(err).Str("order_id", order.ID.String()).Msg("failed to create payment intent")
		return nil, fmt.Errorf("failed to checkout: %w", err)
	}

	if err = s.orderRepo.SetProviderIntent(ctx, tx, order.ID, intent.ProviderID); err != nil {
		s.logger.Error().Err(err).Str("order_id", order.ID.String()).Msg("failed to store payment intent")
		return nil, fmt.Errorf("failed to checkout: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		s.logger.Error().Err(err).Str("order_id", order.ID.String()).Msg("failed to commit transaction")
		return nil, fmt.Errorf("failed to checkout: %w", err)
	}

	s.logger.Info().
		Str("order_id", order.ID.String()).
		Str("intent_id", intent.ProviderID).
		Str("total", quote.Total.String()).
		Int("item_count", len(orderItems)).
		Msg("checkout created")

	return &model.CheckoutResponse{
		OrderID:      order.ID,
		ClientSecret: intent.ClientSecret,
	}, nil
}

// HandleWebhook processes a payment provider webhook delivery. Redelivered
// events and already-settled orders are acknowledged without side effects.
func (s *orderService) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	event, err := s.provider.VerifyWebhook(payload, signature)
	if err != nil {
		return model.ErrWebhookInvalid
	}

	if event.Status == payment.StatusIgnored {
		s.logger.Debug().Str("event_id", event.ID).Msg("ignoring non-terminal webhook event")
		return nil
	}

	fresh, err := s.deduper.MarkEvent(ctx, event.ID)
	if err != nil {
		// Dedup store failure must not drop the event; settlement is
		// idempotent below anyway.
		s.logger.Warn().Err(err).Str("event_id", event.ID).Msg("failed to mark webhook event")
	} else if !fresh {
		s.logger.Info().Str("event_id", event.ID).Msg("duplicate webhook event, skipping")
		return nil
	}

	if err := s.settle(ctx, event); err != nil {
		// Forget the event so the provider's retry can take another run.
		if delErr := s.deduper.UnmarkEvent(ctx, event.ID); delErr != nil {
			s.logger.Warn().Err(delErr).Str("event_id", event.ID).Msg("failed to unmark webhook event")
		}
		return err
	}
	return nil
}

// settle applies one verified terminal payment event to its order.
func (s *orderService) settle(ctx context.Context, event payment.Event) error {
	orderID, err := uuid.Parse(event.OrderRef)
	if err != nil {
		s.logger.Warn().
			Str("event_id", event.ID).
			Str("order_ref", event.OrderRef).
			Msg("webhook event carries malformed order reference")
		return model.ErrWebhookInvalid
	}

	tx, err := s.orderRepo.BeginTx(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to begin transaction")
		return fmt.Errorf("failed to settle order: %w", err)
	}

	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	order, items, err := s.orderRepo.GetByIDForUpdate(ctx, tx, orderID)
	if err != nil {
		s.logger.Error().Err(err).Str("order_id", orderID.String()).Msg("failed to lock order")
		return fmt.Errorf("failed to settle order: %w", err)
	}
	if order == nil {
		err = model.ErrOrderNotFound
		return err
	}

	target := model.OrderStatusPaid
	if event.Status == payment.StatusFailed {
		target = model.OrderStatusFailed
	}

	if order.Status == target {
		s.logger.Info().
			Str("order_id", orderID.String()).
			Str("status", string(order.Status)).
			Msg("order already settled, acknowledging")
		err = tx.Commit(ctx)
		return err
	}

	if !model.CanTransition(order.Status, target) {
		s.logger.Warn().
			Str("order_id", orderID.String()).
			Str("from", string(order.Status)).
			Str("to", string(target)).
			Msg("refusing invalid order status transition")
		err = tx.Commit(ctx)
		return err
	}

	if err = s.orderRepo.UpdateStatus(ctx, tx, orderID, target); err != nil {
		s.logger.Error().Err(err).Str("order_id", orderID.String()).Msg("failed to update order status")
		return fmt.Errorf("failed to settle order: %w", err)
	}

	if target == model.OrderStatusPaid {
		now := time.Now()
		entitlements := make([]model.Entitlement, len(items))
		photoIDs := make([]uuid.UUID, len(items))
		for i, item := range items {
			entitlements[i] = model.Entitlement{
				ID:          uuid.New(),
				CustomerID:  order.CustomerID,
				PhotoID:     item.PhotoID,
				PurchasedAt: now,
				ExpiresAt:   now.Add(s.entitlementTTL),
			}
			photoIDs[i] = item.PhotoID
		}

		if err = s.orderRepo.CreateEntitlements(ctx, tx, entitlements); err != nil {
			s.logger.Error().Err(err).Str("order_id", orderID.String()).Msg("failed to create entitlements")
			return fmt.Errorf("failed to settle order: %w", err)
		}

		if err = s.orderRepo.DeleteCartItems(ctx, tx, order.CustomerID, photoIDs); err != nil {
			s.logger.Error().Err(err).Str("order_id", orderID.String()).Msg("failed to clear cart items")
			return fmt.Errorf("failed to settle order: %w", err)
		}
	}

	if err = tx.Commit(ctx); err != nil {
		s.logger.Error().Err(err).Str("order_id", orderID.String()).Msg("failed to commit transaction")
		return fmt.Errorf("failed to settle order: %w", err)
	}

	s.logger.Info().
		Str("order_id", orderID.String()).
		Str("status", string(target)).
		Int("item_count", len(items)).
		Msg("order settled")

	return nil
}

// GetOrder retrieves one of the customer's orders.
func (s *orderService) GetOrder(ctx context.Context, customerID, orderID uuid.UUID) (*model.OrderResponse, error) {
	order, items, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		s.logger.Error().Err(err).Str("order_id", orderID.String()).Msg("failed to get order")
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	if order == nil || order.CustomerID != customerID {
		return nil, nil
	}

	return &model.OrderResponse{
		ID:        order.ID,
		Total:     order.Total,
		Status:    order.Status,
		CreatedAt: order.CreatedAt,
		Items:     items,
	}, nil
}

// ListPurchases retrieves the customer's paid orders, newest first.
func (s *orderService) ListPurchases(ctx context.Context, customerID uuid.UUID) ([]model.OrderResponse, error) {
	orders, err := s.orderRepo.ListPaidByCustomer(ctx, customerID)
	if err != nil {
		s.logger.Error().Err(err).Str("customer_id", customerID.String()).Msg("failed to list purchases")
		return nil, fmt.Errorf("failed to list purchases: %w", err)
	}
	return orders, nil
}

// ListSales retrieves paid order lines for the photographer's photos.
func (s *orderService) ListSales(ctx context.Context, photographerID uuid.UUID) ([]model.Sale, error) {
	sales, err := s.orderRepo.ListSalesByPhotographer(ctx, photographerID)
	if err != nil {
		s.logger.Error().Err(err).Str("photographer_id", photographerID.String()).Msg("failed to list sales")
		return nil, fmt.Errorf("failed to list sales: %w", err)
	}
	return sales, nil
}
