package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"photo-market/internal/blob"
	"photo-market/internal/model"
	"photo-market/internal/pricing"
	"photo-market/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// cartService implements CartService.
type cartService struct {
	cartRepo  repository.CartRepository
	mediaRepo repository.MediaRepository
	store     blob.Store
	engine    *pricing.Engine
	logger    zerolog.Logger
}

// NewCartService creates a new cart service.
func NewCartService(
	cartRepo repository.CartRepository,
	mediaRepo repository.MediaRepository,
	store blob.Store,
	engine *pricing.Engine,
	logger zerolog.Logger,
) CartService {
	return &cartService{
		cartRepo:  cartRepo,
		mediaRepo: mediaRepo,
		store:     store,
		engine:    engine,
		logger:    logger.With().Str("service", "cart").Logger(),
	}
}

// GetCart retrieves the customer's priced cart, creating it lazily.
func (s *cartService) GetCart(ctx context.Context, customerID uuid.UUID) (*model.CartResponse, error) {
	return s.pricedCart(ctx, customerID)
}

// AddItem puts a photo in the cart. The bool reports whether a new item
// landed; a duplicate add leaves the cart unchanged.
func (s *cartService) AddItem(ctx context.Context, customerID, photoID uuid.UUID) (*model.CartResponse, bool, error) {
	photo, err := s.mediaRepo.GetPurchasablePhoto(ctx, photoID)
	if err != nil {
		s.logger.Error().Err(err).Str("photo_id", photoID.String()).Msg("failed to load photo")
		return nil, false, fmt.Errorf("failed to add cart item: %w", err)
	}
	if photo == nil {
		return nil, false, model.ErrNotPurchasable
	}

	cart, err := s.cartRepo.GetOrCreateCart(ctx, customerID)
	if err != nil {
		s.logger.Error().Err(err).Str("customer_id", customerID.String()).Msg("failed to load cart")
		return nil, false, fmt.Errorf("failed to add cart item: %w", err)
	}

	added, err := s.cartRepo.AddItem(ctx, cart.ID, photoID)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("cart_id", cart.ID.String()).
			Str("photo_id", photoID.String()).
			Msg("failed to add cart item")
		return nil, false, fmt.Errorf("failed to add cart item: %w", err)
	}
	if !added {
		s.logger.Debug().
			Str("cart_id", cart.ID.String()).
			Str("photo_id", photoID.String()).
			Msg("photo already in cart")
	}

	response, err := s.pricedCart(ctx, customerID)
	if err != nil {
		return nil, false, err
	}
	return response, added, nil
}

// RemoveItem takes an item out of the cart.
func (s *cartService) RemoveItem(ctx context.Context, customerID, itemID uuid.UUID) (*model.CartResponse, error) {
	removed, err := s.cartRepo.RemoveItem(ctx, customerID, itemID)
	if err != nil {
		s.logger.Error().Err(err).Str("item_id", itemID.String()).Msg("failed to remove cart item")
		return nil, fmt.Errorf("failed to remove cart item: %w", err)
	}
	if !removed {
		return nil, model.ErrCartItemNotFound
	}

	return s.pricedCart(ctx, customerID)
}

// ApplyCoupon attaches a coupon to the cart; an empty code detaches the
// current one.
func (s *cartService) ApplyCoupon(ctx context.Context, customerID uuid.UUID, code string) (*model.CartResponse, error) {
	cart, items, _, err := s.cartRepo.GetCartWithItems(ctx, customerID)
	if err != nil {
		s.logger.Error().Err(err).Str("customer_id", customerID.String()).Msg("failed to load cart")
		return nil, fmt.Errorf("failed to apply coupon: %w", err)
	}

	code = strings.TrimSpace(code)
	if code == "" {
		if err := s.cartRepo.SetCoupon(ctx, cart.ID, nil); err != nil {
			s.logger.Error().Err(err).Str("cart_id", cart.ID.String()).Msg("failed to clear coupon")
			return nil, fmt.Errorf("failed to clear coupon: %w", err)
		}
		return s.pricedCart(ctx, customerID)
	}

	coupon, err := s.cartRepo.GetCouponByCode(ctx, code)
	if err != nil {
		s.logger.Error().Err(err).Str("code", code).Msg("failed to load coupon")
		return nil, fmt.Errorf("failed to apply coupon: %w", err)
	}
	if coupon == nil {
		return nil, model.ErrCouponNotFound
	}
	if !coupon.IsValid(time.Now()) {
		return nil, model.ErrCouponExpired
	}

	// A photographer-scoped coupon only applies when every cart item
	// belongs to that photographer. One foreign item rejects the coupon.
	if coupon.PhotographerID != nil {
		for _, item := range items {
			if item.PhotographerID != *coupon.PhotographerID {
				return nil, model.ErrCouponScopeMismatch
			}
		}
	}

	if err := s.cartRepo.SetCoupon(ctx, cart.ID, &coupon.ID); err != nil {
		s.logger.Error().
			Err(err).
			Str("cart_id", cart.ID.String()).
			Str("coupon_id", coupon.ID.String()).
			Msg("failed to set coupon")
		return nil, fmt.Errorf("failed to apply coupon: %w", err)
	}

	s.logger.Info().
		Str("cart_id", cart.ID.String()).
		Str("code", coupon.Code).
		Msg("coupon applied")

	return s.pricedCart(ctx, customerID)
}

// pricedCart loads the cart and prices it.
func (s *cartService) pricedCart(ctx context.Context, customerID uuid.UUID) (*model.CartResponse, error) {
	cart, items, coupon, err := s.cartRepo.GetCartWithItems(ctx, customerID)
	if err != nil {
		s.logger.Error().Err(err).Str("customer_id", customerID.String()).Msg("failed to load cart")
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}

	quote := s.engine.Quote(items, coupon, time.Now())

	views := make([]model.CartItemView, len(items))
	for i, item := range items {
		view := model.CartItemView{
			ID:      item.ID,
			PhotoID: item.PhotoID,
			Caption: item.Caption,
			Price:   item.Price,
			AddedAt: item.AddedAt,
		}
		if item.WatermarkKey != nil {
			url := s.store.PublicURL(*item.WatermarkKey)
			view.PreviewURL = &url
		}
		views[i] = view
	}

	return &model.CartResponse{
		ID:       cart.ID,
		Items:    views,
		Coupon:   coupon,
		Subtotal: quote.Subtotal,
		Discount: quote.Discount,
		Total:    quote.Total,
	}, nil
}
