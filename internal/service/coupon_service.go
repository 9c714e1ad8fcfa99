package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"photo-market/internal/model"
	"photo-market/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// couponService implements CouponService.
type couponService struct {
	cartRepo repository.CartRepository
	logger   zerolog.Logger
}

// NewCouponService creates a new coupon service.
func NewCouponService(cartRepo repository.CartRepository, logger zerolog.Logger) CouponService {
	return &couponService{
		cartRepo: cartRepo,
		logger:   logger.With().Str("service", "coupon").Logger(),
	}
}

var couponHundred = decimal.NewFromInt(100)

// CreateCoupon creates a coupon. Photographers may only create coupons
// scoped to themselves; platform-wide coupons require an admin.
func (s *couponService) CreateCoupon(ctx context.Context, actor model.Actor, req *model.CouponRequest) (*model.Coupon, error) {
	if req == nil {
		return nil, model.NewDomainError(model.ErrCodeMissingField, "Coupon payload is required")
	}

	code := strings.ToUpper(strings.TrimSpace(req.Code))
	if code == "" {
		return nil, model.NewDomainError(model.ErrCodeMissingField, "Coupon code is required")
	}
	if req.PercentOff.LessThanOrEqual(decimal.Zero) || req.PercentOff.GreaterThan(couponHundred) {
		return nil, model.NewDomainError(model.ErrCodeMissingField, "Percent off must be between 0 and 100")
	}

	scope := req.PhotographerID
	switch actor.Role {
	case model.RoleAdmin:
		// Admins may scope a coupon anywhere, including platform-wide.
	case model.RolePhotographer:
		if scope == nil || *scope != actor.ID {
			return nil, model.ErrNotOwner
		}
	default:
		return nil, model.ErrNotOwner
	}

	coupon := &model.Coupon{
		ID:             uuid.New(),
		Code:           code,
		PercentOff:     req.PercentOff,
		Active:         true,
		ExpiresAt:      req.ExpiresAt,
		PhotographerID: scope,
		CreatedAt:      time.Now(),
	}

	if err := s.cartRepo.CreateCoupon(ctx, coupon); err != nil {
		s.logger.Error().Err(err).Str("code", code).Msg("failed to create coupon")
		return nil, fmt.Errorf("failed to create coupon: %w", err)
	}

	s.logger.Info().
		Str("coupon_id", coupon.ID.String()).
		Str("code", code).
		Msg("coupon created")

	return coupon, nil
}

// ListCoupons retrieves the acting photographer's coupons.
func (s *couponService) ListCoupons(ctx context.Context, actor model.Actor) ([]model.Coupon, error) {
	coupons, err := s.cartRepo.ListCouponsByPhotographer(ctx, actor.ID)
	if err != nil {
		s.logger.Error().Err(err).Str("photographer_id", actor.ID.String()).Msg("failed to list coupons")
		return nil, fmt.Errorf("failed to list coupons: %w", err)
	}
	return coupons, nil
}
