package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"photo-market/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// cartRepository implements the CartRepository interface using PostgreSQL.
type cartRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewCartRepository creates a new PostgreSQL-backed cart repository.
func NewCartRepository(pool *pgxpool.Pool, logger zerolog.Logger) CartRepository {
	return &cartRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "cart").Logger(),
	}
}

func (r *cartRepository) GetOrCreateCart(ctx context.Context, customerID uuid.UUID) (*model.Cart, error) {
	// The unique customer_id constraint makes the insert race-safe; a
	// concurrent creator wins and we read their row back.
	query := `
		INSERT INTO carts (id, customer_id, created_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (customer_id) DO UPDATE SET customer_id = EXCLUDED.customer_id
		RETURNING id, customer_id, coupon_id, created_at
	`

	var cart model.Cart
	err := r.pool.QueryRow(ctx, query, uuid.New(), customerID, time.Now()).Scan(
		&cart.ID, &cart.CustomerID, &cart.CouponID, &cart.CreatedAt)
	if err != nil {
		r.logger.Error().Err(err).Str("customer_id", customerID.String()).Msg("failed to get or create cart")
		return nil, fmt.Errorf("failed to get or create cart: %w", err)
	}

	return &cart, nil
}

func (r *cartRepository) GetCartWithItems(ctx context.Context, customerID uuid.UUID) (*model.Cart, []model.CartItem, *model.Coupon, error) {
	cart, err := r.GetOrCreateCart(ctx, customerID)
	if err != nil {
		return nil, nil, nil, err
	}

	itemsQuery := `
		SELECT ci.id, ci.cart_id, ci.photo_id, p.price, a.photographer_id, p.caption, p.watermark_key, ci.added_at
		FROM cart_items ci
		JOIN photos p ON p.id = ci.photo_id
		JOIN albums a ON a.id = p.album_id
		WHERE ci.cart_id = $1
		ORDER BY ci.added_at
	`

	rows, err := r.pool.Query(ctx, itemsQuery, cart.ID)
	if err != nil {
		r.logger.Error().Err(err).Str("cart_id", cart.ID.String()).Msg("failed to query cart items")
		return nil, nil, nil, fmt.Errorf("failed to query cart items: %w", err)
	}
	defer rows.Close()

	var items []model.CartItem
	for rows.Next() {
		var item model.CartItem
		if err := rows.Scan(
			&item.ID, &item.CartID, &item.PhotoID, &item.Price,
			&item.PhotographerID, &item.Caption, &item.WatermarkKey, &item.AddedAt); err != nil {
			return nil, nil, nil, fmt.Errorf("failed to scan cart item: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, nil, nil, fmt.Errorf("error iterating cart items: %w", err)
	}

	var coupon *model.Coupon
	if cart.CouponID != nil {
		coupon, err = r.getCouponByID(ctx, *cart.CouponID)
		if err != nil {
			return nil, nil, nil, err
		}
	}

	return cart, items, coupon, nil
}

// withCartLock serializes cart mutations on the cart row itself.
func (r *cartRepository) withCartLock(ctx context.Context, cartID uuid.UUID, fn func(tx pgx.Tx) error) (err error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
				r.logger.Error().Err(rbErr).Msg("failed to rollback cart transaction")
			}
		}
	}()

	if _, err = tx.Exec(ctx, `SELECT 1 FROM carts WHERE id = $1 FOR UPDATE`, cartID); err != nil {
		return fmt.Errorf("failed to lock cart: %w", err)
	}

	if err = fn(tx); err != nil {
		return err
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit cart transaction: %w", err)
	}

	return nil
}

func (r *cartRepository) AddItem(ctx context.Context, cartID, photoID uuid.UUID) (bool, error) {
	var added bool
	err := r.withCartLock(ctx, cartID, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			INSERT INTO cart_items (id, cart_id, photo_id, added_at)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (cart_id, photo_id) DO NOTHING
		`, uuid.New(), cartID, photoID, time.Now())
		if err != nil {
			return fmt.Errorf("failed to insert cart item: %w", err)
		}
		added = tag.RowsAffected() > 0
		return nil
	})
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("cart_id", cartID.String()).
			Str("photo_id", photoID.String()).
			Msg("failed to add cart item")
		return false, err
	}

	return added, nil
}

func (r *cartRepository) RemoveItem(ctx context.Context, customerID, itemID uuid.UUID) (bool, error) {
	// The join restricts deletion to the customer's own cart so foreign
	// item ids come back as "not found" rather than leaking existence.
	tag, err := r.pool.Exec(ctx, `
		DELETE FROM cart_items ci
		USING carts c
		WHERE ci.id = $1 AND ci.cart_id = c.id AND c.customer_id = $2
	`, itemID, customerID)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("item_id", itemID.String()).
			Msg("failed to remove cart item")
		return false, fmt.Errorf("failed to remove cart item: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

func (r *cartRepository) SetCoupon(ctx context.Context, cartID uuid.UUID, couponID *uuid.UUID) error {
	err := r.withCartLock(ctx, cartID, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `UPDATE carts SET coupon_id = $2 WHERE id = $1`, cartID, couponID); err != nil {
			return fmt.Errorf("failed to set cart coupon: %w", err)
		}
		return nil
	})
	if err != nil {
		r.logger.Error().Err(err).Str("cart_id", cartID.String()).Msg("failed to set coupon")
		return err
	}
	return nil
}

const couponColumns = `id, code, percent_off, active, expires_at, photographer_id, created_at`

func scanCoupon(row pgx.Row) (*model.Coupon, error) {
	var coupon model.Coupon
	err := row.Scan(
		&coupon.ID, &coupon.Code, &coupon.PercentOff, &coupon.Active,
		&coupon.ExpiresAt, &coupon.PhotographerID, &coupon.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &coupon, nil
}

func (r *cartRepository) GetCouponByCode(ctx context.Context, code string) (*model.Coupon, error) {
	query := `SELECT ` + couponColumns + ` FROM coupons WHERE LOWER(code) = LOWER($1)`

	coupon, err := scanCoupon(r.pool.QueryRow(ctx, query, code))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error().Err(err).Msg("failed to query coupon by code")
		return nil, fmt.Errorf("failed to query coupon: %w", err)
	}

	return coupon, nil
}

func (r *cartRepository) getCouponByID(ctx context.Context, id uuid.UUID) (*model.Coupon, error) {
	query := `SELECT ` + couponColumns + ` FROM coupons WHERE id = $1`

	coupon, err := scanCoupon(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query coupon: %w", err)
	}

	return coupon, nil
}

func (r *cartRepository) CreateCoupon(ctx context.Context, coupon *model.Coupon) error {
	query := `
		INSERT INTO coupons (id, code, percent_off, active, expires_at, photographer_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.pool.Exec(ctx, query,
		coupon.ID, coupon.Code, coupon.PercentOff, coupon.Active,
		coupon.ExpiresAt, coupon.PhotographerID, coupon.CreatedAt)
	if err != nil {
		r.logger.Error().Err(err).Str("code", coupon.Code).Msg("failed to create coupon")
		return fmt.Errorf("failed to create coupon: %w", err)
	}

	return nil
}

func (r *cartRepository) ListCouponsByPhotographer(ctx context.Context, photographerID uuid.UUID) ([]model.Coupon, error) {
	query := `SELECT ` + couponColumns + ` FROM coupons WHERE photographer_id = $1 ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, photographerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query coupons: %w", err)
	}
	defer rows.Close()

	var coupons []model.Coupon
	for rows.Next() {
		coupon, err := scanCoupon(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan coupon: %w", err)
		}
		coupons = append(coupons, *coupon)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating coupons: %w", err)
	}

	return coupons, nil
}
