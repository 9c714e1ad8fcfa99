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

// orderRepository implements the OrderRepository interface using PostgreSQL.
type orderRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewOrderRepository creates a new PostgreSQL-backed order repository.
func NewOrderRepository(pool *pgxpool.Pool, logger zerolog.Logger) OrderRepository {
	return &orderRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "order").Logger(),
	}
}

// BeginTx starts a new database transaction.
func (r *orderRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return tx, nil
}

// CreateOrder inserts a new order within the provided transaction.
func (r *orderRepository) CreateOrder(ctx context.Context, tx pgx.Tx, order *model.Order) error {
	query := `
		INSERT INTO orders (id, customer_id, total, status, provider_intent_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := tx.Exec(ctx, query,
		order.ID, order.CustomerID, order.Total, order.Status,
		order.ProviderIntentID, order.CreatedAt, order.UpdatedAt)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("order_id", order.ID.String()).
			Msg("failed to create order")
		return fmt.Errorf("failed to create order: %w", err)
	}

	r.logger.Debug().
		Str("order_id", order.ID.String()).
		Msg("order created successfully")

	return nil
}

// CreateOrderItems inserts multiple order items within the provided transaction.
func (r *orderRepository) CreateOrderItems(ctx context.Context, tx pgx.Tx, items []model.OrderItem) error {
	if len(items) == 0 {
		return nil
	}

	query := `
		INSERT INTO order_items (id, order_id, photo_id, price)
		VALUES ($1, $2, $3, $4)
	`

	batch := &pgx.Batch{}
	for _, item := range items {
		batch.Queue(query, item.ID, item.OrderID, item.PhotoID, item.Price)
	}

	results := tx.SendBatch(ctx, batch)
	defer results.Close()

	for i := 0; i < len(items); i++ {
		_, err := results.Exec()
		if err != nil {
			r.logger.Error().
				Err(err).
				Str("order_id", items[i].OrderID.String()).
				Str("photo_id", items[i].PhotoID.String()).
				Msg("failed to create order item")
			return fmt.Errorf("failed to create order item: %w", err)
		}
	}

	r.logger.Debug().
		Int("count", len(items)).
		Msg("order items created successfully")

	return nil
}

// SetProviderIntent stores the payment provider's intent reference.
func (r *orderRepository) SetProviderIntent(ctx context.Context, tx pgx.Tx, orderID uuid.UUID, intentID string) error {
	_, err := tx.Exec(ctx,
		`UPDATE orders SET provider_intent_id = $2, updated_at = $3 WHERE id = $1`,
		orderID, intentID, time.Now())
	if err != nil {
		r.logger.Error().Err(err).Str("order_id", orderID.String()).Msg("failed to set provider intent")
		return fmt.Errorf("failed to set provider intent: %w", err)
	}
	return nil
}

const orderColumns = `id, customer_id, total, status, provider_intent_id, created_at, updated_at`

func scanOrder(row pgx.Row) (*model.Order, error) {
	var order model.Order
	err := row.Scan(
		&order.ID, &order.CustomerID, &order.Total, &order.Status,
		&order.ProviderIntentID, &order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) itemsForOrder(ctx context.Context, q interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}, orderID uuid.UUID) ([]model.OrderItem, error) {
	rows, err := q.Query(ctx,
		`SELECT id, order_id, photo_id, price FROM order_items WHERE order_id = $1 ORDER BY id`, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to query order items: %w", err)
	}
	defer rows.Close()

	var items []model.OrderItem
	for rows.Next() {
		var item model.OrderItem
		if err := rows.Scan(&item.ID, &item.OrderID, &item.PhotoID, &item.Price); err != nil {
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating order items: %w", err)
	}

	return items, nil
}

// GetByID retrieves an order by its ID along with its items.
func (r *orderRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Order, []model.OrderItem, error) {
	order, err := scanOrder(r.pool.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Str("order_id", id.String()).Msg("order not found")
			return nil, nil, nil
		}
		r.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to query order")
		return nil, nil, fmt.Errorf("failed to query order: %w", err)
	}

	items, err := r.itemsForOrder(ctx, r.pool, id)
	if err != nil {
		return nil, nil, err
	}

	return order, items, nil
}

// GetByIDForUpdate locks and retrieves an order within a transaction.
func (r *orderRepository) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*model.Order, []model.OrderItem, error) {
	order, err := scanOrder(tx.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, nil
		}
		r.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to lock order")
		return nil, nil, fmt.Errorf("failed to lock order: %w", err)
	}

	items, err := r.itemsForOrder(ctx, tx, id)
	if err != nil {
		return nil, nil, err
	}

	return order, items, nil
}

// UpdateStatus sets the order status within a transaction.
func (r *orderRepository) UpdateStatus(ctx context.Context, tx pgx.Tx, id uuid.UUID, status model.OrderStatus) error {
	_, err := tx.Exec(ctx,
		`UPDATE orders SET status = $2, updated_at = $3 WHERE id = $1`, id, status, time.Now())
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("order_id", id.String()).
			Str("status", string(status)).
			Msg("failed to update order status")
		return fmt.Errorf("failed to update order status: %w", err)
	}
	return nil
}

// CreateEntitlements inserts an entitlement batch within a transaction.
func (r *orderRepository) CreateEntitlements(ctx context.Context, tx pgx.Tx, entitlements []model.Entitlement) error {
	if len(entitlements) == 0 {
		return nil
	}

	query := `
		INSERT INTO entitlements (id, customer_id, photo_id, purchased_at, expires_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	batch := &pgx.Batch{}
	for _, e := range entitlements {
		batch.Queue(query, e.ID, e.CustomerID, e.PhotoID, e.PurchasedAt, e.ExpiresAt)
	}

	results := tx.SendBatch(ctx, batch)
	defer results.Close()

	for i := 0; i < len(entitlements); i++ {
		if _, err := results.Exec(); err != nil {
			r.logger.Error().
				Err(err).
				Str("photo_id", entitlements[i].PhotoID.String()).
				Msg("failed to create entitlement")
			return fmt.Errorf("failed to create entitlement: %w", err)
		}
	}

	return nil
}

// DeleteCartItems removes the given photos from the customer's cart within a transaction.
func (r *orderRepository) DeleteCartItems(ctx context.Context, tx pgx.Tx, customerID uuid.UUID, photoIDs []uuid.UUID) error {
	if len(photoIDs) == 0 {
		return nil
	}

	_, err := tx.Exec(ctx, `
		DELETE FROM cart_items ci
		USING carts c
		WHERE ci.cart_id = c.id AND c.customer_id = $1 AND ci.photo_id = ANY($2)
	`, customerID, photoIDs)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("customer_id", customerID.String()).
			Msg("failed to clear fulfilled cart items")
		return fmt.Errorf("failed to clear fulfilled cart items: %w", err)
	}

	return nil
}

// GetValidEntitlement retrieves an unexpired entitlement for the customer/photo pair.
func (r *orderRepository) GetValidEntitlement(ctx context.Context, customerID, photoID uuid.UUID, now time.Time) (*model.Entitlement, error) {
	query := `
		SELECT id, customer_id, photo_id, purchased_at, expires_at
		FROM entitlements
		WHERE customer_id = $1 AND photo_id = $2 AND expires_at > $3
		ORDER BY expires_at DESC
		LIMIT 1
	`

	var e model.Entitlement
	err := r.pool.QueryRow(ctx, query, customerID, photoID, now).Scan(
		&e.ID, &e.CustomerID, &e.PhotoID, &e.PurchasedAt, &e.ExpiresAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error().Err(err).Msg("failed to query entitlement")
		return nil, fmt.Errorf("failed to query entitlement: %w", err)
	}

	return &e, nil
}

// ListPaidByCustomer retrieves the customer's paid orders, newest first.
func (r *orderRepository) ListPaidByCustomer(ctx context.Context, customerID uuid.UUID) ([]model.OrderResponse, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE customer_id = $1 AND status = $2 ORDER BY created_at DESC`,
		customerID, model.OrderStatusPaid)
	if err != nil {
		return nil, fmt.Errorf("failed to query paid orders: %w", err)
	}
	defer rows.Close()

	var orders []model.OrderResponse
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, model.OrderResponse{
			ID:        order.ID,
			Total:     order.Total,
			Status:    order.Status,
			CreatedAt: order.CreatedAt,
		})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating orders: %w", err)
	}

	for i := range orders {
		items, err := r.itemsForOrder(ctx, r.pool, orders[i].ID)
		if err != nil {
			return nil, err
		}
		orders[i].Items = items
	}

	return orders, nil
}

// ListSalesByPhotographer retrieves paid order lines for the photographer's photos.
func (r *orderRepository) ListSalesByPhotographer(ctx context.Context, photographerID uuid.UUID) ([]model.Sale, error) {
	query := `
		SELECT oi.id, oi.photo_id, p.caption, a.title, oi.price, o.created_at, o.customer_id
		FROM order_items oi
		JOIN orders o ON o.id = oi.order_id
		JOIN photos p ON p.id = oi.photo_id
		JOIN albums a ON a.id = p.album_id
		WHERE a.photographer_id = $1 AND o.status = $2
		ORDER BY o.created_at DESC
	`

	rows, err := r.pool.Query(ctx, query, photographerID, model.OrderStatusPaid)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query photographer sales")
		return nil, fmt.Errorf("failed to query photographer sales: %w", err)
	}
	defer rows.Close()

	var sales []model.Sale
	for rows.Next() {
		var sale model.Sale
		if err := rows.Scan(
			&sale.OrderItemID, &sale.PhotoID, &sale.Caption, &sale.AlbumTitle,
			&sale.Price, &sale.OrderedAt, &sale.CustomerID); err != nil {
			return nil, fmt.Errorf("failed to scan sale: %w", err)
		}
		sales = append(sales, sale)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sales: %w", err)
	}

	return sales, nil
}
