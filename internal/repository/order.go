package repository

import (
	"context"
	"encoding/json"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mealdash/order-service/internal/domain/order"
)

// Listing limits. A non-positive limit falls back to the default; anything
// above the maximum is clamped so a single request can never page unbounded.
const (
	DefaultListLimit = 20
	MaxListLimit     = 100
)

const (
	createOrderSQL = `INSERT INTO orders
		(id, user_id, restaurant_id, items, status, total_price, delivery_address, special_instructions, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	getOrderSQL = `SELECT id, user_id, restaurant_id, items, status, total_price, delivery_address, special_instructions, created_at, updated_at
		FROM orders WHERE id = $1`

	updateOrderSQL = `UPDATE orders
		SET items = $2, status = $3, total_price = $4, delivery_address = $5, special_instructions = $6, updated_at = $7
		WHERE id = $1`

	deleteOrderSQL = `DELETE FROM orders WHERE id = $1`

	listByUserSQL = `SELECT id, user_id, restaurant_id, items, status, total_price, delivery_address, special_instructions, created_at, updated_at,
		COUNT(*) OVER() AS total
		FROM orders WHERE user_id = $1
		ORDER BY created_at DESC LIMIT $2 OFFSET $3`

	listByRestaurantSQL = `SELECT id, user_id, restaurant_id, items, status, total_price, delivery_address, special_instructions, created_at, updated_at,
		COUNT(*) OVER() AS total
		FROM orders WHERE restaurant_id = $1
		ORDER BY created_at DESC LIMIT $2 OFFSET $3`

	countByUserSQL       = `SELECT COUNT(*) FROM orders WHERE user_id = $1`
	countByRestaurantSQL = `SELECT COUNT(*) FROM orders WHERE restaurant_id = $1`
)

var _ order.Repository = (*OrderRepository)(nil)

// OrderRepository implements order.Repository backed by PostgreSQL. Each order
// is a single row; items live in a JSONB column so every write is a one-row
// statement.
type OrderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository returns an OrderRepository that uses the given pool.
func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// Create persists a new order. A unique-violation on the primary key is
// reported as *order.DuplicateIDError.
func (r *OrderRepository) Create(ctx context.Context, o order.Order) error {
	itemsJSON, err := json.Marshal(o.Items)
	if err != nil {
		return errors.Wrap(err, "marshal order items")
	}

	_, err = r.pool.Exec(ctx, createOrderSQL,
		o.ID, o.UserID, o.RestaurantID, itemsJSON, string(o.Status),
		o.TotalPrice, o.DeliveryAddress, nullable(o.SpecialInstructions),
		o.CreatedAt, o.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return &order.DuplicateIDError{ID: o.ID}
		}
		return errors.Wrapf(err, "create order %s", o.ID)
	}
	return nil
}

// GetByID returns the order or order.ErrNotFound for an absent row.
func (r *OrderRepository) GetByID(ctx context.Context, id uuid.UUID) (order.Order, error) {
	rows, err := r.pool.Query(ctx, getOrderSQL, id)
	if err != nil {
		return order.Order{}, errors.Wrapf(err, "get order %s", id)
	}

	o, err := pgx.CollectExactlyOneRow(rows, scanOrder)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return order.Order{}, order.ErrNotFound
		}
		return order.Order{}, errors.Wrapf(err, "get order %s", id)
	}
	return o, nil
}

// Update replaces the full row by identifier and reports order.ErrNotFound
// when no row matched.
func (r *OrderRepository) Update(ctx context.Context, o order.Order) error {
	itemsJSON, err := json.Marshal(o.Items)
	if err != nil {
		return errors.Wrap(err, "marshal order items")
	}

	tag, err := r.pool.Exec(ctx, updateOrderSQL,
		o.ID, itemsJSON, string(o.Status), o.TotalPrice,
		o.DeliveryAddress, nullable(o.SpecialInstructions), o.UpdatedAt,
	)
	if err != nil {
		return errors.Wrapf(err, "update order %s", o.ID)
	}
	if tag.RowsAffected() == 0 {
		return order.ErrNotFound
	}
	return nil
}

// Delete removes the row and reports whether anything was deleted.
func (r *OrderRepository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := r.pool.Exec(ctx, deleteOrderSQL, id)
	if err != nil {
		return false, errors.Wrapf(err, "delete order %s", id)
	}
	return tag.RowsAffected() > 0, nil
}

// ListByUser returns a page of the user's orders, newest first.
func (r *OrderRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) (order.Page, error) {
	return r.list(ctx, listByUserSQL, countByUserSQL, userID, limit, offset)
}

// ListByRestaurant returns a page of the restaurant's orders, newest first.
func (r *OrderRepository) ListByRestaurant(ctx context.Context, restaurantID uuid.UUID, limit, offset int) (order.Page, error) {
	return r.list(ctx, listByRestaurantSQL, countByRestaurantSQL, restaurantID, limit, offset)
}

func (r *OrderRepository) list(ctx context.Context, query, countQuery string, key uuid.UUID, limit, offset int) (order.Page, error) {
	limit = clampLimit(limit)
	if offset < 0 {
		offset = 0
	}

	rows, err := r.pool.Query(ctx, query, key, limit, offset)
	if err != nil {
		return order.Page{}, errors.Wrap(err, "list orders")
	}
	defer rows.Close()

	var page order.Page
	for rows.Next() {
		o, total, err := scanOrderWithTotal(rows)
		if err != nil {
			return order.Page{}, errors.Wrap(err, "scan order")
		}
		page.Orders = append(page.Orders, o)
		page.Total = total
	}
	if err := rows.Err(); err != nil {
		return order.Page{}, errors.Wrap(err, "list orders")
	}

	// COUNT(*) OVER() only reaches us through scanned rows. An empty window
	// (offset past the last row) still needs the real total, so count it
	// separately.
	if len(page.Orders) == 0 {
		if err := r.pool.QueryRow(ctx, countQuery, key).Scan(&page.Total); err != nil {
			return order.Page{}, errors.Wrap(err, "count orders")
		}
	}
	return page, nil
}

func clampLimit(limit int) int {
	switch {
	case limit < 1:
		return DefaultListLimit
	case limit > MaxListLimit:
		return MaxListLimit
	default:
		return limit
	}
}

func scanOrder(row pgx.CollectableRow) (order.Order, error) {
	var (
		o            order.Order
		itemsJSON    []byte
		status       string
		instructions *string
	)
	err := row.Scan(
		&o.ID, &o.UserID, &o.RestaurantID, &itemsJSON, &status,
		&o.TotalPrice, &o.DeliveryAddress, &instructions,
		&o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return order.Order{}, err
	}
	return assembleOrder(o, itemsJSON, status, instructions)
}

func scanOrderWithTotal(rows pgx.Rows) (order.Order, int, error) {
	var (
		o            order.Order
		itemsJSON    []byte
		status       string
		instructions *string
		total        int
	)
	err := rows.Scan(
		&o.ID, &o.UserID, &o.RestaurantID, &itemsJSON, &status,
		&o.TotalPrice, &o.DeliveryAddress, &instructions,
		&o.CreatedAt, &o.UpdatedAt, &total,
	)
	if err != nil {
		return order.Order{}, 0, err
	}
	o, err = assembleOrder(o, itemsJSON, status, instructions)
	return o, total, err
}

func assembleOrder(o order.Order, itemsJSON []byte, status string, instructions *string) (order.Order, error) {
	if err := json.Unmarshal(itemsJSON, &o.Items); err != nil {
		return order.Order{}, errors.Wrap(err, "unmarshal order items")
	}
	o.Status = order.Status(status)
	if instructions != nil {
		o.SpecialInstructions = *instructions
	}
	return o, nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
