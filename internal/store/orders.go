package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/safar/stonecart/internal/database"
	"github.com/safar/stonecart/internal/models"
	"github.com/shopspring/decimal"
)

const orderColumns = `id, user_id, status, shipping_address, payment_method, subtotal, shipping, tax, total, created_at`

func scanOrder(row rowScanner) (*models.Order, error) {
	order := &models.Order{}
	err := row.Scan(
		&order.ID,
		&order.UserID,
		&order.Status,
		&order.ShippingAddress,
		&order.PaymentMethod,
		&order.Subtotal,
		&order.Shipping,
		&order.Tax,
		&order.Total,
		&order.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return order, nil
}

// InsertOrder writes the order header. ID and Status are filled in when unset;
// CreatedAt is taken from the database.
func InsertOrder(ctx context.Context, db DBTX, order *models.Order) error {
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	if order.Status == "" {
		order.Status = models.OrderStatusPending
	}

	err := db.QueryRowContext(ctx,
		`INSERT INTO orders (id, user_id, status, shipping_address, payment_method, subtotal, shipping, tax, total, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW())
		 RETURNING created_at`,
		order.ID,
		order.UserID,
		order.Status,
		order.ShippingAddress,
		order.PaymentMethod,
		order.Subtotal,
		order.Shipping,
		order.Tax,
		order.Total,
	).Scan(&order.CreatedAt)
	if err != nil {
		if _, ok := database.IsForeignKeyViolation(err); ok {
			return database.ErrUserNotFound
		}
		return fmt.Errorf("create order: %w", err)
	}

	return nil
}

// InsertOrderItem stores the line with the price it was sold at.
func InsertOrderItem(ctx context.Context, db DBTX, item *models.OrderItem) error {
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}

	err := db.QueryRowContext(ctx,
		`INSERT INTO order_items (id, order_id, product_id, quantity, price, color, size, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
		 RETURNING created_at`,
		item.ID, item.OrderID, item.ProductID, item.Quantity, item.Price, item.Color, item.Size,
	).Scan(&item.CreatedAt)
	if err != nil {
		if constraint, ok := database.IsForeignKeyViolation(err); ok && constraint == "order_items_product_id_fkey" {
			return fmt.Errorf("%w: %s", database.ErrProductNotFound, item.ProductID)
		}
		return fmt.Errorf("create order item: %w", err)
	}

	return nil
}

func GetOrder(ctx context.Context, db DBTX, id uuid.UUID) (*models.Order, error) {
	order, err := scanOrder(db.QueryRowContext(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, database.ErrOrderNotFound
		}
		return nil, fmt.Errorf("get order: %w", err)
	}

	items, err := ListOrderItems(ctx, db, []uuid.UUID{id})
	if err != nil {
		return nil, err
	}
	order.Items = items[id]
	if order.Items == nil {
		order.Items = []models.OrderItem{}
	}

	return order, nil
}

// ListOrderItems loads the items of several orders in one query, grouped by order id.
func ListOrderItems(ctx context.Context, db DBTX, orderIDs []uuid.UUID) (map[uuid.UUID][]models.OrderItem, error) {
	grouped := make(map[uuid.UUID][]models.OrderItem, len(orderIDs))
	if len(orderIDs) == 0 {
		return grouped, nil
	}

	ids := make([]string, len(orderIDs))
	for i, id := range orderIDs {
		ids[i] = id.String()
	}

	query := `
		SELECT oi.id, oi.order_id, oi.product_id, oi.quantity, oi.price, oi.color, oi.size, oi.created_at,
		       p.name, COALESCE(p.images[1], '')
		FROM order_items oi
		JOIN products p ON p.id = oi.product_id
		WHERE oi.order_id = ANY($1::uuid[])
		ORDER BY oi.order_id, oi.created_at, oi.id`

	rows, err := db.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("get order items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var item models.OrderItem
		err := rows.Scan(
			&item.ID,
			&item.OrderID,
			&item.ProductID,
			&item.Quantity,
			&item.Price,
			&item.Color,
			&item.Size,
			&item.CreatedAt,
			&item.ProductName,
			&item.ProductImage,
		)
		if err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		item.LineTotal = item.Price.Mul(decimal.NewFromInt(int64(item.Quantity)))
		grouped[item.OrderID] = append(grouped[item.OrderID], item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return grouped, nil
}

// ListOrdersByUser returns every order of the user, newest first, with items.
func ListOrdersByUser(ctx context.Context, db DBTX, userID uuid.UUID) ([]models.Order, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT `+orderColumns+`
		 FROM orders
		 WHERE user_id = $1
		 ORDER BY created_at DESC, id DESC`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}

	orders, err := collectOrders(rows)
	if err != nil {
		return nil, err
	}

	if err := attachItems(ctx, db, orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func ListOrdersCursor(ctx context.Context, db DBTX, userID uuid.UUID, cursor string, limit int) (*CursorPage, error) {
	position, err := DecodeCursor(cursor)
	if err != nil {
		return nil, err
	}

	query := `
		SELECT ` + orderColumns + `
		FROM orders
		WHERE user_id = $1
		  AND (created_at, id) < ($2, $3)
		ORDER BY created_at DESC, id DESC
		LIMIT $4`

	rows, err := db.QueryContext(ctx, query, userID, position.CreatedAt, position.ID, limit+1)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}

	orders, err := collectOrders(rows)
	if err != nil {
		return nil, err
	}

	page := newCursorPage(orders, limit)
	if err := attachItems(ctx, db, page.Items); err != nil {
		return nil, err
	}
	return page, nil
}

// ListOrders pages through all orders for the admin view, optionally by status.
func ListOrders(ctx context.Context, db DBTX, status models.OrderStatus, page, pageSize int) (*OffsetPage, error) {
	var total int64
	err := db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM orders WHERE ($1 = '' OR status = $1)`,
		string(status)).Scan(&total)
	if err != nil {
		return nil, fmt.Errorf("count orders: %w", err)
	}

	offset := (page - 1) * pageSize
	rows, err := db.QueryContext(ctx,
		`SELECT `+orderColumns+`
		 FROM orders
		 WHERE ($1 = '' OR status = $1)
		 ORDER BY created_at DESC, id DESC
		 LIMIT $2 OFFSET $3`,
		string(status), pageSize, offset)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}

	orders, err := collectOrders(rows)
	if err != nil {
		return nil, err
	}

	if err := attachItems(ctx, db, orders); err != nil {
		return nil, err
	}

	return newOffsetPage(orders, total, page, pageSize), nil
}

// TransitionOrderStatus moves an order to next only if its current status is
// one of from. The check and the write are a single statement.
func TransitionOrderStatus(ctx context.Context, db DBTX, id uuid.UUID, next models.OrderStatus, from []models.OrderStatus) error {
	allowed := make([]string, len(from))
	for i, s := range from {
		allowed[i] = string(s)
	}

	result, err := db.ExecContext(ctx,
		`UPDATE orders SET status = $1 WHERE id = $2 AND status = ANY($3)`,
		string(next), id, pq.Array(allowed))
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rowsAffected > 0 {
		return nil
	}

	var current models.OrderStatus
	err = db.QueryRowContext(ctx, `SELECT status FROM orders WHERE id = $1`, id).Scan(&current)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return database.ErrOrderNotFound
		}
		return fmt.Errorf("get order status: %w", err)
	}
	if current.Terminal() {
		return fmt.Errorf("%w: order is already %s", database.ErrInvalidStatusTransition, current)
	}
	return fmt.Errorf("%w: %s to %s", database.ErrInvalidStatusTransition, current, next)
}

// LockNextPendingOrder picks the oldest pending order no other transaction
// holds, locking it until tx ends.
func LockNextPendingOrder(ctx context.Context, tx *sql.Tx) (uuid.UUID, error) {
	var id uuid.UUID

	query := `
		SELECT id
		FROM orders
		WHERE status = $1
		ORDER BY created_at
		FOR UPDATE SKIP LOCKED
		LIMIT 1`

	err := tx.QueryRowContext(ctx, query, string(models.OrderStatusPending)).Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return uuid.Nil, database.ErrNoPendingOrders
		}
		return uuid.Nil, fmt.Errorf("get next pending order: %w", err)
	}

	return id, nil
}

func collectOrders(rows *sql.Rows) ([]models.Order, error) {
	defer rows.Close()

	orders := []models.Order{}
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, *order)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return orders, nil
}

func attachItems(ctx context.Context, db DBTX, orders []models.Order) error {
	ids := make([]uuid.UUID, len(orders))
	for i := range orders {
		ids[i] = orders[i].ID
	}

	items, err := ListOrderItems(ctx, db, ids)
	if err != nil {
		return err
	}

	for i := range orders {
		orders[i].Items = items[orders[i].ID]
		if orders[i].Items == nil {
			orders[i].Items = []models.OrderItem{}
		}
	}
	return nil
}
