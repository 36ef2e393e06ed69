package store

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/safar/stonecart/internal/database"
	"github.com/safar/stonecart/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var orderRowColumns = []string{
	"id", "user_id", "status", "shipping_address", "payment_method", "subtotal", "shipping", "tax", "total", "created_at",
}

var itemRowColumns = []string{
	"id", "order_id", "product_id", "quantity", "price", "color", "size", "created_at", "name", "image",
}

const addressJSON = `{"name":"Ana","address":"1 Quarry Rd","city":"Carrara","state":"MS","zip":"54033","country":"IT"}`

func TestInsertOrderDefaultsToPending(t *testing.T) {
	db, mock := newMockDB(t)
	created := time.Now()

	mock.ExpectQuery(`INSERT INTO orders`).
		WithArgs(sqlmock.AnyArg(), nil, "pending", sqlmock.AnyArg(), "card", "10", "4.99", "0.8", "15.79").
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(created))

	order := &models.Order{
		ShippingAddress: models.ShippingAddress{Name: "Ana", Address: "1 Quarry Rd", City: "Carrara", State: "MS", Zip: "54033", Country: "IT"},
		PaymentMethod:   "card",
		Subtotal:        decimal.RequireFromString("10"),
		Shipping:        decimal.RequireFromString("4.99"),
		Tax:             decimal.RequireFromString("0.8"),
		Total:           decimal.RequireFromString("15.79"),
	}
	require.NoError(t, InsertOrder(context.Background(), db, order))

	assert.NotEqual(t, uuid.Nil, order.ID)
	assert.Equal(t, models.OrderStatusPending, order.Status)
	assert.Equal(t, created, order.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertOrderItemMapsMissingProduct(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery(`INSERT INTO order_items`).
		WillReturnError(&pq.Error{Code: "23503", Constraint: "order_items_product_id_fkey"})

	err := InsertOrderItem(context.Background(), db, &models.OrderItem{OrderID: uuid.New(), ProductID: uuid.New(), Quantity: 1})
	assert.ErrorIs(t, err, database.ErrProductNotFound)
}

func TestGetOrderNotFound(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery(`FROM orders WHERE id = \$1`).WillReturnRows(sqlmock.NewRows(orderRowColumns))

	_, err := GetOrder(context.Background(), db, uuid.New())
	assert.ErrorIs(t, err, database.ErrOrderNotFound)
}

func TestGetOrderJoinsItems(t *testing.T) {
	db, mock := newMockDB(t)
	orderID, userID := uuid.New(), uuid.New()

	mock.ExpectQuery(`FROM orders WHERE id = \$1`).
		WithArgs(orderID).
		WillReturnRows(sqlmock.NewRows(orderRowColumns).
			AddRow(orderID.String(), userID.String(), "pending", []byte(addressJSON), "card", "649.95", "4.99", "52.00", "706.94", time.Now()))
	mock.ExpectQuery(`FROM order_items oi\s+JOIN products p .* ANY\(\$1::uuid\[\]\)`).
		WithArgs(pq.Array([]string{orderID.String()})).
		WillReturnRows(sqlmock.NewRows(itemRowColumns).
			AddRow(uuid.NewString(), orderID.String(), uuid.NewString(), 5, "129.99", "black", "24x24", time.Now(), "Carrara White Marble", "/img/carrara.jpg"))

	order, err := GetOrder(context.Background(), db, orderID)
	require.NoError(t, err)
	assert.True(t, order.UserID.Valid)
	assert.Equal(t, userID, order.UserID.UUID)
	assert.Equal(t, "Carrara", order.ShippingAddress.City)
	require.Len(t, order.Items, 1)
	assert.Equal(t, 5, order.Items[0].Quantity)
	assert.Equal(t, "129.99", order.Items[0].Price.StringFixed(2))
	assert.Equal(t, "649.95", order.Items[0].LineTotal.StringFixed(2))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListOrdersByUserBatchesItems(t *testing.T) {
	db, mock := newMockDB(t)
	userID := uuid.New()
	newer, older := uuid.New(), uuid.New()

	mock.ExpectQuery(`FROM orders\s+WHERE user_id = \$1\s+ORDER BY created_at DESC, id DESC`).
		WithArgs(userID).
		WillReturnRows(sqlmock.NewRows(orderRowColumns).
			AddRow(newer.String(), userID.String(), "pending", []byte(addressJSON), "card", "1", "0", "0", "1", time.Now()).
			AddRow(older.String(), userID.String(), "delivered", []byte(addressJSON), "card", "2", "0", "0", "2", time.Now().Add(-time.Hour)))
	mock.ExpectQuery(`FROM order_items oi`).
		WithArgs(pq.Array([]string{newer.String(), older.String()})).
		WillReturnRows(sqlmock.NewRows(itemRowColumns).
			AddRow(uuid.NewString(), older.String(), uuid.NewString(), 2, "1.00", "white", "12x12", time.Now(), "Onyx", ""))

	orders, err := ListOrdersByUser(context.Background(), db, userID)
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, newer, orders[0].ID)
	assert.Empty(t, orders[0].Items)
	assert.Len(t, orders[1].Items, 1)
	assert.Equal(t, models.OrderStatusDelivered, orders[1].Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransitionOrderStatus(t *testing.T) {
	from := []models.OrderStatus{models.OrderStatusPending}

	t.Run("applies allowed transition", func(t *testing.T) {
		db, mock := newMockDB(t)
		id := uuid.New()
		mock.ExpectExec(`UPDATE orders SET status = \$1 WHERE id = \$2 AND status = ANY\(\$3\)`).
			WithArgs("processing", id, pq.Array([]string{"pending"})).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, TransitionOrderStatus(context.Background(), db, id, models.OrderStatusProcessing, from))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rejects when status moved on", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectExec(`UPDATE orders SET status`).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(`SELECT status FROM orders WHERE id = \$1`).
			WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow("shipped"))

		err := TransitionOrderStatus(context.Background(), db, uuid.New(), models.OrderStatusProcessing, from)
		assert.ErrorIs(t, err, database.ErrInvalidStatusTransition)
		assert.Contains(t, err.Error(), "shipped to processing")
	})

	t.Run("names the final status", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectExec(`UPDATE orders SET status`).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(`SELECT status FROM orders WHERE id = \$1`).
			WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow("cancelled"))

		err := TransitionOrderStatus(context.Background(), db, uuid.New(), models.OrderStatusProcessing, from)
		assert.ErrorIs(t, err, database.ErrInvalidStatusTransition)
		assert.Contains(t, err.Error(), "already cancelled")
	})

	t.Run("reports unknown order", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectExec(`UPDATE orders SET status`).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(`SELECT status FROM orders WHERE id = \$1`).
			WillReturnRows(sqlmock.NewRows([]string{"status"}))

		err := TransitionOrderStatus(context.Background(), db, uuid.New(), models.OrderStatusProcessing, from)
		assert.ErrorIs(t, err, database.ErrOrderNotFound)
	})
}

func TestListOrdersCursorRejectsGarbage(t *testing.T) {
	db, _ := newMockDB(t)

	_, err := ListOrdersCursor(context.Background(), db, uuid.New(), "%%%", 10)
	assert.ErrorIs(t, err, ErrInvalidCursor)
}

func TestListOrdersOffsetPage(t *testing.T) {
	db, mock := newMockDB(t)
	id := uuid.New()

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM orders`).
		WithArgs("pending").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(21))
	mock.ExpectQuery(`FROM orders\s+WHERE \(\$1 = '' OR status = \$1\)`).
		WithArgs("pending", 10, 10).
		WillReturnRows(sqlmock.NewRows(orderRowColumns).
			AddRow(id.String(), nil, "pending", []byte(addressJSON), "card", "1", "0", "0", "1", time.Now()))
	mock.ExpectQuery(`FROM order_items oi`).WillReturnRows(sqlmock.NewRows(itemRowColumns))

	page, err := ListOrders(context.Background(), db, models.OrderStatusPending, 2, 10)
	require.NoError(t, err)
	assert.Equal(t, 3, page.TotalPages)
	assert.Equal(t, int64(21), page.Total)
	require.Len(t, page.Items, 1)
	assert.False(t, page.Items[0].UserID.Valid)
}
