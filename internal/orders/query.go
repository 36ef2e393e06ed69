package orders

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/safar/stonecart/internal/models"
	"github.com/safar/stonecart/internal/store"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// QueryService is read-only; it never creates carts or touches order state.
type QueryService struct {
	db *sql.DB
}

func NewQueryService(db *sql.DB) *QueryService {
	return &QueryService{db: db}
}

func (s *QueryService) GetOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	return store.GetOrder(ctx, s.db, orderID)
}

// GetOrdersByUser returns the user's orders newest first, items included.
func (s *QueryService) GetOrdersByUser(ctx context.Context, userID uuid.UUID) ([]models.Order, error) {
	if userID == uuid.Nil {
		return nil, models.NewValidationError("user_id", "is required")
	}
	return store.ListOrdersByUser(ctx, s.db, userID)
}

func (s *QueryService) ListOrdersCursor(ctx context.Context, userID uuid.UUID, cursor string, limit int) (*store.CursorPage, error) {
	if userID == uuid.Nil {
		return nil, models.NewValidationError("user_id", "is required")
	}
	return store.ListOrdersCursor(ctx, s.db, userID, cursor, clampPageSize(limit))
}

// ListOrders pages through every order, optionally filtered by status.
func (s *QueryService) ListOrders(ctx context.Context, status models.OrderStatus, page, pageSize int) (*store.OffsetPage, error) {
	if status != "" && !status.Valid() {
		return nil, models.NewValidationError("status", "is not a known order status")
	}
	if page < 1 {
		page = 1
	}
	return store.ListOrders(ctx, s.db, status, page, clampPageSize(pageSize))
}

func clampPageSize(n int) int {
	switch {
	case n <= 0:
		return defaultPageSize
	case n > maxPageSize:
		return maxPageSize
	default:
		return n
	}
}
