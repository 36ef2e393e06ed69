// Package orders turns checkouts into immutable order records and serves
// them back to customers and fulfilment.
package orders

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/safar/stonecart/internal/database"
	"github.com/safar/stonecart/internal/models"
	"github.com/safar/stonecart/internal/store"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ErrTotalsMismatch is reported, alongside a validation error, when the
// submitted totals disagree with the line items.
var ErrTotalsMismatch = errors.New("totals do not match line items")

type LineItem struct {
	ProductID uuid.UUID       `json:"product_id" binding:"required"`
	Quantity  int             `json:"quantity" binding:"required,gt=0"`
	Price     decimal.Decimal `json:"price"`
	Color     string          `json:"color"`
	Size      string          `json:"size"`
}

type CreateOrderRequest struct {
	UserID          uuid.NullUUID          `json:"-"`
	Items           []LineItem             `json:"items" binding:"required,min=1,dive"`
	ShippingAddress models.ShippingAddress `json:"shipping_address"`
	PaymentMethod   string                 `json:"payment_method" binding:"required"`
	Subtotal        decimal.Decimal        `json:"subtotal"`
	Shipping        decimal.Decimal        `json:"shipping"`
	Tax             decimal.Decimal        `json:"tax"`
	Total           decimal.Decimal        `json:"total"`
}

func (r *CreateOrderRequest) Validate() error {
	if len(r.Items) == 0 {
		return models.NewValidationError("items", "must not be empty")
	}
	for i, item := range r.Items {
		field := fmt.Sprintf("items[%d]", i)
		if item.ProductID == uuid.Nil {
			return models.NewValidationError(field+".product_id", "is required")
		}
		if err := models.ValidateQuantity(field+".quantity", item.Quantity); err != nil {
			return err
		}
		if err := models.ValidateAmount(field+".price", item.Price); err != nil {
			return err
		}
	}

	if err := r.ShippingAddress.Validate(); err != nil {
		return err
	}

	r.PaymentMethod = strings.TrimSpace(r.PaymentMethod)
	if r.PaymentMethod == "" {
		return models.NewValidationError("payment_method", "is required")
	}

	for _, amount := range []struct {
		field string
		value decimal.Decimal
	}{
		{"subtotal", r.Subtotal},
		{"shipping", r.Shipping},
		{"tax", r.Tax},
		{"total", r.Total},
	} {
		if err := models.ValidateAmount(amount.field, amount.value); err != nil {
			return err
		}
	}
	return nil
}

type Processor struct {
	db        *sql.DB
	logger    *zap.Logger
	tolerance decimal.Decimal
}

func NewProcessor(db *sql.DB, logger *zap.Logger, tolerance decimal.Decimal) *Processor {
	return &Processor{db: db, logger: logger.Named("orders"), tolerance: tolerance}
}

func totalsMismatch(field string, want, got decimal.Decimal) error {
	verr := models.NewValidationError(field, fmt.Sprintf("expected %s, got %s", want.StringFixed(2), got.StringFixed(2)))
	return fmt.Errorf("%w: %w", verr, ErrTotalsMismatch)
}

// checkTotals returns the server-side subtotal and total when the submitted
// figures agree with them within the configured tolerance.
func (p *Processor) checkTotals(req *CreateOrderRequest) (subtotal, total decimal.Decimal, err error) {
	subtotal = Subtotal(req.Items)
	total = subtotal.Add(req.Shipping).Add(req.Tax)
	if total.GreaterThan(models.MaxAmount) {
		return decimal.Zero, decimal.Zero, models.NewValidationError("total", "must not exceed "+models.MaxAmount.StringFixed(2))
	}

	if req.Subtotal.Sub(subtotal).Abs().GreaterThan(p.tolerance) {
		return decimal.Zero, decimal.Zero, totalsMismatch("subtotal", subtotal, req.Subtotal)
	}
	if req.Total.Sub(total).Abs().GreaterThan(p.tolerance) {
		return decimal.Zero, decimal.Zero, totalsMismatch("total", total, req.Total)
	}
	return subtotal, total, nil
}

// CreateOrder stores the order and its items with the submitted prices and,
// for a signed-in user, empties their cart. All of it commits or none of it
// does. The returned order is read back inside the same transaction.
func (p *Processor) CreateOrder(ctx context.Context, req CreateOrderRequest) (*models.Order, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	subtotal, total, err := p.checkTotals(&req)
	if err != nil {
		return nil, err
	}

	var created *models.Order
	err = database.WithTransaction(ctx, p.db, database.DefaultTxOptions(), func(tx *sql.Tx) error {
		order := &models.Order{
			UserID:          req.UserID,
			Status:          models.OrderStatusPending,
			ShippingAddress: req.ShippingAddress,
			PaymentMethod:   req.PaymentMethod,
			Subtotal:        subtotal,
			Shipping:        req.Shipping,
			Tax:             req.Tax,
			Total:           total,
		}
		if err := store.InsertOrder(ctx, tx, order); err != nil {
			return err
		}

		for _, line := range req.Items {
			item := &models.OrderItem{
				OrderID:   order.ID,
				ProductID: line.ProductID,
				Quantity:  line.Quantity,
				Price:     line.Price,
				Color:     strings.TrimSpace(line.Color),
				Size:      strings.TrimSpace(line.Size),
			}
			if err := store.InsertOrderItem(ctx, tx, item); err != nil {
				return err
			}
		}

		if req.UserID.Valid {
			if _, err := store.ClearCartItems(ctx, tx, req.UserID.UUID); err != nil {
				return err
			}
		}

		var err error
		created, err = store.GetOrder(ctx, tx, order.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	p.logger.Info("order created",
		zap.Stringer("order_id", created.ID),
		zap.Bool("guest", !req.UserID.Valid),
		zap.Int("items", len(created.Items)),
		zap.String("total", created.Total.StringFixed(2)),
	)

	return created, nil
}

// UpdateStatus moves an order forward through its lifecycle.
func (p *Processor) UpdateStatus(ctx context.Context, orderID uuid.UUID, next models.OrderStatus) (*models.Order, error) {
	if !next.Valid() {
		return nil, models.NewValidationError("status", fmt.Sprintf("unknown status %q", next))
	}

	from := models.PredecessorsOf(next)
	if len(from) == 0 {
		return nil, database.ErrInvalidStatusTransition
	}

	if err := store.TransitionOrderStatus(ctx, p.db, orderID, next, from); err != nil {
		return nil, err
	}

	p.logger.Info("order status updated", zap.Stringer("order_id", orderID), zap.String("status", string(next)))

	return store.GetOrder(ctx, p.db, orderID)
}

// ClaimNextPending hands the oldest unclaimed pending order to fulfilment by
// moving it to processing. Concurrent callers never receive the same order.
func (p *Processor) ClaimNextPending(ctx context.Context) (*models.Order, error) {
	var claimed *models.Order

	err := database.WithTransaction(ctx, p.db, database.DefaultTxOptions(), func(tx *sql.Tx) error {
		id, err := store.LockNextPendingOrder(ctx, tx)
		if err != nil {
			return err
		}

		err = store.TransitionOrderStatus(ctx, tx, id, models.OrderStatusProcessing,
			[]models.OrderStatus{models.OrderStatusPending})
		if err != nil {
			return err
		}

		claimed, err = store.GetOrder(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}

	p.logger.Info("order claimed", zap.Stringer("order_id", claimed.ID))
	return claimed, nil
}
