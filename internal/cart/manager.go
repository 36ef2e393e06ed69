// Package cart manages the single mutable cart each user owns.
package cart

import (
	"context"
	"database/sql"
	"strings"

	"github.com/google/uuid"
	"github.com/safar/stonecart/internal/models"
	"github.com/safar/stonecart/internal/store"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ProductLookup is the slice of the catalog the cart needs.
type ProductLookup interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

type AddItemRequest struct {
	ProductID uuid.UUID `json:"product_id" binding:"required"`
	Quantity  int       `json:"quantity" binding:"required,gt=0"`
	Color     string    `json:"color" binding:"required"`
	Size      string    `json:"size" binding:"required"`
}

func (r *AddItemRequest) Validate() error {
	r.Color = strings.TrimSpace(r.Color)
	r.Size = strings.TrimSpace(r.Size)

	if r.ProductID == uuid.Nil {
		return models.NewValidationError("product_id", "is required")
	}
	if err := models.ValidateQuantity("quantity", r.Quantity); err != nil {
		return err
	}

	switch {
	case r.Color == "":
		return models.NewValidationError("color", "is required")
	case r.Size == "":
		return models.NewValidationError("size", "is required")
	}
	return nil
}

type Manager struct {
	db       *sql.DB
	products ProductLookup
	logger   *zap.Logger
}

func NewManager(db *sql.DB, products ProductLookup, logger *zap.Logger) *Manager {
	return &Manager{db: db, products: products, logger: logger.Named("cart")}
}

// GetCart returns the user's cart with live product fields, creating an empty
// one on first access.
func (m *Manager) GetCart(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	if userID == uuid.Nil {
		return nil, models.NewValidationError("user_id", "is required")
	}

	cart, err := store.GetOrCreateCart(ctx, m.db, userID)
	if err != nil {
		return nil, err
	}

	items, err := store.ListCartItems(ctx, m.db, cart.ID)
	if err != nil {
		return nil, err
	}

	cart.Items = items
	cart.ItemCount = 0
	cart.Subtotal = decimal.Zero
	for _, item := range items {
		cart.ItemCount += item.Quantity
		cart.Subtotal = cart.Subtotal.Add(item.LineTotal)
	}
	return cart, nil
}

// AddItem merges req into the line with the same product, color and size, or
// starts a new line.
func (m *Manager) AddItem(ctx context.Context, userID uuid.UUID, req AddItemRequest) (*models.Cart, error) {
	if userID == uuid.Nil {
		return nil, models.NewValidationError("user_id", "is required")
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	if _, err := m.products.GetByID(ctx, req.ProductID); err != nil {
		return nil, err
	}

	cart, err := store.GetOrCreateCart(ctx, m.db, userID)
	if err != nil {
		return nil, err
	}

	itemID, quantity, err := store.UpsertCartItem(ctx, m.db, cart.ID, req.ProductID, req.Quantity, req.Color, req.Size)
	if err != nil {
		return nil, err
	}

	m.logger.Debug("cart item added",
		zap.Stringer("user_id", userID),
		zap.Stringer("item_id", itemID),
		zap.Int("quantity", quantity),
	)

	return m.GetCart(ctx, userID)
}

// UpdateItem sets the quantity of an item in the user's cart. An item that is
// missing or belongs to another cart is left alone and the caller's own cart
// is returned unchanged.
func (m *Manager) UpdateItem(ctx context.Context, userID, itemID uuid.UUID, quantity int) (*models.Cart, error) {
	if userID == uuid.Nil {
		return nil, models.NewValidationError("user_id", "is required")
	}
	if itemID == uuid.Nil {
		return nil, models.NewValidationError("item_id", "is required")
	}
	if err := models.ValidateQuantity("quantity", quantity); err != nil {
		return nil, err
	}

	n, err := store.UpdateCartItemQuantity(ctx, m.db, itemID, userID, quantity)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		m.logger.Debug("cart item update matched nothing", zap.Stringer("user_id", userID), zap.Stringer("item_id", itemID))
	}

	return m.GetCart(ctx, userID)
}

func (m *Manager) RemoveItem(ctx context.Context, userID, itemID uuid.UUID) (*models.Cart, error) {
	if userID == uuid.Nil {
		return nil, models.NewValidationError("user_id", "is required")
	}
	if itemID == uuid.Nil {
		return nil, models.NewValidationError("item_id", "is required")
	}

	n, err := store.DeleteCartItem(ctx, m.db, itemID, userID)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		m.logger.Debug("cart item delete matched nothing", zap.Stringer("user_id", userID), zap.Stringer("item_id", itemID))
	}

	return m.GetCart(ctx, userID)
}

func (m *Manager) ClearCart(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	if userID == uuid.Nil {
		return nil, models.NewValidationError("user_id", "is required")
	}

	if _, err := store.ClearCartItems(ctx, m.db, userID); err != nil {
		return nil, err
	}
	return m.GetCart(ctx, userID)
}

// ItemExists reports whether itemID is a line in the user's own cart.
func (m *Manager) ItemExists(ctx context.Context, userID, itemID uuid.UUID) (bool, error) {
	return store.CartItemExists(ctx, m.db, itemID, userID)
}
