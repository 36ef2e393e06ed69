package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/safar/stonecart/internal/database"
	"github.com/safar/stonecart/internal/models"
	"github.com/shopspring/decimal"
)

// Ownership filter shared by every item mutation: an item outside the
// caller's cart matches zero rows, exactly like a missing item.
const ownedByUser = `cart_id IN (SELECT id FROM carts WHERE user_id = $2)`

func GetCartByUser(ctx context.Context, db DBTX, userID uuid.UUID) (*models.Cart, error) {
	cart := &models.Cart{}

	err := db.QueryRowContext(ctx,
		`SELECT id, user_id, created_at FROM carts WHERE user_id = $1`,
		userID).Scan(&cart.ID, &cart.UserID, &cart.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, database.ErrCartNotFound
		}
		return nil, fmt.Errorf("get cart: %w", err)
	}

	return cart, nil
}

// GetOrCreateCart returns the user's single cart, creating it on first use.
// The unique index on carts.user_id makes concurrent first calls converge on
// one row: the loser of the insert race re-reads the winner's cart.
func GetOrCreateCart(ctx context.Context, db DBTX, userID uuid.UUID) (*models.Cart, error) {
	cart, err := GetCartByUser(ctx, db, userID)
	if err == nil {
		return cart, nil
	}
	if !errors.Is(err, database.ErrCartNotFound) {
		return nil, err
	}

	cart = &models.Cart{}
	err = db.QueryRowContext(ctx,
		`INSERT INTO carts (id, user_id, created_at)
		 VALUES ($1, $2, NOW())
		 ON CONFLICT (user_id) DO NOTHING
		 RETURNING id, user_id, created_at`,
		uuid.New(), userID).Scan(&cart.ID, &cart.UserID, &cart.CreatedAt)
	switch {
	case err == nil:
		return cart, nil
	case errors.Is(err, sql.ErrNoRows):
		return GetCartByUser(ctx, db, userID)
	default:
		if _, ok := database.IsForeignKeyViolation(err); ok {
			return nil, database.ErrUserNotFound
		}
		return nil, fmt.Errorf("create cart: %w", err)
	}
}

// ListCartItems joins live product fields; prices here follow the catalog.
func ListCartItems(ctx context.Context, db DBTX, cartID uuid.UUID) ([]models.CartItem, error) {
	query := `
		SELECT ci.id, ci.cart_id, ci.product_id, ci.quantity, ci.color, ci.size, ci.created_at,
		       p.name, p.price, COALESCE(p.images[1], '')
		FROM cart_items ci
		JOIN products p ON p.id = ci.product_id
		WHERE ci.cart_id = $1
		ORDER BY ci.created_at, ci.id`

	rows, err := db.QueryContext(ctx, query, cartID)
	if err != nil {
		return nil, fmt.Errorf("list cart items: %w", err)
	}
	defer rows.Close()

	items := []models.CartItem{}
	for rows.Next() {
		var item models.CartItem
		err := rows.Scan(
			&item.ID,
			&item.CartID,
			&item.ProductID,
			&item.Quantity,
			&item.Color,
			&item.Size,
			&item.CreatedAt,
			&item.ProductName,
			&item.ProductPrice,
			&item.ProductImage,
		)
		if err != nil {
			return nil, fmt.Errorf("scan cart item: %w", err)
		}
		item.LineTotal = item.ProductPrice.Mul(decimal.NewFromInt(int64(item.Quantity)))
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return items, nil
}

// UpsertCartItem adds quantity to the (cart, product, color, size) line,
// inserting it if absent. The merge happens in one statement so concurrent
// adds of the same variant can neither duplicate the line nor lose an update.
func UpsertCartItem(ctx context.Context, db DBTX, cartID, productID uuid.UUID, quantity int, color, size string) (uuid.UUID, int, error) {
	var (
		itemID uuid.UUID
		total  int
	)

	err := db.QueryRowContext(ctx,
		`INSERT INTO cart_items (id, cart_id, product_id, quantity, color, size, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, NOW())
		 ON CONFLICT (cart_id, product_id, color, size)
		 DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity
		 RETURNING id, quantity`,
		uuid.New(), cartID, productID, quantity, color, size).Scan(&itemID, &total)
	if err != nil {
		if constraint, ok := database.IsForeignKeyViolation(err); ok && constraint == "cart_items_product_id_fkey" {
			return uuid.Nil, 0, database.ErrProductNotFound
		}
		if database.IsNumericOutOfRange(err) {
			return uuid.Nil, 0, models.NewValidationError("quantity", fmt.Sprintf("would exceed %d for this line", models.MaxQuantity))
		}
		if _, ok := database.IsCheckViolation(err); ok {
			return uuid.Nil, 0, models.NewValidationError("quantity", "must be greater than zero")
		}
		return uuid.Nil, 0, fmt.Errorf("upsert cart item: %w", err)
	}

	return itemID, total, nil
}

// UpdateCartItemQuantity overwrites the quantity of an item in userID's cart.
// It reports the number of rows changed; zero means missing or not owned.
func UpdateCartItemQuantity(ctx context.Context, db DBTX, itemID, userID uuid.UUID, quantity int) (int64, error) {
	result, err := db.ExecContext(ctx,
		`UPDATE cart_items SET quantity = $3 WHERE id = $1 AND `+ownedByUser,
		itemID, userID, quantity)
	if err != nil {
		if _, ok := database.IsCheckViolation(err); ok {
			return 0, models.NewValidationError("quantity", "must be greater than zero")
		}
		return 0, fmt.Errorf("update cart item: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("get rows affected: %w", err)
	}
	return rowsAffected, nil
}

func DeleteCartItem(ctx context.Context, db DBTX, itemID, userID uuid.UUID) (int64, error) {
	result, err := db.ExecContext(ctx,
		`DELETE FROM cart_items WHERE id = $1 AND `+ownedByUser,
		itemID, userID)
	if err != nil {
		return 0, fmt.Errorf("delete cart item: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("get rows affected: %w", err)
	}
	return rowsAffected, nil
}

// ClearCartItems empties the user's cart; the cart row itself is kept for reuse.
func ClearCartItems(ctx context.Context, db DBTX, userID uuid.UUID) (int64, error) {
	result, err := db.ExecContext(ctx,
		`DELETE FROM cart_items WHERE cart_id IN (SELECT id FROM carts WHERE user_id = $1)`,
		userID)
	if err != nil {
		return 0, fmt.Errorf("clear cart items: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("get rows affected: %w", err)
	}
	return rowsAffected, nil
}

func CartItemExists(ctx context.Context, db DBTX, itemID, userID uuid.UUID) (bool, error) {
	var exists bool
	err := db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM cart_items WHERE id = $1 AND `+ownedByUser+`)`,
		itemID, userID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check cart item exists: %w", err)
	}
	return exists, nil
}
