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
)

const productColumns = `id, name, description, price, images, category, features, colors, sizes, stock, sku, slug, created_at`

func scanProduct(row rowScanner) (*models.Product, error) {
	p := &models.Product{}
	err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Description,
		&p.Price,
		pq.Array(&p.Images),
		&p.Category,
		pq.Array(&p.Features),
		&p.Colors,
		pq.Array(&p.Sizes),
		&p.Stock,
		&p.SKU,
		&p.Slug,
		&p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func CreateProduct(ctx context.Context, db DBTX, p *models.Product) (*models.Product, error) {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if err := p.Colors.Validate(); err != nil {
		return nil, err
	}

	query := `
		INSERT INTO products (id, name, description, price, images, category, features, colors, sizes, stock, sku, slug, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, NOW())
		RETURNING ` + productColumns

	product, err := scanProduct(db.QueryRowContext(ctx, query,
		p.ID,
		p.Name,
		p.Description,
		p.Price,
		pq.Array(nonNil(p.Images)),
		p.Category,
		pq.Array(nonNil(p.Features)),
		p.Colors,
		pq.Array(nonNil(p.Sizes)),
		p.Stock,
		p.SKU,
		p.Slug,
	))
	if err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}

	return product, nil
}

func GetProduct(ctx context.Context, db DBTX, id uuid.UUID) (*models.Product, error) {
	product, err := scanProduct(db.QueryRowContext(ctx,
		`SELECT `+productColumns+` FROM products WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, database.ErrProductNotFound
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return product, nil
}

func GetProductBySlug(ctx context.Context, db DBTX, slug string) (*models.Product, error) {
	product, err := scanProduct(db.QueryRowContext(ctx,
		`SELECT `+productColumns+` FROM products WHERE slug = $1`, slug))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, database.ErrProductNotFound
		}
		return nil, fmt.Errorf("get product by slug: %w", err)
	}
	return product, nil
}

// ListProducts filters by category when non-empty; limit <= 0 means no limit.
func ListProducts(ctx context.Context, db DBTX, category string, limit int) ([]models.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products
		WHERE ($1 = '' OR category = $1)
		ORDER BY created_at, id`
	args := []any{category}
	if limit > 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	products := []models.Product{}
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, *product)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return products, nil
}

func CountProducts(ctx context.Context, db DBTX) (int64, error) {
	var total int64
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM products`).Scan(&total); err != nil {
		return 0, fmt.Errorf("count products: %w", err)
	}
	return total, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
