// Package catalog is the read-only view of products used by the cart and order
// components and by the storefront's product pages.
package catalog

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/safar/stonecart/internal/models"
	"github.com/safar/stonecart/internal/store"
	"go.uber.org/zap"
)

const maxListLimit = 100

type Reader struct {
	db     *sql.DB
	cache  Cache
	logger *zap.Logger
}

type Option func(*Reader)

func WithCache(cache Cache) Option {
	return func(r *Reader) {
		if cache != nil {
			r.cache = cache
		}
	}
}

func NewReader(db *sql.DB, logger *zap.Logger, opts ...Option) *Reader {
	r := &Reader{db: db, cache: noopCache{}, logger: logger.Named("catalog")}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Reader) GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	return r.cached(ctx, "id:"+id.String(), func() (*models.Product, error) {
		return store.GetProduct(ctx, r.db, id)
	})
}

func (r *Reader) GetBySlug(ctx context.Context, slug string) (*models.Product, error) {
	return r.cached(ctx, "slug:"+slug, func() (*models.Product, error) {
		return store.GetProductBySlug(ctx, r.db, slug)
	})
}

// List is not cached; category may be empty and limit is clamped to 1..100.
func (r *Reader) List(ctx context.Context, category string, limit int) ([]models.Product, error) {
	if limit <= 0 || limit > maxListLimit {
		limit = maxListLimit
	}
	return store.ListProducts(ctx, r.db, category, limit)
}

// Cache failures degrade to the database; they never fail the read.
func (r *Reader) cached(ctx context.Context, key string, load func() (*models.Product, error)) (*models.Product, error) {
	p, err := r.cache.GetProduct(ctx, key)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, ErrCacheMiss) {
		r.logger.Warn("product cache read failed", zap.String("key", key), zap.Error(err))
	}

	p, err = load()
	if err != nil {
		return nil, err
	}

	if err := r.cache.SetProduct(ctx, key, p); err != nil {
		r.logger.Warn("product cache write failed", zap.String("key", key), zap.Error(err))
	}
	return p, nil
}
