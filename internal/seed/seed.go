// Package seed loads the storefront's sample catalog and an admin account.
package seed

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/safar/stonecart/internal/auth"
	"github.com/safar/stonecart/internal/database"
	"github.com/safar/stonecart/internal/models"
	"github.com/safar/stonecart/internal/store"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const placeholderImage = "/placeholder.svg?height=600&width=600"

var standardSizes = []string{"12x12", "18x18", "24x24", "Custom"}

// Admin is created only when Email is set.
type Admin struct {
	Email    string
	Name     string
	Password string
}

type Result struct {
	ProductsCreated int
	AdminCreated    bool
}

// Run is idempotent: products are only inserted into an empty catalog and an
// existing admin email is left alone.
func Run(ctx context.Context, db *sql.DB, admin Admin, logger *zap.Logger) (*Result, error) {
	result := &Result{}

	err := database.WithTransaction(ctx, db, database.DefaultTxOptions(), func(tx *sql.Tx) error {
		count, err := store.CountProducts(ctx, tx)
		if err != nil {
			return err
		}

		if count == 0 {
			for _, p := range SampleProducts() {
				if _, err := store.CreateProduct(ctx, tx, &p); err != nil {
					return fmt.Errorf("seed %s: %w", p.Slug, err)
				}
				result.ProductsCreated++
			}
		} else {
			logger.Info("catalog already populated, skipping products", zap.Int64("products", count))
		}

		if admin.Email == "" {
			return nil
		}

		_, err = store.GetUserByEmail(ctx, tx, admin.Email)
		if err == nil {
			return nil
		}
		if !errors.Is(err, database.ErrUserNotFound) {
			return err
		}

		hash, err := auth.HashPassword(admin.Password)
		if err != nil {
			return fmt.Errorf("hash admin password: %w", err)
		}
		if _, err := store.CreateUser(ctx, tx, admin.Email, admin.Name, hash); err != nil {
			return err
		}
		result.AdminCreated = true
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("seed complete",
		zap.Int("products_created", result.ProductsCreated),
		zap.Bool("admin_created", result.AdminCreated),
	)
	return result, nil
}

func SampleProducts() []models.Product {
	images := []string{placeholderImage, placeholderImage, placeholderImage, placeholderImage}
	white := models.ColorOption{ID: "white", Name: "White", Class: "bg-white border border-gray-200"}

	return []models.Product{
		{
			Name:        "Carrara White Marble",
			Description: "Premium Italian Carrara White Marble, known for its soft white background with elegant gray veining. Perfect for countertops, flooring, and wall cladding.",
			Price:       decimal.RequireFromString("129.99"),
			Images:      images,
			Category:    "italian-marble",
			Features: []string{
				"Premium Italian marble",
				"Elegant gray veining on white background",
				"Polished finish",
				"Suitable for indoor use",
				"Resistant to stains when sealed properly",
			},
			Colors: models.ColorOptions{white},
			Sizes:  standardSizes,
			Stock:  500,
			SKU:    "CWM-001",
			Slug:   "carrara-white-marble",
		},
		{
			Name:        "Black Galaxy Granite",
			Description: "Luxurious Black Galaxy Granite from India featuring a deep black background with copper/gold flecks. Ideal for kitchen countertops and high-traffic areas.",
			Price:       decimal.RequireFromString("89.99"),
			Images:      images,
			Category:    "granite",
			Features: []string{
				"Premium Indian granite",
				"Deep black with gold/copper flecks",
				"Highly durable and scratch-resistant",
				"Heat resistant",
				"Low maintenance",
			},
			Colors: models.ColorOptions{{ID: "black", Name: "Black", Class: "bg-black"}},
			Sizes:  standardSizes,
			Stock:  350,
			SKU:    "BGG-001",
			Slug:   "black-galaxy-granite",
		},
		{
			Name:        "Honey Onyx",
			Description: "Translucent Honey Onyx with warm amber tones and dramatic veining. Perfect for backlit features, accent walls, and luxury bathroom applications.",
			Price:       decimal.RequireFromString("199.99"),
			Images:      images,
			Category:    "onyx",
			Features: []string{
				"Translucent natural onyx",
				"Warm honey/amber tones",
				"Can be backlit for dramatic effect",
				"Suitable for accent walls and features",
				"Each piece has unique patterns",
			},
			Colors: models.ColorOptions{{ID: "honey", Name: "Honey", Class: "bg-yellow-600"}},
			Sizes:  standardSizes,
			Stock:  200,
			SKU:    "HO-001",
			Slug:   "honey-onyx",
		},
		{
			Name:        "Calacatta Gold Marble",
			Description: "Prestigious Calacatta Gold Marble from Italy with distinctive gold veining on a bright white background. The epitome of luxury for high-end interiors.",
			Price:       decimal.RequireFromString("249.99"),
			Images:      images,
			Category:    "italian-marble",
			Features: []string{
				"Premium Italian marble",
				"Distinctive gold veining on white background",
				"Polished finish",
				"Suitable for luxury interiors",
				"Each slab has unique patterns",
			},
			Colors: models.ColorOptions{{ID: "white-gold", Name: "White/Gold", Class: "bg-white border border-yellow-300"}},
			Sizes:  standardSizes,
			Stock:  150,
			SKU:    "CGM-001",
			Slug:   "calacatta-gold-marble",
		},
		{
			Name:        "Ziarat White Marble",
			Description: "Premium Pakistani Ziarat White Marble, known for its pristine white background with subtle veining. Perfect for countertops, flooring, and wall cladding.",
			Price:       decimal.RequireFromString("119.99"),
			Images:      images,
			Category:    "pakistani-marble",
			Features: []string{
				"Premium Pakistani marble",
				"Elegant subtle veining on white background",
				"Polished finish",
				"Suitable for indoor use",
				"Resistant to stains when sealed properly",
			},
			Colors: models.ColorOptions{white},
			Sizes:  standardSizes,
			Stock:  500,
			SKU:    "ZWM-001",
			Slug:   "ziarat-white-marble",
		},
	}
}
