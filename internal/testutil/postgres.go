// Package testutil starts a throwaway PostgreSQL for integration tests.
package testutil

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
	"github.com/safar/stonecart/internal/database"
	"github.com/safar/stonecart/internal/models"
	"github.com/safar/stonecart/internal/store"
	"github.com/shopspring/decimal"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
)

// NewPostgres starts postgres:16-alpine, applies the migrations and returns
// a pool that is closed, with the container, when the test ends. It skips
// the test under -short.
func NewPostgres(t *testing.T) *sql.DB {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "testuser",
			"POSTGRES_PASSWORD": "testpass",
			"POSTGRES_DB":       "testdb",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}

	postgres, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Fatalf("Failed to start postgres container: %v", err)
	}
	t.Cleanup(func() {
		if err := postgres.Terminate(ctx); err != nil {
			t.Logf("Failed to terminate container: %v", err)
		}
	})

	host, err := postgres.Host(ctx)
	if err != nil {
		t.Fatalf("Failed to get container host: %v", err)
	}

	port, err := postgres.MappedPort(ctx, "5432")
	if err != nil {
		t.Fatalf("Failed to get container port: %v", err)
	}

	dsn := fmt.Sprintf("postgres://testuser:testpass@%s:%s/testdb?sslmode=disable", host, port.Port())

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		t.Fatalf("Failed to connect to database: %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Logf("Failed to close database: %v", err)
		}
	})

	if err := db.PingContext(ctx); err != nil {
		t.Fatalf("Failed to ping database: %v", err)
	}

	migrator, err := database.NewMigrator(ctx, db, zap.NewNop())
	if err != nil {
		t.Fatalf("Failed to prepare migrations: %v", err)
	}
	defer migrator.Close()

	if err := migrator.Up(); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}

	return db
}

func CreateUser(t *testing.T, db *sql.DB) *models.User {
	t.Helper()

	user, err := store.CreateUser(context.Background(), db, uuid.NewString()+"@example.com", "Test User", "not-a-real-hash")
	if err != nil {
		t.Fatalf("Create user: %v", err)
	}
	return user
}

func CreateProduct(t *testing.T, db *sql.DB, name, price string) *models.Product {
	t.Helper()

	slug := uuid.NewString()
	product, err := store.CreateProduct(context.Background(), db, &models.Product{
		Name:        name,
		Description: "Test stone",
		Price:       decimal.RequireFromString(price),
		Images:      []string{"/img/" + slug + ".jpg"},
		Category:    "marble",
		Colors:      models.ColorOptions{{ID: "black", Name: "Black", Class: "bg-black"}},
		Sizes:       []string{"12x12", "24x24"},
		Stock:       100,
		SKU:         "TEST-" + slug[:8],
		Slug:        slug,
	})
	if err != nil {
		t.Fatalf("Create product %s: %v", name, err)
	}
	return product
}
