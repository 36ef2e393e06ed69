package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/safar/stonecart/internal/database"
	"github.com/safar/stonecart/internal/models"
)

var ErrEmailTaken = errors.New("email already registered")

func CreateUser(ctx context.Context, db DBTX, email, name, passwordHash string) (*models.User, error) {
	user := &models.User{}

	query := `
		INSERT INTO users (id, email, name, password, created_at)
		VALUES ($1, $2, $3, $4, NOW())
		RETURNING id, email, name, password, created_at`

	err := db.QueryRowContext(ctx, query, uuid.New(), strings.ToLower(strings.TrimSpace(email)), name, passwordHash).Scan(
		&user.ID,
		&user.Email,
		&user.Name,
		&user.PasswordHash,
		&user.CreatedAt,
	)
	if err != nil {
		if _, ok := database.IsUniqueViolation(err); ok {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	return user, nil
}

func GetUser(ctx context.Context, db DBTX, id uuid.UUID) (*models.User, error) {
	return getUserBy(ctx, db, "id", id)
}

func GetUserByEmail(ctx context.Context, db DBTX, email string) (*models.User, error) {
	return getUserBy(ctx, db, "email", strings.ToLower(strings.TrimSpace(email)))
}

func getUserBy(ctx context.Context, db DBTX, column string, value any) (*models.User, error) {
	user := &models.User{}

	query := `
		SELECT id, email, name, password, created_at
		FROM users
		WHERE ` + column + ` = $1`

	err := db.QueryRowContext(ctx, query, value).Scan(
		&user.ID,
		&user.Email,
		&user.Name,
		&user.PasswordHash,
		&user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, database.ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	return user, nil
}
