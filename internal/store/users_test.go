package store

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/safar/stonecart/internal/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateUserNormalizesEmail(t *testing.T) {
	db, mock := newMockDB(t)
	id := uuid.New()

	mock.ExpectQuery(`INSERT INTO users`).
		WithArgs(sqlmock.AnyArg(), "ana@example.com", "Ana", "hash").
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "name", "password", "created_at"}).
			AddRow(id.String(), "ana@example.com", "Ana", "hash", time.Now()))

	user, err := CreateUser(context.Background(), db, " Ana@Example.com ", "Ana", "hash")
	require.NoError(t, err)
	assert.Equal(t, id, user.ID)
	assert.Equal(t, "hash", user.PasswordHash)
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery(`INSERT INTO users`).
		WillReturnError(&pq.Error{Code: "23505", Constraint: "users_email_key"})

	_, err := CreateUser(context.Background(), db, "ana@example.com", "Ana", "hash")
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestGetUserNotFound(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery(`FROM users\s+WHERE id = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "name", "password", "created_at"}))

	_, err := GetUser(context.Background(), db, uuid.New())
	assert.ErrorIs(t, err, database.ErrUserNotFound)
}
