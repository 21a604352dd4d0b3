package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quiz-arena/backend/internal/user/domain"
)

var userCols = []string{"id", "email", "username", "password_hash", "gender", "country", "role", "created_at", "updated_at"}

func TestPostgresRepository_GetByEmail(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	tests := []struct {
		name      string
		setupMock func(mock pgxmock.PgxPoolIface)
		wantNil   bool
		wantErr   bool
	}{
		{
			name: "found",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(`SELECT .+ FROM users WHERE email = \$1`).
					WithArgs("a@b.co").
					WillReturnRows(pgxmock.NewRows(userCols).
						AddRow("u-1", "a@b.co", "alice", "hash", "FEMALE", "NL", "ADMIN", now, now))
			},
		},
		{
			name: "not found",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(`SELECT .+ FROM users WHERE email = \$1`).
					WithArgs("a@b.co").
					WillReturnRows(pgxmock.NewRows(userCols))
			},
			wantNil: true,
		},
		{
			name: "database error",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(`SELECT .+ FROM users WHERE email = \$1`).
					WithArgs("a@b.co").
					WillReturnError(errors.New("connection refused"))
			},
			wantNil: true,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, err := pgxmock.NewPool()
			require.NoError(t, err)
			defer mock.Close()
			tt.setupMock(mock)

			got, err := NewPostgresRepository(mock).GetByEmail(context.Background(), "a@b.co")
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "connection refused")
			} else {
				require.NoError(t, err)
			}
			if tt.wantNil {
				assert.Nil(t, got)
			} else {
				require.NotNil(t, got)
				assert.Equal(t, "u-1", got.ID)
				assert.Equal(t, domain.GenderFemale, got.Gender)
				assert.Equal(t, domain.RoleAdmin, got.Role)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestPostgresRepository_GetByID(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	now := time.Now().UTC()
	mock.ExpectQuery(`SELECT .+ FROM users WHERE id = \$1`).
		WithArgs("u-2").
		WillReturnRows(pgxmock.NewRows(userCols).
			AddRow("u-2", "b@b.co", "bob", "hash", "MALE", "DE", "USER", now, now))

	got, err := NewPostgresRepository(mock).GetByID(context.Background(), "u-2")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "bob", got.Username)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_Create(t *testing.T) {
	now := time.Now().UTC()
	u := &domain.User{ID: "u-1", Email: "a@b.co", Username: "alice", PasswordHash: "hash", Gender: domain.GenderOther, Country: "NL", Role: domain.RoleUser, CreatedAt: now, UpdatedAt: now}

	t.Run("inserted", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()
		mock.ExpectExec(`INSERT INTO users`).
			WithArgs("u-1", "a@b.co", "alice", "hash", "OTHER", "NL", "USER", now, now).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))

		require.NoError(t, NewPostgresRepository(mock).Create(context.Background(), u))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("duplicate email", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()
		mock.ExpectExec(`INSERT INTO users`).
			WillReturnError(&pgconn.PgError{Code: pgerrcode.UniqueViolation})

		err = NewPostgresRepository(mock).Create(context.Background(), u)
		assert.ErrorIs(t, err, domain.ErrEmailTaken)
	})
}
