package userRepo

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"files-manager/internal/model/apperr"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRepoWithMock(t *testing.T) (*UserRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return New(db), mock
}

func TestUserRepo_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("returns generated id", func(t *testing.T) {
		repo, mock := newRepoWithMock(t)
		mock.ExpectQuery(`^INSERT INTO users \(email, password_hash\) VALUES \(\$1, \$2\) RETURNING id$`).
			WithArgs("bob@x.com", "hash").
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(5)))

		id, err := repo.Create(ctx, "bob@x.com", "hash")
		require.NoError(t, err)
		assert.Equal(t, int64(5), id)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("duplicate email", func(t *testing.T) {
		repo, mock := newRepoWithMock(t)
		mock.ExpectQuery(`^INSERT INTO users`).
			WithArgs("bob@x.com", "hash").
			WillReturnError(&pgconn.PgError{Code: "23505"})

		_, err := repo.Create(ctx, "bob@x.com", "hash")
		assert.ErrorIs(t, err, apperr.ErrAlreadyExists)
	})

	t.Run("db failure", func(t *testing.T) {
		repo, mock := newRepoWithMock(t)
		mock.ExpectQuery(`^INSERT INTO users`).WillReturnError(errors.New("conn reset"))

		_, err := repo.Create(ctx, "bob@x.com", "hash")
		assert.ErrorContains(t, err, "conn reset")
		assert.NotErrorIs(t, err, apperr.ErrAlreadyExists)
	})
}

func TestUserRepo_GetByEmail(t *testing.T) {
	ctx := context.Background()
	now := time.Now()

	t.Run("found", func(t *testing.T) {
		repo, mock := newRepoWithMock(t)
		mock.ExpectQuery(`^SELECT id, email, password_hash, created_at FROM users WHERE email=\$1$`).
			WithArgs("bob@x.com").
			WillReturnRows(sqlmock.NewRows([]string{"id", "email", "password_hash", "created_at"}).
				AddRow(int64(1), "bob@x.com", "hash", now))

		u, err := repo.GetByEmail(ctx, "bob@x.com")
		require.NoError(t, err)
		assert.Equal(t, int64(1), u.ID)
		assert.Equal(t, "hash", u.Password)
	})

	t.Run("missing", func(t *testing.T) {
		repo, mock := newRepoWithMock(t)
		mock.ExpectQuery(`FROM users WHERE email=\$1`).
			WithArgs("nobody@x.com").
			WillReturnError(sql.ErrNoRows)

		_, err := repo.GetByEmail(ctx, "nobody@x.com")
		assert.ErrorIs(t, err, apperr.ErrNotFound)
	})
}

func TestUserRepo_GetByIDAndCount(t *testing.T) {
	ctx := context.Background()
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`FROM users WHERE id=\$1`).
		WithArgs(int64(2)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "password_hash", "created_at"}).
			AddRow(int64(2), "amy@x.com", "hash", time.Now()))
	mock.ExpectQuery(`^SELECT count\(\*\) FROM users$`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(4)))

	u, err := repo.GetByID(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, "amy@x.com", u.Email)

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}
