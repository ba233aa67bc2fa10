package user

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/go-user-sessions/internal/types"
)

var userRowColumns = []string{"id", "name", "email", "password_hash", "status", "created_by", "updated_by", "created_at", "updated_at", "deleted_at"}

func newMockRepo(t *testing.T) (pgxmock.PgxPoolIface, *PostgresUserRepo) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return mock, NewPostgresUserRepo(mock, logger)
}

func TestPostgresUserRepo_FindActiveByEmail(t *testing.T) {
	ctx := context.Background()
	created := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	query := `SELECT .+ FROM users\s+WHERE email = \$1 AND status = 1 AND deleted_at IS NULL`

	t.Run("found", func(t *testing.T) {
		mock, repo := newMockRepo(t)
		mock.ExpectQuery(query).
			WithArgs("a@x.io").
			WillReturnRows(pgxmock.NewRows(userRowColumns).
				AddRow(int64(1), "Alice", "a@x.io", "$2a$hash", int16(1), nil, nil, created, created, nil))

		u, err := repo.FindActiveByEmail(ctx, "a@x.io")
		require.NoError(t, err)
		assert.Equal(t, int64(1), u.ID)
		assert.Equal(t, "Alice", u.Name)
		assert.Equal(t, "$2a$hash", u.PasswordHash)
		assert.True(t, u.IsActive())
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("no rows", func(t *testing.T) {
		mock, repo := newMockRepo(t)
		mock.ExpectQuery(query).WithArgs("ghost@x.io").WillReturnError(pgx.ErrNoRows)

		u, err := repo.FindActiveByEmail(ctx, "ghost@x.io")
		assert.Nil(t, u)
		assert.ErrorIs(t, err, types.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("query failure", func(t *testing.T) {
		mock, repo := newMockRepo(t)
		mock.ExpectQuery(query).WithArgs("a@x.io").WillReturnError(errors.New("connection reset"))

		_, err := repo.FindActiveByEmail(ctx, "a@x.io")
		var sErr *types.StoreError
		require.ErrorAs(t, err, &sErr)
		assert.Equal(t, "FindActiveByEmail", sErr.Op)
	})
}

func TestPostgresUserRepo_FindAnyByEmail(t *testing.T) {
	ctx := context.Background()
	mock, repo := newMockRepo(t)
	created := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT .+ FROM users WHERE email = \$1 LIMIT 1`).
		WithArgs("gone@x.io").
		WillReturnRows(pgxmock.NewRows(userRowColumns).
			AddRow(int64(4), "Gone", "gone@x.io", "$2a$hash", int16(0), nil, nil, created, created, nil))

	u, err := repo.FindAnyByEmail(ctx, "gone@x.io")
	require.NoError(t, err)
	assert.Equal(t, int64(4), u.ID)
	assert.False(t, u.IsActive())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresUserRepo_Insert(t *testing.T) {
	ctx := context.Background()
	query := `INSERT INTO users \(name, email, password_hash, status, created_by\)\s+VALUES \(\$1, \$2, \$3, 1, NULL\)\s+RETURNING id`

	t.Run("ok", func(t *testing.T) {
		mock, repo := newMockRepo(t)
		mock.ExpectQuery(query).
			WithArgs("Alice", "a@x.io", "$2a$hash").
			WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(9)))

		id, err := repo.Insert(ctx, "Alice", "a@x.io", "$2a$hash")
		require.NoError(t, err)
		assert.Equal(t, int64(9), id)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unique violation", func(t *testing.T) {
		mock, repo := newMockRepo(t)
		mock.ExpectQuery(query).
			WithArgs("Alice", "a@x.io", "$2a$hash").
			WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"})

		_, err := repo.Insert(ctx, "Alice", "a@x.io", "$2a$hash")
		assert.ErrorIs(t, err, types.ErrEmailTaken)
		assert.ErrorIs(t, err, types.ErrConflict)
	})

	t.Run("other failure", func(t *testing.T) {
		mock, repo := newMockRepo(t)
		mock.ExpectQuery(query).
			WithArgs("Alice", "a@x.io", "$2a$hash").
			WillReturnError(&pgconn.PgError{Code: "23514"})

		_, err := repo.Insert(ctx, "Alice", "a@x.io", "$2a$hash")
		var sErr *types.StoreError
		assert.ErrorAs(t, err, &sErr)
		assert.NotErrorIs(t, err, types.ErrEmailTaken)
	})
}

func TestPostgresUserRepo_ListActive(t *testing.T) {
	ctx := context.Background()
	query := `SELECT id, name, email, status, created_at, updated_at, deleted_at\s+FROM users\s+WHERE status = 1 AND deleted_at IS NULL\s+ORDER BY id ASC`
	cols := []string{"id", "name", "email", "status", "created_at", "updated_at", "deleted_at"}
	ts := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

	t.Run("ordered rows", func(t *testing.T) {
		mock, repo := newMockRepo(t)
		mock.ExpectQuery(query).WillReturnRows(pgxmock.NewRows(cols).
			AddRow(int64(1), "Alice", "a@x.io", int16(1), ts, ts, nil).
			AddRow(int64(3), "Carol", "c@x.io", int16(1), ts, ts, nil))

		users, err := repo.ListActive(ctx)
		require.NoError(t, err)
		require.Len(t, users, 2)
		assert.Equal(t, int64(1), users[0].ID)
		assert.Equal(t, int64(3), users[1].ID)
		assert.Empty(t, users[0].PasswordHash)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("empty", func(t *testing.T) {
		mock, repo := newMockRepo(t)
		mock.ExpectQuery(query).WillReturnRows(pgxmock.NewRows(cols))

		users, err := repo.ListActive(ctx)
		require.NoError(t, err)
		assert.Empty(t, users)
	})

	t.Run("query failure", func(t *testing.T) {
		mock, repo := newMockRepo(t)
		mock.ExpectQuery(query).WillReturnError(errors.New("boom"))

		_, err := repo.ListActive(ctx)
		var sErr *types.StoreError
		assert.ErrorAs(t, err, &sErr)
	})
}

func TestPostgresUserRepo_SoftDelete(t *testing.T) {
	ctx := context.Background()
	query := `UPDATE users\s+SET status = 0,\s+deleted_at = NOW\(\),\s+updated_at = NOW\(\),\s+updated_by = \$1\s+WHERE id = \$2\s+AND deleted_at IS NULL`

	t.Run("idempotent", func(t *testing.T) {
		mock, repo := newMockRepo(t)
		mock.ExpectExec(query).WithArgs(int64(1), int64(2)).WillReturnResult(pgxmock.NewResult("UPDATE", 1))
		mock.ExpectExec(query).WithArgs(int64(1), int64(2)).WillReturnResult(pgxmock.NewResult("UPDATE", 0))

		affected, err := repo.SoftDelete(ctx, 2, 1)
		require.NoError(t, err)
		assert.Equal(t, int64(1), affected)

		affected, err = repo.SoftDelete(ctx, 2, 1)
		require.NoError(t, err)
		assert.Equal(t, int64(0), affected)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("failure", func(t *testing.T) {
		mock, repo := newMockRepo(t)
		mock.ExpectExec(query).WithArgs(int64(1), int64(2)).WillReturnError(errors.New("deadlock"))

		_, err := repo.SoftDelete(ctx, 2, 1)
		var sErr *types.StoreError
		assert.ErrorAs(t, err, &sErr)
	})
}
