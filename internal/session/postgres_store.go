package session

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/FACorreiaa/go-user-sessions/internal/types"
)

// DBTX is the subset of pgxpool.Pool the store needs.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

var _ Store = (*PostgresStore)(nil)

// PostgresStore keeps sessions in the sessions table. Expired rows are
// ignored on read and purged whenever a new session is created.
type PostgresStore struct {
	db  DBTX
	ttl time.Duration
	now func() time.Time
}

func NewPostgresStore(db DBTX, ttl time.Duration) *PostgresStore {
	return &PostgresStore{
		db:  db,
		ttl: ttl,
		now: time.Now,
	}
}

func (s *PostgresStore) Create(ctx context.Context, identity types.Identity) (string, error) {
	if _, err := s.db.Exec(ctx, `DELETE FROM sessions WHERE expires_at <= $1`, s.now()); err != nil {
		return "", types.NewStoreError("purge sessions", err)
	}

	token := uuid.New()
	_, err := s.db.Exec(ctx,
		`INSERT INTO sessions (token, user_id, user_name, expires_at) VALUES ($1, $2, $3, $4)`,
		token, identity.UserID, identity.UserName, s.now().Add(s.ttl))
	if err != nil {
		return "", types.NewStoreError("create session", err)
	}
	return token.String(), nil
}

func (s *PostgresStore) Get(ctx context.Context, token string) (types.Identity, error) {
	id, err := uuid.Parse(token)
	if err != nil {
		return types.Identity{}, types.ErrSessionNotFound
	}

	var identity types.Identity
	err = s.db.QueryRow(ctx,
		`SELECT user_id, user_name FROM sessions WHERE token = $1 AND expires_at > $2`,
		id, s.now()).Scan(&identity.UserID, &identity.UserName)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return types.Identity{}, types.ErrSessionNotFound
		}
		return types.Identity{}, types.NewStoreError("get session", err)
	}
	return identity, nil
}

func (s *PostgresStore) Destroy(ctx context.Context, token string) error {
	id, err := uuid.Parse(token)
	if err != nil {
		return nil
	}
	if _, err := s.db.Exec(ctx, `DELETE FROM sessions WHERE token = $1`, id); err != nil {
		return types.NewStoreError("destroy session", err)
	}
	return nil
}
