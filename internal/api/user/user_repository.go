package user

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/go-user-sessions/app/observability/metrics"
	"github.com/FACorreiaa/go-user-sessions/internal/api"
	"github.com/FACorreiaa/go-user-sessions/internal/types"
)

const pgUniqueViolation = "23505"

const userColumns = `id, name, email, password_hash, status, created_by, updated_by, created_at, updated_at, deleted_at`

var _ UserRepo = (*PostgresUserRepo)(nil)

// UserRepo is the credential store.
type UserRepo interface {
	// FindActiveByEmail returns the active, non deleted user with exactly this
	// email or types.ErrNotFound.
	FindActiveByEmail(ctx context.Context, email string) (*types.User, error)
	// FindAnyByEmail ignores status and deletion. Registration uses it so a
	// deleted account keeps its email reserved.
	FindAnyByEmail(ctx context.Context, email string) (*types.User, error)
	// Insert creates an active user and returns its id. A duplicate email
	// yields types.ErrEmailTaken.
	Insert(ctx context.Context, name, email, passwordHash string) (int64, error)
	// ListActive returns active users ordered by id.
	ListActive(ctx context.Context) ([]types.User, error)
	// SoftDelete deactivates a user once; later calls affect no rows.
	SoftDelete(ctx context.Context, id, actingUserID int64) (int64, error)
}

type PostgresUserRepo struct {
	logger *slog.Logger
	db     api.DBTX
}

func NewPostgresUserRepo(db api.DBTX, logger *slog.Logger) *PostgresUserRepo {
	return &PostgresUserRepo{
		logger: logger,
		db:     db,
	}
}

func (r *PostgresUserRepo) FindActiveByEmail(ctx context.Context, email string) (*types.User, error) {
	ctx, span := startSpan(ctx, "FindActiveByEmail", "SELECT")
	defer span.End()

	query := `SELECT ` + userColumns + ` FROM users
		WHERE email = $1 AND status = 1 AND deleted_at IS NULL
		LIMIT 1`
	return r.findOne(ctx, span, "FindActiveByEmail", query, email)
}

func (r *PostgresUserRepo) FindAnyByEmail(ctx context.Context, email string) (*types.User, error) {
	ctx, span := startSpan(ctx, "FindAnyByEmail", "SELECT")
	defer span.End()

	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1 LIMIT 1`
	return r.findOne(ctx, span, "FindAnyByEmail", query, email)
}

func (r *PostgresUserRepo) findOne(ctx context.Context, span trace.Span, op, query, email string) (*types.User, error) {
	start := time.Now()
	var u types.User
	err := r.db.QueryRow(ctx, query, email).Scan(
		&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Status,
		&u.CreatedBy, &u.UpdatedBy, &u.CreatedAt, &u.UpdatedAt, &u.DeletedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		observe(ctx, op, start, nil)
		span.SetStatus(codes.Ok, "no rows")
		return nil, types.ErrNotFound
	}
	observe(ctx, op, start, err)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "query failed")
		r.logger.ErrorContext(ctx, "User lookup failed", slog.String("method", op), slog.Any("error", err))
		return nil, types.NewStoreError(op, err)
	}
	span.SetAttributes(attribute.Int64("db.user.id", u.ID))
	return &u, nil
}

func (r *PostgresUserRepo) Insert(ctx context.Context, name, email, passwordHash string) (int64, error) {
	ctx, span := startSpan(ctx, "Insert", "INSERT")
	defer span.End()

	start := time.Now()
	var id int64
	err := r.db.QueryRow(ctx,
		`INSERT INTO users (name, email, password_hash, status, created_by)
		 VALUES ($1, $2, $3, 1, NULL)
		 RETURNING id`,
		name, email, passwordHash).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			observe(ctx, "Insert", start, nil)
			span.SetStatus(codes.Error, "email taken")
			r.logger.WarnContext(ctx, "Insert lost registration race on email")
			return 0, types.ErrEmailTaken
		}
		observe(ctx, "Insert", start, err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "insert failed")
		r.logger.ErrorContext(ctx, "Failed to insert user", slog.Any("error", err))
		return 0, types.NewStoreError("Insert", err)
	}
	observe(ctx, "Insert", start, nil)

	span.SetAttributes(attribute.Int64("db.user.id", id))
	r.logger.InfoContext(ctx, "User inserted", slog.Int64("userID", id))
	return id, nil
}

func (r *PostgresUserRepo) ListActive(ctx context.Context) ([]types.User, error) {
	ctx, span := startSpan(ctx, "ListActive", "SELECT")
	defer span.End()

	start := time.Now()
	rows, err := r.db.Query(ctx,
		`SELECT id, name, email, status, created_at, updated_at, deleted_at
		 FROM users
		 WHERE status = 1 AND deleted_at IS NULL
		 ORDER BY id ASC`)
	if err != nil {
		observe(ctx, "ListActive", start, err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "query failed")
		return nil, types.NewStoreError("ListActive", err)
	}
	defer rows.Close()

	var users []types.User
	for rows.Next() {
		var u types.User
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.Status, &u.CreatedAt, &u.UpdatedAt, &u.DeletedAt); err != nil {
			observe(ctx, "ListActive", start, err)
			span.RecordError(err)
			return nil, types.NewStoreError("ListActive scan", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		observe(ctx, "ListActive", start, err)
		span.RecordError(err)
		return nil, types.NewStoreError("ListActive rows", err)
	}
	observe(ctx, "ListActive", start, nil)

	span.SetAttributes(attribute.Int("db.rows", len(users)))
	return users, nil
}

func (r *PostgresUserRepo) SoftDelete(ctx context.Context, id, actingUserID int64) (int64, error) {
	ctx, span := startSpan(ctx, "SoftDelete", "UPDATE")
	defer span.End()
	span.SetAttributes(attribute.Int64("db.user.id", id), attribute.Int64("acting.user.id", actingUserID))

	start := time.Now()
	tag, err := r.db.Exec(ctx,
		`UPDATE users
		 SET status = 0,
		     deleted_at = NOW(),
		     updated_at = NOW(),
		     updated_by = $1
		 WHERE id = $2
		   AND deleted_at IS NULL`,
		actingUserID, id)
	observe(ctx, "SoftDelete", start, err)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "update failed")
		r.logger.ErrorContext(ctx, "Failed to soft delete user", slog.Int64("userID", id), slog.Any("error", err))
		return 0, types.NewStoreError("SoftDelete", err)
	}

	affected := tag.RowsAffected()
	if affected == 0 {
		r.logger.DebugContext(ctx, "Soft delete matched no live user", slog.Int64("userID", id))
	}
	return affected, nil
}

func startSpan(ctx context.Context, name, operation string) (context.Context, trace.Span) {
	return otel.Tracer("UserRepo").Start(ctx, name, trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.operation", operation),
		attribute.String("db.sql.table", "users"),
	))
}

func observe(ctx context.Context, op string, start time.Time, err error) {
	m := metrics.Get()
	attrs := metric.WithAttributes(attribute.String("db.method", op))
	m.DbQueryDurationSeconds.Record(ctx, time.Since(start).Seconds(), attrs)
	if err != nil {
		m.DbQueryErrorsTotal.Add(ctx, 1, attrs)
	}
}

