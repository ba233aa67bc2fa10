package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"

	"github.com/FACorreiaa/go-user-sessions/app/observability/metrics"
	"github.com/FACorreiaa/go-user-sessions/internal/types"
)

var _ AuthService = (*AuthServiceImpl)(nil)

// CredentialStore is the subset of the user repository that authentication needs.
type CredentialStore interface {
	FindActiveByEmail(ctx context.Context, email string) (*types.User, error)
	FindAnyByEmail(ctx context.Context, email string) (*types.User, error)
	Insert(ctx context.Context, name, email, passwordHash string) (int64, error)
}

// AuthService defines registration and credential checks.
type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (int64, error)
	Login(ctx context.Context, in LoginInput) (types.Identity, error)
}

type AuthServiceImpl struct {
	logger *slog.Logger
	repo   CredentialStore
	hasher PasswordHasher
}

func NewAuthService(repo CredentialStore, hasher PasswordHasher, logger *slog.Logger) *AuthServiceImpl {
	return &AuthServiceImpl{
		logger: logger,
		repo:   repo,
		hasher: hasher,
	}
}

// Register validates the form, rejects emails already on record (deleted
// accounts included), hashes the password and inserts an active user.
func (s *AuthServiceImpl) Register(ctx context.Context, in RegisterInput) (id int64, err error) {
	ctx, span := otel.Tracer("AuthService").Start(ctx, "Register")
	defer span.End()

	start := time.Now()
	defer func() {
		outcome := outcomeOf(err)
		attrs := metric.WithAttributes(attribute.String("outcome", outcome))
		m := metrics.Get()
		m.RegisterRequestsTotal.Add(ctx, 1, attrs)
		m.RegisterDurationSeconds.Record(ctx, time.Since(start).Seconds(), attrs)
		span.SetAttributes(attribute.String("outcome", outcome))
	}()

	l := s.logger.With(slog.String("method", "Register"))

	reg, err := ValidateRegistration(in)
	if err != nil {
		l.DebugContext(ctx, "Registration rejected", slog.Any("error", err))
		return 0, err
	}

	_, err = s.repo.FindAnyByEmail(ctx, reg.Email)
	switch {
	case err == nil:
		l.InfoContext(ctx, "Registration rejected, email on record")
		return 0, types.NewValidationError(types.MsgEmailRegistered)
	case !errors.Is(err, types.ErrNotFound):
		span.RecordError(err)
		span.SetStatus(codes.Error, "lookup failed")
		return 0, err
	}

	hash, err := s.hasher.Hash(reg.Password)
	if err != nil {
		if errors.Is(err, ErrPasswordTooLong) {
			return 0, types.NewValidationError(MsgPasswordTooLong)
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "hash failed")
		l.ErrorContext(ctx, "Failed to hash password", slog.Any("error", err))
		return 0, fmt.Errorf("error hashing password: %w", err)
	}

	id, err = s.repo.Insert(ctx, reg.Name, reg.Email, hash)
	if err != nil {
		if errors.Is(err, types.ErrEmailTaken) {
			return 0, types.NewValidationError(types.MsgEmailRegistered)
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "insert failed")
		return 0, err
	}

	l.InfoContext(ctx, "User registered", slog.Int64("userID", id))
	span.SetStatus(codes.Ok, "registered")
	return id, nil
}

// Login returns the identity for valid credentials of an active user. Every
// credential failure yields the same AuthError and costs one bcrypt compare.
func (s *AuthServiceImpl) Login(ctx context.Context, in LoginInput) (identity types.Identity, err error) {
	ctx, span := otel.Tracer("AuthService").Start(ctx, "Login")
	defer span.End()

	defer func() {
		outcome := outcomeOf(err)
		metrics.Get().LoginAttemptsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
		span.SetAttributes(attribute.String("outcome", outcome))
	}()

	l := s.logger.With(slog.String("method", "Login"))

	creds, err := ValidateLogin(in)
	if err != nil {
		return types.Identity{}, err
	}

	user, err := s.repo.FindActiveByEmail(ctx, creds.Email)
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			s.hasher.Verify(creds.Password, "")
			l.InfoContext(ctx, "Login failed")
			return types.Identity{}, types.NewAuthError()
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "lookup failed")
		return types.Identity{}, err
	}

	matched := s.hasher.Verify(creds.Password, user.PasswordHash)
	if !matched || !user.IsActive() {
		l.InfoContext(ctx, "Login failed")
		return types.Identity{}, types.NewAuthError()
	}

	l.InfoContext(ctx, "Login succeeded", slog.Int64("userID", user.ID))
	return types.Identity{UserID: user.ID, UserName: user.Name}, nil
}

func outcomeOf(err error) string {
	if err == nil {
		return "success"
	}
	var vErr *types.ValidationError
	if errors.As(err, &vErr) {
		return "invalid"
	}
	var aErr *types.AuthError
	if errors.As(err, &aErr) {
		return "denied"
	}
	return "error"
}
