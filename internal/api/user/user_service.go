package user

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/FACorreiaa/go-user-sessions/app/observability/metrics"
	"github.com/FACorreiaa/go-user-sessions/internal/types"
)

var _ UserService = (*UserServiceImpl)(nil)

// UserService defines the user administration operations.
type UserService interface {
	ListActive(ctx context.Context) ([]types.User, error)
	SoftDelete(ctx context.Context, id, actingUserID int64) (int64, error)
}

type UserServiceImpl struct {
	logger *slog.Logger
	repo   UserRepo
}

func NewUserService(repo UserRepo, logger *slog.Logger) *UserServiceImpl {
	return &UserServiceImpl{
		logger: logger,
		repo:   repo,
	}
}

func (s *UserServiceImpl) ListActive(ctx context.Context) ([]types.User, error) {
	ctx, span := otel.Tracer("UserService").Start(ctx, "ListActive")
	defer span.End()

	users, err := s.repo.ListActive(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "list failed")
		return nil, fmt.Errorf("error listing active users: %w", err)
	}
	span.SetAttributes(attribute.Int("users.count", len(users)))
	return users, nil
}

// SoftDelete deactivates id on behalf of actingUserID. Zero affected rows
// (unknown or already deleted user) is not an error.
func (s *UserServiceImpl) SoftDelete(ctx context.Context, id, actingUserID int64) (int64, error) {
	ctx, span := otel.Tracer("UserService").Start(ctx, "SoftDelete")
	defer span.End()

	l := s.logger.With(slog.String("method", "SoftDelete"), slog.Int64("userID", id), slog.Int64("actingUserID", actingUserID))

	affected, err := s.repo.SoftDelete(ctx, id, actingUserID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "soft delete failed")
		return 0, fmt.Errorf("error soft deleting user: %w", err)
	}
	if affected > 0 {
		metrics.Get().SoftDeletesTotal.Add(ctx, affected)
		l.InfoContext(ctx, "User soft deleted")
	} else {
		l.DebugContext(ctx, "Soft delete was a no-op")
	}
	return affected, nil
}
