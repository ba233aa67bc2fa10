package container

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/FACorreiaa/go-user-sessions/config"
	"github.com/FACorreiaa/go-user-sessions/internal/api/auth"
	"github.com/FACorreiaa/go-user-sessions/internal/api/user"
	"github.com/FACorreiaa/go-user-sessions/internal/router"
	"github.com/FACorreiaa/go-user-sessions/internal/session"
	"github.com/FACorreiaa/go-user-sessions/internal/view"
)

// Container holds all application dependencies
type Container struct {
	Config      *config.Config
	Logger      *slog.Logger
	Pool        *pgxpool.Pool
	Redis       *redis.Client
	Sessions    *session.Manager
	AuthHandler *auth.AuthHandlerImpl
	UserHandler *user.UserHandlerImpl
}

// NewContainer builds repositories, services and handlers on top of an
// already migrated pool. The session backend is chosen by configuration.
func NewContainer(ctx context.Context, cfg *config.Config, pool *pgxpool.Pool, logger *slog.Logger) (*Container, error) {
	c := &Container{Config: cfg, Logger: logger, Pool: pool}

	store, err := c.sessionStore(ctx)
	if err != nil {
		return nil, err
	}
	c.Sessions = session.NewManager(store, session.Options{
		CookieName: cfg.Session.CookieName,
		HashKey:    []byte(cfg.Session.HashKey),
		TTL:        cfg.Session.TTL,
		Secure:     cfg.Session.Secure || cfg.IsProduction(),
	}, logger)

	renderer, err := view.New(logger)
	if err != nil {
		c.Close()
		return nil, err
	}
	hasher, err := auth.NewBcryptHasher(cfg.Password.BcryptCost)
	if err != nil {
		c.Close()
		return nil, err
	}

	userRepo := user.NewPostgresUserRepo(pool, logger)

	authService := auth.NewAuthService(userRepo, hasher, logger)
	c.AuthHandler = auth.NewAuthHandlerImpl(authService, c.Sessions, renderer, logger)

	userService := user.NewUserService(userRepo, logger)
	c.UserHandler = user.NewUserHandlerImpl(userService, renderer, logger)

	return c, nil
}

func (c *Container) sessionStore(ctx context.Context) (session.Store, error) {
	ttl := c.Config.Session.TTL
	switch c.Config.Session.Backend {
	case config.SessionBackendRedis:
		rc := c.Config.Repositories.Redis
		c.Redis = redis.NewClient(&redis.Options{
			Addr:     rc.Addr,
			Password: rc.Password,
			DB:       rc.DB,
		})
		if err := c.Redis.Ping(ctx).Err(); err != nil {
			c.Logger.Error("Failed to connect to redis", slog.String("addr", rc.Addr), slog.Any("error", err))
			_ = c.Redis.Close()
			c.Redis = nil
			return nil, fmt.Errorf("redis ping: %w", err)
		}
		c.Logger.Info("Using redis session store", slog.String("addr", rc.Addr))
		return session.NewRedisStore(c.Redis, ttl), nil
	case config.SessionBackendPostgres:
		c.Logger.Info("Using postgres session store")
		return session.NewPostgresStore(c.Pool, ttl), nil
	case config.SessionBackendMemory:
		c.Logger.Warn("Using in-memory session store; sessions are lost on restart")
		return session.NewMemoryStore(ttl), nil
	default:
		return nil, errors.New("unknown session backend: " + c.Config.Session.Backend)
	}
}

// RouterConfig exposes the wired handlers to the router.
func (c *Container) RouterConfig() *router.Config {
	return &router.Config{
		AuthHandler:    c.AuthHandler,
		UserHandler:    c.UserHandler,
		Sessions:       c.Sessions,
		AllowedOrigins: c.Config.Server.AllowedOrigins,
		Logger:         c.Logger,
	}
}

// Close releases resources the container opened itself. The pool belongs
// to the caller.
func (c *Container) Close() {
	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			c.Logger.Warn("Failed to close redis client", slog.Any("error", err))
		}
	}
}
