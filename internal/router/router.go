package router

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/FACorreiaa/go-user-sessions/internal/api/auth"
	"github.com/FACorreiaa/go-user-sessions/internal/api/user"
)

// Config contains dependencies needed for the router setup
type Config struct {
	AuthHandler    *auth.AuthHandlerImpl
	UserHandler    *user.UserHandlerImpl
	Sessions       auth.SessionLoader
	AllowedOrigins []string
	Logger         *slog.Logger
}

// SetupRouter wires the public and gated pages. Server-wide middleware
// (request id, logging, recovery) is applied by the caller.
func SetupRouter(cfg *Config) chi.Router {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("pong"))
	})

	// Logout needs no identity and must clear the cookie even when the
	// session backend cannot load the session.
	r.Get("/logout", cfg.AuthHandler.Logout)

	r.Group(func(r chi.Router) {
		r.Use(auth.LoadSession(cfg.Sessions, cfg.Logger))

		// Public pages. Signed-in users may still open the forms.
		r.Get("/", cfg.AuthHandler.Index)
		r.Get("/register", cfg.AuthHandler.RegisterForm)
		r.Post("/register", cfg.AuthHandler.Register)
		r.Get("/login", cfg.AuthHandler.LoginForm)
		r.Post("/login", cfg.AuthHandler.Login)

		// Gated pages receive the caller's identity.
		r.Get("/dashboard", auth.RequireAuthenticated(cfg.UserHandler.Dashboard))
		r.Get("/users", auth.RequireAuthenticated(cfg.UserHandler.Users))
	})

	return r
}
