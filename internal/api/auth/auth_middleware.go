package auth

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/FACorreiaa/go-user-sessions/internal/api"
	"github.com/FACorreiaa/go-user-sessions/internal/types"
)

type contextKey string

const identityKey contextKey = "identity"

// LoginPath is where the gate sends anonymous callers.
const LoginPath = "/login"

// SessionLoader resolves a request's session cookie. A nil identity with a
// nil error means anonymous.
type SessionLoader interface {
	Load(r *http.Request) (*types.Identity, error)
}

// LoadSession stores the caller's identity, or nil, in the request context.
// A failing session backend aborts the request.
func LoadSession(loader SessionLoader, logger *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, err := loader.Load(r)
			if err != nil {
				api.ServerError(w, r, logger.With(slog.String("middleware", "LoadSession")), err)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), identity)))
		})
	}
}

func WithIdentity(ctx context.Context, identity *types.Identity) context.Context {
	return context.WithValue(ctx, identityKey, identity)
}

// IdentityFromContext returns nil for anonymous requests.
func IdentityFromContext(ctx context.Context) *types.Identity {
	identity, _ := ctx.Value(identityKey).(*types.Identity)
	return identity
}

func IsAuthenticated(ctx context.Context) bool {
	return IdentityFromContext(ctx) != nil
}

// Redirect tells the dispatcher to send the browser elsewhere instead of
// running the handler.
type Redirect struct {
	Location string
}

// Gate returns the caller's identity or a redirect to the login page.
func Gate(r *http.Request) (types.Identity, *Redirect) {
	identity := IdentityFromContext(r.Context())
	if identity == nil {
		return types.Identity{}, &Redirect{Location: LoginPath}
	}
	return *identity, nil
}

// AuthenticatedHandler handles a request from a logged-in user.
type AuthenticatedHandler func(w http.ResponseWriter, r *http.Request, identity types.Identity)

// RequireAuthenticated runs h only after Gate lets the request through.
func RequireAuthenticated(h AuthenticatedHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, redirect := Gate(r)
		if redirect != nil {
			api.SeeOther(w, r, redirect.Location)
			return
		}
		h(w, r, identity)
	}
}
