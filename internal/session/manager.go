package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/securecookie"

	"github.com/FACorreiaa/go-user-sessions/internal/types"
)

// Options configures the session cookie.
type Options struct {
	CookieName string
	HashKey    []byte
	TTL        time.Duration
	Secure     bool
}

// Manager binds a Store to the signed session cookie.
type Manager struct {
	store  Store
	codec  *securecookie.SecureCookie
	opts   Options
	logger *slog.Logger
}

func NewManager(store Store, opts Options, logger *slog.Logger) *Manager {
	codec := securecookie.New(opts.HashKey, nil)
	codec.MaxAge(int(opts.TTL.Seconds()))
	return &Manager{
		store:  store,
		codec:  codec,
		opts:   opts,
		logger: logger,
	}
}

// Token returns the session token presented by the request, or "" when the
// cookie is missing or its signature does not verify.
func (m *Manager) Token(r *http.Request) string {
	c, err := r.Cookie(m.opts.CookieName)
	if err != nil {
		return ""
	}
	var token string
	if err := m.codec.Decode(m.opts.CookieName, c.Value, &token); err != nil {
		m.logger.DebugContext(r.Context(), "Rejected session cookie", slog.Any("error", err))
		return ""
	}
	return token
}

// Load resolves the request's session. A nil identity with a nil error means
// the caller is anonymous.
func (m *Manager) Load(r *http.Request) (*types.Identity, error) {
	token := m.Token(r)
	if token == "" {
		return nil, nil
	}
	identity, err := m.store.Get(r.Context(), token)
	if err != nil {
		if errors.Is(err, types.ErrSessionNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &identity, nil
}

// Login binds identity to a freshly issued token. Any token the caller
// already presented is destroyed first so a planted token never becomes
// authenticated.
func (m *Manager) Login(w http.ResponseWriter, r *http.Request, identity types.Identity) (string, error) {
	ctx := r.Context()
	if old := m.Token(r); old != "" {
		if err := m.store.Destroy(ctx, old); err != nil {
			return "", err
		}
	}

	token, err := m.store.Create(ctx, identity)
	if err != nil {
		return "", err
	}
	encoded, err := m.codec.Encode(m.opts.CookieName, token)
	if err != nil {
		_ = m.store.Destroy(context.WithoutCancel(ctx), token)
		return "", fmt.Errorf("encode session cookie: %w", err)
	}

	http.SetCookie(w, m.cookie(encoded, int(m.opts.TTL.Seconds())))
	return token, nil
}

// Logout destroys the presented session and expires the cookie. The cookie is
// cleared even if the store fails.
func (m *Manager) Logout(w http.ResponseWriter, r *http.Request) error {
	http.SetCookie(w, m.cookie("", -1))
	token := m.Token(r)
	if token == "" {
		return nil
	}
	return m.store.Destroy(r.Context(), token)
}

func (m *Manager) cookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     m.opts.CookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   m.opts.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}
