package auth

import (
	"log/slog"
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/FACorreiaa/go-user-sessions/internal/api"
	"github.com/FACorreiaa/go-user-sessions/internal/types"
	"github.com/FACorreiaa/go-user-sessions/internal/view"
)

// SessionManager issues and clears the session cookie.
type SessionManager interface {
	Login(w http.ResponseWriter, r *http.Request, identity types.Identity) (string, error)
	Logout(w http.ResponseWriter, r *http.Request) error
}

type AuthHandlerImpl struct {
	logger   *slog.Logger
	service  AuthService
	sessions SessionManager
	view     api.Renderer
}

func NewAuthHandlerImpl(service AuthService, sessions SessionManager, renderer api.Renderer, logger *slog.Logger) *AuthHandlerImpl {
	return &AuthHandlerImpl{
		logger:   logger,
		service:  service,
		sessions: sessions,
		view:     renderer,
	}
}

// Index is public and adapts its links to the session state.
func (h *AuthHandlerImpl) Index(w http.ResponseWriter, r *http.Request) {
	h.view.Render(w, r, http.StatusOK, view.PageIndex, view.IndexPage{
		Page: view.PageFor(IdentityFromContext(r.Context())),
	})
}

func (h *AuthHandlerImpl) RegisterForm(w http.ResponseWriter, r *http.Request) {
	h.view.Render(w, r, http.StatusOK, view.PageRegister, view.RegisterPage{
		Page: view.PageFor(IdentityFromContext(r.Context())),
	})
}

// Register handles the registration form. Recoverable failures re-render the
// form with the previous name and email.
func (h *AuthHandlerImpl) Register(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("AuthHandler").Start(r.Context(), "Register")
	defer span.End()
	r = r.WithContext(ctx)

	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}
	in := RegisterInput{
		Name:            r.PostFormValue("name"),
		Email:           r.PostFormValue("email"),
		Password:        r.PostFormValue("password"),
		PasswordConfirm: r.PostFormValue("password_confirm"),
	}

	id, err := h.service.Register(ctx, in)
	if err != nil {
		msg, ok := types.UserMessage(err)
		if !ok {
			api.ServerError(w, r, h.logger, err)
			return
		}
		h.view.Render(w, r, http.StatusOK, view.PageRegister, view.RegisterPage{
			Page:  view.PageFor(IdentityFromContext(ctx)),
			Error: msg,
			Name:  in.Name,
			Email: in.Email,
		})
		return
	}

	span.SetAttributes(attribute.Int64("user.id", id))
	api.SeeOther(w, r, LoginPath)
}

func (h *AuthHandlerImpl) LoginForm(w http.ResponseWriter, r *http.Request) {
	h.view.Render(w, r, http.StatusOK, view.PageLogin, view.LoginPage{
		Page: view.PageFor(IdentityFromContext(r.Context())),
	})
}

// Login checks credentials and, on success, issues a new session token
// before redirecting to the dashboard.
func (h *AuthHandlerImpl) Login(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("AuthHandler").Start(r.Context(), "Login")
	defer span.End()
	r = r.WithContext(ctx)

	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}
	in := LoginInput{
		Email:    r.PostFormValue("email"),
		Password: r.PostFormValue("password"),
	}

	identity, err := h.service.Login(ctx, in)
	if err != nil {
		msg, ok := types.UserMessage(err)
		if !ok {
			api.ServerError(w, r, h.logger, err)
			return
		}
		h.view.Render(w, r, http.StatusOK, view.PageLogin, view.LoginPage{
			Page:  view.PageFor(IdentityFromContext(ctx)),
			Error: msg,
			Email: in.Email,
		})
		return
	}

	if _, err := h.sessions.Login(w, r, identity); err != nil {
		api.ServerError(w, r, h.logger, err)
		return
	}
	api.SeeOther(w, r, "/dashboard")
}

// Logout always ends at the login page; a store failure is only logged
// because the cookie has already been cleared.
func (h *AuthHandlerImpl) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Logout(w, r); err != nil {
		h.logger.WarnContext(r.Context(), "Failed to destroy session", slog.Any("error", err))
	}
	api.SeeOther(w, r, LoginPath)
}
