package user

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/FACorreiaa/go-user-sessions/internal/api"
	"github.com/FACorreiaa/go-user-sessions/internal/types"
	"github.com/FACorreiaa/go-user-sessions/internal/view"
)

const (
	usersPath        = "/users"
	actionSoftDelete = "softdelete"
)

type UserHandlerImpl struct {
	logger  *slog.Logger
	service UserService
	view    api.Renderer
}

func NewUserHandlerImpl(service UserService, renderer api.Renderer, logger *slog.Logger) *UserHandlerImpl {
	return &UserHandlerImpl{
		logger:  logger,
		service: service,
		view:    renderer,
	}
}

func (h *UserHandlerImpl) Dashboard(w http.ResponseWriter, r *http.Request, identity types.Identity) {
	h.view.Render(w, r, http.StatusOK, view.PageDashboard, view.DashboardPage{Page: view.PageFor(&identity)})
}

// Users lists active users. With both an action and a non-zero id it runs
// the action instead and redirects back to the list; unknown actions are
// ignored.
func (h *UserHandlerImpl) Users(w http.ResponseWriter, r *http.Request, identity types.Identity) {
	ctx := r.Context()
	q := r.URL.Query()
	action := q.Get("action")
	id := leadingInt(q.Get("id"))

	if action != "" && id != 0 {
		if action == actionSoftDelete {
			if _, err := h.service.SoftDelete(ctx, id, identity.UserID); err != nil {
				api.ServerError(w, r, h.logger, err)
				return
			}
		} else {
			h.logger.DebugContext(ctx, "Ignoring unknown user action", slog.String("action", action))
		}
		api.SeeOther(w, r, usersPath)
		return
	}

	users, err := h.service.ListActive(ctx)
	if err != nil {
		api.ServerError(w, r, h.logger, err)
		return
	}
	h.view.Render(w, r, http.StatusOK, view.PageUsers, view.UsersPage{
		Page:  view.PageFor(&identity),
		Users: view.NewUserRows(users),
	})
}

// leadingInt parses the optional sign and leading digits of s, so "5abc" is
// 5 and "abc" is 0.
func leadingInt(s string) int64 {
	s = strings.TrimSpace(s)
	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	start := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == start {
		return 0
	}
	n, err := strconv.ParseInt(s[:end], 10, 64)
	if err != nil {
		return 0
	}
	return n
}
