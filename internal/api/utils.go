package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is satisfied by *pgxpool.Pool, pgx.Tx and pgxmock pools.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// SeeOther redirects a browser with 303 so a POST is never replayed.
func SeeOther(w http.ResponseWriter, r *http.Request, location string) {
	http.Redirect(w, r, location, http.StatusSeeOther)
}

// ServerError logs err and aborts the request with a terse 500. Nothing
// about the cause is sent to the client.
func ServerError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	reqID := middleware.GetReqID(r.Context())
	logger.ErrorContext(r.Context(), "Request failed",
		slog.Any("error", err),
		slog.String("request_id", reqID),
		slog.String("path", r.URL.Path),
	)
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(http.StatusInternalServerError)
	if reqID != "" {
		_, _ = w.Write([]byte("Something went wrong (request " + reqID + ")\n"))
		return
	}
	_, _ = w.Write([]byte("Something went wrong\n"))
}

// Renderer writes a named page with its view model.
type Renderer interface {
	Render(w http.ResponseWriter, r *http.Request, status int, page string, data any)
}
