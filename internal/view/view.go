// Package view renders the server side HTML pages.
package view

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
)

//go:embed templates/*.html
var templateFS embed.FS

const (
	PageIndex     = "index.html"
	PageRegister  = "register.html"
	PageLogin     = "login.html"
	PageDashboard = "dashboard.html"
	PageUsers     = "users.html"
)

var pages = []string{PageIndex, PageRegister, PageLogin, PageDashboard, PageUsers}

type Renderer struct {
	templates map[string]*template.Template
	logger    *slog.Logger
}

// New parses every page together with the shared layout.
func New(logger *slog.Logger) (*Renderer, error) {
	templates := make(map[string]*template.Template, len(pages))
	for _, page := range pages {
		t, err := template.New(page).ParseFS(templateFS, "templates/layout.html", "templates/"+page)
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", page, err)
		}
		templates[page] = t
	}
	return &Renderer{templates: templates, logger: logger}, nil
}

// Render executes page into a buffer first so a template failure never
// leaves a half written response.
func (v *Renderer) Render(w http.ResponseWriter, r *http.Request, status int, page string, data any) {
	t, ok := v.templates[page]
	if !ok {
		v.logger.ErrorContext(r.Context(), "Unknown page", slog.String("page", page))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", data); err != nil {
		v.logger.ErrorContext(r.Context(), "Failed to render page", slog.String("page", page), slog.Any("error", err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		v.logger.WarnContext(r.Context(), "Failed to write page", slog.String("page", page), slog.Any("error", err))
	}
}
