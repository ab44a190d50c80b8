// Package common provides shared helpers for UI features.
package common

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"

	"github.com/a-h/templ"

	"github.com/leapstack-labs/launchpad/internal/ui/components"
	"github.com/leapstack-labs/launchpad/internal/ui/session"
)

type loggerKey struct{}

// WithLogger makes logger available to handlers through Logger.
func WithLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), loggerKey{}, logger)))
		})
	}
}

// Logger returns the logger installed by WithLogger, or a discard logger.
func Logger(r *http.Request) *slog.Logger {
	if logger, ok := r.Context().Value(loggerKey{}).(*slog.Logger); ok && logger != nil {
		return logger
	}
	return slog.New(slog.DiscardHandler)
}

// Shell builds the page chrome for r. updates is the datastar stream the
// page subscribes to, empty for static pages.
func Shell(r *http.Request, title, updates string) components.PageData {
	page := components.PageData{
		Title:      title,
		Path:       r.URL.Path,
		UpdatesURL: updates,
	}
	if user, ok := session.UserFrom(r.Context()); ok {
		page.User = &user
	}
	return page
}

// Render writes c with status. Render errors become a 500.
func Render(w http.ResponseWriter, r *http.Request, status int, c templ.Component) {
	var buf bytes.Buffer
	if err := c.Render(r.Context(), &buf); err != nil {
		Logger(r).ErrorContext(r.Context(), "failed to render page", "path", r.URL.Path, "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// SeeOther redirects a form post back to a page.
func SeeOther(w http.ResponseWriter, r *http.Request, to string) {
	http.Redirect(w, r, to, http.StatusSeeOther)
}
