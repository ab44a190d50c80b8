package common

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/a-h/templ"
	"github.com/stretchr/testify/assert"

	"github.com/leapstack-labs/launchpad/internal/ui/session"
	"github.com/leapstack-labs/launchpad/pkg/core"
)

func TestShell(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/pipeline/abc", nil)

	page := Shell(req, "Pipeline", "/pipeline/updates")
	assert.Equal(t, "Pipeline", page.Title)
	assert.Equal(t, "/pipeline/abc", page.Path)
	assert.Equal(t, "/pipeline/updates", page.UpdatesURL)
	assert.Nil(t, page.User)

	req = req.WithContext(session.WithUser(req.Context(), core.User{Name: "ada"}))
	page = Shell(req, "Pipeline", "")
	if assert.NotNil(t, page.User) {
		assert.Equal(t, "ada", page.User.Name)
	}
}

func TestRender(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	rec := httptest.NewRecorder()
	Render(rec, req, http.StatusUnprocessableEntity, templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		_, err := io.WriteString(w, "<p>ok</p>")
		return err
	}))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "<p>ok</p>", rec.Body.String())
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))

	rec = httptest.NewRecorder()
	Render(rec, req, http.StatusOK, templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		_, _ = io.WriteString(w, "<p>partial")
		return errors.New("boom")
	}))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "partial")
}

func TestRender_LogsThroughInjectedLogger(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))

	var handler http.Handler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Same(t, logger, Logger(r))
		Render(w, r, http.StatusOK, templ.ComponentFunc(func(context.Context, io.Writer) error {
			return errors.New("boom")
		}))
	})
	handler = WithLogger(logger)(handler)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/settings", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, logs.String(), "failed to render page")
	assert.Contains(t, logs.String(), "path=/settings")
}

func TestLogger_DefaultsToDiscard(t *testing.T) {
	assert.NotNil(t, Logger(httptest.NewRequest(http.MethodGet, "/", nil)))
}

func TestField(t *testing.T) {
	form := url.Values{"name": {"  Orders DB "}}
	req := httptest.NewRequest(http.MethodPost, "/connections", bytes.NewBufferString(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	assert.Equal(t, "Orders DB", Field(req, "name"))
	assert.Empty(t, Field(req, "missing"))
}

func TestPort(t *testing.T) {
	tests := []struct {
		in       string
		fallback int
		want     int
	}{
		{"5432", 1, 5432},
		{" 3306 ", 1, 3306},
		{"", 5432, 5432},
		{"abc", 5432, 5432},
		{"0", 1433, 1433},
		{"70000", 1, 70000},
		{"-1", 1, -1},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Port(tt.in, tt.fallback), "Port(%q)", tt.in)
	}
}

func TestLocalPath(t *testing.T) {
	tests := []struct {
		next string
		want string
	}{
		{"/pipeline/abc", "/pipeline/abc"},
		{"/pipeline", "/pipeline"},
		{"https://evil.example/pipeline", "/pipeline"},
		{"//evil.example", "/pipeline"},
		{"/dashboard", "/pipeline"},
		{"", "/pipeline"},
		{"/pipeline\\..", "/pipeline"},
	}

	for _, tt := range tests {
		got := LocalPath(tt.next, "/pipeline", "/pipeline")
		assert.Equal(t, tt.want, got, "LocalPath(%q)", tt.next)
		assert.True(t, strings.HasPrefix(got, "/pipeline"))
	}
}
