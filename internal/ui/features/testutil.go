// Package features provides shared test utilities for UI feature tests.
package features

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/launchpad/internal/auth"
	"github.com/leapstack-labs/launchpad/internal/notifier"
	"github.com/leapstack-labs/launchpad/internal/registry"
	"github.com/leapstack-labs/launchpad/internal/state"
	"github.com/leapstack-labs/launchpad/internal/testutil"
	"github.com/leapstack-labs/launchpad/internal/ui/session"
	"github.com/leapstack-labs/launchpad/pkg/core"
)

// FixedNow is the clock every fixture container runs on.
var FixedNow = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

// TestFixture holds all dependencies needed for UI handler tests.
type TestFixture struct {
	Store        core.KVStore
	Container    *registry.Container
	Auth         *auth.Service
	Notifier     *notifier.Notifier
	SessionStore *sessions.CookieStore
	Logger       *slog.Logger

	t       *testing.T
	session core.Session
}

// SetupTestFixture creates a seeded in-memory workspace with short
// simulated latencies.
func SetupTestFixture(t *testing.T) *TestFixture {
	t.Helper()

	logger := testutil.NewTestLogger(t)
	store := state.NewMemoryStore()
	notify := notifier.New()

	container, err := registry.New(context.Background(), registry.Config{
		Store:       store,
		Notifier:    notify,
		Logger:      logger,
		TestLatency: 20 * time.Millisecond,
		RunLatency:  20 * time.Millisecond,
		Now:         func() time.Time { return FixedNow },
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Close() })

	return &TestFixture{
		Store:     store,
		Container: container,
		Auth: auth.NewService(auth.Config{
			Store:    store,
			Notifier: notify,
			Logger:   logger,
			Latency:  time.Millisecond,
		}),
		Notifier:     notify,
		SessionStore: NewTestSessionStore(),
		Logger:       logger,
		t:            t,
	}
}

// SignIn opens a session for ada@example.com.
func (f *TestFixture) SignIn() core.Session {
	f.t.Helper()
	sess, err := f.Auth.Login(context.Background(), core.Credentials{
		Email:    "ada@example.com",
		Password: "secret-password",
	})
	require.NoError(f.t, err)
	f.session = sess
	return sess
}

// Authed returns r as the session guard would pass it on: carrying the
// session cookie and the signed-in user. SignIn must have been called.
func (f *TestFixture) Authed(r *http.Request) *http.Request {
	f.t.Helper()
	require.NotEmpty(f.t, f.session.Token, "call SignIn first")

	rec := httptest.NewRecorder()
	require.NoError(f.t, session.SetToken(rec, r, f.SessionStore, f.session.Token))
	for _, c := range rec.Result().Cookies() {
		r.AddCookie(c)
	}
	return r.WithContext(session.WithUser(r.Context(), f.session.User))
}

// WaitForConnection waits until the connection leaves Testing.
func (f *TestFixture) WaitForConnection(id string) core.Connection {
	f.t.Helper()
	var conn core.Connection
	require.Eventually(f.t, func() bool {
		c, ok := f.Container.GetConnection(id)
		conn = c
		return ok && c.Status != core.ConnectionTesting
	}, 2*time.Second, 5*time.Millisecond)
	return conn
}

// WaitForPipeline waits until the pipeline leaves Running.
func (f *TestFixture) WaitForPipeline(id string) core.Pipeline {
	f.t.Helper()
	var p core.Pipeline
	require.Eventually(f.t, func() bool {
		got, ok := f.Container.GetPipeline(id)
		p = got
		return ok && got.Status != core.PipelineRunning
	}, 2*time.Second, 5*time.Millisecond)
	return p
}

// PostForm builds a form post request.
func PostForm(target string, values url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

// RequestWithPathParam wraps a request with chi URL params.
func RequestWithPathParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil {
		rctx = chi.NewRouteContext()
		r = r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
	}
	rctx.URLParams.Add(key, value)
	return r
}

// RequestWithTimeout wraps a request with a context that ends after
// timeout. The context is released when the test finishes.
func RequestWithTimeout(t *testing.T, r *http.Request, timeout time.Duration) *http.Request {
	ctx, cancel := context.WithTimeout(r.Context(), timeout)
	t.Cleanup(cancel)
	return r.WithContext(ctx)
}

// NewTestSessionStore creates a session store for testing.
func NewTestSessionStore() *sessions.CookieStore {
	return session.NewStore("test-secret-key-32-bytes-long!!")
}
