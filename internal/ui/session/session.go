// Package session ties browser cookies to the workspace session.
package session

import (
	"context"
	"net/http"

	"github.com/gorilla/sessions"

	"github.com/leapstack-labs/launchpad/pkg/core"
)

// CookieName is the name of the browser session cookie.
const CookieName = "launchpad"

const tokenKey = "token"

// Authenticator is the part of the auth service the guard needs.
type Authenticator interface {
	Authenticate(token string) bool
	Current() (core.Session, bool)
}

// NewStore creates the cookie store used by the UI.
func NewStore(secret string) *sessions.CookieStore {
	store := sessions.NewCookieStore([]byte(secret))
	store.MaxAge(86400 * 30)
	store.Options.Path = "/"
	store.Options.HttpOnly = true
	store.Options.SameSite = http.SameSiteLaxMode
	return store
}

// Token returns the session token carried by the request cookie.
func Token(r *http.Request, store sessions.Store) string {
	sess, err := store.Get(r, CookieName)
	if err != nil {
		return ""
	}
	token, _ := sess.Values[tokenKey].(string)
	return token
}

// SetToken stores token in the response cookie.
func SetToken(w http.ResponseWriter, r *http.Request, store sessions.Store, token string) error {
	sess, _ := store.Get(r, CookieName)
	sess.Values[tokenKey] = token
	return sess.Save(r, w)
}

// Clear expires the response cookie.
func Clear(w http.ResponseWriter, r *http.Request, store sessions.Store) error {
	sess, _ := store.Get(r, CookieName)
	delete(sess.Values, tokenKey)
	sess.Options.MaxAge = -1
	return sess.Save(r, w)
}

// Lookup returns the signed-in user when the request cookie matches the
// active session.
func Lookup(r *http.Request, store sessions.Store, auth Authenticator) (core.User, bool) {
	if !auth.Authenticate(Token(r, store)) {
		return core.User{}, false
	}
	current, ok := auth.Current()
	if !ok {
		return core.User{}, false
	}
	return current.User, true
}

type userKey struct{}

// WithUser returns a context carrying the signed-in user.
func WithUser(ctx context.Context, u core.User) context.Context {
	return context.WithValue(ctx, userKey{}, u)
}

// UserFrom returns the user stored by WithUser.
func UserFrom(ctx context.Context) (core.User, bool) {
	u, ok := ctx.Value(userKey{}).(core.User)
	return u, ok
}

// Require redirects requests without an active session to the login page.
func Require(store sessions.Store, auth Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := Lookup(r, store, auth)
			if !ok {
				http.Redirect(w, r, "/login", http.StatusSeeOther)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}

// Optional attaches the signed-in user, if any, and never redirects.
func Optional(store sessions.Store, auth Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if user, ok := Lookup(r, store, auth); ok {
				r = r.WithContext(WithUser(r.Context(), user))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RedirectSignedIn sends requests with an active session to the dashboard.
func RedirectSignedIn(store sessions.Store, auth Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := Lookup(r, store, auth); ok {
				http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
