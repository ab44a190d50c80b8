package login

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gorilla/sessions"

	"github.com/leapstack-labs/launchpad/internal/auth"
	"github.com/leapstack-labs/launchpad/internal/ui/features/common"
	"github.com/leapstack-labs/launchpad/internal/ui/session"
	"github.com/leapstack-labs/launchpad/pkg/core"
)

// Handlers provides HTTP handlers for the login feature.
type Handlers struct {
	sessionStore sessions.Store
	auth         *auth.Service
	logger       *slog.Logger
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(sessionStore sessions.Store, authService *auth.Service, logger *slog.Logger) *Handlers {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Handlers{sessionStore: sessionStore, auth: authService, logger: logger}
}

// LoginPage renders the empty sign-in form.
func (h *Handlers) LoginPage(w http.ResponseWriter, r *http.Request) {
	common.Render(w, r, http.StatusOK, LoginView(common.Shell(r, "Sign in", ""), FormData{}))
}

// Login validates the form, signs in and sends the browser to the
// dashboard. Invalid input re-renders the form with field messages.
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	creds := core.Credentials{
		Email:    common.Field(r, "email"),
		Password: r.PostFormValue("password"),
	}
	form := FormData{Email: creds.Email}

	var fieldErrs auth.FieldErrors
	if err := auth.CheckCredentials(creds); errors.As(err, &fieldErrs) {
		form.Errors = fieldErrs
		common.Render(w, r, http.StatusUnprocessableEntity, LoginView(common.Shell(r, "Sign in", ""), form))
		return
	}

	sess, err := h.auth.Login(r.Context(), creds)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "sign in failed", "error", err)
		form.Failed = true
		common.Render(w, r, http.StatusInternalServerError, LoginView(common.Shell(r, "Sign in", ""), form))
		return
	}

	if err := session.SetToken(w, r, h.sessionStore, sess.Token); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	common.SeeOther(w, r, "/dashboard")
}

// Logout ends the workspace session and expires the cookie. The browser
// is signed out even when the persisted session could not be deleted.
func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.auth.Logout(r.Context()); err != nil {
		h.logger.ErrorContext(r.Context(), "sign out did not delete the persisted session", "error", err)
	}
	if err := session.Clear(w, r, h.sessionStore); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	common.SeeOther(w, r, "/login")
}
