// Package auth keeps the signed-in session of the workspace.
package auth

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/mail"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/leapstack-labs/launchpad/internal/notifier"
	"github.com/leapstack-labs/launchpad/pkg/core"
)

// DefaultLatency is the simulated sign-in delay.
const DefaultLatency = 450 * time.Millisecond

// MinPasswordLength is the shortest password the sign-in form accepts.
const MinPasswordLength = 6

// userNamespace scopes user ids derived from email addresses.
var userNamespace = uuid.NewSHA1(uuid.NameSpaceDNS, []byte("users.launchpad.local"))

// Config configures a Service.
type Config struct {
	Store    core.KVStore
	Notifier *notifier.Notifier
	Logger   *slog.Logger
	Latency  time.Duration
}

// Service is the session store. It is safe for concurrent use.
type Service struct {
	store    core.KVStore
	notifier *notifier.Notifier
	logger   *slog.Logger
	latency  time.Duration

	mu      sync.RWMutex
	session *core.Session
}

// NewService creates a Service with no active session. Call Restore to
// pick up a persisted one.
func NewService(cfg Config) *Service {
	s := &Service{
		store:    cfg.Store,
		notifier: cfg.Notifier,
		logger:   cfg.Logger,
		latency:  cfg.Latency,
	}
	if s.logger == nil {
		s.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if s.latency <= 0 {
		s.latency = DefaultLatency
	}
	return s
}

// DeriveUser builds the user for an email address.
func DeriveUser(email string) core.User {
	name, _, _ := strings.Cut(email, "@")
	return core.User{
		ID:    uuid.NewSHA1(userNamespace, []byte(strings.ToLower(email))).String(),
		Name:  name,
		Email: email,
	}
}

// DeriveToken builds the session token for an email address.
func DeriveToken(email string) string {
	return base64.StdEncoding.EncodeToString([]byte(email + ":session"))
}

// FieldErrors maps sign-in form fields to messages.
type FieldErrors map[string]string

func (e FieldErrors) Error() string {
	parts := make([]string, 0, len(e))
	for _, field := range []string{"email", "password"} {
		if msg, ok := e[field]; ok {
			parts = append(parts, field+": "+msg)
		}
	}
	return strings.Join(parts, "; ")
}

// CheckCredentials validates the sign-in form. It returns nil or FieldErrors.
func CheckCredentials(creds core.Credentials) error {
	errs := FieldErrors{}
	if _, err := mail.ParseAddress(creds.Email); err != nil || !strings.Contains(creds.Email, "@") {
		errs["email"] = "Enter a valid email address"
	}
	if len([]rune(creds.Password)) < MinPasswordLength {
		errs["password"] = fmt.Sprintf("Password must be at least %d characters", MinPasswordLength)
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

// Restore loads the persisted session. A record that does not parse is
// deleted and the service stays signed out.
func (s *Service) Restore(ctx context.Context) (core.Session, bool, error) {
	data, err := s.store.Get(ctx, core.SessionKey)
	if errors.Is(err, core.ErrKeyNotFound) {
		s.set(nil)
		return core.Session{}, false, nil
	}
	if err != nil {
		return core.Session{}, false, fmt.Errorf("failed to read session: %w", err)
	}

	var sess core.Session
	if err := json.Unmarshal(data, &sess); err != nil || sess.Token == "" {
		s.logger.Warn("discarding malformed session", "error", err)
		if err := s.store.Delete(ctx, core.SessionKey); err != nil {
			s.logger.Error("failed to delete session", "error", err)
		}
		s.set(nil)
		return core.Session{}, false, nil
	}

	s.set(&sess)
	return sess, true, nil
}

// Login signs in after the simulated delay. It only fails when ctx ends
// first or the session cannot be persisted.
func (s *Service) Login(ctx context.Context, creds core.Credentials) (core.Session, error) {
	timer := time.NewTimer(s.latency)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return core.Session{}, ctx.Err()
	case <-timer.C:
	}

	sess := core.Session{
		Token: DeriveToken(creds.Email),
		User:  DeriveUser(creds.Email),
	}

	data, err := json.Marshal(sess)
	if err != nil {
		return core.Session{}, fmt.Errorf("failed to encode session: %w", err)
	}
	if err := s.store.Put(ctx, core.SessionKey, data); err != nil {
		return core.Session{}, fmt.Errorf("failed to save session: %w", err)
	}

	s.set(&sess)
	s.logger.Info("signed in", "user", sess.User.Email)
	return sess, nil
}

// Logout clears the session. Calling it while signed out is a no-op.
// The in-memory session is cleared even when the persisted record cannot
// be deleted; that failure is returned.
func (s *Service) Logout(ctx context.Context) error {
	if prev, ok := s.Current(); ok {
		s.logger.Info("signed out", "user", prev.User.Email)
	}
	s.set(nil)

	if err := s.store.Delete(ctx, core.SessionKey); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// Current returns the active session.
func (s *Service) Current() (core.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.session == nil {
		return core.Session{}, false
	}
	return *s.session, true
}

// Authenticate reports whether token belongs to the active session.
func (s *Service) Authenticate(token string) bool {
	if token == "" {
		return false
	}
	sess, ok := s.Current()
	return ok && sess.Token == token
}

func (s *Service) set(sess *core.Session) {
	s.mu.Lock()
	changed := (s.session == nil) != (sess == nil) || (sess != nil && s.session.Token != sess.Token)
	s.session = sess
	s.mu.Unlock()

	if changed && s.notifier != nil {
		s.notifier.Broadcast(notifier.TopicSession)
	}
}
