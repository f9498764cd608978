// Package session owns the signed-in user for the lifetime of the process.
//
// A Shell restores the Session from the persistence port at startup, performs
// login, registration and logout, and hands the bearer token to the API client.
// The token is never validated locally: a stored token counts as signed in
// until the backend rejects a request.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/lexai-app/lexai/internal/api"
	"github.com/lexai-app/lexai/internal/errors"
	"github.com/lexai-app/lexai/internal/logging"
	"github.com/lexai-app/lexai/internal/store"
)

// Session is the client's belief that a user is signed in.
type Session struct {
	User  api.User
	Token string
}

// Authenticator performs the two unauthenticated calls the Shell needs.
// *api.Client satisfies it.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (*api.AuthResponse, error)
	Register(ctx context.Context, req api.RegisterRequest) (*api.AuthResponse, error)
}

// Shell manages the current Session. It is safe for concurrent use.
type Shell struct {
	mu       sync.RWMutex
	store    store.Store
	auth     Authenticator
	logger   *logging.Logger
	current  *Session
	restored bool
}

// NewShell creates a Shell backed by st. Call Restore before rendering anything.
// A nil logger discards output.
func NewShell(st store.Store, logger *logging.Logger) *Shell {
	if logger == nil {
		logger = logging.NopLogger()
	}
	return &Shell{store: st, logger: logger}
}

// SetAuthenticator sets the backend used by Login and Register. The API client
// reads its token from the Shell, so the two are wired after both exist.
func (s *Shell) SetAuthenticator(auth Authenticator) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.auth = auth
}

// Restore loads the Session from the store without contacting the backend.
// Both the token and a decodable user record must be present; anything else
// leaves the Shell signed out. Only the first call reads the store.
func (s *Shell) Restore(ctx context.Context) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.restored {
		return s.current != nil
	}
	s.restored = true

	token, err := s.store.Get(ctx, store.KeyToken)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			s.logger.Warn("failed to read stored token", "error", err.Error())
		}
		return false
	}
	if token == "" {
		return false
	}

	raw, err := s.store.Get(ctx, store.KeyUser)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			s.logger.Warn("failed to read stored user", "error", err.Error())
		}
		return false
	}

	var user api.User
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		s.logger.Warn("stored user record is corrupt, ignoring it", "error", err.Error())
		return false
	}
	if user.IsZero() {
		s.logger.Warn("stored user record is empty, ignoring it")
		return false
	}

	s.current = &Session{User: user, Token: token}
	s.logger.Info("session restored", "user", user.Email)
	return true
}

// Login authenticates against the backend. On success the token and user are
// persisted and become the current Session. On failure nothing changes: the
// store and the previous Session are left as they were.
func (s *Shell) Login(ctx context.Context, email, password string) error {
	auth, err := s.authenticator()
	if err != nil {
		return err
	}

	resp, err := auth.Login(ctx, email, password)
	if err != nil {
		s.logger.Warn("login failed", "email", email, "status", errors.StatusOf(err), "error", err.Error())
		return err
	}
	return s.establish(ctx, resp)
}

// Register creates an account and signs in with it, with the same failure
// guarantees as Login.
func (s *Shell) Register(ctx context.Context, email, password, name, organizationName string) error {
	auth, err := s.authenticator()
	if err != nil {
		return err
	}

	resp, err := auth.Register(ctx, api.RegisterRequest{
		Email:            email,
		Password:         password,
		Name:             name,
		OrganizationName: organizationName,
	})
	if err != nil {
		s.logger.Warn("registration failed", "email", email, "status", errors.StatusOf(err), "error", err.Error())
		return err
	}
	return s.establish(ctx, resp)
}

func (s *Shell) authenticator() (Authenticator, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.auth == nil {
		return nil, fmt.Errorf("session shell has no authenticator")
	}
	return s.auth, nil
}

// establish persists resp and makes it the current Session. If the user
// record cannot be written the previous token is put back, or the new one
// removed when there was none, so the store never pairs a token with another
// user's record.
func (s *Shell) establish(ctx context.Context, resp *api.AuthResponse) error {
	userJSON, err := json.Marshal(resp.User)
	if err != nil {
		return fmt.Errorf("failed to encode user record: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	prevToken, prevErr := s.store.Get(ctx, store.KeyToken)

	if err := s.store.Set(ctx, store.KeyToken, resp.Token); err != nil {
		return fmt.Errorf("failed to persist token: %w", err)
	}
	if err := s.store.Set(ctx, store.KeyUser, string(userJSON)); err != nil {
		var rollbackErr error
		if prevErr == nil {
			rollbackErr = s.store.Set(ctx, store.KeyToken, prevToken)
		} else {
			rollbackErr = s.store.Delete(ctx, store.KeyToken)
		}
		if rollbackErr != nil {
			s.logger.Error("failed to roll back stored token", "error", rollbackErr.Error())
		}
		return fmt.Errorf("failed to persist user: %w", err)
	}

	s.current = &Session{User: resp.User, Token: resp.Token}
	s.restored = true
	s.logger.Info("signed in", "user", resp.User.Email)
	return nil
}

// Logout forgets the Session. It never contacts the backend and always leaves
// the Shell signed out; store failures are only logged.
func (s *Shell) Logout(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, key := range []string{store.KeyToken, store.KeyUser} {
		if err := s.store.Delete(ctx, key); err != nil {
			s.logger.Error("failed to clear stored session", "key", key, "error", err.Error())
		}
	}
	if s.current != nil {
		s.logger.Info("signed out", "user", s.current.User.Email)
	}
	s.current = nil
}

// Clear signs out and removes everything the store holds for this client,
// including the selected category. Unlike Logout it reports store failures;
// the Shell is signed out either way.
func (s *Shell) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current != nil {
		s.logger.Info("signed out", "user", s.current.User.Email)
	}
	s.current = nil
	if err := s.store.Clear(ctx); err != nil {
		s.logger.Error("failed to clear stored credentials", "error", err.Error())
		return fmt.Errorf("failed to clear stored credentials: %w", err)
	}
	s.logger.Info("stored credentials cleared")
	return nil
}

// Current returns a copy of the Session, or nil when signed out.
func (s *Shell) Current() *Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return nil
	}
	cp := *s.current
	return &cp
}

// Authenticated reports whether a Session exists.
func (s *Shell) Authenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current != nil
}

// Token returns the bearer token, or "" when signed out. It makes the Shell an
// api.TokenSource.
func (s *Shell) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return ""
	}
	return s.current.Token
}

// Claims decodes the current token. See ParseClaims.
func (s *Shell) Claims() (*Claims, error) {
	token := s.Token()
	if token == "" {
		return nil, errors.ErrNotAuthenticated
	}
	return ParseClaims(token)
}
