package auth

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jonboulle/clockwork"
	"github.com/nshafer/penlive/internal/api"
	"go.uber.org/zap"
)

// ErrNoSession is returned when there is no usable access token.
var ErrNoSession = errors.New("not logged in")

// Authenticator exchanges credentials for a token.
type Authenticator interface {
	Login(ctx context.Context, username, password string) (*api.TokenResponse, error)
}

// Session holds the access token of the logged-in user. With a token file the token
// survives restarts.
type Session struct {
	mu        sync.RWMutex
	token     string
	tokenFile string
	clock     clockwork.Clock
	logger    *zap.Logger
}

// NewSession returns a session backed by tokenFile, loading a token saved there earlier.
// An empty tokenFile keeps the token in memory only.
func NewSession(tokenFile string, clock clockwork.Clock, logger *zap.Logger) (*Session, error) {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Session{tokenFile: tokenFile, clock: clock, logger: logger}
	if tokenFile == "" {
		return s, nil
	}

	data, err := os.ReadFile(tokenFile)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return s, nil
	case err != nil:
		return nil, fmt.Errorf("failed to read token file: %w", err)
	}
	s.token = strings.TrimSpace(string(data))
	return s, nil
}

// Login authenticates and stores the new token.
func (s *Session) Login(ctx context.Context, authenticator Authenticator, username, password string) error {
	resp, err := authenticator.Login(ctx, username, password)
	if err != nil {
		return err
	}
	return s.SetToken(resp.AccessToken)
}

// SetToken replaces the token, persisting it when the session has a token file.
func (s *Session) SetToken(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.tokenFile != "" {
		if err := os.MkdirAll(filepath.Dir(s.tokenFile), 0o700); err != nil {
			return fmt.Errorf("failed to create token directory: %w", err)
		}
		if err := os.WriteFile(s.tokenFile, []byte(token+"\n"), 0o600); err != nil {
			return fmt.Errorf("failed to write token file: %w", err)
		}
	}
	s.token = token

	if exp, ok := expiresAt(token); ok {
		s.logger.Info("Logged in", zap.Time("expires_at", exp))
	} else {
		s.logger.Info("Logged in")
	}
	return nil
}

// Logout forgets the token.
func (s *Session) Logout() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.token = ""
	if s.tokenFile != "" {
		if err := os.Remove(s.tokenFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to remove token file: %w", err)
		}
	}
	return nil
}

// Token returns the current token, or ErrNoSession when there is none or it has expired.
func (s *Session) Token() (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.token == "" {
		return "", ErrNoSession
	}
	if exp, ok := expiresAt(s.token); ok && !s.clock.Now().Before(exp) {
		return "", fmt.Errorf("%w: token expired at %s", ErrNoSession, exp.Format(time.RFC3339))
	}
	return s.token, nil
}

// ExpiresAt reports the exp claim of the current token, if it is a JWT carrying one.
func (s *Session) ExpiresAt() (time.Time, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return expiresAt(s.token)
}

// expiresAt reads exp without verifying the signature; the backend does that.
func expiresAt(token string) (time.Time, bool) {
	if token == "" {
		return time.Time{}, false
	}

	claims := &jwt.RegisteredClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}
