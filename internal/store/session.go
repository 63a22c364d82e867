package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"chat-client/internal/models"
)

// The two well-known keys under which a session persists between runs.
const (
	tokenFile = "authToken"
	userFile  = "userData"
)

// ErrNoSession is returned by operations that require a logged-in user.
var ErrNoSession = errors.New("no active session")

// Session is the authenticated identity: user snapshot plus bearer token.
type Session struct {
	User  models.User
	Token string
}

// TokenExpired inspects the JWT exp claim without verifying the
// signature; verification is the server's job. Tokens that do not parse
// or carry no exp claim are treated as live and left to the server to
// reject.
func (s Session) TokenExpired(now time.Time) bool {
	var claims jwt.RegisteredClaims
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(s.Token, &claims); err != nil {
		return false
	}
	if claims.ExpiresAt == nil {
		return false
	}
	return claims.ExpiresAt.Before(now)
}

// SessionStore owns the current session and its on-disk copy.
type SessionStore struct {
	dir string

	mu  sync.RWMutex
	cur *Session
}

// NewSessionStore creates a store rooted at dir. The directory is
// created on first write.
func NewSessionStore(dir string) *SessionStore {
	return &SessionStore{dir: dir}
}

// Load restores a persisted session if both keys are present. A missing
// session is not an error; a corrupt one is cleared and reported.
func (s *SessionStore) Load() (*Session, error) {
	token, err := os.ReadFile(filepath.Join(s.dir, tokenFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read stored token: %w", err)
	}
	raw, err := os.ReadFile(filepath.Join(s.dir, userFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read stored user: %w", err)
	}

	var user models.User
	if err := json.Unmarshal(raw, &user); err != nil {
		_ = s.Clear()
		return nil, fmt.Errorf("decode stored user: %w", err)
	}

	sess := &Session{User: user, Token: string(token)}
	s.mu.Lock()
	s.cur = sess
	s.mu.Unlock()
	return sess, nil
}

// Set replaces the current session and persists both keys.
func (s *SessionStore) Set(sess Session) error {
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}
	raw, err := json.Marshal(sess.User)
	if err != nil {
		return fmt.Errorf("encode user snapshot: %w", err)
	}
	if err := os.WriteFile(filepath.Join(s.dir, tokenFile), []byte(sess.Token), 0o600); err != nil {
		return fmt.Errorf("store token: %w", err)
	}
	if err := os.WriteFile(filepath.Join(s.dir, userFile), raw, 0o600); err != nil {
		return fmt.Errorf("store user snapshot: %w", err)
	}

	s.mu.Lock()
	s.cur = &sess
	s.mu.Unlock()
	return nil
}

// Clear forgets the session in memory and on disk.
func (s *SessionStore) Clear() error {
	s.mu.Lock()
	s.cur = nil
	s.mu.Unlock()

	var firstErr error
	for _, name := range []string{tokenFile, userFile} {
		if err := os.Remove(filepath.Join(s.dir, name)); err != nil && !os.IsNotExist(err) && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Current returns the active session, or nil when logged out.
func (s *SessionStore) Current() *Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cur
}

// Token returns the active bearer token, or "" when logged out. Shaped
// to plug straight into the API client's TokenFunc.
func (s *SessionStore) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.cur == nil {
		return ""
	}
	return s.cur.Token
}
