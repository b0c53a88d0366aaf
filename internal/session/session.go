// Package session tracks the authenticated user and device
// connectivity, the two gates the sync engine checks before draining
// the outbox. A guest (no session) can accumulate local data freely;
// nothing syncs until a session appears.
package session

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dgrijalva/jwt-go"
)

// ErrTokenExpired is returned by SetToken for a token past its exp claim.
var ErrTokenExpired = errors.New("access token expired")

// Session identifies the signed-in user.
type Session struct {
	UserID string
	Email  string
}

// Claims are the token claims we care about. The subject is the user id.
type Claims struct {
	Email string `json:"email"`
	jwt.StandardClaims
}

// Manager holds the current session and notifies subscribers on change.
//
// The access token is issued and signed by the auth backend; this side
// only decodes the claims to learn who the user is. Verification is the
// remote store's job: it rejects calls carrying a bad token.
type Manager struct {
	mu    sync.Mutex
	cur   *Session
	token string
	subs  []func(*Session)
	now   func() time.Time
}

// NewManager creates a manager with no active session.
func NewManager() *Manager {
	return &Manager{now: time.Now}
}

// SetToken decodes an access token and installs the session it carries.
// An expired token is rejected and leaves the current session untouched.
func (m *Manager) SetToken(token string) error {
	claims := &Claims{}
	parser := &jwt.Parser{}
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return fmt.Errorf("decode access token: %w", err)
	}
	if claims.ExpiresAt > 0 && m.now().Unix() >= claims.ExpiresAt {
		return ErrTokenExpired
	}
	if claims.Subject == "" {
		return errors.New("access token has no subject")
	}

	m.set(&Session{UserID: claims.Subject, Email: claims.Email}, token)
	return nil
}

// Clear signs the user out.
func (m *Manager) Clear() {
	m.set(nil, "")
}

// Current returns the active session, or nil for a guest.
func (m *Manager) Current() *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cur
}

// Token returns the raw access token for the Authorization header, or
// "" when signed out. Shaped to plug into remote.Config.Token.
func (m *Manager) Token() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token
}

// Subscribe registers a callback invoked on every session change.
// Callbacks run synchronously on the mutating goroutine and must not
// call back into the manager.
func (m *Manager) Subscribe(fn func(*Session)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subs = append(m.subs, fn)
}

func (m *Manager) set(s *Session, token string) {
	m.mu.Lock()
	m.cur = s
	m.token = token
	subs := append([]func(*Session){}, m.subs...)
	m.mu.Unlock()

	for _, fn := range subs {
		fn(s)
	}
}
