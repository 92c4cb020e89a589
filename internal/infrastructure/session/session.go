// Package session keeps server-side session records keyed by an opaque id
// that the browser holds in a signed cookie.
package session

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ErrSessionNotFound is returned when a session id is unknown or expired.
var ErrSessionNotFound = errors.New("session not found")

// Principal is the authenticated user attached to a session.
type Principal struct {
	UserID uuid.UUID `json:"user_id"`
	Name   string    `json:"name"`
	Email  string    `json:"email"`
}

// Session is one browser session. User is nil for anonymous sessions.
type Session struct {
	ID        string     `json:"id"`
	User      *Principal `json:"user,omitempty"`
	CSRFToken string     `json:"csrf_token"`
	CreatedAt time.Time  `json:"created_at"`
}

// Authenticated reports whether a principal is bound to the session.
func (s *Session) Authenticated() bool {
	return s != nil && s.User != nil
}

// Store persists sessions with a time to live.
type Store interface {
	// Save creates or overwrites the session
	Save(ctx context.Context, s *Session, ttl time.Duration) error

	// Get returns ErrSessionNotFound when the id is unknown or expired
	Get(ctx context.Context, id string) (*Session, error)

	// Delete is a no-op for unknown ids
	Delete(ctx context.Context, id string) error
}

// newSession returns a session with fresh random id and CSRF token.
func newSession(user *Principal) (*Session, error) {
	id, err := randomToken(32)
	if err != nil {
		return nil, fmt.Errorf("failed to generate session id: %w", err)
	}
	csrf, err := randomToken(32)
	if err != nil {
		return nil, fmt.Errorf("failed to generate csrf token: %w", err)
	}
	return &Session{
		ID:        id,
		User:      user,
		CSRFToken: csrf,
		CreatedAt: time.Now(),
	}, nil
}

func randomToken(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
