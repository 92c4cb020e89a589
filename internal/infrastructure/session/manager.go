package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/Replicator56/mini-crm/internal/infrastructure/auth"
)

// ManagerConfig holds cookie settings for the session cookie
type ManagerConfig struct {
	CookieName string
	MaxAge     time.Duration
	Secure     bool
}

// Manager ties the Store to the browser cookie. The cookie holds a signed
// JWT whose subject is the session id; the record itself stays server side.
type Manager struct {
	store  Store
	signer *auth.CookieSigner
	cfg    ManagerConfig
}

// NewManager creates a session manager
func NewManager(store Store, signer *auth.CookieSigner, cfg ManagerConfig) *Manager {
	if cfg.CookieName == "" {
		cfg.CookieName = "crm_session"
	}
	if cfg.MaxAge == 0 {
		cfg.MaxAge = 24 * time.Hour
	}
	return &Manager{store: store, signer: signer, cfg: cfg}
}

// CookieName returns the name of the session cookie
func (m *Manager) CookieName() string {
	return m.cfg.CookieName
}

// Start creates and stores a new anonymous session
func (m *Manager) Start(ctx context.Context) (*Session, error) {
	return m.create(ctx, nil)
}

// Load resolves the session referenced by the request cookie.
// A missing, forged or expired cookie yields ErrSessionNotFound.
func (m *Manager) Load(ctx context.Context, r *http.Request) (*Session, error) {
	cookie, err := r.Cookie(m.cfg.CookieName)
	if err != nil || cookie.Value == "" {
		return nil, ErrSessionNotFound
	}
	claims, err := m.signer.Verify(cookie.Value, auth.KindSession)
	if err != nil {
		return nil, ErrSessionNotFound
	}
	return m.store.Get(ctx, claims.Subject)
}

// Login binds principal to a brand-new session and destroys current.
// The id and CSRF token both change so a fixated id is useless.
func (m *Manager) Login(ctx context.Context, current *Session, principal Principal) (*Session, error) {
	if current != nil {
		if err := m.store.Delete(ctx, current.ID); err != nil {
			return nil, err
		}
	}
	return m.create(ctx, &principal)
}

// Destroy removes the session record; a nil session is a no-op
func (m *Manager) Destroy(ctx context.Context, s *Session) error {
	if s == nil {
		return nil
	}
	return m.store.Delete(ctx, s.ID)
}

// WriteCookie sets the signed session cookie on the response
func (m *Manager) WriteCookie(w http.ResponseWriter, s *Session) error {
	value, err := m.signer.Sign(auth.KindSession, s.ID, "", m.cfg.MaxAge)
	if err != nil {
		return fmt.Errorf("failed to sign session cookie: %w", err)
	}
	http.SetCookie(w, &http.Cookie{
		Name:     m.cfg.CookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   int(m.cfg.MaxAge / time.Second),
		HttpOnly: true,
		Secure:   m.cfg.Secure,
		SameSite: http.SameSiteStrictMode,
	})
	return nil
}

// ClearCookie expires the session cookie in the browser
func (m *Manager) ClearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     m.cfg.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.cfg.Secure,
		SameSite: http.SameSiteStrictMode,
	})
}

func (m *Manager) create(ctx context.Context, principal *Principal) (*Session, error) {
	s, err := newSession(principal)
	if err != nil {
		return nil, err
	}
	if err := m.store.Save(ctx, s, m.cfg.MaxAge); err != nil {
		return nil, err
	}
	return s, nil
}

// IsNotFound reports whether err means "no usable session".
func IsNotFound(err error) bool {
	return errors.Is(err, ErrSessionNotFound)
}
