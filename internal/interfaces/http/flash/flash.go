// Package flash carries one-shot notices across a redirect in a signed cookie.
package flash

import (
	"net/http"
	"time"

	"github.com/Replicator56/mini-crm/internal/infrastructure/auth"
	"github.com/gin-gonic/gin"
)

// Kind is the severity of a notice
type Kind string

const (
	KindSuccess Kind = "success"
	KindError   Kind = "error"
)

const noticeTTL = 5 * time.Minute

// Notice is a message shown once by the next rendered page
type Notice struct {
	Kind    Kind
	Message string
}

// Success builds a success notice
func Success(message string) Notice {
	return Notice{Kind: KindSuccess, Message: message}
}

// Error builds an error notice
func Error(message string) Notice {
	return Notice{Kind: KindError, Message: message}
}

// Store reads and writes the notice cookie
type Store struct {
	signer     *auth.CookieSigner
	cookieName string
	secure     bool
}

// NewStore creates a notice store. An empty cookieName defaults to crm_notice.
func NewStore(signer *auth.CookieSigner, cookieName string, secure bool) *Store {
	if cookieName == "" {
		cookieName = "crm_notice"
	}
	return &Store{signer: signer, cookieName: cookieName, secure: secure}
}

// Put stores n for the next render
func (s *Store) Put(w http.ResponseWriter, n Notice) error {
	value, err := s.signer.Sign(auth.KindNotice, string(n.Kind), n.Message, noticeTTL)
	if err != nil {
		return err
	}
	s.setCookie(w, value, int(noticeTTL/time.Second))
	return nil
}

// Take returns the pending notice, if any, and deletes the cookie.
// Tampered or expired cookies are dropped silently.
func (s *Store) Take(w http.ResponseWriter, r *http.Request) *Notice {
	cookie, err := r.Cookie(s.cookieName)
	if err != nil || cookie.Value == "" {
		return nil
	}
	s.setCookie(w, "", -1)

	claims, err := s.signer.Verify(cookie.Value, auth.KindNotice)
	if err != nil {
		return nil
	}
	kind := Kind(claims.Subject)
	if kind != KindSuccess && kind != KindError {
		return nil
	}
	return &Notice{Kind: kind, Message: claims.Data}
}

// Redirect stores n and answers with 303 See Other to location.
// The pipeline is aborted.
func (s *Store) Redirect(c *gin.Context, location string, n Notice) {
	if err := s.Put(c.Writer, n); err != nil {
		_ = c.Error(err)
	}
	c.Redirect(http.StatusSeeOther, location)
	c.Abort()
}

func (s *Store) setCookie(w http.ResponseWriter, value string, maxAge int) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.cookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteStrictMode,
	})
}
