package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// CookieKind separates the cookies signed with the same secret so a notice
// token can never be replayed as a session token.
type CookieKind string

const (
	KindSession CookieKind = "session"
	KindNotice  CookieKind = "notice"
)

// Common errors
var (
	ErrInvalidToken     = errors.New("invalid token")
	ErrExpiredToken     = errors.New("token has expired")
	ErrInvalidTokenKind = errors.New("invalid token kind")
	ErrMissingSubject   = errors.New("missing subject in claims")
)

// CookieClaims is the payload of every signed cookie.
// Subject carries the session id for sessions and the notice kind for notices.
type CookieClaims struct {
	jwt.RegisteredClaims
	Kind CookieKind `json:"kind"`
	Data string     `json:"data,omitempty"`
}

// CookieSigner signs and verifies cookie values as HS256 JWTs.
type CookieSigner struct {
	secret []byte
	issuer string
	now    func() time.Time
}

// NewCookieSigner creates a signer for the given secret.
func NewCookieSigner(secret, issuer string) *CookieSigner {
	return &CookieSigner{
		secret: []byte(secret),
		issuer: issuer,
		now:    time.Now,
	}
}

// Sign returns a compact JWT valid for ttl.
func (s *CookieSigner) Sign(kind CookieKind, subject, data string, ttl time.Duration) (string, error) {
	if subject == "" {
		return "", ErrMissingSubject
	}
	now := s.now()
	claims := &CookieClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Kind: kind,
		Data: data,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// Verify checks signature, expiry, issuer and kind, and returns the claims.
func (s *CookieSigner) Verify(tokenString string, kind CookieKind) (*CookieClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &CookieClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.secret, nil
	},
		jwt.WithIssuer(s.issuer),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*CookieClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Kind != kind {
		return nil, ErrInvalidTokenKind
	}
	if claims.Subject == "" {
		return nil, ErrMissingSubject
	}
	return claims, nil
}
