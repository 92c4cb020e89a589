package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-at-least-32-chars"

func TestCookieSigner_RoundTrip(t *testing.T) {
	signer := NewCookieSigner(testSecret, "mini-crm")

	token, err := signer.Sign(KindSession, "sid-123", "", time.Hour)
	require.NoError(t, err)

	claims, err := signer.Verify(token, KindSession)
	require.NoError(t, err)
	assert.Equal(t, "sid-123", claims.Subject)
	assert.Equal(t, "mini-crm", claims.Issuer)
	assert.Equal(t, KindSession, claims.Kind)
}

func TestCookieSigner_CarriesData(t *testing.T) {
	signer := NewCookieSigner(testSecret, "mini-crm")

	token, err := signer.Sign(KindNotice, "success", "Client created.", time.Minute)
	require.NoError(t, err)

	claims, err := signer.Verify(token, KindNotice)
	require.NoError(t, err)
	assert.Equal(t, "success", claims.Subject)
	assert.Equal(t, "Client created.", claims.Data)
}

func TestCookieSigner_RejectsOtherKind(t *testing.T) {
	signer := NewCookieSigner(testSecret, "mini-crm")

	token, err := signer.Sign(KindNotice, "error", "nope", time.Minute)
	require.NoError(t, err)

	_, err = signer.Verify(token, KindSession)
	assert.ErrorIs(t, err, ErrInvalidTokenKind)
}

func TestCookieSigner_Expired(t *testing.T) {
	signer := NewCookieSigner(testSecret, "mini-crm")
	signer.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }

	token, err := signer.Sign(KindSession, "sid", "", time.Hour)
	require.NoError(t, err)

	signer.now = time.Now
	_, err = signer.Verify(token, KindSession)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestCookieSigner_DifferentSecret(t *testing.T) {
	token, err := NewCookieSigner(testSecret, "mini-crm").Sign(KindSession, "sid", "", time.Hour)
	require.NoError(t, err)

	_, err = NewCookieSigner("another-secret-key-of-32-chars!!", "mini-crm").Verify(token, KindSession)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestCookieSigner_WrongIssuer(t *testing.T) {
	token, err := NewCookieSigner(testSecret, "someone-else").Sign(KindSession, "sid", "", time.Hour)
	require.NoError(t, err)

	_, err = NewCookieSigner(testSecret, "mini-crm").Verify(token, KindSession)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestCookieSigner_RejectsNoneAlgorithm(t *testing.T) {
	claims := &CookieClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "mini-crm",
			Subject:   "sid",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		Kind: KindSession,
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = NewCookieSigner(testSecret, "mini-crm").Verify(token, KindSession)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestCookieSigner_Garbage(t *testing.T) {
	signer := NewCookieSigner(testSecret, "mini-crm")

	for _, value := range []string{"", "abc", "a.b.c"} {
		_, err := signer.Verify(value, KindSession)
		assert.ErrorIs(t, err, ErrInvalidToken, value)
	}

	_, err := signer.Sign(KindSession, "", "", time.Hour)
	assert.ErrorIs(t, err, ErrMissingSubject)
}
