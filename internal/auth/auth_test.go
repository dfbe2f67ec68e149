package auth

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signToken(t *testing.T, secret, sub string, exp time.Time) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   sub,
		ExpiresAt: jwt.NewNumericDate(exp),
	})
	s, err := tok.SignedString([]byte(secret))
	require.NoError(t, err)
	return s
}

func TestJWTAuthorizer_ValidToken(t *testing.T) {
	a, err := NewJWTAuthorizer("secret-key")
	require.NoError(t, err)

	token := signToken(t, "secret-key", "user-42", time.Now().Add(time.Hour))
	owner, err := a.Authorize(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "user-42", owner)
}

func TestJWTAuthorizer_RejectsBadSignature(t *testing.T) {
	a, err := NewJWTAuthorizer("secret-key")
	require.NoError(t, err)

	token := signToken(t, "other-key", "user-42", time.Now().Add(time.Hour))
	_, err = a.Authorize(context.Background(), token)
	assert.Error(t, err)
}

func TestJWTAuthorizer_RejectsExpired(t *testing.T) {
	a, err := NewJWTAuthorizer("secret-key")
	require.NoError(t, err)

	token := signToken(t, "secret-key", "user-42", time.Now().Add(-time.Minute))
	_, err = a.Authorize(context.Background(), token)
	assert.Error(t, err)
}

func TestJWTAuthorizer_RejectsMissingSubject(t *testing.T) {
	a, err := NewJWTAuthorizer("secret-key")
	require.NoError(t, err)

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	s, err := tok.SignedString([]byte("secret-key"))
	require.NoError(t, err)

	_, err = a.Authorize(context.Background(), s)
	assert.Error(t, err)
}

func TestStaticAuthorizer(t *testing.T) {
	a := NewStaticAuthorizer()

	owner, err := a.Authorize(context.Background(), LocalDevToken)
	require.NoError(t, err)
	assert.Equal(t, LocalDevOwnerID, owner)

	_, err = a.Authorize(context.Background(), "wrong")
	assert.Error(t, err)
}

func TestExtractBearerToken(t *testing.T) {
	r := httptest.NewRequest("GET", "/api/plans", nil)
	r.Header.Set("Authorization", "Bearer abc123")
	tok, err := ExtractBearerToken(r)
	require.NoError(t, err)
	assert.Equal(t, "abc123", tok)

	r2 := httptest.NewRequest("GET", "/api/plans", nil)
	_, err = ExtractBearerToken(r2)
	assert.Error(t, err)

	r3 := httptest.NewRequest("GET", "/api/plans", nil)
	r3.Header.Set("Authorization", "Basic abc123")
	_, err = ExtractBearerToken(r3)
	assert.Error(t, err)
}
