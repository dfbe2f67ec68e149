package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// JWTAuthorizer verifies HS256 tokens issued by the auth service. The owner
// id travels in the standard `sub` claim, matching the token shape the login
// endpoint issues.
type JWTAuthorizer struct {
	secret []byte
}

// NewJWTAuthorizer creates an authorizer over a shared HS256 secret.
func NewJWTAuthorizer(secret string) (*JWTAuthorizer, error) {
	if secret == "" {
		return nil, errors.New("jwt secret is empty")
	}
	return &JWTAuthorizer{secret: []byte(secret)}, nil
}

// Authorize parses and verifies the token and returns the subject owner id.
func (a *JWTAuthorizer) Authorize(_ context.Context, token string) (string, error) {
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return a.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return "", fmt.Errorf("invalid token: %w", err)
	}

	sub, err := parsed.Claims.GetSubject()
	if err != nil || sub == "" {
		return "", errors.New("token has no subject")
	}
	return sub, nil
}
