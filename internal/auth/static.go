package auth

import (
	"context"
	"errors"
)

const (
	// LocalDevToken is the hardcoded bearer token for local development only.
	LocalDevToken = "tk_local_planner_dev"

	// LocalDevOwnerID is the owner every local-dev request resolves to.
	LocalDevOwnerID = "planner-dev"
)

// StaticAuthorizer provides a simple authorizer for local development.
// It only recognizes LocalDevToken and resolves it to the planner-dev owner.
type StaticAuthorizer struct{}

// NewStaticAuthorizer creates a new StaticAuthorizer for local development.
func NewStaticAuthorizer() *StaticAuthorizer {
	return &StaticAuthorizer{}
}

// Authorize validates the hardcoded development token.
func (s *StaticAuthorizer) Authorize(_ context.Context, token string) (string, error) {
	if token != LocalDevToken {
		return "", errors.New("invalid token for local development")
	}
	return LocalDevOwnerID, nil
}
