package auth

import "context"

// Authorizer resolves a bearer credential to an owner identity. Credential
// checks and token issuance happen in the external auth service; every core
// operation only needs the already-authenticated owner id this returns.
type Authorizer interface {
	// Authorize validates the bearer token and returns the owner id it was
	// issued for, or an error when the token is missing, expired or forged.
	Authorize(ctx context.Context, token string) (string, error)
}
