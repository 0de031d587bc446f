// internal/pkg/auth/admin.go
package auth

import (
	"crypto/subtle"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidAdminToken is returned when an admin token does not match
var ErrInvalidAdminToken = errors.New("invalid admin token")

// AdminAuthenticator checks the static admin bearer token. A bcrypt hash
// takes precedence over the plain token when both are configured.
type AdminAuthenticator struct {
	token []byte
	hash  []byte
}

// NewAdminAuthenticator creates an authenticator from a plain token and/or a bcrypt hash
func NewAdminAuthenticator(token, hash string) *AdminAuthenticator {
	return &AdminAuthenticator{token: []byte(token), hash: []byte(hash)}
}

// Enabled reports whether any admin credential is configured
func (a *AdminAuthenticator) Enabled() bool {
	return len(a.token) > 0 || len(a.hash) > 0
}

// Verify checks a presented token
func (a *AdminAuthenticator) Verify(presented string) error {
	if presented == "" || !a.Enabled() {
		return ErrInvalidAdminToken
	}

	if len(a.hash) > 0 {
		if err := bcrypt.CompareHashAndPassword(a.hash, []byte(presented)); err != nil {
			return ErrInvalidAdminToken
		}
		return nil
	}

	if subtle.ConstantTimeCompare(a.token, []byte(presented)) != 1 {
		return ErrInvalidAdminToken
	}
	return nil
}

// HashAdminToken hashes a token for ADMIN_API_TOKEN_HASH
func HashAdminToken(token string, cost int) (string, error) {
	if len(token) < 24 {
		return "", fmt.Errorf("admin token must be at least 24 characters long")
	}
	if cost < bcrypt.MinCost {
		cost = bcrypt.DefaultCost
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(token), cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash admin token: %w", err)
	}
	return string(hashed), nil
}
