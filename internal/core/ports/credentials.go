package ports

import (
	"context"

	"github.com/accountd/account-service/internal/core/domain"
)

// PasswordHasher hashes and verifies passwords. Implementations must be safe
// for concurrent use.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	// Verify reports whether plaintext matches hashed. A malformed hash
	// yields false.
	Verify(plaintext, hashed string) bool
}

// TokenService issues and verifies signed bearer tokens.
type TokenService interface {
	Issue(account *domain.Account) (string, error)
	// VerifySubject returns the token's username claim, or
	// domain.ErrInvalidToken for any signature, issuer or expiry failure.
	VerifySubject(token string) (string, error)
}

// Authenticator resolves an Authorization header into a principal.
// An empty header yields (nil, nil).
type Authenticator interface {
	Authenticate(ctx context.Context, header string) (*domain.Principal, error)
}
