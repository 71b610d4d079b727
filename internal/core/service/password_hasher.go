package service

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/accountd/account-service/internal/core/domain"
)

// DefaultBcryptCost is used when no cost is configured.
const DefaultBcryptCost = 10

// MaxPasswordBytes is the longest input bcrypt accepts.
const MaxPasswordBytes = 72

// BcryptHasher hashes passwords with bcrypt at a fixed cost. The salt is
// embedded in the output.
type BcryptHasher struct {
	cost int
}

func NewBcryptHasher(cost int) *BcryptHasher {
	if cost == 0 {
		cost = DefaultBcryptCost
	}
	return &BcryptHasher{cost: cost}
}

func (h *BcryptHasher) Hash(plaintext string) (string, error) {
	if plaintext == "" {
		return "", fmt.Errorf("%w: empty password", domain.ErrCrypto)
	}
	// Over-long input is a validation failure as well as a hashing one.
	if len(plaintext) > MaxPasswordBytes {
		return "", fmt.Errorf("%w: %w: password exceeds %d bytes", domain.ErrCrypto, domain.ErrValidation, MaxPasswordBytes)
	}
	if h.cost < bcrypt.MinCost || h.cost > bcrypt.MaxCost {
		return "", fmt.Errorf("%w: cost %d out of range", domain.ErrCrypto, h.cost)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		// bcrypt errors never carry the password.
		return "", fmt.Errorf("%w: %v", domain.ErrCrypto, err)
	}
	return string(hash), nil
}

func (h *BcryptHasher) Verify(plaintext, hashed string) bool {
	if hashed == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plaintext)) == nil
}
