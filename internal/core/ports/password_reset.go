package ports

import (
	"context"
	"time"

	"github.com/accountd/account-service/internal/core/domain"
)

// ResetTokenStore keeps single-use password reset tokens, keyed by digest.
type ResetTokenStore interface {
	Put(ctx context.Context, digest, accountID string, ttl time.Duration) error
	// Consume atomically removes the digest and returns its account ID.
	// Unknown or expired digests return domain.ErrInvalidToken.
	Consume(ctx context.Context, digest string) (string, error)
}

// ResetNotifier delivers reset instructions to the account owner.
type ResetNotifier interface {
	Notify(ctx context.Context, n domain.ResetNotification) error
}
