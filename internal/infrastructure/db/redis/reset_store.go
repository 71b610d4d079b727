package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/accountd/account-service/internal/core/domain"
)

// ResetStore keeps outstanding password reset tokens.
// Key format: reset:<sha256 hex of token>, value is the account id.
type ResetStore struct {
	client redis.Cmdable
}

func NewResetStore(client redis.Cmdable) *ResetStore {
	return &ResetStore{client: client}
}

// Put records digest for accountID; the key expires after ttl.
func (s *ResetStore) Put(ctx context.Context, digest, accountID string, ttl time.Duration) error {
	if err := s.client.Set(ctx, key(digest), accountID, ttl).Err(); err != nil {
		return fmt.Errorf("reset token put: %w", err)
	}
	return nil
}

// Consume returns the account id for digest and removes it in the same
// command, so a token can be redeemed at most once.
func (s *ResetStore) Consume(ctx context.Context, digest string) (string, error) {
	id, err := s.client.GetDel(ctx, key(digest)).Result()
	if errors.Is(err, redis.Nil) {
		return "", domain.ErrInvalidToken
	}
	if err != nil {
		return "", fmt.Errorf("reset token consume: %w", err)
	}
	return id, nil
}

func (s *ResetStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func key(digest string) string {
	return "reset:" + digest
}
