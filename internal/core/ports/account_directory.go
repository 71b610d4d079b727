package ports

import (
	"context"

	"github.com/accountd/account-service/internal/core/domain"
)

// AccountDirectory is the persistent store of accounts.
//
// Lookups return domain.ErrAccountNotFound when no record matches. Save
// inserts or replaces the record keyed by ID and returns
// domain.ErrDuplicateAccount when a unique username or email is taken.
type AccountDirectory interface {
	FindByID(ctx context.Context, id string) (*domain.Account, error)
	FindByUsername(ctx context.Context, username string) (*domain.Account, error)
	Save(ctx context.Context, account *domain.Account) (*domain.Account, error)
	DeleteByUsername(ctx context.Context, username string) error
	List(ctx context.Context) ([]*domain.Account, error)
}

// Pinger reports backend reachability for readiness probes.
type Pinger interface {
	Ping(ctx context.Context) error
}
