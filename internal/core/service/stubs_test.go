package service

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/accountd/account-service/internal/core/domain"
)

// ---------------------------------------------------------------------------
// Stubs
// ---------------------------------------------------------------------------

type stubDirectory struct {
	byID    map[string]*domain.Account
	saves   int
	findErr error
	saveErr error
	// shared makes lookups hand out the stored pointer, like an in-process cache.
	shared bool
}

func newStubDirectory() *stubDirectory {
	return &stubDirectory{byID: make(map[string]*domain.Account)}
}

func cloneAccount(a *domain.Account) *domain.Account {
	if a == nil {
		return nil
	}
	clone := *a
	return &clone
}

func (d *stubDirectory) FindByID(_ context.Context, id string) (*domain.Account, error) {
	if d.findErr != nil {
		return nil, d.findErr
	}
	if a, ok := d.byID[id]; ok {
		if d.shared {
			return a, nil
		}
		return cloneAccount(a), nil
	}
	return nil, domain.ErrAccountNotFound
}

func (d *stubDirectory) FindByUsername(_ context.Context, username string) (*domain.Account, error) {
	if d.findErr != nil {
		return nil, d.findErr
	}
	for _, a := range d.byID {
		if a.Username == username {
			if d.shared {
				return a, nil
			}
			return cloneAccount(a), nil
		}
	}
	return nil, domain.ErrAccountNotFound
}

func (d *stubDirectory) Save(_ context.Context, a *domain.Account) (*domain.Account, error) {
	if d.saveErr != nil {
		return nil, d.saveErr
	}
	for id, existing := range d.byID {
		if id != a.ID && existing.Username == a.Username {
			return nil, domain.ErrDuplicateAccount
		}
	}
	d.saves++
	d.byID[a.ID] = cloneAccount(a)
	return cloneAccount(a), nil
}

func (d *stubDirectory) DeleteByUsername(_ context.Context, username string) error {
	for id, a := range d.byID {
		if a.Username == username {
			delete(d.byID, id)
			return nil
		}
	}
	return domain.ErrAccountNotFound
}

func (d *stubDirectory) List(_ context.Context) ([]*domain.Account, error) {
	out := make([]*domain.Account, 0, len(d.byID))
	for _, a := range d.byID {
		out = append(out, cloneAccount(a))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out, nil
}

type stubResetStore struct {
	entries map[string]string
	ttl     time.Duration
	putErr  error
}

func newStubResetStore() *stubResetStore {
	return &stubResetStore{entries: make(map[string]string)}
}

func (r *stubResetStore) Put(_ context.Context, digest, accountID string, ttl time.Duration) error {
	if r.putErr != nil {
		return r.putErr
	}
	r.entries[digest] = accountID
	r.ttl = ttl
	return nil
}

func (r *stubResetStore) Consume(_ context.Context, digest string) (string, error) {
	id, ok := r.entries[digest]
	if !ok {
		return "", domain.ErrInvalidToken
	}
	delete(r.entries, digest)
	return id, nil
}

type stubNotifier struct {
	sent []domain.ResetNotification
	err  error
}

func (n *stubNotifier) Notify(_ context.Context, msg domain.ResetNotification) error {
	if n.err != nil {
		return n.err
	}
	n.sent = append(n.sent, msg)
	return nil
}

type stubTokens struct {
	subject string
	err     error
}

func (s *stubTokens) Issue(a *domain.Account) (string, error) {
	return "token-for-" + a.Username, nil
}

func (s *stubTokens) VerifySubject(string) (string, error) {
	return s.subject, s.err
}

var errBackend = errors.New("backend unavailable")
