package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/accountd/account-service/internal/core/domain"
	"github.com/accountd/account-service/internal/core/ports"
)

const (
	defaultResetTTL = 30 * time.Minute
	resetTokenBytes = 32
)

// AccountDependencies groups the collaborators of AccountService. Resets and
// Notifier are optional; without them ForgotPassword only checks existence.
type AccountDependencies struct {
	Directory ports.AccountDirectory
	Hasher    ports.PasswordHasher
	Tokens    ports.TokenService
	Resets    ports.ResetTokenStore
	Notifier  ports.ResetNotifier
	ResetTTL  time.Duration
	Now       func() time.Time
}

// AccountService implements the account workflows.
type AccountService struct {
	directory ports.AccountDirectory
	hasher    ports.PasswordHasher
	tokens    ports.TokenService
	resets    ports.ResetTokenStore
	notifier  ports.ResetNotifier
	resetTTL  time.Duration
	now       func() time.Time
	log       zerolog.Logger

	dummyOnce sync.Once
	dummyHash string
}

func NewAccountService(deps AccountDependencies, log zerolog.Logger) *AccountService {
	ttl := deps.ResetTTL
	if ttl <= 0 {
		ttl = defaultResetTTL
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &AccountService{
		directory: deps.Directory,
		hasher:    deps.Hasher,
		tokens:    deps.Tokens,
		resets:    deps.Resets,
		notifier:  deps.Notifier,
		resetTTL:  ttl,
		now:       now,
		log:       log,
	}
}

// Register creates a new account with role ROLE_USER.
func (s *AccountService) Register(ctx context.Context, in ports.RegisterInput) (*domain.Account, error) {
	if in.Username == "" || in.Password == "" || in.Email == "" {
		return nil, fmt.Errorf("%w: username, password and email are required", domain.ErrValidation)
	}

	if _, err := s.directory.FindByUsername(ctx, in.Username); err == nil {
		return nil, domain.ErrDuplicateAccount
	} else if !errors.Is(err, domain.ErrAccountNotFound) {
		return nil, fmt.Errorf("register: %w", err)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}

	now := s.now().UTC()
	account := &domain.Account{
		ID:           uuid.NewString(),
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: hash,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Role:         domain.RoleUser,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	saved, err := s.directory.Save(ctx, account)
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateAccount) {
			return nil, domain.ErrDuplicateAccount
		}
		return nil, fmt.Errorf("register: %w", err)
	}

	s.log.Info().Str("account_id", saved.ID).Str("username", saved.Username).Msg("account registered")
	return saved, nil
}

// Login returns a signed token. Unknown usernames and wrong passwords yield
// the same error.
func (s *AccountService) Login(ctx context.Context, username, password string) (string, error) {
	if username == "" || password == "" {
		return "", domain.ErrInvalidCredentials
	}

	account, err := s.directory.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			// Burn a comparison so timing matches the wrong-password path.
			s.hasher.Verify(password, s.dummy())
			return "", domain.ErrInvalidCredentials
		}
		return "", fmt.Errorf("login: %w", err)
	}

	if !s.hasher.Verify(password, account.PasswordHash) {
		return "", domain.ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(account)
	if err != nil {
		return "", fmt.Errorf("login: %w", err)
	}
	return token, nil
}

// ChangePassword replaces the password after checking the old one. Nothing is
// written when the check fails.
func (s *AccountService) ChangePassword(ctx context.Context, id, oldPassword, newPassword string) error {
	if newPassword == "" {
		return fmt.Errorf("%w: new password is required", domain.ErrValidation)
	}

	account, err := s.directory.FindByID(ctx, id)
	if err != nil {
		return s.lookupErr("change password", err)
	}

	if !s.hasher.Verify(oldPassword, account.PasswordHash) {
		return domain.ErrIncorrectPassword
	}

	return s.storePassword(ctx, account, newPassword, "change password")
}

// Update applies patch onto the account named username.
func (s *AccountService) Update(ctx context.Context, username string, patch domain.AccountPatch) (*domain.Account, error) {
	account, err := s.directory.FindByUsername(ctx, username)
	if err != nil {
		return nil, s.lookupErr("update", err)
	}

	if patch.Username != nil && *patch.Username != "" && *patch.Username != account.Username {
		if _, err := s.directory.FindByUsername(ctx, *patch.Username); err == nil {
			return nil, domain.ErrDuplicateAccount
		} else if !errors.Is(err, domain.ErrAccountNotFound) {
			return nil, fmt.Errorf("update: %w", err)
		}
	}

	updated := *account
	if !patch.Apply(&updated) {
		return account, nil
	}
	updated.UpdatedAt = s.now().UTC()

	saved, err := s.directory.Save(ctx, &updated)
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateAccount) {
			return nil, domain.ErrDuplicateAccount
		}
		return nil, fmt.Errorf("update: %w", err)
	}
	return saved, nil
}

func (s *AccountService) Delete(ctx context.Context, username string) error {
	if _, err := s.directory.FindByUsername(ctx, username); err != nil {
		return s.lookupErr("delete", err)
	}

	if err := s.directory.DeleteByUsername(ctx, username); err != nil {
		return s.lookupErr("delete", err)
	}

	s.log.Info().Str("username", username).Msg("account deleted")
	return nil
}

// ForgotPassword checks the account exists and, when a reset store is
// configured, issues a single-use reset token to its owner.
func (s *AccountService) ForgotPassword(ctx context.Context, username string) error {
	account, err := s.directory.FindByUsername(ctx, username)
	if err != nil {
		return s.lookupErr("forgot password", err)
	}

	if s.resets == nil || s.notifier == nil {
		return nil
	}

	token, digest, err := newResetToken()
	if err != nil {
		return fmt.Errorf("forgot password: %w", err)
	}

	if err := s.resets.Put(ctx, digest, account.ID, s.resetTTL); err != nil {
		return fmt.Errorf("forgot password: %w", err)
	}

	n := domain.ResetNotification{
		AccountID: account.ID,
		Username:  account.Username,
		Email:     account.Email,
		Token:     token,
		ExpiresAt: s.now().Add(s.resetTTL).UTC(),
	}
	if err := s.notifier.Notify(ctx, n); err != nil {
		// Nobody received the token; revoke it rather than leave it live.
		if _, revokeErr := s.resets.Consume(context.WithoutCancel(ctx), digest); revokeErr != nil {
			s.log.Warn().Err(revokeErr).Str("account_id", account.ID).Msg("could not revoke undelivered reset token")
		}
		return fmt.Errorf("forgot password: %w", err)
	}
	return nil
}

// ResetPassword consumes a reset token and sets a new password.
func (s *AccountService) ResetPassword(ctx context.Context, token, newPassword string) error {
	if newPassword == "" {
		return fmt.Errorf("%w: new password is required", domain.ErrValidation)
	}
	if s.resets == nil || strings.TrimSpace(token) == "" {
		return domain.ErrInvalidToken
	}

	// Hash before consuming so a rejected password leaves the token usable.
	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("reset password: %w", err)
	}

	accountID, err := s.resets.Consume(ctx, digestResetToken(token))
	if err != nil {
		if errors.Is(err, domain.ErrInvalidToken) {
			return domain.ErrInvalidToken
		}
		return fmt.Errorf("reset password: %w", err)
	}

	account, err := s.directory.FindByID(ctx, accountID)
	if err != nil {
		return s.lookupErr("reset password", err)
	}

	return s.saveHash(ctx, account, hash, "reset password")
}

func (s *AccountService) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	account, err := s.directory.FindByID(ctx, id)
	if err != nil {
		return nil, s.lookupErr("get account", err)
	}
	return account, nil
}

func (s *AccountService) GetByUsername(ctx context.Context, username string) (*domain.Account, error) {
	account, err := s.directory.FindByUsername(ctx, username)
	if err != nil {
		return nil, s.lookupErr("get account", err)
	}
	return account, nil
}

func (s *AccountService) List(ctx context.Context) ([]*domain.Account, error) {
	accounts, err := s.directory.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	return accounts, nil
}

// storePassword hashes plaintext before touching the account so a hashing
// failure leaves the stored record unchanged.
func (s *AccountService) storePassword(ctx context.Context, account *domain.Account, plaintext, op string) error {
	hash, err := s.hasher.Hash(plaintext)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return s.saveHash(ctx, account, hash, op)
}

func (s *AccountService) saveHash(ctx context.Context, account *domain.Account, hash, op string) error {
	updated := *account
	updated.PasswordHash = hash
	updated.UpdatedAt = s.now().UTC()

	if _, err := s.directory.Save(ctx, &updated); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info().Str("account_id", account.ID).Str("op", op).Msg("password updated")
	return nil
}

func (s *AccountService) lookupErr(op string, err error) error {
	if errors.Is(err, domain.ErrAccountNotFound) {
		return domain.ErrAccountNotFound
	}
	return fmt.Errorf("%s: %w", op, err)
}

// dummy returns a valid hash of a random value, computed once.
func (s *AccountService) dummy() string {
	s.dummyOnce.Do(func() {
		h, err := s.hasher.Hash(uuid.NewString())
		if err != nil {
			s.log.Warn().Err(err).Msg("could not prepare timing-equalisation hash")
			return
		}
		s.dummyHash = h
	})
	return s.dummyHash
}

// newResetToken returns a random hex token and the digest that is stored.
func newResetToken() (token, digest string, err error) {
	b := make([]byte, resetTokenBytes)
	if _, err = rand.Read(b); err != nil {
		return "", "", fmt.Errorf("generate reset token: %w", err)
	}
	token = hex.EncodeToString(b)
	return token, digestResetToken(token), nil
}

func digestResetToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
