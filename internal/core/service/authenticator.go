package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/accountd/account-service/internal/core/domain"
	"github.com/accountd/account-service/internal/core/ports"
)

// Authenticator resolves bearer headers into principals. It never touches
// persistent state.
type Authenticator struct {
	tokens    ports.TokenService
	directory ports.AccountDirectory
}

func NewAuthenticator(tokens ports.TokenService, directory ports.AccountDirectory) *Authenticator {
	return &Authenticator{tokens: tokens, directory: directory}
}

func (a *Authenticator) Authenticate(ctx context.Context, header string) (*domain.Principal, error) {
	if header == "" {
		return nil, nil
	}

	token, err := ExtractBearer(header)
	if err != nil {
		return nil, err
	}

	username, err := a.tokens.VerifySubject(token)
	if err != nil {
		return nil, domain.ErrInvalidToken
	}

	account, err := a.directory.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, fmt.Errorf("resolve principal: %w", err)
	}

	return &domain.Principal{Account: account, Role: account.Role}, nil
}
