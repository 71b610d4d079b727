package ports

import (
	"context"

	"github.com/accountd/account-service/internal/core/domain"
)

// RegisterInput is the DTO passed from the transport layer to Register.
type RegisterInput struct {
	Username  string
	Password  string
	Email     string
	FirstName string
	LastName  string
}

type AccountService interface {
	Register(ctx context.Context, in RegisterInput) (*domain.Account, error)
	Login(ctx context.Context, username, password string) (string, error)
	ChangePassword(ctx context.Context, id, oldPassword, newPassword string) error
	Update(ctx context.Context, username string, patch domain.AccountPatch) (*domain.Account, error)
	Delete(ctx context.Context, username string) error
	ForgotPassword(ctx context.Context, username string) error
	ResetPassword(ctx context.Context, token, newPassword string) error

	GetByID(ctx context.Context, id string) (*domain.Account, error)
	GetByUsername(ctx context.Context, username string) (*domain.Account, error)
	List(ctx context.Context) ([]*domain.Account, error)
}
