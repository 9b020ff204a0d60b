package ports

import (
	"context"

	"github.com/portalbi/dashboard-portal/internal/core/domain"
)

// CreateAccountInput carries the fields required to create an account.
type CreateAccountInput struct {
	Username string
	Name     string
	Role     domain.Role
	Password string
}

// UpdateAccountInput is a partial profile update; nil fields are left untouched.
type UpdateAccountInput struct {
	Username *string
	Name     *string
	Role     *domain.Role
}

// AccountService is the only writer of the account collection.
type AccountService interface {
	ListAccounts(ctx context.Context) ([]domain.Projection, error)
	GetAccount(ctx context.Context, id string) (domain.Projection, error)
	CreateAccount(ctx context.Context, in CreateAccountInput) (domain.Projection, error)
	UpdateAccount(ctx context.Context, id string, in UpdateAccountInput) (domain.Projection, error)
	SetPassword(ctx context.Context, id, password string) error
	ChangeOwnPassword(ctx context.Context, id, current, next string) error
	DeleteAccount(ctx context.Context, id string) error
}
