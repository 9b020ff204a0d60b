package ports

import (
	"context"

	"github.com/portalbi/dashboard-portal/internal/core/domain"
)

// AccountRepository is the storage primitive behind the account service.
// Implementations enforce username uniqueness at the storage level and report
// it as domain.ErrDuplicateUsername; lookups that miss return
// domain.ErrAccountNotFound.
type AccountRepository interface {
	// List returns every account in creation order.
	List(ctx context.Context) ([]domain.Account, error)
	FindByID(ctx context.Context, id string) (*domain.Account, error)
	FindByUsername(ctx context.Context, username string) (*domain.Account, error)
	Create(ctx context.Context, account *domain.Account) (*domain.Account, error)
	// Update replaces the mutable fields (username, name, role, password hash)
	// of the account with the same ID.
	Update(ctx context.Context, account *domain.Account) (*domain.Account, error)
	Delete(ctx context.Context, id string) error
	CountByRole(ctx context.Context, role domain.Role) (int, error)
}
