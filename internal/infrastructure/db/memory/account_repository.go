// Package memory keeps accounts, sessions and audit events in process memory.
// It is the default backend and the one used by tests.
package memory

import (
	"context"
	"sync"

	"github.com/portalbi/dashboard-portal/internal/core/domain"
)

// AccountRepository stores accounts in creation order.
type AccountRepository struct {
	mu       sync.RWMutex
	accounts []domain.Account
}

func NewAccountRepository() *AccountRepository {
	return &AccountRepository{}
}

func (r *AccountRepository) List(_ context.Context) ([]domain.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return append([]domain.Account(nil), r.accounts...), nil
}

func (r *AccountRepository) FindByID(_ context.Context, id string) (*domain.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i := r.indexByID(id)
	if i < 0 {
		return nil, domain.ErrAccountNotFound
	}
	acc := r.accounts[i]
	return &acc, nil
}

func (r *AccountRepository) FindByUsername(_ context.Context, username string) (*domain.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i := r.indexByUsername(username)
	if i < 0 {
		return nil, domain.ErrAccountNotFound
	}
	acc := r.accounts[i]
	return &acc, nil
}

func (r *AccountRepository) Create(_ context.Context, account *domain.Account) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.indexByUsername(account.Username) >= 0 {
		return nil, domain.ErrDuplicateUsername
	}
	r.accounts = append(r.accounts, *account)
	created := *account
	return &created, nil
}

func (r *AccountRepository) Update(_ context.Context, account *domain.Account) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexByID(account.ID)
	if i < 0 {
		return nil, domain.ErrAccountNotFound
	}
	if j := r.indexByUsername(account.Username); j >= 0 && j != i {
		return nil, domain.ErrDuplicateUsername
	}

	stored := r.accounts[i]
	stored.Username = account.Username
	stored.Name = account.Name
	stored.Role = account.Role
	stored.PasswordHash = account.PasswordHash
	stored.UpdatedAt = account.UpdatedAt
	r.accounts[i] = stored

	return &stored, nil
}

func (r *AccountRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexByID(id)
	if i < 0 {
		return domain.ErrAccountNotFound
	}
	r.accounts = append(r.accounts[:i], r.accounts[i+1:]...)
	return nil
}

func (r *AccountRepository) CountByRole(_ context.Context, role domain.Role) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n := 0
	for _, a := range r.accounts {
		if a.Role == role {
			n++
		}
	}
	return n, nil
}

func (r *AccountRepository) indexByID(id string) int {
	for i, a := range r.accounts {
		if a.ID == id {
			return i
		}
	}
	return -1
}

func (r *AccountRepository) indexByUsername(username string) int {
	for i, a := range r.accounts {
		if a.Username == username {
			return i
		}
	}
	return -1
}
