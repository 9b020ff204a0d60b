package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/portalbi/dashboard-portal/internal/core/domain"
	"github.com/portalbi/dashboard-portal/internal/core/ports"
)

// hookRepository runs afterLookup once, right after the credential lookup,
// to mutate the account while a login is in flight.
type hookRepository struct {
	ports.AccountRepository
	afterLookup func()
}

func (r *hookRepository) FindByUsername(ctx context.Context, username string) (*domain.Account, error) {
	acc, err := r.AccountRepository.FindByUsername(ctx, username)
	if r.afterLookup != nil {
		hook := r.afterLookup
		r.afterLookup = nil
		hook()
	}
	return acc, err
}

func newHookedAuth(t *testing.T) (*fixture, *hookRepository, *AuthService, domain.Projection) {
	t.Helper()
	f := newFixture(t)
	f.create(t, "admin", domain.RoleAdmin, "admin123")
	boss := f.create(t, "boss", domain.RoleAdmin, "boss123")

	repo := &hookRepository{AccountRepository: f.repo}
	svc := NewAuthService(repo, f.sessions, f.hasher, f.audit, AuthConfig{
		JWTSecret: "secret",
		TokenTTL:  time.Hour,
	}, zerolog.Nop(), WithAccountLock(f.accounts.Locker()))
	return f, repo, svc, boss
}

func TestAuthService_Login_AccountDeletedDuringLogin(t *testing.T) {
	f, repo, svc, boss := newHookedAuth(t)
	ctx := context.Background()

	repo.afterLookup = func() {
		if err := f.accounts.DeleteAccount(ctx, boss.ID); err != nil {
			t.Fatalf("DeleteAccount: %v", err)
		}
	}

	if _, err := svc.Login(ctx, "browser", "boss", "boss123"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, ok, _ := f.sessions.Current(ctx, "browser"); ok {
		t.Fatalf("a deleted account must not end up with a session")
	}
}

func TestAuthService_Login_AccountDemotedDuringLogin(t *testing.T) {
	f, repo, svc, boss := newHookedAuth(t)
	ctx := context.Background()

	repo.afterLookup = func() {
		if _, err := f.accounts.UpdateAccount(ctx, boss.ID, ports.UpdateAccountInput{Role: rolePtr(domain.RolePecas)}); err != nil {
			t.Fatalf("UpdateAccount: %v", err)
		}
	}

	res, err := svc.Login(ctx, "browser", "boss", "boss123")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if res.Account.Role != domain.RolePecas {
		t.Fatalf("login must return the current role, got %s", res.Account.Role)
	}

	_, p, err := svc.Authenticate(ctx, res.Token)
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if p.Role != domain.RolePecas {
		t.Fatalf("stored session kept role %s after demotion", p.Role)
	}
}

func TestAuthService_Login_PasswordChangedDuringLogin(t *testing.T) {
	f, repo, svc, boss := newHookedAuth(t)
	ctx := context.Background()

	repo.afterLookup = func() {
		if err := f.accounts.SetPassword(ctx, boss.ID, "rotated"); err != nil {
			t.Fatalf("SetPassword: %v", err)
		}
	}

	if _, err := svc.Login(ctx, "browser", "boss", "boss123"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for a rotated credential, got %v", err)
	}
	if _, ok, _ := f.sessions.Current(ctx, "browser"); ok {
		t.Fatalf("no session may be established with a stale credential")
	}
}

func TestAuthService_Login_WaitsForAccountMutation(t *testing.T) {
	f, _, svc, boss := newHookedAuth(t)
	ctx := context.Background()

	lock := f.accounts.Locker()
	lock.Lock()

	done := make(chan error, 1)
	go func() {
		_, err := svc.Login(ctx, "browser", "boss", "boss123")
		done <- err
	}()

	select {
	case err := <-done:
		t.Fatalf("login finished while an account mutation held the lock: %v", err)
	case <-time.After(100 * time.Millisecond):
	}

	// Stand-in for a delete that holds the lock across its cleanup.
	if err := f.repo.Delete(ctx, boss.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	lock.Unlock()

	if err := <-done; !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}
