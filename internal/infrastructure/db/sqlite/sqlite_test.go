package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/portalbi/dashboard-portal/internal/core/domain"
)

func newTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := Open(context.Background(), "") // in-memory
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestAccountRepository_CRUD(t *testing.T) {
	repo := NewAccountRepository(newTestDB(t))
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	for _, a := range []domain.Account{
		{ID: "a1", Username: "pecas", Name: "Usuário Peças", Role: domain.RolePecas, PasswordHash: "h1", CreatedAt: now, UpdatedAt: now},
		{ID: "a2", Username: "admin", Name: "Administrador", Role: domain.RoleAdmin, PasswordHash: "h2", CreatedAt: now, UpdatedAt: now},
	} {
		if _, err := repo.Create(ctx, &a); err != nil {
			t.Fatalf("Create(%s): %v", a.Username, err)
		}
	}

	dup := domain.Account{ID: "a3", Username: "pecas", Name: "X", Role: domain.RolePecas, PasswordHash: "h", CreatedAt: now, UpdatedAt: now}
	if _, err := repo.Create(ctx, &dup); !errors.Is(err, domain.ErrDuplicateUsername) {
		t.Fatalf("expected ErrDuplicateUsername, got %v", err)
	}

	list, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 2 || list[0].ID != "a1" || list[1].ID != "a2" {
		t.Fatalf("unexpected list: %+v", list)
	}

	got, err := repo.FindByUsername(ctx, "admin")
	if err != nil {
		t.Fatalf("FindByUsername: %v", err)
	}
	if got.Role != domain.RoleAdmin || got.PasswordHash != "h2" {
		t.Errorf("unexpected account %+v", got)
	}
	if _, err := repo.FindByUsername(ctx, "Admin"); !errors.Is(err, domain.ErrAccountNotFound) {
		t.Fatalf("usernames must be case-sensitive, got %v", err)
	}

	got.Name = "Root"
	got.Role = domain.RoleGerente
	updated, err := repo.Update(ctx, got)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Name != "Root" || updated.Role != domain.RoleGerente {
		t.Errorf("update not applied: %+v", updated)
	}

	got.Username = "pecas"
	if _, err := repo.Update(ctx, got); !errors.Is(err, domain.ErrDuplicateUsername) {
		t.Fatalf("expected ErrDuplicateUsername on update, got %v", err)
	}

	if n, _ := repo.CountByRole(ctx, domain.RoleGerente); n != 1 {
		t.Errorf("CountByRole = %d, want 1", n)
	}

	if err := repo.Delete(ctx, "a1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := repo.Delete(ctx, "a1"); !errors.Is(err, domain.ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}
	if _, err := repo.Update(ctx, &domain.Account{ID: "missing", Username: "x"}); !errors.Is(err, domain.ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}
}

func TestAuditRepository_List(t *testing.T) {
	repo := NewAuditRepository(newTestDB(t))
	ctx := context.Background()

	for _, id := range []string{"e1", "e2", "e3"} {
		ev := &domain.AuditEvent{ID: id, Type: domain.AuditLoginSucceeded, Timestamp: time.Now()}
		if err := repo.Insert(ctx, ev); err != nil {
			t.Fatalf("Insert: %v", err)
		}
	}

	all, err := repo.List(ctx, 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 3 || all[0].ID != "e3" {
		t.Fatalf("expected newest first, got %+v", all)
	}

	two, _ := repo.List(ctx, 2)
	if len(two) != 2 || two[1].ID != "e2" {
		t.Fatalf("unexpected limited list: %+v", two)
	}
}
