package service

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/portalbi/dashboard-portal/internal/core/domain"
	"github.com/portalbi/dashboard-portal/internal/core/ports"
	"github.com/portalbi/dashboard-portal/internal/infrastructure/db/memory"
	"github.com/portalbi/dashboard-portal/internal/pkg/password"
)

type recordingAudit struct {
	mu     sync.Mutex
	events []domain.AuditEvent
}

func (r *recordingAudit) Record(ev domain.AuditEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *recordingAudit) types() []domain.AuditType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.AuditType, 0, len(r.events))
	for _, ev := range r.events {
		out = append(out, ev.Type)
	}
	return out
}

func (r *recordingAudit) has(typ domain.AuditType) bool {
	for _, t := range r.types() {
		if t == typ {
			return true
		}
	}
	return false
}

type fixture struct {
	repo     *memory.AccountRepository
	sessions *memory.SessionStore
	hasher   *password.Hasher
	audit    *recordingAudit
	accounts *AccountService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		repo:     memory.NewAccountRepository(),
		sessions: memory.NewSessionStore(zerolog.Nop()),
		hasher:   password.NewHasher(bcrypt.MinCost),
		audit:    &recordingAudit{},
	}
	seq := 0
	f.accounts = NewAccountService(f.repo, f.sessions, f.hasher, f.audit, zerolog.Nop(),
		WithIDGenerator(func() string {
			seq++
			return fmt.Sprint(seq)
		}),
	)
	return f
}

func (f *fixture) create(t *testing.T, username string, role domain.Role, plain string) domain.Projection {
	t.Helper()
	p, err := f.accounts.CreateAccount(context.Background(), ports.CreateAccountInput{
		Username: username,
		Name:     "Usuário " + username,
		Role:     role,
		Password: plain,
	})
	if err != nil {
		t.Fatalf("CreateAccount(%s): %v", username, err)
	}
	return p
}

func strPtr(s string) *string { return &s }

func rolePtr(r domain.Role) *domain.Role { return &r }
