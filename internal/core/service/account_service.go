package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/portalbi/dashboard-portal/internal/core/domain"
	"github.com/portalbi/dashboard-portal/internal/core/ports"
	"github.com/portalbi/dashboard-portal/internal/pkg/password"
)

// AccountService owns the account collection. Every mutation runs under mu so
// that the check-then-write sequences behind username uniqueness and the
// last-admin rule cannot interleave.
type AccountService struct {
	mu       sync.Mutex
	repo     ports.AccountRepository
	sessions ports.SessionStore
	hasher   *password.Hasher
	audit    ports.AuditRecorder
	newID    func() string
	now      func() time.Time
	log      zerolog.Logger
}

// AccountOption customizes an AccountService.
type AccountOption func(*AccountService)

// WithIDGenerator replaces the default UUID generator.
func WithIDGenerator(fn func() string) AccountOption {
	return func(s *AccountService) { s.newID = fn }
}

// WithClock replaces time.Now.
func WithClock(fn func() time.Time) AccountOption {
	return func(s *AccountService) { s.now = fn }
}

func NewAccountService(
	repo ports.AccountRepository,
	sessions ports.SessionStore,
	hasher *password.Hasher,
	audit ports.AuditRecorder,
	log zerolog.Logger,
	opts ...AccountOption,
) *AccountService {
	if audit == nil {
		audit = discardAudit{}
	}
	s := &AccountService{
		repo:     repo,
		sessions: sessions,
		hasher:   hasher,
		audit:    audit,
		newID:    uuid.NewString,
		now:      func() time.Time { return time.Now().UTC() },
		log:      log,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Locker exposes the single-writer lock so logins can establish sessions
// without interleaving with account mutations.
func (s *AccountService) Locker() sync.Locker {
	return &s.mu
}

func (s *AccountService) ListAccounts(ctx context.Context) ([]domain.Projection, error) {
	accounts, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	out := make([]domain.Projection, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, a.Projection())
	}
	return out, nil
}

func (s *AccountService) GetAccount(ctx context.Context, id string) (domain.Projection, error) {
	acc, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.Projection{}, err
	}
	return acc.Projection(), nil
}

func (s *AccountService) CreateAccount(ctx context.Context, in ports.CreateAccountInput) (domain.Projection, error) {
	switch {
	case in.Username == "":
		return domain.Projection{}, fmt.Errorf("%w: username is required", domain.ErrInvalidInput)
	case in.Name == "":
		return domain.Projection{}, fmt.Errorf("%w: name is required", domain.ErrInvalidInput)
	case in.Password == "":
		return domain.Projection{}, fmt.Errorf("%w: password is required", domain.ErrInvalidInput)
	case len(in.Password) > password.MaxLength:
		return domain.Projection{}, errPasswordTooLong
	case !in.Role.Valid():
		return domain.Projection{}, fmt.Errorf("%w: unknown role %q", domain.ErrInvalidInput, in.Role)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return domain.Projection{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureUsernameFree(ctx, in.Username, ""); err != nil {
		return domain.Projection{}, err
	}

	now := s.now()
	created, err := s.repo.Create(ctx, &domain.Account{
		ID:           s.newID(),
		Username:     in.Username,
		Name:         in.Name,
		Role:         in.Role,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return domain.Projection{}, err
	}

	s.log.Info().Str("account_id", created.ID).Str("username", created.Username).Str("role", string(created.Role)).Msg("account created")
	s.record(ctx, domain.AuditAccountCreated, created.Projection(), "role="+string(created.Role))

	return created.Projection(), nil
}

func (s *AccountService) UpdateAccount(ctx context.Context, id string, in ports.UpdateAccountInput) (domain.Projection, error) {
	switch {
	case in.Username != nil && *in.Username == "":
		return domain.Projection{}, fmt.Errorf("%w: username cannot be empty", domain.ErrInvalidInput)
	case in.Name != nil && *in.Name == "":
		return domain.Projection{}, fmt.Errorf("%w: name cannot be empty", domain.ErrInvalidInput)
	case in.Role != nil && !in.Role.Valid():
		return domain.Projection{}, fmt.Errorf("%w: unknown role %q", domain.ErrInvalidInput, *in.Role)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	acc, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.Projection{}, err
	}

	if in.Username != nil && *in.Username != acc.Username {
		if err := s.ensureUsernameFree(ctx, *in.Username, acc.ID); err != nil {
			return domain.Projection{}, err
		}
		acc.Username = *in.Username
	}
	if in.Name != nil {
		acc.Name = *in.Name
	}
	if in.Role != nil && *in.Role != acc.Role {
		if acc.IsAdmin() {
			if err := s.ensureAnotherAdmin(ctx); err != nil {
				return domain.Projection{}, err
			}
		}
		acc.Role = *in.Role
	}

	updated, err := s.save(ctx, acc)
	if err != nil {
		return domain.Projection{}, err
	}

	s.syncSessions(ctx, updated.Projection())
	s.record(ctx, domain.AuditAccountUpdated, updated.Projection(), "")

	return updated.Projection(), nil
}

// SetPassword is the administrative credential path.
func (s *AccountService) SetPassword(ctx context.Context, id, plain string) error {
	if err := checkPassword(plain); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	acc, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	return s.applyPassword(ctx, acc, plain)
}

// ChangeOwnPassword is the self-service credential path; the caller must
// prove knowledge of the current credential.
func (s *AccountService) ChangeOwnPassword(ctx context.Context, id, current, next string) error {
	if err := checkPassword(next); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	acc, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if !s.hasher.Verify(acc.PasswordHash, current) {
		return domain.ErrInvalidCredentials
	}
	return s.applyPassword(ctx, acc, next)
}

func (s *AccountService) DeleteAccount(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	acc, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if acc.IsAdmin() {
		if err := s.ensureAnotherAdmin(ctx); err != nil {
			return err
		}
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	if err := s.sessions.ClearAccount(ctx, id); err != nil {
		s.log.Error().Err(err).Str("account_id", id).Msg("failed to clear sessions of deleted account")
	}

	s.log.Info().Str("account_id", id).Str("username", acc.Username).Msg("account deleted")
	s.record(ctx, domain.AuditAccountDeleted, acc.Projection(), "")
	return nil
}

// Bootstrap seeds an empty store and fails when no admin account exists
// afterwards.
func (s *AccountService) Bootstrap(ctx context.Context, seeds []ports.CreateAccountInput) error {
	existing, err := s.repo.List(ctx)
	if err != nil {
		return fmt.Errorf("bootstrap: %w", err)
	}

	if len(existing) == 0 {
		for _, seed := range seeds {
			if _, err := s.CreateAccount(ctx, seed); err != nil {
				return fmt.Errorf("bootstrap: seed %q: %w", seed.Username, err)
			}
		}
		s.log.Info().Int("accounts", len(seeds)).Msg("seeded empty account store")
	}

	admins, err := s.repo.CountByRole(ctx, domain.RoleAdmin)
	if err != nil {
		return fmt.Errorf("bootstrap: %w", err)
	}
	if admins == 0 {
		return errors.New("bootstrap: no admin account exists")
	}
	return nil
}

func (s *AccountService) applyPassword(ctx context.Context, acc *domain.Account, plain string) error {
	hash, err := s.hasher.Hash(plain)
	if err != nil {
		return err
	}
	acc.PasswordHash = hash

	if _, err := s.save(ctx, acc); err != nil {
		return err
	}
	s.record(ctx, domain.AuditPasswordChanged, acc.Projection(), "")
	return nil
}

// save is the single field-update primitive both the profile and the
// credential paths go through.
func (s *AccountService) save(ctx context.Context, acc *domain.Account) (*domain.Account, error) {
	acc.UpdatedAt = s.now()
	updated, err := s.repo.Update(ctx, acc)
	if err != nil {
		return nil, fmt.Errorf("update account: %w", err)
	}
	return updated, nil
}

func (s *AccountService) ensureUsernameFree(ctx context.Context, username, selfID string) error {
	other, err := s.repo.FindByUsername(ctx, username)
	switch {
	case errors.Is(err, domain.ErrAccountNotFound):
		return nil
	case err != nil:
		return fmt.Errorf("check username: %w", err)
	case other.ID != selfID:
		return domain.ErrDuplicateUsername
	}
	return nil
}

func (s *AccountService) ensureAnotherAdmin(ctx context.Context) error {
	n, err := s.repo.CountByRole(ctx, domain.RoleAdmin)
	if err != nil {
		return fmt.Errorf("count admins: %w", err)
	}
	if n <= 1 {
		return domain.ErrLastAdmin
	}
	return nil
}

func (s *AccountService) syncSessions(ctx context.Context, p domain.Projection) {
	if err := s.sessions.Sync(ctx, p); err != nil {
		s.log.Error().Err(err).Str("account_id", p.ID).Msg("failed to refresh sessions after account update")
	}
}

func (s *AccountService) record(ctx context.Context, typ domain.AuditType, subject domain.Projection, detail string) {
	ev := domain.AuditEvent{
		ID:        uuid.NewString(),
		Type:      typ,
		SubjectID: subject.ID,
		Username:  subject.Username,
		Detail:    detail,
		Timestamp: s.now(),
	}
	if actor, ok := domain.ActorFrom(ctx); ok {
		ev.ActorID = actor.ID
	}
	s.audit.Record(ev)
}

var errPasswordTooLong = fmt.Errorf("%w: password must be at most %d bytes", domain.ErrInvalidInput, password.MaxLength)

func checkPassword(plain string) error {
	switch {
	case plain == "":
		return fmt.Errorf("%w: password cannot be empty", domain.ErrInvalidInput)
	case len(plain) > password.MaxLength:
		return errPasswordTooLong
	}
	return nil
}

type discardAudit struct{}

func (discardAudit) Record(domain.AuditEvent) {}
