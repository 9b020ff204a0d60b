package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/portalbi/dashboard-portal/internal/core/domain"
	"github.com/portalbi/dashboard-portal/internal/core/ports"
	"github.com/portalbi/dashboard-portal/internal/pkg/password"
)

// AuthConfig holds the tunables of the login flow.
type AuthConfig struct {
	JWTSecret string
	TokenTTL  time.Duration
	// LoginDelay is waited before every credential check.
	LoginDelay time.Duration
}

// AuthService implements login, logout and token authentication.
type AuthService struct {
	accounts ports.AccountRepository
	sessions ports.SessionStore
	hasher   *password.Hasher
	audit    ports.AuditRecorder
	cfg      AuthConfig
	log      zerolog.Logger
	// writer is held while a verified login is confirmed and established, so
	// account mutations cannot slip between the two.
	writer sync.Locker
}

// AuthOption customizes an AuthService.
type AuthOption func(*AuthService)

// WithAccountLock makes logins share the single-writer lock of the account
// service (AccountService.Locker). Without it the service uses a private lock
// and only serializes logins among themselves.
func WithAccountLock(l sync.Locker) AuthOption {
	return func(s *AuthService) { s.writer = l }
}

func NewAuthService(
	accounts ports.AccountRepository,
	sessions ports.SessionStore,
	hasher *password.Hasher,
	audit ports.AuditRecorder,
	cfg AuthConfig,
	log zerolog.Logger,
	opts ...AuthOption,
) *AuthService {
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = 24 * time.Hour
	}
	if audit == nil {
		audit = discardAudit{}
	}
	s := &AuthService{
		accounts: accounts,
		sessions: sessions,
		hasher:   hasher,
		audit:    audit,
		cfg:      cfg,
		log:      log,
		writer:   &sync.Mutex{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Login waits the configured delay, checks the credentials and establishes
// the session. Unknown usernames and wrong passwords both yield
// domain.ErrInvalidCredentials. If ctx ends during the delay nothing is
// changed; once the check starts it runs to completion.
func (s *AuthService) Login(ctx context.Context, clientID, username, plain string) (*ports.LoginResult, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	ctx = context.WithoutCancel(ctx)

	acc, err := s.checkCredentials(ctx, username, plain)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			s.log.Warn().Str("username", username).Msg("login failed")
			s.record(domain.AuditLoginFailed, "", username, "")
		}
		return nil, err
	}

	if clientID == "" {
		clientID = uuid.NewString()
	}
	p, err := s.establish(ctx, clientID, acc)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			s.log.Warn().Str("username", username).Msg("account changed during login")
			s.record(domain.AuditLoginFailed, "", username, "")
		}
		return nil, err
	}

	token, err := s.generateToken(clientID, p.ID)
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("account_id", p.ID).Str("username", p.Username).Str("role", string(p.Role)).Msg("login succeeded")
	s.record(domain.AuditLoginSucceeded, p.ID, p.Username, "")

	return &ports.LoginResult{Token: token, ClientID: clientID, Account: p}, nil
}

// LoginAsync runs Login on its own goroutine. The returned channel is
// buffered so an abandoned result never blocks the worker.
func (s *AuthService) LoginAsync(ctx context.Context, clientID, username, plain string) <-chan ports.LoginResult {
	ch := make(chan ports.LoginResult, 1)
	go func() {
		res, err := s.Login(ctx, clientID, username, plain)
		if err != nil {
			ch <- ports.LoginResult{Err: err}
			return
		}
		ch <- *res
	}()
	return ch
}

// Logout clears the client's session. It never fails from the caller's point of view.
func (s *AuthService) Logout(ctx context.Context, clientID string) {
	p, ok, _ := s.sessions.Current(ctx, clientID)
	if err := s.sessions.Clear(ctx, clientID); err != nil {
		s.log.Error().Err(err).Str("client_id", clientID).Msg("failed to clear session")
	}
	if ok {
		s.record(domain.AuditSessionCleared, p.ID, p.Username, "")
	}
}

// Authenticate validates a bearer token and returns the live session it
// points to. Role changes made since login are visible here.
func (s *AuthService) Authenticate(ctx context.Context, token string) (string, domain.Projection, error) {
	claims := jwt.MapClaims{}
	tkn, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil || !tkn.Valid {
		return "", domain.Projection{}, domain.ErrUnauthenticated
	}

	clientID, _ := claims["sid"].(string)
	subject, _ := claims["sub"].(string)
	if clientID == "" || subject == "" {
		return "", domain.Projection{}, domain.ErrUnauthenticated
	}

	p, ok, err := s.sessions.Current(ctx, clientID)
	if err != nil {
		return "", domain.Projection{}, fmt.Errorf("load session: %w", err)
	}
	if !ok || p.ID != subject {
		return "", domain.Projection{}, domain.ErrUnauthenticated
	}
	return clientID, p, nil
}

func (s *AuthService) checkCredentials(ctx context.Context, username, plain string) (*domain.Account, error) {
	if username == "" || plain == "" {
		return nil, domain.ErrInvalidCredentials
	}

	acc, err := s.accounts.FindByUsername(ctx, username)
	if errors.Is(err, domain.ErrAccountNotFound) {
		s.hasher.Burn(plain)
		return nil, domain.ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("find account: %w", err)
	}

	if !s.hasher.Verify(acc.PasswordHash, plain) {
		return nil, domain.ErrInvalidCredentials
	}
	return acc, nil
}

// establish re-reads the verified account under the writer lock and stores
// its current projection. An account deleted or given a new credential since
// the check fails the login; profile and role edits are picked up.
func (s *AuthService) establish(ctx context.Context, clientID string, verified *domain.Account) (domain.Projection, error) {
	s.writer.Lock()
	defer s.writer.Unlock()

	acc, err := s.accounts.FindByID(ctx, verified.ID)
	if errors.Is(err, domain.ErrAccountNotFound) {
		return domain.Projection{}, domain.ErrInvalidCredentials
	}
	if err != nil {
		return domain.Projection{}, fmt.Errorf("find account: %w", err)
	}
	if acc.PasswordHash != verified.PasswordHash {
		return domain.Projection{}, domain.ErrInvalidCredentials
	}

	p := acc.Projection()
	if err := s.sessions.Establish(ctx, clientID, p); err != nil {
		return domain.Projection{}, fmt.Errorf("establish session: %w", err)
	}
	return p, nil
}

func (s *AuthService) wait(ctx context.Context) error {
	if s.cfg.LoginDelay <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(s.cfg.LoginDelay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (s *AuthService) generateToken(clientID, accountID string) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sid": clientID,
		"sub": accountID,
		"iat": now.Unix(),
		"exp": now.Add(s.cfg.TokenTTL).Unix(),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

func (s *AuthService) record(typ domain.AuditType, subjectID, username, detail string) {
	s.audit.Record(domain.AuditEvent{
		ID:        uuid.NewString(),
		Type:      typ,
		ActorID:   subjectID,
		SubjectID: subjectID,
		Username:  username,
		Detail:    detail,
		Timestamp: time.Now().UTC(),
	})
}
