package handler

import (
	"context"
	"net/http/httptest"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/portalbi/dashboard-portal/internal/core/domain"
	"github.com/portalbi/dashboard-portal/internal/core/ports"
)

type stubAuthService struct {
	loginFn        func(ctx context.Context, clientID, username, password string) (*ports.LoginResult, error)
	logoutFn       func(ctx context.Context, clientID string)
	authenticateFn func(ctx context.Context, token string) (string, domain.Projection, error)
}

func (s *stubAuthService) Login(ctx context.Context, clientID, username, password string) (*ports.LoginResult, error) {
	return s.loginFn(ctx, clientID, username, password)
}

func (s *stubAuthService) LoginAsync(ctx context.Context, clientID, username, password string) <-chan ports.LoginResult {
	ch := make(chan ports.LoginResult, 1)
	go func() {
		res, err := s.Login(ctx, clientID, username, password)
		if err != nil {
			ch <- ports.LoginResult{Err: err}
			return
		}
		ch <- *res
	}()
	return ch
}

func (s *stubAuthService) Logout(ctx context.Context, clientID string) {
	if s.logoutFn != nil {
		s.logoutFn(ctx, clientID)
	}
}

func (s *stubAuthService) Authenticate(ctx context.Context, token string) (string, domain.Projection, error) {
	if s.authenticateFn == nil {
		return "", domain.Projection{}, domain.ErrUnauthenticated
	}
	return s.authenticateFn(ctx, token)
}

type stubAccountService struct {
	listFn           func(ctx context.Context) ([]domain.Projection, error)
	getFn            func(ctx context.Context, id string) (domain.Projection, error)
	createFn         func(ctx context.Context, in ports.CreateAccountInput) (domain.Projection, error)
	updateFn         func(ctx context.Context, id string, in ports.UpdateAccountInput) (domain.Projection, error)
	setPasswordFn    func(ctx context.Context, id, password string) error
	changePasswordFn func(ctx context.Context, id, current, next string) error
	deleteFn         func(ctx context.Context, id string) error
}

func (s *stubAccountService) ListAccounts(ctx context.Context) ([]domain.Projection, error) {
	return s.listFn(ctx)
}

func (s *stubAccountService) GetAccount(ctx context.Context, id string) (domain.Projection, error) {
	return s.getFn(ctx, id)
}

func (s *stubAccountService) CreateAccount(ctx context.Context, in ports.CreateAccountInput) (domain.Projection, error) {
	return s.createFn(ctx, in)
}

func (s *stubAccountService) UpdateAccount(ctx context.Context, id string, in ports.UpdateAccountInput) (domain.Projection, error) {
	return s.updateFn(ctx, id, in)
}

func (s *stubAccountService) SetPassword(ctx context.Context, id, password string) error {
	return s.setPasswordFn(ctx, id, password)
}

func (s *stubAccountService) ChangeOwnPassword(ctx context.Context, id, current, next string) error {
	return s.changePasswordFn(ctx, id, current, next)
}

func (s *stubAccountService) DeleteAccount(ctx context.Context, id string) error {
	return s.deleteFn(ctx, id)
}

// newContext builds an echo context with the validator installed and,
// when account is non-empty, the session the Auth middleware would inject.
func newContext(method, target, body string, account domain.Projection) (*echo.Echo, echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = NewValidator()

	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if account.ID != "" {
		c.Set("account", account)
		c.Set("role", string(account.Role))
		c.Set("client_id", "client_1")
	}
	return e, c, rec
}

var (
	adminAccount = domain.Projection{ID: "5", Username: "admin", Role: domain.RoleAdmin, Name: "Administrador"}
	pecasAccount = domain.Projection{ID: "1", Username: "pecas", Role: domain.RolePecas, Name: "Usuário Peças"}
)
