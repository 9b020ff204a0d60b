package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/portalbi/dashboard-portal/internal/core/domain"
	"github.com/portalbi/dashboard-portal/internal/core/service"
	"github.com/portalbi/dashboard-portal/internal/infrastructure/catalog"
	"github.com/portalbi/dashboard-portal/internal/infrastructure/db/memory"
	"github.com/portalbi/dashboard-portal/internal/infrastructure/seed"
	"github.com/portalbi/dashboard-portal/internal/pkg/password"
)

// newTestServer wires the full router over the in-memory backends with the
// demo accounts seeded and no login delay.
func newTestServer(t *testing.T) *echo.Echo {
	t.Helper()
	log := zerolog.Nop()

	repo := memory.NewAccountRepository()
	sessions := memory.NewSessionStore(log)
	audit := memory.NewAuditRepository(100)
	hasher := password.NewHasher(bcrypt.MinCost)

	accounts := service.NewAccountService(repo, sessions, hasher, nil, log)
	if err := accounts.Bootstrap(context.Background(), seed.DemoAccounts()); err != nil {
		t.Fatalf("bootstrap: %v", err)
	}
	auth := service.NewAuthService(repo, sessions, hasher, nil, service.AuthConfig{JWTSecret: "test-secret"}, log,
		service.WithAccountLock(accounts.Locker()))

	cat, err := catalog.Default()
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}

	return NewRouter(Deps{
		Auth:     auth,
		Accounts: accounts,
		Access:   service.NewAccessService(cat),
		Audit:    audit,
		Log:      log,
	})
}

func do(t *testing.T, e *echo.Echo, method, target, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func login(t *testing.T, e *echo.Echo, username, pw string) string {
	t.Helper()
	rec := do(t, e, http.MethodPost, "/auth/login", "", `{"username":"`+username+`","password":"`+pw+`"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("login %s: expected 200, got %d: %s", username, rec.Code, rec.Body.String())
	}
	var resp struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	return resp.Token
}

func TestRouter_LoginAndDashboards(t *testing.T) {
	e := newTestServer(t)

	if rec := do(t, e, http.MethodPost, "/auth/login", "", `{"username":"pecas","password":"wrong"}`); rec.Code != http.StatusUnauthorized {
		t.Fatalf("wrong password: expected 401, got %d", rec.Code)
	}
	if rec := do(t, e, http.MethodGet, "/dashboards", "", ""); rec.Code != http.StatusUnauthorized {
		t.Fatalf("no token: expected 401, got %d", rec.Code)
	}

	token := login(t, e, "gerente", "senha123")

	rec := do(t, e, http.MethodGet, "/dashboards", token, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var list struct {
		Dashboards []struct {
			ID string `json:"id"`
		} `json:"dashboards"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &list); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if len(list.Dashboards) != 3 {
		t.Fatalf("gerente should see 3 dashboards, got %+v", list.Dashboards)
	}

	if rec := do(t, e, http.MethodGet, "/dashboards/financeiro", token, ""); rec.Code != http.StatusOK {
		t.Fatalf("allowed dashboard: expected 200, got %d", rec.Code)
	}
	if rec := do(t, e, http.MethodGet, "/dashboards/admin", token, ""); rec.Code != http.StatusForbidden {
		t.Fatalf("admin dashboard: expected 403, got %d", rec.Code)
	}
	if rec := do(t, e, http.MethodGet, "/dashboards/nope", token, ""); rec.Code != http.StatusForbidden {
		t.Fatalf("unknown dashboard: expected 403, got %d", rec.Code)
	}
	if rec := do(t, e, http.MethodGet, "/admin/accounts", token, ""); rec.Code != http.StatusForbidden {
		t.Fatalf("admin api: expected 403, got %d", rec.Code)
	}

	if rec := do(t, e, http.MethodPost, "/auth/logout", token, ""); rec.Code != http.StatusNoContent {
		t.Fatalf("logout: expected 204, got %d", rec.Code)
	}
	if rec := do(t, e, http.MethodGet, "/me", token, ""); rec.Code != http.StatusUnauthorized {
		t.Fatalf("after logout: expected 401, got %d", rec.Code)
	}
}

func TestRouter_AdminManagesAccounts(t *testing.T) {
	e := newTestServer(t)
	admin := login(t, e, "admin", "admin123")

	rec := do(t, e, http.MethodPost, "/admin/accounts", admin, `{"username":"novo","name":"Novo","role":"comercial","password":"abc"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var created domain.Projection
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("invalid json: %v", err)
	}

	if rec := do(t, e, http.MethodPost, "/admin/accounts", admin, `{"username":"novo","name":"Outro","role":"pecas","password":"x"}`); rec.Code != http.StatusConflict {
		t.Fatalf("duplicate: expected 409, got %d", rec.Code)
	}

	user := login(t, e, "novo", "abc")

	// Promote the new account while it is logged in; its next request sees the new role.
	if rec := do(t, e, http.MethodPatch, "/admin/accounts/"+created.ID, admin, `{"username":"novo","name":"Novo","role":"admin"}`); rec.Code != http.StatusOK {
		t.Fatalf("update: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if rec := do(t, e, http.MethodGet, "/admin/accounts", user, ""); rec.Code != http.StatusOK {
		t.Fatalf("promoted session: expected 200, got %d", rec.Code)
	}

	if rec := do(t, e, http.MethodDelete, "/admin/accounts/"+created.ID, admin, ""); rec.Code != http.StatusNoContent {
		t.Fatalf("delete: expected 204, got %d", rec.Code)
	}
	if rec := do(t, e, http.MethodGet, "/me", user, ""); rec.Code != http.StatusUnauthorized {
		t.Fatalf("deleted account session: expected 401, got %d", rec.Code)
	}
}

func TestRouter_LastAdminIsProtected(t *testing.T) {
	e := newTestServer(t)
	admin := login(t, e, "admin", "admin123")

	rec := do(t, e, http.MethodGet, "/me", admin, "")
	var me domain.Projection
	if err := json.Unmarshal(rec.Body.Bytes(), &me); err != nil {
		t.Fatalf("invalid json: %v", err)
	}

	if rec := do(t, e, http.MethodDelete, "/admin/accounts/"+me.ID, admin, ""); rec.Code != http.StatusConflict {
		t.Fatalf("delete last admin: expected 409, got %d", rec.Code)
	}
	if rec := do(t, e, http.MethodPatch, "/admin/accounts/"+me.ID, admin, `{"username":"admin","name":"A","role":"gerente"}`); rec.Code != http.StatusConflict {
		t.Fatalf("demote last admin: expected 409, got %d", rec.Code)
	}
}

func TestRouter_Health(t *testing.T) {
	e := newTestServer(t)
	if rec := do(t, e, http.MethodGet, "/health", "", ""); rec.Code != http.StatusOK {
		t.Fatalf("liveness: expected 200, got %d", rec.Code)
	}
	if rec := do(t, e, http.MethodGet, "/health/ready", "", ""); rec.Code != http.StatusOK {
		t.Fatalf("readiness: expected 200, got %d", rec.Code)
	}
}

func TestRouter_OverlongPasswordIsBadRequest(t *testing.T) {
	e := newTestServer(t)
	admin := login(t, e, "admin", "admin123")
	long := strings.Repeat("x", password.MaxLength+1)

	rec := do(t, e, http.MethodPost, "/admin/accounts", admin, `{"username":"longo","name":"Longo","role":"pecas","password":"`+long+`"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("create: expected 400, got %d: %s", rec.Code, rec.Body.String())
	}

	body := `{"current_password":"admin123","new_password":"` + long + `","confirm_password":"` + long + `"}`
	if rec := do(t, e, http.MethodPut, "/me/password", admin, body); rec.Code != http.StatusBadRequest {
		t.Fatalf("change own password: expected 400, got %d: %s", rec.Code, rec.Body.String())
	}
}
