package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/portalbi/dashboard-portal/internal/api/metrics"
	"github.com/portalbi/dashboard-portal/internal/core/domain"
)

type stubPolicy map[domain.Role][]string

func (p stubPolicy) CanAccess(role domain.Role, dashboardID string) bool {
	for _, id := range p[role] {
		if id == dashboardID {
			return true
		}
	}
	return false
}

func (p stubPolicy) Dashboard(id string) (domain.Dashboard, bool) {
	for _, ids := range p {
		for _, known := range ids {
			if known == id {
				return domain.Dashboard{ID: id}, true
			}
		}
	}
	return domain.Dashboard{}, false
}

var policy = stubPolicy{
	domain.RoleAdmin: {"pecas", "admin"},
	domain.RolePecas: {"pecas"},
}

func newGuardContext(role domain.Role) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("account", domain.Projection{ID: "1", Username: "u", Role: role})
	return c, rec
}

func TestRequireDashboard_Allows(t *testing.T) {
	c, rec := newGuardContext(domain.RoleAdmin)

	called := false
	handler := RequireDashboard(policy, "admin")(func(c echo.Context) error {
		called = true
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called {
		t.Fatalf("next handler not called")
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestRequireDashboard_Forbids(t *testing.T) {
	c, _ := newGuardContext(domain.RolePecas)

	handler := RequireDashboard(policy, "admin")(func(c echo.Context) error {
		t.Fatalf("next handler should not be called")
		return nil
	})

	if err := handler(c); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestRequireDashboard_WithoutSession(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())

	err := RequireDashboard(policy, "pecas")(func(echo.Context) error { return nil })(c)
	if !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
}

func TestRequireDashboardParam(t *testing.T) {
	c, _ := newGuardContext(domain.RolePecas)
	c.SetParamNames("id")

	mw := RequireDashboardParam(policy, "id")
	ok := func(echo.Context) error { return nil }

	c.SetParamValues("pecas")
	if err := mw(ok)(c); err != nil {
		t.Fatalf("expected access to pecas, got %v", err)
	}

	c.SetParamValues("unknown")
	if err := mw(ok)(c); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("unknown dashboards must be forbidden, got %v", err)
	}
}

func TestRequireDashboardParam_DeniedMetricLabels(t *testing.T) {
	c, _ := newGuardContext(domain.RolePecas)
	c.SetParamNames("id")
	mw := RequireDashboardParam(policy, "id")(func(echo.Context) error { return nil })

	c.SetParamValues("admin")
	_ = mw(c)

	unknown := testutil.ToFloat64(metrics.DashboardAccessDeniedTotal.WithLabelValues("unknown"))
	admin := testutil.ToFloat64(metrics.DashboardAccessDeniedTotal.WithLabelValues("admin"))
	before := testutil.CollectAndCount(metrics.DashboardAccessDeniedTotal)

	for i := 0; i < 50; i++ {
		c.SetParamValues(fmt.Sprintf("junk-%d", i))
		if err := mw(c); !errors.Is(err, domain.ErrForbidden) {
			t.Fatalf("expected ErrForbidden, got %v", err)
		}
	}
	c.SetParamValues("admin")
	_ = mw(c)

	if got := testutil.CollectAndCount(metrics.DashboardAccessDeniedTotal); got != before {
		t.Fatalf("denied ids outside the catalog grew the series from %d to %d", before, got)
	}
	if got := testutil.ToFloat64(metrics.DashboardAccessDeniedTotal.WithLabelValues("unknown")); got != unknown+50 {
		t.Fatalf("expected %v denials labelled unknown, got %v", unknown+50, got)
	}
	if got := testutil.ToFloat64(metrics.DashboardAccessDeniedTotal.WithLabelValues("admin")); got != admin+1 {
		t.Fatalf("expected catalog id to keep its own label, got %v", got)
	}
}
