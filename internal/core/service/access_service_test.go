package service

import (
	"testing"

	"github.com/portalbi/dashboard-portal/internal/core/domain"
)

func testCatalog(t *testing.T) *domain.Catalog {
	t.Helper()
	cat, err := domain.NewCatalog([]domain.Dashboard{
		{ID: "pecas", Roles: []domain.Role{domain.RolePecas, domain.RoleGerente, domain.RoleAdmin}},
		{ID: "comercial", Roles: []domain.Role{domain.RoleComercial, domain.RoleGerente, domain.RoleAdmin}},
		{ID: "financeiro", Roles: []domain.Role{domain.RoleFinanceiro, domain.RoleGerente, domain.RoleAdmin}},
		{ID: "admin", Roles: []domain.Role{domain.RoleAdmin}},
	})
	if err != nil {
		t.Fatalf("NewCatalog: %v", err)
	}
	return cat
}

func TestAccessService_CanAccess(t *testing.T) {
	svc := NewAccessService(testCatalog(t))

	cases := []struct {
		role      domain.Role
		dashboard string
		want      bool
	}{
		{domain.RolePecas, "pecas", true},
		{domain.RolePecas, "comercial", false},
		{domain.RoleGerente, "financeiro", true},
		{domain.RoleGerente, "admin", false},
		{domain.RoleAdmin, "admin", true},
		{domain.RoleAdmin, "missing", false},
		{"root", "pecas", false},
	}
	for _, tc := range cases {
		if got := svc.CanAccess(tc.role, tc.dashboard); got != tc.want {
			t.Fatalf("CanAccess(%s, %s) = %v, want %v", tc.role, tc.dashboard, got, tc.want)
		}
	}
}

func TestAccessService_AccessibleDashboardsMatchesCanAccess(t *testing.T) {
	cat := testCatalog(t)
	svc := NewAccessService(cat)

	for _, role := range append(domain.Roles(), "root") {
		got := svc.AccessibleDashboards(role)
		if got == nil {
			t.Fatalf("%s: result must not be nil", role)
		}

		want := []string{}
		for _, d := range cat.All() {
			if svc.CanAccess(role, d.ID) {
				want = append(want, d.ID)
			}
		}
		if len(got) != len(want) {
			t.Fatalf("%s: got %d dashboards, want %d", role, len(got), len(want))
		}
		for i := range got {
			if got[i].ID != want[i] {
				t.Fatalf("%s: order mismatch at %d: %s != %s", role, i, got[i].ID, want[i])
			}
		}
	}

	if n := len(svc.AccessibleDashboards(domain.RoleGerente)); n != 3 {
		t.Fatalf("gerente should see 3 dashboards, got %d", n)
	}
	if n := len(svc.AccessibleDashboards(domain.RoleAdmin)); n != 4 {
		t.Fatalf("admin should see every dashboard, got %d", n)
	}
}
