package seed

import (
	"testing"

	"github.com/portalbi/dashboard-portal/internal/core/domain"
)

func TestDemoAccounts(t *testing.T) {
	seen := map[string]bool{}
	admins := 0
	for _, a := range DemoAccounts() {
		if a.Username == "" || a.Name == "" || a.Password == "" || !a.Role.Valid() {
			t.Fatalf("incomplete seed: %+v", a)
		}
		if seen[a.Username] {
			t.Fatalf("duplicate seed username %q", a.Username)
		}
		seen[a.Username] = true
		if a.Role == domain.RoleAdmin {
			admins++
		}
	}
	if admins != 1 {
		t.Fatalf("expected exactly one seeded admin, got %d", admins)
	}
	if len(seen) != len(domain.Roles()) {
		t.Fatalf("expected one seed per role, got %d", len(seen))
	}
}
