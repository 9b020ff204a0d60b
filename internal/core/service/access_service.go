package service

import (
	"github.com/portalbi/dashboard-portal/internal/core/domain"
)

// AccessService is the single authorization policy for dashboards. It is a
// pure function of the catalog it was built with.
type AccessService struct {
	catalog *domain.Catalog
}

func NewAccessService(catalog *domain.Catalog) *AccessService {
	return &AccessService{catalog: catalog}
}

// CanAccess reports whether role may view dashboardID. Unknown dashboards are
// never accessible.
func (s *AccessService) CanAccess(role domain.Role, dashboardID string) bool {
	d, ok := s.catalog.Get(dashboardID)
	if !ok {
		return false
	}
	return d.Allows(role)
}

// AccessibleDashboards lists, in catalog order, every dashboard role may view.
// The result is never nil.
func (s *AccessService) AccessibleDashboards(role domain.Role) []domain.Dashboard {
	out := []domain.Dashboard{}
	for _, d := range s.catalog.All() {
		if d.Allows(role) {
			out = append(out, d)
		}
	}
	return out
}

func (s *AccessService) Dashboard(id string) (domain.Dashboard, bool) {
	return s.catalog.Get(id)
}
