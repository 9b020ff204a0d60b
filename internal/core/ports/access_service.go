package ports

import "github.com/portalbi/dashboard-portal/internal/core/domain"

// AccessService answers role → dashboard authorization questions.
type AccessService interface {
	CanAccess(role domain.Role, dashboardID string) bool
	AccessibleDashboards(role domain.Role) []domain.Dashboard
	Dashboard(id string) (domain.Dashboard, bool)
}
