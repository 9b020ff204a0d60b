package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/portalbi/dashboard-portal/internal/api/metrics"
	"github.com/portalbi/dashboard-portal/internal/core/domain"
)

// AccessPolicy is the dashboard authorization decision.
type AccessPolicy interface {
	CanAccess(role domain.Role, dashboardID string) bool
	Dashboard(id string) (domain.Dashboard, bool)
}

// unknownDashboard labels denials for ids outside the catalog so arbitrary
// path values cannot grow the metric's label set.
const unknownDashboard = "unknown"

// RequireDashboard admits only sessions whose role may view dashboardID.
// It must run after Auth.
func RequireDashboard(policy AccessPolicy, dashboardID string) echo.MiddlewareFunc {
	return guard(policy, func(echo.Context) string { return dashboardID })
}

// RequireDashboardParam is RequireDashboard with the dashboard id taken from
// the named path parameter.
func RequireDashboardParam(policy AccessPolicy, param string) echo.MiddlewareFunc {
	return guard(policy, func(c echo.Context) string { return c.Param(param) })
}

func guard(policy AccessPolicy, dashboardOf func(echo.Context) string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			account, ok := c.Get("account").(domain.Projection)
			if !ok {
				return domain.ErrUnauthenticated
			}

			id := dashboardOf(c)
			if !policy.CanAccess(account.Role, id) {
				metrics.DashboardAccessDeniedTotal.WithLabelValues(deniedLabel(policy, id)).Inc()
				return domain.ErrForbidden
			}
			return next(c)
		}
	}
}

func deniedLabel(policy AccessPolicy, id string) string {
	if _, ok := policy.Dashboard(id); ok {
		return id
	}
	return unknownDashboard
}
