package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/portalbi/dashboard-portal/internal/core/domain"
)

// ctxAccount returns the session projection injected by the Auth middleware.
// Its absence means the route was mounted without the middleware.
func ctxAccount(c echo.Context) (domain.Projection, error) {
	p, ok := c.Get("account").(domain.Projection)
	if !ok || p.ID == "" {
		return domain.Projection{}, domain.ErrUnauthenticated
	}
	return p, nil
}

func ctxClientID(c echo.Context) string {
	id, _ := c.Get("client_id").(string)
	return id
}
