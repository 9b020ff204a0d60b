package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/portalbi/dashboard-portal/internal/core/domain"
)

// Authenticator resolves a bearer token into the live session it belongs to.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (string, domain.Projection, error)
}

// Auth validates the bearer token against the session store and injects the
// session into the echo context ("account", "role", "client_id") and the
// request context (domain.WithActor).
func Auth(authn Authenticator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header")
			}

			ctx := c.Request().Context()
			clientID, account, err := authn.Authenticate(ctx, strings.TrimSpace(parts[1]))
			if err != nil {
				if errors.Is(err, domain.ErrUnauthenticated) {
					return echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired session")
				}
				return err
			}

			c.Set("account", account)
			c.Set("role", string(account.Role))
			c.Set("client_id", clientID)
			c.SetRequest(c.Request().WithContext(domain.WithActor(ctx, account)))

			return next(c)
		}
	}
}
