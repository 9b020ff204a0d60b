package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/portalbi/dashboard-portal/internal/api/metrics"
	"github.com/portalbi/dashboard-portal/internal/core/domain"
	"github.com/portalbi/dashboard-portal/internal/core/ports"
)

type AuthHandler struct {
	authService    ports.AuthService
	accountService ports.AccountService
}

func NewAuthHandler(authService ports.AuthService, accountService ports.AccountService) *AuthHandler {
	return &AuthHandler{authService: authService, accountService: accountService}
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	Token    string            `json:"token"`
	ClientID string            `json:"client_id"`
	Account  domain.Projection `json:"account"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password"     validate:"required"`
	ConfirmPassword string `json:"confirm_password" validate:"required,eqfield=NewPassword"`
}

// Login authenticates an account and establishes the session of the calling
// client. A caller that still presents a valid token keeps its client id, so
// logging in again replaces that session instead of opening a second one.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  loginResponse
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	clientID := ""
	if token := bearerToken(c); token != "" {
		if cid, _, err := h.authService.Authenticate(ctx, token); err == nil {
			clientID = cid
		}
	}

	start := time.Now()
	defer func() { metrics.LoginDuration.Observe(time.Since(start).Seconds()) }()

	var res ports.LoginResult
	select {
	case res = <-h.authService.LoginAsync(ctx, clientID, req.Username, req.Password):
	case <-ctx.Done():
		metrics.LoginsTotal.WithLabelValues("cancelled").Inc()
		return ctx.Err()
	}

	if res.Err != nil {
		switch {
		case errors.Is(res.Err, domain.ErrInvalidCredentials):
			metrics.LoginsTotal.WithLabelValues("invalid_credentials").Inc()
		case errors.Is(res.Err, context.Canceled), errors.Is(res.Err, context.DeadlineExceeded):
			metrics.LoginsTotal.WithLabelValues("cancelled").Inc()
		default:
			metrics.LoginsTotal.WithLabelValues("error").Inc()
		}
		return res.Err
	}

	metrics.LoginsTotal.WithLabelValues("success").Inc()
	return c.JSON(http.StatusOK, loginResponse{
		Token:    res.Token,
		ClientID: res.ClientID,
		Account:  res.Account,
	})
}

// Logout clears the session of the calling client.
//
// @Summary      Logout
// @Tags         auth
// @Security     BearerAuth
// @Success      204
// @Failure      401  {object}  map[string]string
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	h.authService.Logout(c.Request().Context(), ctxClientID(c))
	metrics.LogoutsTotal.Inc()
	return c.NoContent(http.StatusNoContent)
}

// Me returns the current session projection.
//
// @Summary      Current account
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  domain.Projection
// @Failure      401  {object}  map[string]string
// @Router       /me [get]
func (h *AuthHandler) Me(c echo.Context) error {
	p, err := ctxAccount(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, p)
}

// ChangePassword lets the caller replace their own credential.
//
// @Summary      Change own password
// @Tags         auth
// @Accept       json
// @Security     BearerAuth
// @Param        body  body  changePasswordRequest  true  "Current and new password"
// @Success      204
// @Failure      400  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Router       /me/password [put]
func (h *AuthHandler) ChangePassword(c echo.Context) error {
	p, err := ctxAccount(c)
	if err != nil {
		return err
	}

	var req changePasswordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	if err := h.accountService.ChangeOwnPassword(c.Request().Context(), p.ID, req.CurrentPassword, req.NewPassword); err != nil {
		metrics.AccountMutationsTotal.WithLabelValues("password", errorKind(err)).Inc()
		return err
	}
	metrics.AccountMutationsTotal.WithLabelValues("password", "ok").Inc()
	return c.NoContent(http.StatusNoContent)
}

// bearerToken extracts the token of an "Authorization: Bearer" header, if any.
func bearerToken(c echo.Context) string {
	parts := strings.SplitN(c.Request().Header.Get(echo.HeaderAuthorization), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
