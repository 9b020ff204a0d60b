package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/portalbi/dashboard-portal/internal/api/metrics"
	"github.com/portalbi/dashboard-portal/internal/core/domain"
	"github.com/portalbi/dashboard-portal/internal/core/ports"
)

// AccountHandler serves the administrative account endpoints.
type AccountHandler struct {
	service ports.AccountService
}

func NewAccountHandler(service ports.AccountService) *AccountHandler {
	return &AccountHandler{service: service}
}

type createAccountRequest struct {
	Username string `json:"username" validate:"required,max=64"`
	Name     string `json:"name"     validate:"required,max=128"`
	Role     string `json:"role"     validate:"required,role"`
	Password string `json:"password" validate:"required"`
}

type updateAccountRequest struct {
	Username string `json:"username" validate:"required,max=64"`
	Name     string `json:"name"     validate:"required,max=128"`
	Role     string `json:"role,omitempty" validate:"omitempty,role"`
}

type setPasswordRequest struct {
	Password        string `json:"password"         validate:"required"`
	ConfirmPassword string `json:"confirm_password" validate:"required,eqfield=Password"`
}

type accountListResponse struct {
	Accounts []domain.Projection `json:"accounts"`
}

// List handles GET /admin/accounts.
//
// @Summary      List accounts
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  accountListResponse
// @Failure      401  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Router       /admin/accounts [get]
func (h *AccountHandler) List(c echo.Context) error {
	accounts, err := h.service.ListAccounts(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, accountListResponse{Accounts: accounts})
}

// Get handles GET /admin/accounts/:id.
//
// @Summary      Get an account
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Account id"
// @Success      200  {object}  domain.Projection
// @Failure      404  {object}  map[string]string
// @Router       /admin/accounts/{id} [get]
func (h *AccountHandler) Get(c echo.Context) error {
	p, err := h.service.GetAccount(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, p)
}

// Create handles POST /admin/accounts.
//
// @Summary      Create an account
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createAccountRequest  true  "Account details"
// @Success      201   {object}  domain.Projection
// @Failure      400   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Router       /admin/accounts [post]
func (h *AccountHandler) Create(c echo.Context) error {
	var req createAccountRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	role, err := domain.ParseRole(req.Role)
	if err != nil {
		return err
	}

	p, err := h.service.CreateAccount(c.Request().Context(), ports.CreateAccountInput{
		Username: req.Username,
		Name:     req.Name,
		Role:     role,
		Password: req.Password,
	})
	metrics.AccountMutationsTotal.WithLabelValues("create", errorKind(err)).Inc()
	if err != nil {
		return err
	}

	c.Response().Header().Set(echo.HeaderLocation, "/admin/accounts/"+p.ID)
	return c.JSON(http.StatusCreated, p)
}

// Update handles PATCH /admin/accounts/:id. Username and name are always
// sent; an empty role keeps the current one.
//
// @Summary      Update an account profile
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                true  "Account id"
// @Param        body  body      updateAccountRequest  true  "Profile fields"
// @Success      200   {object}  domain.Projection
// @Failure      400   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Router       /admin/accounts/{id} [patch]
func (h *AccountHandler) Update(c echo.Context) error {
	var req updateAccountRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	in := ports.UpdateAccountInput{Username: &req.Username, Name: &req.Name}
	if req.Role != "" {
		role, err := domain.ParseRole(req.Role)
		if err != nil {
			return err
		}
		in.Role = &role
	}

	p, err := h.service.UpdateAccount(c.Request().Context(), c.Param("id"), in)
	metrics.AccountMutationsTotal.WithLabelValues("update", errorKind(err)).Inc()
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, p)
}

// SetPassword handles PUT /admin/accounts/:id/password.
//
// @Summary      Replace an account's password
// @Tags         admin
// @Accept       json
// @Security     BearerAuth
// @Param        id    path  string              true  "Account id"
// @Param        body  body  setPasswordRequest  true  "New password and confirmation"
// @Success      204
// @Failure      400  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /admin/accounts/{id}/password [put]
func (h *AccountHandler) SetPassword(c echo.Context) error {
	var req setPasswordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	err := h.service.SetPassword(c.Request().Context(), c.Param("id"), req.Password)
	metrics.AccountMutationsTotal.WithLabelValues("password", errorKind(err)).Inc()
	if err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// Delete handles DELETE /admin/accounts/:id.
//
// @Summary      Delete an account
// @Tags         admin
// @Security     BearerAuth
// @Param        id   path  string  true  "Account id"
// @Success      204
// @Failure      404  {object}  map[string]string
// @Failure      409  {object}  map[string]string
// @Router       /admin/accounts/{id} [delete]
func (h *AccountHandler) Delete(c echo.Context) error {
	err := h.service.DeleteAccount(c.Request().Context(), c.Param("id"))
	metrics.AccountMutationsTotal.WithLabelValues("delete", errorKind(err)).Inc()
	if err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// errorKind is the metric label for the outcome of a mutation.
func errorKind(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrDuplicateUsername):
		return "duplicate_username"
	case errors.Is(err, domain.ErrLastAdmin):
		return "last_admin"
	case errors.Is(err, domain.ErrAccountNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, domain.ErrInvalidCredentials):
		return "invalid_credentials"
	default:
		return "error"
	}
}
