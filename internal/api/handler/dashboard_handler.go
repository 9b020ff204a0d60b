package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/portalbi/dashboard-portal/internal/core/domain"
	"github.com/portalbi/dashboard-portal/internal/core/ports"
)

type DashboardHandler struct {
	access ports.AccessService
}

func NewDashboardHandler(access ports.AccessService) *DashboardHandler {
	return &DashboardHandler{access: access}
}

type dashboardResponse struct {
	ID          string        `json:"id"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	EmbedURL    string        `json:"embed_url"`
	Configured  bool          `json:"configured"`
	Roles       []domain.Role `json:"roles"`
}

type dashboardListResponse struct {
	Dashboards []dashboardResponse `json:"dashboards"`
}

type roleResponse struct {
	Value domain.Role `json:"value"`
	Label string      `json:"label"`
}

func toDashboardResponse(d domain.Dashboard) dashboardResponse {
	return dashboardResponse{
		ID:          d.ID,
		Title:       d.Title,
		Description: d.Description,
		EmbedURL:    d.EmbedURL,
		Configured:  d.Configured(),
		Roles:       d.Roles,
	}
}

// List handles GET /dashboards: every dashboard the caller's role may view.
//
// @Summary      Accessible dashboards
// @Tags         dashboards
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  dashboardListResponse
// @Failure      401  {object}  map[string]string
// @Router       /dashboards [get]
func (h *DashboardHandler) List(c echo.Context) error {
	p, err := ctxAccount(c)
	if err != nil {
		return err
	}

	ds := h.access.AccessibleDashboards(p.Role)
	out := make([]dashboardResponse, 0, len(ds))
	for _, d := range ds {
		out = append(out, toDashboardResponse(d))
	}
	return c.JSON(http.StatusOK, dashboardListResponse{Dashboards: out})
}

// Get handles GET /dashboards/:id. Access is enforced by the route guard.
//
// @Summary      Get a dashboard
// @Tags         dashboards
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Dashboard id"
// @Success      200  {object}  dashboardResponse
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /dashboards/{id} [get]
func (h *DashboardHandler) Get(c echo.Context) error {
	d, ok := h.access.Dashboard(c.Param("id"))
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "dashboard not found")
	}
	return c.JSON(http.StatusOK, toDashboardResponse(d))
}

// Roles handles GET /roles.
//
// @Summary      Role enumeration
// @Tags         dashboards
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  roleResponse
// @Router       /roles [get]
func (h *DashboardHandler) Roles(c echo.Context) error {
	roles := domain.Roles()
	out := make([]roleResponse, 0, len(roles))
	for _, r := range roles {
		out = append(out, roleResponse{Value: r, Label: r.Label()})
	}
	return c.JSON(http.StatusOK, out)
}
