package api

import (
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/portalbi/dashboard-portal/docs"
	"github.com/portalbi/dashboard-portal/internal/api/handler"
	"github.com/portalbi/dashboard-portal/internal/api/middleware"
	"github.com/portalbi/dashboard-portal/internal/core/domain"
	"github.com/portalbi/dashboard-portal/internal/core/ports"
)

// Deps are the services the HTTP layer is built on.
type Deps struct {
	Auth     ports.AuthService
	Accounts ports.AccountService
	Access   ports.AccessService
	Audit    ports.AuditRepository
	// Pingers are checked by /health/ready, keyed by dependency name.
	Pingers map[string]handler.Pinger
	Log     zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(middleware.RequestLogger(d.Log))

	// --- Dependencies ---
	authHandler := handler.NewAuthHandler(d.Auth, d.Accounts)
	accountHandler := handler.NewAccountHandler(d.Accounts)
	dashboardHandler := handler.NewDashboardHandler(d.Access)
	auditHandler := handler.NewAuditHandler(d.Audit)
	healthHandler := handler.NewHealthHandler(d.Pingers)
	authMiddleware := middleware.Auth(d.Auth)

	// --- Auth routes ---
	e.POST("/auth/login", authHandler.Login)
	e.POST("/auth/logout", authHandler.Logout, authMiddleware)
	e.GET("/me", authHandler.Me, authMiddleware)
	e.PUT("/me/password", authHandler.ChangePassword, authMiddleware)

	// --- Dashboards ---
	e.GET("/roles", dashboardHandler.Roles, authMiddleware)
	e.GET("/dashboards", dashboardHandler.List, authMiddleware)
	e.GET("/dashboards/:id", dashboardHandler.Get, authMiddleware, middleware.RequireDashboardParam(d.Access, "id"))

	// --- Administration (the admin panel is itself a dashboard) ---
	admin := e.Group("/admin", authMiddleware, middleware.RequireDashboard(d.Access, domain.AdminDashboardID))
	admin.GET("/accounts", accountHandler.List)
	admin.POST("/accounts", accountHandler.Create)
	admin.GET("/accounts/:id", accountHandler.Get)
	admin.PATCH("/accounts/:id", accountHandler.Update)
	admin.PUT("/accounts/:id/password", accountHandler.SetPassword)
	admin.DELETE("/accounts/:id", accountHandler.Delete)
	admin.GET("/audit", auditHandler.List)

	// --- Ops (no auth required) ---
	e.GET("/health", healthHandler.Liveness)        // liveness  – is the process alive?
	e.GET("/health/ready", healthHandler.Readiness) // readiness – are dependencies up?
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}
