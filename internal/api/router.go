package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	// Registers the generated OpenAPI document with swag.
	_ "github.com/accountd/account-service/docs"
	"github.com/accountd/account-service/internal/api/handler"
	"github.com/accountd/account-service/internal/api/middleware"
	"github.com/accountd/account-service/internal/core/domain"
	"github.com/accountd/account-service/internal/core/ports"
)

// Dependencies are the collaborators the HTTP layer is built from.
type Dependencies struct {
	Accounts      ports.AccountService
	Authenticator ports.Authenticator
	// Health maps a dependency name to its readiness probe.
	Health map[string]ports.Pinger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies, log zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echoprometheus.NewMiddleware("accounts"))
	e.Use(middleware.Authenticate(deps.Authenticator, log))
	e.Use(middleware.RequestLogger(log))

	accounts := handler.NewAccountHandler(deps.Accounts)
	requireAuth := middleware.RequireAuth()
	adminOnly := middleware.RBAC(domain.RoleAdmin)

	// --- Public account routes ---
	users := e.Group("/users")
	users.POST("/add-users", accounts.Register)
	users.POST("/login", accounts.Login)
	users.POST("/forgot-password/:username", accounts.ForgotPassword)
	users.POST("/reset-password", accounts.ResetPassword)

	// --- Authenticated account routes ---
	users.GET("/profile", accounts.Profile, requireAuth)
	users.POST("/profile", accounts.Profile, requireAuth)
	users.PUT("/update", accounts.Update, requireAuth)
	users.POST("/change-password", accounts.ChangePassword, requireAuth)
	users.DELETE("/delete", accounts.Delete, requireAuth)
	users.GET("", accounts.List, requireAuth, adminOnly)
	users.GET("/:id", accounts.GetByID, requireAuth)
	users.GET("/username/:username", accounts.GetByUsername, requireAuth)

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(deps.Health, log)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?

	// --- Operations ---
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}
