package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/accountd/account-service/internal/core/domain"
)

// currentPrincipal returns the principal bound by the Authenticate
// middleware. Routes behind RequireAuth always have one; the check here
// keeps a misrouted handler from dereferencing nil.
func currentPrincipal(c echo.Context) (*domain.Principal, error) {
	p, ok := domain.PrincipalFromContext(c.Request().Context())
	if !ok || p.Account == nil {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}
	return p, nil
}
