package middleware

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/accountd/account-service/internal/api/metrics"
	"github.com/accountd/account-service/internal/core/domain"
	"github.com/accountd/account-service/internal/core/ports"
)

// Authenticate resolves the bearer credential of every request into a
// principal. It never rejects a request: a missing or unusable credential
// leaves the request anonymous, and RequireAuth decides later whether that
// is acceptable. next is called exactly once.
func Authenticate(authn ports.Authenticator, log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			header := req.Header.Get(echo.HeaderAuthorization)

			principal, err := authn.Authenticate(req.Context(), header)
			result := "authenticated"
			switch {
			case err == nil && principal == nil:
				result = "anonymous"
			case errors.Is(err, domain.ErrMalformedCredential):
				result = "malformed"
				log.Debug().Str("path", c.Path()).Msg("malformed authorization header")
			case errors.Is(err, domain.ErrInvalidToken):
				result = "invalid"
				log.Debug().Str("path", c.Path()).Msg("bearer token rejected")
			case errors.Is(err, domain.ErrAccountNotFound):
				result = "unknown_account"
				log.Debug().Str("path", c.Path()).Msg("token subject has no account")
			case err != nil:
				result = "error"
				log.Warn().Err(err).Str("path", c.Path()).Msg("account lookup failed during authentication")
			}
			metrics.TokenVerificationsTotal.WithLabelValues(result).Inc()

			if err == nil && principal != nil {
				c.SetRequest(req.WithContext(domain.WithPrincipal(req.Context(), principal)))
				c.Set("username", principal.Username())
				c.Set("role", principal.Role)
			}

			return next(c)
		}
	}
}

// RequireAuth rejects requests that Authenticate left anonymous.
func RequireAuth() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if _, ok := domain.PrincipalFromContext(c.Request().Context()); !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
			}
			return next(c)
		}
	}
}
