// Package middleware holds the echo middleware the public API server
// chains in front of every handler: bearer-token verification, the shared
// error envelope, idempotency-key de-duplication, and rate limiting.
package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/arc-self/tracehub/internal/platform/authn"
	"github.com/arc-self/tracehub/internal/platform/tenant"
)

// publicPaths never require a bearer token.
var publicPaths = map[string]struct{}{
	"/healthz":     {},
	"/readyz":      {},
	"/openapi.json": {},
}

// Auth verifies the Authorization: Bearer <token> header with verifier and
// binds the resolved tenant.Context onto the request context, the way
// every other handler and service in this module expects to find it via
// tenant.MustFromContext.
func Auth(verifier *authn.Verifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if _, ok := publicPaths[c.Path()]; ok {
				return next(c)
			}
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			const prefix = "Bearer "
			if !strings.HasPrefix(header, prefix) {
				return authn.ErrInvalidToken
			}
			tc, err := verifier.Verify(strings.TrimPrefix(header, prefix))
			if err != nil {
				return err
			}
			c.SetRequest(c.Request().WithContext(tenant.WithContext(c.Request().Context(), tc)))
			return next(c)
		}
	}
}

// RequireSystemAdmin rejects non-system-admin callers outright; used for
// organization provisioning and suspension. Shipment reopen does not use
// it: shipments.Service.Reopen checks for a system admin itself.
func RequireSystemAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		tc, ok := tenant.FromContext(c.Request().Context())
		if !ok || !tc.IsSystemAdmin {
			return echo.NewHTTPError(http.StatusForbidden, "system admin required")
		}
		return next(c)
	}
}
