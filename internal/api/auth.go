package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/arc-self/tracehub/internal/platform/tenant"
)

// registerAuth wires the one endpoint spec §4.11's /auth/* group needs on
// this side of the boundary: reflecting back the tenant context the bearer
// token resolved to. Token issuance itself belongs to the external
// identity provider (§1 Non-goals).
func registerAuth(e *echo.Echo) {
	e.GET("/auth/me", func(c echo.Context) error {
		tc, err := tenant.MustFromContext(c.Request().Context())
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, map[string]any{
			"user_id":         tc.UserID,
			"organization_id": tc.OrganizationID,
			"org_role":        tc.OrgRole,
			"is_system_admin": tc.IsSystemAdmin,
		})
	})
}
