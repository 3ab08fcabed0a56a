package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	apimw "github.com/arc-self/tracehub/internal/api/middleware"
	"github.com/arc-self/tracehub/internal/domain/orgs"
	"github.com/arc-self/tracehub/internal/platform/tenant"
)

type createOrganizationRequest struct {
	Name string       `json:"name"`
	Slug string       `json:"slug"`
	Type orgs.OrgType `json:"type"`
}

type addMemberRequest struct {
	UserID    string         `json:"user_id"`
	Role      tenant.OrgRole `json:"role"`
	IsPrimary bool           `json:"is_primary"`
}

func registerOrganizations(e *echo.Echo, svc *Services) {
	g := e.Group("/organizations")

	g.POST("", func(c echo.Context) error {
		var req createOrganizationRequest
		if err := c.Bind(&req); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		org, err := svc.Orgs.Create(c.Request().Context(), orgs.CreateOrganizationInput{
			Name: req.Name, Slug: req.Slug, Type: req.Type,
		})
		if err != nil {
			return err
		}
		return c.JSON(http.StatusCreated, org)
	}, apimw.RequireSystemAdmin)

	g.GET("/:id", func(c echo.Context) error {
		tc, err := tenant.MustFromContext(c.Request().Context())
		if err != nil {
			return err
		}
		org, err := svc.Orgs.Get(c.Request().Context(), c.Param("id"))
		if err != nil {
			return err
		}
		if !tc.IsSystemAdmin && org.ID.String() != tc.OrganizationID {
			return echo.NewHTTPError(http.StatusNotFound, "organization not found")
		}
		return c.JSON(http.StatusOK, org)
	})

	g.POST("/:id/suspend", func(c echo.Context) error {
		if err := svc.Orgs.Suspend(c.Request().Context(), c.Param("id")); err != nil {
			return err
		}
		return c.NoContent(http.StatusNoContent)
	}, apimw.RequireSystemAdmin)

	g.GET("/:id/members", func(c echo.Context) error {
		members, err := svc.Orgs.ListMembers(c.Request().Context(), c.Param("id"))
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, members)
	})

	g.POST("/:id/members", func(c echo.Context) error {
		var req addMemberRequest
		if err := c.Bind(&req); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		m, err := svc.Orgs.AddMember(c.Request().Context(), req.UserID, c.Param("id"), req.Role, req.IsPrimary)
		if err != nil {
			return err
		}
		return c.JSON(http.StatusCreated, m)
	})
}
