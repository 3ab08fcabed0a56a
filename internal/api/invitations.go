package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/arc-self/tracehub/internal/domain/invitations"
	"github.com/arc-self/tracehub/internal/platform/tenant"
)

type sendInvitationRequest struct {
	Email   string         `json:"email"`
	OrgRole tenant.OrgRole `json:"org_role"`
}

type acceptInvitationRequest struct {
	Token        string `json:"token"`
	FullName     string `json:"full_name"`
	PasswordHash string `json:"password_hash"`
}

func registerInvitations(e *echo.Echo, svc *Services) {
	g := e.Group("/invitations")

	g.POST("", func(c echo.Context) error {
		tc, err := tenant.MustFromContext(c.Request().Context())
		if err != nil {
			return err
		}
		if d := tenant.Authorize(tc, tenant.ActionInvitationsSend, tenant.ResourceTenancy{OwnerOrgID: tc.OrganizationID}); !d.Allowed {
			return echo.NewHTTPError(http.StatusForbidden, d.Reason)
		}
		var req sendInvitationRequest
		if err := c.Bind(&req); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		inv, plaintext, err := svc.Invitations.Send(c.Request().Context(), invitations.SendInput{Email: req.Email, OrgRole: req.OrgRole})
		if err != nil {
			return err
		}
		return c.JSON(http.StatusCreated, map[string]any{"invitation": inv, "token": plaintext})
	})

	g.POST("/accept", func(c echo.Context) error {
		var req acceptInvitationRequest
		if err := c.Bind(&req); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		user, err := svc.Invitations.Accept(c.Request().Context(), invitations.AcceptInput{
			Token: req.Token, FullName: req.FullName, PasswordHash: req.PasswordHash,
		})
		if err != nil {
			return err
		}
		return c.JSON(http.StatusCreated, user)
	})

	g.POST("/:id/revoke", func(c echo.Context) error {
		if err := svc.Invitations.Revoke(c.Request().Context(), c.Param("id")); err != nil {
			return err
		}
		return c.NoContent(http.StatusNoContent)
	})

	g.POST("/:id/resend", func(c echo.Context) error {
		plaintext, err := svc.Invitations.Resend(c.Request().Context(), c.Param("id"))
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, map[string]string{"token": plaintext})
	})

	g.GET("/pending", func(c echo.Context) error {
		tc, err := tenant.MustFromContext(c.Request().Context())
		if err != nil {
			return err
		}
		list, err := svc.Invitations.ListPending(c.Request().Context(), tc.OrganizationID)
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, list)
	})
}
