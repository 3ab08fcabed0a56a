package api

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/arc-self/tracehub/internal/platform/tenant"
)

type setPreferenceRequest struct {
	EventType string `json:"event_type"`
	Channel   string `json:"channel"`
	Enabled   bool   `json:"enabled"`
}

// registerNotifications wires /notifications/* (C12): the in-app feed,
// mark-read, and per-event-type/channel preference toggles.
func registerNotifications(e *echo.Echo, svc *Services) {
	g := e.Group("/notifications")

	g.GET("", func(c echo.Context) error {
		tc, err := tenant.MustFromContext(c.Request().Context())
		if err != nil {
			return err
		}
		limit := int32(50)
		if raw := c.QueryParam("limit"); raw != "" {
			if n, parseErr := strconv.Atoi(raw); parseErr == nil {
				limit = int32(n)
			}
		}
		list, err := svc.Notifications.ListForUser(c.Request().Context(), tc.UserID, limit)
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, list)
	})

	g.POST("/:id/read", func(c echo.Context) error {
		tc, err := tenant.MustFromContext(c.Request().Context())
		if err != nil {
			return err
		}
		if err := svc.Notifications.MarkRead(c.Request().Context(), c.Param("id"), tc.UserID); err != nil {
			return err
		}
		return c.NoContent(http.StatusNoContent)
	})

	g.PUT("/preferences", func(c echo.Context) error {
		tc, err := tenant.MustFromContext(c.Request().Context())
		if err != nil {
			return err
		}
		var req setPreferenceRequest
		if err := c.Bind(&req); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		if err := svc.Notifications.SetPreference(c.Request().Context(), tc.UserID, req.EventType, req.Channel, req.Enabled); err != nil {
			return err
		}
		return c.NoContent(http.StatusNoContent)
	})
}
