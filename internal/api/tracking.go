package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/arc-self/tracehub/internal/platform/tenant"
)

// registerTracking wires the read side of /tracking/* (C9): the ingested
// container-event history for a shipment. Event ingestion itself runs out
// of cmd/worker, never request-driven.
func registerTracking(e *echo.Echo, svc *Services) {
	e.GET("/tracking/:shipmentId/events", func(c echo.Context) error {
		if _, err := requireShipmentAccess(c, svc, c.Param("shipmentId"), tenant.ActionShipmentsRead); err != nil {
			return err
		}
		events, err := svc.Querier.ListContainerEventsByShipment(c.Request().Context(), mustUUID(c.Param("shipmentId")))
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, events)
	})
}
