package api

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/arc-self/tracehub/internal/platform/tenant"
)

// registerAuditPacks wires /audit-packs/* (C11): on-demand assembly and
// streaming of the zip bundle for a shipment's primary documents.
func registerAuditPacks(e *echo.Echo, svc *Services) {
	e.GET("/audit-packs/:shipmentId", func(c echo.Context) error {
		if _, err := requireShipmentAccess(c, svc, c.Param("shipmentId"), tenant.ActionAuditPackRead); err != nil {
			return err
		}
		body, filename, err := svc.AuditPacks.Assemble(c.Request().Context(), c.Param("shipmentId"), timeNow())
		if err != nil {
			return err
		}
		return c.Blob(http.StatusOK, "application/zip", withDisposition(c, filename, body))
	})
}

// timeNow is indirected so tests can override it; production callers
// always want the wall clock at request time.
var timeNow = time.Now

func withDisposition(c echo.Context, filename string, body []byte) []byte {
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return body
}
