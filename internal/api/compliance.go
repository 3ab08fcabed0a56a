package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// registerCompliance wires /compliance/* (C6): a read-only lookup against
// the immutable Compliance Matrix snapshot, and a document's persisted
// compliance results.
func registerCompliance(e *echo.Echo, svc *Services) {
	g := e.Group("/compliance")

	g.GET("/lookup", func(c echo.Context) error {
		productType := c.QueryParam("product_type")
		hsCode := c.QueryParam("hs_code")
		policy, err := svc.Matrix.Lookup(productType, hsCode)
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, policy)
	})

	g.GET("/documents/:id/results", func(c echo.Context) error {
		results, err := svc.Querier.ListComplianceResults(c.Request().Context(), mustUUID(c.Param("id")))
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, results)
	})
}
