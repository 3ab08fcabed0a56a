package api

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/arc-self/tracehub/internal/domain/products"
	"github.com/arc-self/tracehub/internal/domain/shipments"
	"github.com/arc-self/tracehub/internal/platform/apperr"
	"github.com/arc-self/tracehub/internal/platform/tenant"
	"github.com/arc-self/tracehub/internal/repository/db"
)

type createShipmentRequest struct {
	Reference           string `json:"reference"`
	ProductType         string `json:"product_type"`
	BuyerOrganizationID string `json:"buyer_organization_id"`
	Incoterms           string `json:"incoterms"`
}

type reopenShipmentRequest struct {
	To string `json:"to"`
}

type createProductRequest struct {
	HSCode          string  `json:"hs_code"`
	Description     string  `json:"description"`
	QuantityNetKg   float64 `json:"quantity_net_kg"`
	QuantityGrossKg float64 `json:"quantity_gross_kg"`
}

type createOriginRequest struct {
	FarmPlotIdentifier         string  `json:"farm_plot_identifier"`
	Lat                        float64 `json:"lat"`
	Lng                        float64 `json:"lng"`
	Polygon                    []byte  `json:"polygon"`
	Country                    string  `json:"country"`
	DeforestationFreeStatement bool    `json:"deforestation_free_statement"`
}

// registerShipments wires /shipments/* (C4/C5) plus the nested
// /shipments/{id}/products and /products/{id}/origins routes spec §4.4 and
// §4.9 describe as sub-resources of a shipment.
func registerShipments(e *echo.Echo, svc *Services) {
	g := e.Group("/shipments")

	g.GET("", func(c echo.Context) error {
		tc, err := tenant.MustFromContext(c.Request().Context())
		if err != nil {
			return err
		}
		if tc.OrgRole == "" && !tc.IsSystemAdmin {
			return echo.NewHTTPError(http.StatusForbidden, "no organization membership")
		}
		list, err := svc.Shipments.ListForOwner(c.Request().Context())
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, list)
	})

	g.POST("", func(c echo.Context) error {
		var req createShipmentRequest
		if err := c.Bind(&req); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		sh, err := svc.Shipments.Create(c.Request().Context(), shipments.CreateInput{
			Reference: req.Reference, ProductType: req.ProductType,
			BuyerOrganizationID: req.BuyerOrganizationID, Incoterms: req.Incoterms,
		})
		if err != nil {
			return err
		}
		return c.JSON(http.StatusCreated, sh)
	})

	g.GET("/:id", func(c echo.Context) error {
		sh, err := requireShipmentAccess(c, svc, c.Param("id"), tenant.ActionShipmentsRead)
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, sh)
	})

	g.POST("/:id/archive", func(c echo.Context) error {
		tc, err := tenant.MustFromContext(c.Request().Context())
		if err != nil {
			return err
		}
		sh, err := svc.Shipments.Archive(c.Request().Context(), c.Param("id"), tc.UserID)
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, sh)
	})

	g.POST("/:id/reopen", func(c echo.Context) error {
		var req reopenShipmentRequest
		if err := c.Bind(&req); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		sh, err := svc.Shipments.Reopen(c.Request().Context(), c.Param("id"), req.To)
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, sh)
	})

	g.GET("/:id/products", func(c echo.Context) error {
		if _, err := requireShipmentAccess(c, svc, c.Param("id"), tenant.ActionShipmentsRead); err != nil {
			return err
		}
		list, err := svc.Products.ListByShipment(c.Request().Context(), c.Param("id"))
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, list)
	})

	g.POST("/:id/products", func(c echo.Context) error {
		if _, err := requireShipmentAccess(c, svc, c.Param("id"), tenant.ActionShipmentsWrite); err != nil {
			return err
		}
		var req createProductRequest
		if err := c.Bind(&req); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		p, err := svc.Products.CreateProduct(c.Request().Context(), products.CreateProductInput{
			ShipmentID: c.Param("id"), HSCode: req.HSCode, Description: req.Description,
			QuantityNetKg: req.QuantityNetKg, QuantityGrossKg: req.QuantityGrossKg,
		})
		if err != nil {
			return err
		}
		return c.JSON(http.StatusCreated, p)
	})

	g.GET("/:id/origins", func(c echo.Context) error {
		if _, err := requireShipmentAccess(c, svc, c.Param("id"), tenant.ActionShipmentsRead); err != nil {
			return err
		}
		list, err := svc.Products.ListOriginsByShipment(c.Request().Context(), c.Param("id"))
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, list)
	})

	e.POST("/products/:productId/origins", func(c echo.Context) error {
		var req createOriginRequest
		if err := c.Bind(&req); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		product, err := svc.Products.Get(c.Request().Context(), c.Param("productId"))
		if err != nil {
			return err
		}
		if _, err := requireShipmentAccess(c, svc, product.ShipmentID.String(), tenant.ActionShipmentsWrite); err != nil {
			return err
		}
		origin, err := svc.Products.CreateOrigin(c.Request().Context(), products.CreateOriginInput{
			ProductID: c.Param("productId"), ShipmentID: product.ShipmentID.String(),
			FarmPlotIdentifier: req.FarmPlotIdentifier, Lat: req.Lat, Lng: req.Lng, Polygon: req.Polygon,
			Country: req.Country, DeforestationFreeStatement: req.DeforestationFreeStatement,
		})
		if err != nil {
			return err
		}
		return c.JSON(http.StatusCreated, origin)
	})
}

// requireShipmentAccess loads the shipment and checks tenant.Authorize
// against it, returning apperr.ErrNotFound (not Forbidden) on denial per
// spec §7's "404 preferred to avoid tenant enumeration".
func requireShipmentAccess(c echo.Context, svc *Services, shipmentID string, action tenant.Action) (db.Shipment, error) {
	tc, err := tenant.MustFromContext(c.Request().Context())
	if err != nil {
		return db.Shipment{}, err
	}
	sh, err := svc.Shipments.Get(c.Request().Context(), shipmentID)
	if err != nil {
		return db.Shipment{}, err
	}
	res := tenant.ResourceTenancy{OwnerOrgID: sh.OrganizationID.String()}
	if sh.BuyerOrganizationID.Valid {
		res.BuyerOrgID = sh.BuyerOrganizationID.String()
	}
	if d := tenant.Authorize(tc, action, res); !d.Allowed {
		return db.Shipment{}, fmt.Errorf("%w: shipment", apperr.ErrNotFound)
	}
	return sh, nil
}
