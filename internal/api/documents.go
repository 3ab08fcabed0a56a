package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/arc-self/tracehub/internal/domain/documents"
	"github.com/arc-self/tracehub/internal/platform/tenant"
)

type uploadDocumentRequest struct {
	ShipmentID      string `json:"shipment_id"`
	DocumentType    string `json:"document_type"`
	FileName        string `json:"file_name"`
	FilePath        string `json:"file_path"`
	FileSize        int64  `json:"file_size"`
	MimeType        string `json:"mime_type"`
	ReferenceNumber string `json:"reference_number"`
}

type rejectDocumentRequest struct {
	Reason string `json:"reason"`
}

type overrideIssueRequest struct {
	Reason string `json:"reason"`
}

// registerDocuments wires /documents/* (C6/C7/C8): upload, the
// classification step that populates canonical_data, the review/reject
// transitions, the Rules Engine evaluate step, and per-issue override.
func registerDocuments(e *echo.Echo, svc *Services) {
	g := e.Group("/documents")

	g.POST("", func(c echo.Context) error {
		tc, err := tenant.MustFromContext(c.Request().Context())
		if err != nil {
			return err
		}
		if d := tenant.Authorize(tc, tenant.ActionDocumentsUpload, tenant.ResourceTenancy{OwnerOrgID: tc.OrganizationID}); !d.Allowed {
			return echo.NewHTTPError(http.StatusForbidden, d.Reason)
		}
		var req uploadDocumentRequest
		if err := c.Bind(&req); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		doc, err := svc.Documents.Upload(c.Request().Context(), documents.UploadInput{
			ShipmentID: req.ShipmentID, DocumentType: req.DocumentType, FileName: req.FileName,
			FilePath: req.FilePath, FileSize: req.FileSize, MimeType: req.MimeType, ReferenceNumber: req.ReferenceNumber,
		})
		if err != nil {
			return err
		}
		return c.JSON(http.StatusCreated, doc)
	})

	g.GET("/:id", func(c echo.Context) error {
		doc, err := svc.Querier.GetDocument(c.Request().Context(), mustUUID(c.Param("id")))
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, doc)
	})

	g.POST("/:id/classify", func(c echo.Context) error {
		doc, err := svc.Documents.Classify(c.Request().Context(), c.Param("id"))
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, doc)
	})

	g.POST("/:id/request-validation", func(c echo.Context) error {
		tc, err := tenant.MustFromContext(c.Request().Context())
		if err != nil {
			return err
		}
		doc, err := svc.Documents.RequestValidation(c.Request().Context(), c.Param("id"), tc.UserID)
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, doc)
	})

	g.POST("/:id/validate", func(c echo.Context) error {
		tc, err := tenant.MustFromContext(c.Request().Context())
		if err != nil {
			return err
		}
		if d := tenant.Authorize(tc, tenant.ActionDocumentsValidate, tenant.ResourceTenancy{OwnerOrgID: tc.OrganizationID}); !d.Allowed {
			return echo.NewHTTPError(http.StatusForbidden, d.Reason)
		}
		doc, err := svc.Documents.Validate(c.Request().Context(), c.Param("id"), tc.UserID)
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, doc)
	})

	g.POST("/:id/reject", func(c echo.Context) error {
		tc, err := tenant.MustFromContext(c.Request().Context())
		if err != nil {
			return err
		}
		if d := tenant.Authorize(tc, tenant.ActionDocumentsReject, tenant.ResourceTenancy{OwnerOrgID: tc.OrganizationID}); !d.Allowed {
			return echo.NewHTTPError(http.StatusForbidden, d.Reason)
		}
		var req rejectDocumentRequest
		if err := c.Bind(&req); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		doc, err := svc.Documents.Reject(c.Request().Context(), c.Param("id"), tc.UserID, req.Reason)
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, doc)
	})

	g.POST("/:id/evaluate", func(c echo.Context) error {
		tc, err := tenant.MustFromContext(c.Request().Context())
		if err != nil {
			return err
		}
		doc, err := svc.Querier.GetDocument(c.Request().Context(), mustUUID(c.Param("id")))
		if err != nil {
			return err
		}
		outcome, err := svc.Evaluation.Evaluate(c.Request().Context(), doc.ShipmentID.String(), tc.UserID)
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, outcome)
	})

	g.GET("/:id/issues", func(c echo.Context) error {
		issues, err := svc.Querier.ListDocumentIssues(c.Request().Context(), mustUUID(c.Param("id")))
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, issues)
	})

	g.POST("/issues/:issueId/override", func(c echo.Context) error {
		tc, err := tenant.MustFromContext(c.Request().Context())
		if err != nil {
			return err
		}
		if d := tenant.Authorize(tc, tenant.ActionDocumentsOverride, tenant.ResourceTenancy{OwnerOrgID: tc.OrganizationID}); !d.Allowed {
			return echo.NewHTTPError(http.StatusForbidden, d.Reason)
		}
		var req overrideIssueRequest
		if err := c.Bind(&req); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		if err := svc.Documents.OverrideIssue(c.Request().Context(), c.Param("issueId"), tc.UserID, req.Reason); err != nil {
			return err
		}
		return c.NoContent(http.StatusNoContent)
	})
}
