package api

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"
	"go.uber.org/zap"

	apimw "github.com/arc-self/tracehub/internal/api/middleware"
	"github.com/arc-self/tracehub/internal/domain/auditpack"
	"github.com/arc-self/tracehub/internal/domain/compliance"
	"github.com/arc-self/tracehub/internal/domain/documents"
	"github.com/arc-self/tracehub/internal/domain/evaluation"
	"github.com/arc-self/tracehub/internal/domain/invitations"
	"github.com/arc-self/tracehub/internal/domain/notifications"
	"github.com/arc-self/tracehub/internal/domain/orgs"
	"github.com/arc-self/tracehub/internal/domain/products"
	"github.com/arc-self/tracehub/internal/domain/shipments"
	"github.com/arc-self/tracehub/internal/platform/authn"
	"github.com/arc-self/tracehub/internal/repository/db"
)

// Services bundles every domain service a handler needs. One instance is
// built in cmd/api/main.go and threaded through to every handler group.
type Services struct {
	Querier       db.Querier
	Orgs          *orgs.Service
	Invitations   *invitations.Service
	Shipments     *shipments.Service
	Products      *products.Service
	Documents     *documents.Service
	Evaluation    *evaluation.Service
	Notifications *notifications.Service
	AuditPacks    *auditpack.Assembler
	Matrix        *compliance.Matrix
	Log           *zap.Logger
}

// NewServer builds an echo.Echo with the full middleware stack spec §4.11
// and §7 require (OTel tracing, request id, bearer-token auth, idempotency,
// rate limiting, recover), then registers every resource-group handler.
func NewServer(svc *Services, verifier *authn.Verifier, rdb *redis.Client) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = httpErrorHandler(svc.Log)

	e.Use(otelecho.Middleware("tracehub-api"))
	e.Use(echomw.RequestID())
	e.Use(echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogURI: true, LogStatus: true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			svc.Log.Info("http request",
				zap.String("uri", v.URI), zap.Int("status", v.Status), zap.String("request_id", requestID(c)))
			return nil
		},
	}))
	e.Use(echomw.Recover())
	e.Use(apimw.Auth(verifier))
	e.Use(apimw.RateLimit(20, 40))
	if rdb != nil {
		e.Use(apimw.Idempotency(rdb))
	}

	e.GET("/healthz", func(c echo.Context) error { return c.JSON(http.StatusOK, map[string]string{"status": "ok"}) })
	e.GET("/readyz", func(c echo.Context) error { return c.JSON(http.StatusOK, map[string]string{"status": "ready"}) })
	e.GET("/openapi.json", serveOpenAPI)

	registerAuth(e)
	registerOrganizations(e, svc)
	registerInvitations(e, svc)
	registerShipments(e, svc)
	registerDocuments(e, svc)
	registerTracking(e, svc)
	registerCompliance(e, svc)
	registerAuditPacks(e, svc)
	registerNotifications(e, svc)

	return e
}

// httpErrorHandler renders every error an echo handler returns — including
// the apperr sentinels every domain service wraps — as the shared
// {error:{code,message,details,request_id}} envelope spec §6/§7 mandate.
func httpErrorHandler(log *zap.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		if he, ok := err.(*echo.HTTPError); ok {
			_ = c.JSON(he.Code, errorBody{Error: errorDetail{
				Code: "http_error", Message: fmt.Sprint(he.Message), RequestID: requestID(c),
			}})
			return
		}
		status, code := statusFor(err)
		if status >= 500 {
			log.Error("unhandled api error", zap.Error(err), zap.String("request_id", requestID(c)))
		}
		_ = c.JSON(status, errorBody{Error: errorDetail{
			Code: code, Message: err.Error(), RequestID: requestID(c),
		}})
	}
}

func requestID(c echo.Context) string {
	if id := c.Response().Header().Get(echo.HeaderXRequestID); id != "" {
		return id
	}
	return c.Request().Header.Get(echo.HeaderXRequestID)
}

func serveOpenAPI(c echo.Context) error {
	return c.JSON(http.StatusOK, openAPISpec)
}
