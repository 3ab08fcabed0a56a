// Package api assembles the public HTTP surface (C13) on top of the domain
// services: request/response wiring, tenant-context binding, and the
// shared error envelope, the same layering public-api-service's handler
// package uses over its Redis/NATS-backed SDKHandler.
package api

import (
	"errors"
	"net/http"

	"github.com/arc-self/tracehub/internal/platform/apperr"
	"github.com/arc-self/tracehub/internal/platform/authn"
	"github.com/arc-self/tracehub/internal/platform/tenant"
)

// errorBody is the {error:{code,message,details,request_id}} envelope spec
// §6 mandates for every non-2xx response.
type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code      string         `json:"code"`
	Message   string         `json:"message"`
	Details   map[string]any `json:"details,omitempty"`
	RequestID string         `json:"request_id"`
}

// statusFor maps the shared apperr sentinels to the status codes spec §7's
// table specifies. Anything unrecognized falls through to 500 Internal.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, apperr.ErrInvalidInput):
		return http.StatusBadRequest, "validation_error"
	case errors.Is(err, authn.ErrInvalidToken):
		return http.StatusUnauthorized, "authentication_error"
	case errors.Is(err, apperr.ErrForbidden):
		return http.StatusForbidden, "permission_error"
	case errors.Is(err, tenant.ErrMissingTenant):
		return http.StatusUnauthorized, "authentication_error"
	case errors.Is(err, apperr.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, apperr.ErrInvalidTransition):
		return http.StatusConflict, "invalid_transition"
	case errors.Is(err, apperr.ErrConflict):
		return http.StatusConflict, "conflict"
	case errors.Is(err, apperr.ErrAlreadyUsed):
		return http.StatusBadRequest, "already_used"
	case errors.Is(err, apperr.ErrExpired):
		return http.StatusBadRequest, "expired"
	case errors.Is(err, apperr.ErrUpstreamTransient):
		return http.StatusServiceUnavailable, "upstream_transient"
	case errors.Is(err, apperr.ErrUpstreamPermanent):
		return http.StatusBadGateway, "upstream_permanent"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}
