// Package apperr centralizes the sentinel domain errors every service
// package wraps with fmt.Errorf("%w: ...", apperr.Err...), the same
// convention trm_service.go uses for its package-local ErrNotFound /
// ErrInvalidInput, generalized across packages so the HTTP error-envelope
// middleware can map a single, shared set to status codes (spec §7).
package apperr

import "errors"

var (
	ErrNotFound          = errors.New("not found")
	ErrInvalidInput      = errors.New("invalid input")
	ErrInvalidTransition = errors.New("invalid state transition")
	ErrConflict          = errors.New("conflict")
	ErrForbidden         = errors.New("forbidden")
	ErrAlreadyUsed       = errors.New("already used")
	ErrExpired           = errors.New("expired")
	ErrUpstreamTransient = errors.New("upstream transient failure")
	ErrUpstreamPermanent = errors.New("upstream permanent failure")
)
