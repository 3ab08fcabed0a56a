// Package tenant resolves and carries the caller's tenant context through a
// request: (user_id, organization_id, org_role, is_system_admin,
// permissions). Every handler and service call downstream reads the
// organization id from here rather than trusting a request parameter.
package tenant

import (
	"context"
	"fmt"
)

type contextKey string

const ctxKey contextKey = "tracehub.tenant_context"

// OrgRole mirrors organization_memberships.org_role (§3).
type OrgRole string

const (
	OrgRoleAdmin   OrgRole = "admin"
	OrgRoleManager OrgRole = "manager"
	OrgRoleMember  OrgRole = "member"
	OrgRoleViewer  OrgRole = "viewer"
)

// Context is the resolved identity for one request or worker unit of work.
// It is produced by the auth middleware (HTTP) or by the caller that starts
// a background unit of work (tracking ingestor, expiry sweeper).
type Context struct {
	UserID         string
	OrganizationID string
	OrgRole        OrgRole
	IsSystemAdmin  bool
	Permissions    map[string]struct{}
}

// HasPermission reports whether the slug is present in the resolved set.
func (c Context) HasPermission(slug string) bool {
	if c.IsSystemAdmin {
		return true
	}
	_, ok := c.Permissions[slug]
	return ok
}

// ErrMissingTenant is returned by MustFromContext when no tenant context was
// bound. Every tenant-scoped query path must fail closed on this, never
// fall back to an unscoped query — see spec §4.1.
var ErrMissingTenant = fmt.Errorf("tenant: no tenant context bound to this call")

// WithContext binds a Context value for downstream service/repository
// calls to read.
func WithContext(ctx context.Context, tc Context) context.Context {
	return context.WithValue(ctx, ctxKey, tc)
}

// FromContext extracts the bound Context, if any.
func FromContext(ctx context.Context) (Context, bool) {
	tc, ok := ctx.Value(ctxKey).(Context)
	return tc, ok
}

// MustFromContext extracts the bound Context or returns ErrMissingTenant.
// Every repository method that touches a tenant-scoped table calls this
// first; there is no code path that queries those tables without it.
func MustFromContext(ctx context.Context) (Context, error) {
	tc, ok := FromContext(ctx)
	if !ok {
		return Context{}, ErrMissingTenant
	}
	return tc, nil
}

// SystemAdminContext builds a context for internal/background jobs that
// must act across all tenants (the tracking ingestor, expiry sweeper).
func SystemAdminContext() Context {
	return Context{IsSystemAdmin: true}
}
