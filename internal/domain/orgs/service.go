// Package orgs implements Organization and Organization Membership (C1/C3):
// tenant provisioning, the single-platform-organization invariant, and the
// retain-at-least-one-active-admin guard on membership changes.
package orgs

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"go.uber.org/zap"

	"github.com/arc-self/tracehub/internal/platform/apperr"
	"github.com/arc-self/tracehub/internal/platform/tenant"
	"github.com/arc-self/tracehub/internal/repository/db"
)

type OrgType string

const (
	OrgTypePlatform OrgType = "platform"
	OrgTypeBuyer    OrgType = "buyer"
	OrgTypeSupplier OrgType = "supplier"
	OrgTypeAgent    OrgType = "agent"
)

type OrgStatus string

const (
	OrgStatusActive       OrgStatus = "active"
	OrgStatusSuspended    OrgStatus = "suspended"
	OrgStatusPendingSetup OrgStatus = "pending_setup"
)

func newUUID() pgtype.UUID {
	id, _ := uuid.NewV7()
	var u pgtype.UUID
	_ = u.Scan(id.String())
	return u
}

func parseUUID(s string) (pgtype.UUID, error) {
	if s == "" {
		return pgtype.UUID{}, nil
	}
	parsed, err := uuid.Parse(s)
	if err != nil {
		return pgtype.UUID{}, fmt.Errorf("%w: invalid id %q", apperr.ErrInvalidInput, s)
	}
	var out pgtype.UUID
	_ = out.Scan(parsed.String())
	return out, nil
}

type Service struct {
	querier db.Querier
	log     *zap.Logger
}

func NewService(q db.Querier, log *zap.Logger) *Service {
	return &Service{querier: q, log: log}
}

type CreateOrganizationInput struct {
	Name, Slug string
	Type       OrgType
	Contact    []byte
	Address    []byte
	Settings   []byte
}

// Create provisions a new tenant organization. Only a system admin may
// create one, and at most one organization of type platform is ever
// allowed to exist — enforced here via CountPlatformOrganizations rather
// than left to a database constraint alone, since the check must also
// surface a clean 409 to the caller.
func (s *Service) Create(ctx context.Context, in CreateOrganizationInput) (db.Organization, error) {
	tc, err := tenant.MustFromContext(ctx)
	if err != nil {
		return db.Organization{}, err
	}
	if !tc.IsSystemAdmin {
		return db.Organization{}, fmt.Errorf("%w: only a system admin may provision organizations", apperr.ErrForbidden)
	}
	if in.Name == "" || in.Slug == "" {
		return db.Organization{}, fmt.Errorf("%w: name and slug are required", apperr.ErrInvalidInput)
	}

	if in.Type == OrgTypePlatform {
		count, err := s.querier.CountPlatformOrganizations(ctx)
		if err != nil {
			return db.Organization{}, fmt.Errorf("count platform organizations: %w", err)
		}
		if count > 0 {
			return db.Organization{}, fmt.Errorf("%w: a platform organization already exists", apperr.ErrConflict)
		}
	}

	status := OrgStatusPendingSetup
	if in.Type == OrgTypePlatform {
		status = OrgStatusActive
	}

	return s.querier.CreateOrganization(ctx, db.CreateOrganizationParams{
		ID: newUUID(), Name: in.Name, Slug: in.Slug, Type: string(in.Type), Status: string(status),
		Contact: in.Contact, Address: in.Address, Settings: in.Settings,
	})
}

func (s *Service) Get(ctx context.Context, id string) (db.Organization, error) {
	orgID, err := parseUUID(id)
	if err != nil {
		return db.Organization{}, err
	}
	org, err := s.querier.GetOrganizationByID(ctx, orgID)
	if err != nil {
		return db.Organization{}, fmt.Errorf("%w: organization", apperr.ErrNotFound)
	}
	return org, nil
}

func (s *Service) GetBySlug(ctx context.Context, slug string) (db.Organization, error) {
	org, err := s.querier.GetOrganizationBySlug(ctx, slug)
	if err != nil {
		return db.Organization{}, fmt.Errorf("%w: organization", apperr.ErrNotFound)
	}
	return org, nil
}

// Suspend soft-disables an organization; a platform admin action, not a
// hard delete (spec: "soft-suspended on delete").
func (s *Service) Suspend(ctx context.Context, id string) error {
	tc, err := tenant.MustFromContext(ctx)
	if err != nil {
		return err
	}
	if !tc.IsSystemAdmin {
		return fmt.Errorf("%w: only a system admin may suspend organizations", apperr.ErrForbidden)
	}
	orgID, err := parseUUID(id)
	if err != nil {
		return err
	}
	return s.querier.UpdateOrganizationStatus(ctx, db.UpdateOrganizationStatusParams{ID: orgID, Status: string(OrgStatusSuspended)})
}

// AddMember creates an organization membership with the given role and
// primary flag. Callers are responsible for ensuring at most one primary
// membership per user (enforced at the database by a unique partial
// index; see org_memberships_one_primary_per_user).
func (s *Service) AddMember(ctx context.Context, userID, orgID string, role tenant.OrgRole, isPrimary bool) (db.OrganizationMembership, error) {
	uid, err := parseUUID(userID)
	if err != nil {
		return db.OrganizationMembership{}, err
	}
	oid, err := parseUUID(orgID)
	if err != nil {
		return db.OrganizationMembership{}, err
	}
	return s.querier.CreateMembership(ctx, db.CreateMembershipParams{
		ID: newUUID(), UserID: uid, OrganizationID: oid, OrgRole: string(role), IsPrimary: isPrimary, Status: "active",
	})
}

// DeactivateMember revokes a membership, refusing to remove an
// organization's last active admin (spec §3: "must always retain ≥1
// active admin member").
func (s *Service) DeactivateMember(ctx context.Context, membership db.OrganizationMembership) error {
	if membership.OrgRole == string(tenant.OrgRoleAdmin) {
		count, err := s.querier.CountActiveAdmins(ctx, membership.OrganizationID)
		if err != nil {
			return fmt.Errorf("count active admins: %w", err)
		}
		if count <= 1 {
			return fmt.Errorf("%w: organization must retain at least one active admin", apperr.ErrConflict)
		}
	}
	return s.querier.UpdateMembershipStatus(ctx, db.UpdateMembershipStatusParams{ID: membership.ID, Status: "inactive"})
}

func (s *Service) ListMembers(ctx context.Context, orgID string) ([]db.OrganizationMembership, error) {
	oid, err := parseUUID(orgID)
	if err != nil {
		return nil, err
	}
	return s.querier.ListMembershipsByOrg(ctx, oid)
}
