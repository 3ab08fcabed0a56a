package orgs

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arc-self/tracehub/internal/platform/apperr"
	"github.com/arc-self/tracehub/internal/platform/tenant"
	"github.com/arc-self/tracehub/internal/repository/db"
)

type fakeQuerier struct {
	db.Querier
	platformCount int64
	adminCount    int64
}

func (f *fakeQuerier) CountPlatformOrganizations(ctx context.Context) (int64, error) {
	return f.platformCount, nil
}

func (f *fakeQuerier) CreateOrganization(ctx context.Context, p db.CreateOrganizationParams) (db.Organization, error) {
	return db.Organization{ID: p.ID, Name: p.Name, Slug: p.Slug, Type: p.Type, Status: p.Status}, nil
}

func (f *fakeQuerier) CountActiveAdmins(ctx context.Context, orgID pgtype.UUID) (int64, error) {
	return f.adminCount, nil
}

func (f *fakeQuerier) UpdateMembershipStatus(ctx context.Context, p db.UpdateMembershipStatusParams) error {
	return nil
}

func adminCtx() context.Context {
	return tenant.WithContext(context.Background(), tenant.Context{IsSystemAdmin: true})
}

func TestCreate_RejectsSecondPlatformOrg(t *testing.T) {
	fq := &fakeQuerier{platformCount: 1}
	svc := NewService(fq, nil)

	_, err := svc.Create(adminCtx(), CreateOrganizationInput{Name: "Acme", Slug: "acme", Type: OrgTypePlatform})
	assert.ErrorIs(t, err, apperr.ErrConflict)
}

func TestCreate_AllowsFirstPlatformOrg(t *testing.T) {
	fq := &fakeQuerier{platformCount: 0}
	svc := NewService(fq, nil)

	org, err := svc.Create(adminCtx(), CreateOrganizationInput{Name: "Acme", Slug: "acme", Type: OrgTypePlatform})
	require.NoError(t, err)
	assert.Equal(t, string(OrgStatusActive), org.Status)
}

func TestCreate_RequiresSystemAdmin(t *testing.T) {
	fq := &fakeQuerier{}
	svc := NewService(fq, nil)
	ctx := tenant.WithContext(context.Background(), tenant.Context{OrganizationID: "11111111-1111-1111-1111-111111111111"})

	_, err := svc.Create(ctx, CreateOrganizationInput{Name: "Acme", Slug: "acme", Type: OrgTypeBuyer})
	assert.ErrorIs(t, err, apperr.ErrForbidden)
}

func TestDeactivateMember_RefusesLastAdmin(t *testing.T) {
	fq := &fakeQuerier{adminCount: 1}
	svc := NewService(fq, nil)

	membership := db.OrganizationMembership{OrgRole: string(tenant.OrgRoleAdmin)}
	err := svc.DeactivateMember(context.Background(), membership)
	assert.ErrorIs(t, err, apperr.ErrConflict)
}

func TestDeactivateMember_AllowsWhenMultipleAdmins(t *testing.T) {
	fq := &fakeQuerier{adminCount: 2}
	svc := NewService(fq, nil)

	membership := db.OrganizationMembership{OrgRole: string(tenant.OrgRoleAdmin)}
	err := svc.DeactivateMember(context.Background(), membership)
	assert.NoError(t, err)
}
