package shipments

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

// fakeQuerier embeds the nil db.Querier interface and overrides only the
// methods Service actually calls on the read path, matching the narrow
// per-test fake style used elsewhere in the pack's handler tests.
type fakeQuerier struct {
	db.Querier
	shipment     db.Shipment
	getErr       error
	created      db.CreateShipmentParams
	createErr    error
	ownerList    []db.Shipment
	buyerList    []db.Shipment
}

func (f *fakeQuerier) GetShipment(ctx context.Context, id pgtype.UUID) (db.Shipment, error) {
	return f.shipment, f.getErr
}

func (f *fakeQuerier) CreateShipment(ctx context.Context, p db.CreateShipmentParams) (db.Shipment, error) {
	f.created = p
	if f.createErr != nil {
		return db.Shipment{}, f.createErr
	}
	return db.Shipment{ID: p.ID, OrganizationID: p.OrganizationID, BuyerOrganizationID: p.BuyerOrganizationID,
		Reference: p.Reference, ProductType: p.ProductType, Status: p.Status}, nil
}

func (f *fakeQuerier) ListShipmentsByOrg(ctx context.Context, orgID pgtype.UUID) ([]db.Shipment, error) {
	return f.ownerList, nil
}

func (f *fakeQuerier) ListShipmentsForBuyer(ctx context.Context, orgID pgtype.UUID) ([]db.Shipment, error) {
	return f.buyerList, nil
}

func uuidOf(t *testing.T, s string) pgtype.UUID {
	t.Helper()
	u, err := parseUUID(s)
	require.NoError(t, err)
	return u
}

const ownerOrg = "11111111-1111-1111-1111-111111111111"
const buyerOrg = "22222222-2222-2222-2222-222222222222"
const otherOrg = "33333333-3333-3333-3333-333333333333"

func TestService_Create_SetsDraftStatus(t *testing.T) {
	fq := &fakeQuerier{}
	svc := NewService(nil, fq, nil)
	ctx := tenant.WithContext(context.Background(), tenant.Context{OrganizationID: ownerOrg})

	sh, err := svc.Create(ctx, CreateInput{Reference: "REF-1", ProductType: "cocoa_beans", BuyerOrganizationID: buyerOrg})
	require.NoError(t, err)
	assert.Equal(t, string(StatusDraft), sh.Status)
	assert.Equal(t, string(StatusDraft), fq.created.Status)
}

func TestService_Create_RequiresReferenceAndProductType(t *testing.T) {
	fq := &fakeQuerier{}
	svc := NewService(nil, fq, nil)
	ctx := tenant.WithContext(context.Background(), tenant.Context{OrganizationID: ownerOrg})

	_, err := svc.Create(ctx, CreateInput{ProductType: "cocoa_beans"})
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)
}

func TestService_Get_OwnerCanRead(t *testing.T) {
	fq := &fakeQuerier{shipment: db.Shipment{
		ID: uuidOf(t, ownerOrg), OrganizationID: uuidOf(t, ownerOrg), Status: string(StatusDraft),
	}}
	svc := NewService(nil, fq, nil)
	ctx := tenant.WithContext(context.Background(), tenant.Context{OrganizationID: ownerOrg})

	sh, err := svc.Get(ctx, ownerOrg)
	require.NoError(t, err)
	assert.Equal(t, string(StatusDraft), sh.Status)
}

func TestService_Get_BuyerCanRead(t *testing.T) {
	fq := &fakeQuerier{shipment: db.Shipment{
		OrganizationID: uuidOf(t, ownerOrg), BuyerOrganizationID: uuidOf(t, buyerOrg), Status: string(StatusDocsPending),
	}}
	svc := NewService(nil, fq, nil)
	ctx := tenant.WithContext(context.Background(), tenant.Context{OrganizationID: buyerOrg})

	sh, err := svc.Get(ctx, ownerOrg)
	require.NoError(t, err)
	assert.Equal(t, string(StatusDocsPending), sh.Status)
}

func TestService_Get_CrossTenantReturnsNotFound(t *testing.T) {
	fq := &fakeQuerier{shipment: db.Shipment{
		OrganizationID: uuidOf(t, ownerOrg), BuyerOrganizationID: uuidOf(t, buyerOrg), Status: string(StatusDraft),
	}}
	svc := NewService(nil, fq, nil)
	ctx := tenant.WithContext(context.Background(), tenant.Context{OrganizationID: otherOrg})

	_, err := svc.Get(ctx, ownerOrg)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestService_Get_MissingTenantContextFails(t *testing.T) {
	fq := &fakeQuerier{}
	svc := NewService(nil, fq, nil)

	_, err := svc.Get(context.Background(), "some-id")
	assert.ErrorIs(t, err, tenant.ErrMissingTenant)
}

func TestService_ListForOwner(t *testing.T) {
	fq := &fakeQuerier{ownerList: []db.Shipment{{Reference: "A"}, {Reference: "B"}}}
	svc := NewService(nil, fq, nil)
	ctx := tenant.WithContext(context.Background(), tenant.Context{OrganizationID: ownerOrg})

	list, err := svc.ListForOwner(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestService_ListForBuyer(t *testing.T) {
	fq := &fakeQuerier{buyerList: []db.Shipment{{Reference: "C"}}}
	svc := NewService(nil, fq, nil)
	ctx := tenant.WithContext(context.Background(), tenant.Context{OrganizationID: buyerOrg})

	list, err := svc.ListForBuyer(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
