package products

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arc-self/tracehub/internal/domain/compliance"
	"github.com/arc-self/tracehub/internal/platform/apperr"
	"github.com/arc-self/tracehub/internal/platform/tenant"
	"github.com/arc-self/tracehub/internal/repository/db"
)

type fakeQuerier struct {
	db.Querier
	product db.Product
}

func (f *fakeQuerier) GetProduct(ctx context.Context, id pgtype.UUID) (db.Product, error) {
	return f.product, nil
}

func (f *fakeQuerier) CreateOrigin(ctx context.Context, p db.CreateOriginParams) (db.Origin, error) {
	return db.Origin{ID: p.ID, ProductID: p.ProductID}, nil
}

func ctxFor(org string) context.Context {
	return tenant.WithContext(context.Background(), tenant.Context{OrganizationID: org})
}

func TestCreateOrigin_RejectsHornHoof(t *testing.T) {
	fq := &fakeQuerier{product: db.Product{HSCode: "0506.90"}}
	svc := NewService(fq, compliance.New(compliance.DefaultPolicies()))

	_, err := svc.CreateOrigin(ctxFor("11111111-1111-1111-1111-111111111111"), CreateOriginInput{
		ProductID: "22222222-2222-2222-2222-222222222222", Country: "BR",
	})
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)
}

func TestCreateOrigin_AllowsNonHornHoof(t *testing.T) {
	fq := &fakeQuerier{product: db.Product{HSCode: "1801.00"}}
	svc := NewService(fq, compliance.New(compliance.DefaultPolicies()))

	origin, err := svc.CreateOrigin(ctxFor("11111111-1111-1111-1111-111111111111"), CreateOriginInput{
		ProductID: "22222222-2222-2222-2222-222222222222", Country: "BR",
	})
	require.NoError(t, err)
	assert.True(t, origin.ID.Valid)
}

func TestEUDRApplicable_UsesHSPrefixRule(t *testing.T) {
	svc := NewService(&fakeQuerier{}, compliance.New(compliance.DefaultPolicies()))
	assert.True(t, svc.EUDRApplicable("1801.00"))
	assert.False(t, svc.EUDRApplicable("0506.90"))
}
