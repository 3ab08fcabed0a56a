package bol

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arc-self/tracehub/internal/adapters/classifier"
	"github.com/arc-self/tracehub/internal/repository/db"
)

type fakeQuerier struct {
	db.Querier
	shipment db.Shipment
	applied  db.UpdateShipmentBOLFieldsParams
}

func (f *fakeQuerier) GetShipment(ctx context.Context, id pgtype.UUID) (db.Shipment, error) {
	return f.shipment, nil
}

func (f *fakeQuerier) UpdateShipmentBOLFields(ctx context.Context, p db.UpdateShipmentBOLFieldsParams) error {
	f.applied = p
	return nil
}

func TestEnrich_AlwaysOverwritesBLNumber(t *testing.T) {
	fq := &fakeQuerier{shipment: db.Shipment{BLNumber: pgtype.Text{String: "OLD-BL", Valid: true}}}
	svc := NewService(fq)

	err := svc.Enrich(context.Background(), "11111111-1111-1111-1111-111111111111", classifier.ClassifiedDocument{BOLNumber: "NEW-BL"})
	require.NoError(t, err)
	assert.Equal(t, "NEW-BL", fq.applied.BLNumber.String)
}

func TestEnrich_ContainerNumberOverwrittenWhenPlaceholder(t *testing.T) {
	fq := &fakeQuerier{shipment: db.Shipment{ContainerNumber: pgtype.Text{String: "TBD", Valid: true}}}
	svc := NewService(fq)

	err := svc.Enrich(context.Background(), "11111111-1111-1111-1111-111111111111", classifier.ClassifiedDocument{
		Containers: []classifier.Container{{Number: "MSCU1234567"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "MSCU1234567", fq.applied.ContainerNumber.String)
}

func TestEnrich_ContainerNumberKeptWhenAlreadyReal(t *testing.T) {
	fq := &fakeQuerier{shipment: db.Shipment{ContainerNumber: pgtype.Text{String: "MSCU7654321", Valid: true}}}
	svc := NewService(fq)

	err := svc.Enrich(context.Background(), "11111111-1111-1111-1111-111111111111", classifier.ClassifiedDocument{
		Containers: []classifier.Container{{Number: "MSCU1234567"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "MSCU7654321", fq.applied.ContainerNumber.String)
}

func TestEnrich_VesselOverwrittenOnlyIfEmpty(t *testing.T) {
	fq := &fakeQuerier{shipment: db.Shipment{Vessel: pgtype.Text{String: "MV EXISTING", Valid: true}}}
	svc := NewService(fq)

	err := svc.Enrich(context.Background(), "11111111-1111-1111-1111-111111111111", classifier.ClassifiedDocument{VesselName: "MV NEW"})
	require.NoError(t, err)
	assert.Equal(t, "MV EXISTING", fq.applied.Vessel.String)
}
