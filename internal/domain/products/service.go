// Package products implements the Product and Origin entities (C6): the
// per-product HS code and net/gross weight used by the Rules Engine and,
// for EUDR-applicable commodities, the geolocated origin declarations that
// feed EUDR-GEO/DATE/DEFOR (spec §4.4, §4.9).
package products

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/arc-self/tracehub/internal/domain/compliance"
	"github.com/arc-self/tracehub/internal/platform/apperr"
	"github.com/arc-self/tracehub/internal/platform/tenant"
	"github.com/arc-self/tracehub/internal/repository/db"
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
	matrix  *compliance.Matrix
}

func NewService(q db.Querier, matrix *compliance.Matrix) *Service {
	return &Service{querier: q, matrix: matrix}
}

type CreateProductInput struct {
	ShipmentID      string
	HSCode          string
	Description     string
	QuantityNetKg   float64
	QuantityGrossKg float64
}

func (s *Service) CreateProduct(ctx context.Context, in CreateProductInput) (db.Product, error) {
	tc, err := tenant.MustFromContext(ctx)
	if err != nil {
		return db.Product{}, err
	}
	if in.HSCode == "" {
		return db.Product{}, fmt.Errorf("%w: hs_code is required", apperr.ErrInvalidInput)
	}
	shipmentID, err := parseUUID(in.ShipmentID)
	if err != nil {
		return db.Product{}, err
	}
	orgID, err := parseUUID(tc.OrganizationID)
	if err != nil {
		return db.Product{}, err
	}
	return s.querier.CreateProduct(ctx, db.CreateProductParams{
		ID: newUUID(), ShipmentID: shipmentID, OrganizationID: orgID, HSCode: in.HSCode,
		Description: in.Description, QuantityNetKg: in.QuantityNetKg, QuantityGrossKg: in.QuantityGrossKg,
	})
}

type CreateOriginInput struct {
	ProductID                  string
	ShipmentID                 string
	FarmPlotIdentifier         string
	Lat, Lng                   float64
	Polygon                    []byte
	Country                    string
	ProductionStartDate        pgtype.Timestamptz
	ProductionEndDate          pgtype.Timestamptz
	DeforestationFreeStatement string
}

// CreateOrigin enforces the hard invariant that HS 0506/0507 (horn/hoof)
// products never carry origin/EUDR artifacts, regardless of caller intent —
// compliance.IsHornHoof is authoritative and checked before anything else.
func (s *Service) CreateOrigin(ctx context.Context, in CreateOriginInput) (db.Origin, error) {
	tc, err := tenant.MustFromContext(ctx)
	if err != nil {
		return db.Origin{}, err
	}
	productID, err := parseUUID(in.ProductID)
	if err != nil {
		return db.Origin{}, err
	}
	product, err := s.querier.GetProduct(ctx, productID)
	if err != nil {
		return db.Origin{}, fmt.Errorf("%w: product", apperr.ErrNotFound)
	}
	if compliance.IsHornHoof(product.HSCode) {
		return db.Origin{}, fmt.Errorf("%w: horn/hoof products (HS %s) never carry origin declarations", apperr.ErrInvalidInput, product.HSCode)
	}

	shipmentID, err := parseUUID(in.ShipmentID)
	if err != nil {
		return db.Origin{}, err
	}
	orgID, err := parseUUID(tc.OrganizationID)
	if err != nil {
		return db.Origin{}, err
	}
	return s.querier.CreateOrigin(ctx, db.CreateOriginParams{
		ID: newUUID(), ShipmentID: shipmentID, ProductID: productID, OrganizationID: orgID,
		FarmPlotIdentifier: in.FarmPlotIdentifier, Lat: in.Lat, Lng: in.Lng, Polygon: in.Polygon,
		Country: in.Country, ProductionStartDate: in.ProductionStartDate, ProductionEndDate: in.ProductionEndDate,
		DeforestationFreeStatement: in.DeforestationFreeStatement,
	})
}

func (s *Service) Get(ctx context.Context, productID string) (db.Product, error) {
	id, err := parseUUID(productID)
	if err != nil {
		return db.Product{}, err
	}
	p, err := s.querier.GetProduct(ctx, id)
	if err != nil {
		return db.Product{}, fmt.Errorf("%w: product", apperr.ErrNotFound)
	}
	return p, nil
}

func (s *Service) ListByShipment(ctx context.Context, shipmentID string) ([]db.Product, error) {
	id, err := parseUUID(shipmentID)
	if err != nil {
		return nil, err
	}
	return s.querier.ListProductsByShipment(ctx, id)
}

func (s *Service) ListOriginsByProduct(ctx context.Context, productID string) ([]db.Origin, error) {
	id, err := parseUUID(productID)
	if err != nil {
		return nil, err
	}
	return s.querier.ListOriginsByProduct(ctx, id)
}

func (s *Service) ListOriginsByShipment(ctx context.Context, shipmentID string) ([]db.Origin, error) {
	id, err := parseUUID(shipmentID)
	if err != nil {
		return nil, err
	}
	return s.querier.ListOriginsByShipment(ctx, id)
}

// EUDRApplicable reports whether this product's HS code requires EUDR due
// diligence artifacts, delegating to compliance.EUDRApplicable's fixed HS
// prefix rule; the Compliance Matrix snapshot is not consulted.
func (s *Service) EUDRApplicable(hsCode string) bool {
	return compliance.EUDRApplicable(hsCode)
}
