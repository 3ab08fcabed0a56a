// Package bol implements the BoL Parser & Auto-Enrichment step (C8): it
// consumes a classifier.ClassifiedDocument for a Bill of Lading and treats
// it as authoritative, back-filling the parent shipment per spec §4.6.
package bol

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/arc-self/tracehub/internal/adapters/classifier"
	"github.com/arc-self/tracehub/internal/domain/rules"
	"github.com/arc-self/tracehub/internal/platform/apperr"
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

// Service applies a classified BoL to a shipment record.
type Service struct {
	querier db.Querier
}

func NewService(q db.Querier) *Service {
	return &Service{querier: q}
}

func textOrExisting(candidate string, existing pgtype.Text, placeholderGuard bool) pgtype.Text {
	if candidate == "" {
		return existing
	}
	if existing.Valid && existing.String != "" {
		if !placeholderGuard || !rules.IsPlaceholder(existing.String) {
			return existing
		}
	}
	return pgtype.Text{String: candidate, Valid: true}
}

// Enrich back-fills the shipment named by shipmentID from a classified BoL
// extraction. It returns only an error; it does not report which fields
// were changed.
func (s *Service) Enrich(ctx context.Context, shipmentID string, doc classifier.ClassifiedDocument) error {
	id, err := parseUUID(shipmentID)
	if err != nil {
		return err
	}
	sh, err := s.querier.GetShipment(ctx, id)
	if err != nil {
		return fmt.Errorf("%w: shipment", apperr.ErrNotFound)
	}

	// bl_number is always overwritten when the classifier produced one.
	blNumber := sh.BLNumber
	if doc.BOLNumber != "" {
		blNumber = pgtype.Text{String: doc.BOLNumber, Valid: true}
	}

	// container_number is overwritten only if currently empty or a
	// detected placeholder.
	containerNumber := sh.ContainerNumber
	if len(doc.Containers) > 0 {
		containerNumber = textOrExisting(doc.Containers[0].Number, sh.ContainerNumber, true)
	}

	vessel := textOrExisting(doc.VesselName, sh.Vessel, false)
	voyage := textOrExisting(doc.VoyageNo, sh.Voyage, false)
	polCode := textOrExisting(rules.ExtractUNLOCODE(doc.POLCode), sh.POLCode, false)
	podCode := textOrExisting(rules.ExtractUNLOCODE(doc.PODCode), sh.PODCode, false)

	atd := sh.ATD
	if !atd.Valid && !doc.ATD.IsZero() {
		_ = atd.Scan(doc.ATD)
	}

	return s.querier.UpdateShipmentBOLFields(ctx, db.UpdateShipmentBOLFieldsParams{
		ID: sh.ID, BLNumber: blNumber, ContainerNumber: containerNumber, Vessel: vessel, Voyage: voyage,
		POLCode: polCode, POLName: sh.POLName, PODCode: podCode, PODName: sh.PODName, ATD: atd,
	})
}
