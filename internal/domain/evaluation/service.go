// Package evaluation wires the Rules Engine (C7) into the rest of the
// domain: it projects persisted shipment/product/document/origin rows into
// rules.Input, calls rules.Evaluate, persists the outcome through
// documents.Service, and drives the shipment forward when the resulting
// document set satisfies the Compliance Matrix's required set.
package evaluation

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/arc-self/tracehub/internal/domain/compliance"
	"github.com/arc-self/tracehub/internal/domain/documents"
	"github.com/arc-self/tracehub/internal/domain/rules"
	"github.com/arc-self/tracehub/internal/domain/shipments"
	"github.com/arc-self/tracehub/internal/platform/apperr"
	"github.com/arc-self/tracehub/internal/repository/db"
)

// Service is the Rules Engine orchestrator. It holds no persistence state of
// its own beyond what it reads through querier; every mutation it triggers
// runs through documents.Service/shipments.Service so RLS session binding
// and audit/outbox writes stay centralized there.
type Service struct {
	querier   db.Querier
	matrix    *compliance.Matrix
	documents *documents.Service
	shipments *shipments.Service
}

func NewService(q db.Querier, matrix *compliance.Matrix, docs *documents.Service, ships *shipments.Service) *Service {
	return &Service{querier: q, matrix: matrix, documents: docs, shipments: ships}
}

// Evaluate builds rules.Input for shipmentID's currently-validated primary
// documents, runs the engine, persists the outcome onto the Bill of Lading
// (the one document type the engine's decision attaches to per spec §4.5 —
// every other document type only contributes DocumentFields context), and
// then attempts to advance the shipment and link its required documents.
//
// It is the caller's responsibility to invoke Evaluate only once the
// document being evaluated is in validated status; ApplyComplianceOutcome
// enforces that transition guard itself and returns apperr.ErrInvalidTransition
// if not.
func (s *Service) Evaluate(ctx context.Context, shipmentID, actorID string) (rules.EvaluationOutcome, error) {
	sh, sid, err := s.loadShipment(ctx, shipmentID)
	if err != nil {
		return rules.EvaluationOutcome{}, err
	}

	products, err := s.querier.ListProductsByShipment(ctx, sid)
	if err != nil {
		return rules.EvaluationOutcome{}, fmt.Errorf("list products: %w", err)
	}
	hsCode, productType := "", sh.ProductType
	if len(products) > 0 {
		hsCode = products[0].HSCode
	}

	docs, err := s.querier.ListDocumentsByShipment(ctx, sid)
	if err != nil {
		return rules.EvaluationOutcome{}, fmt.Errorf("list documents: %w", err)
	}

	var bolDoc *db.Document
	var bolFields *rules.DocumentFields
	var docFields []rules.DocumentFields
	for i := range docs {
		d := docs[i]
		if !d.IsPrimary || documents.Status(d.Status) != documents.StatusValidated {
			continue
		}
		extraction, err := documents.UnmarshalCanonical(d.CanonicalData)
		if err != nil {
			return rules.EvaluationOutcome{}, err
		}
		fields := extraction.ToRuleFields(textOrEmpty(d.IssuingAuthority))
		docFields = append(docFields, fields)
		if d.DocumentType == "bill_of_lading" {
			doc := d
			bolDoc = &doc
			bf := fields
			bolFields = &bf
		}
	}
	if bolDoc == nil {
		return rules.EvaluationOutcome{}, fmt.Errorf("%w: no validated bill_of_lading for shipment", apperr.ErrInvalidInput)
	}

	origins, err := s.querier.ListOriginsByShipment(ctx, sid)
	if err != nil {
		return rules.EvaluationOutcome{}, fmt.Errorf("list origins: %w", err)
	}

	prevIssues, err := s.querier.ListDocumentIssues(ctx, bolDoc.ID)
	if err != nil {
		return rules.EvaluationOutcome{}, fmt.Errorf("list document issues: %w", err)
	}
	var overrides []rules.Override
	for _, issue := range prevIssues {
		if issue.IsOverridden {
			overrides = append(overrides, rules.Override{RuleID: issue.RuleID, Field: issue.Field, Reason: issue.OverrideReason})
		}
	}

	policy, err := s.matrix.Lookup(productType, hsCode)
	if err != nil {
		return rules.EvaluationOutcome{}, fmt.Errorf("resolve compliance policy: %w", err)
	}
	eudrApplicable := policy.EUDRApplicable

	input := rules.Input{
		Shipment: rules.ShipmentFields{
			ContainerNumber: textOrEmpty(sh.ContainerNumber),
			BLNumber:        textOrEmpty(sh.BLNumber),
			Vessel:          textOrEmpty(sh.Vessel),
			Voyage:          textOrEmpty(sh.Voyage),
			POLCode:         textOrEmpty(sh.POLCode),
			PODCode:         textOrEmpty(sh.PODCode),
			HSCode:          hsCode,
			ProductType:     productType,
		},
		BOL:            bolFields,
		Documents:      docFields,
		EUDRApplicable: eudrApplicable,
		Origin:         originFields(origins),
		Overrides:      overrides,
	}

	outcome := rules.Evaluate(input)

	if _, err := s.documents.ApplyComplianceOutcome(ctx, bolDoc.ID.String(), actorID, outcome); err != nil {
		return rules.EvaluationOutcome{}, fmt.Errorf("apply compliance outcome: %w", err)
	}

	complete, err := s.documents.LinkShipmentDocuments(ctx, shipmentID, actorID, productType, hsCode)
	if err != nil {
		return rules.EvaluationOutcome{}, fmt.Errorf("link shipment documents: %w", err)
	}
	anyUploaded := len(docs) > 0
	if _, err := s.shipments.AdvanceOnDocumentCompleteness(ctx, shipmentID, anyUploaded, complete); err != nil {
		return rules.EvaluationOutcome{}, fmt.Errorf("advance shipment: %w", err)
	}

	return outcome, nil
}

func (s *Service) loadShipment(ctx context.Context, shipmentID string) (db.Shipment, pgtype.UUID, error) {
	sh, err := s.shipments.Get(ctx, shipmentID)
	if err != nil {
		return db.Shipment{}, pgtype.UUID{}, err
	}
	return sh, sh.ID, nil
}

func textOrEmpty(t pgtype.Text) string {
	if !t.Valid {
		return ""
	}
	return t.String
}

// originFields picks the first origin row as the EUDR-relevant one. A
// shipment with multiple origins across its product lines needs a
// per-product evaluation pass, out of scope here: a single Bill of Lading
// evaluation is always anchored to one primary product.
func originFields(origins []db.Origin) *rules.OriginFields {
	if len(origins) == 0 {
		return nil
	}
	o := origins[0]
	of := &rules.OriginFields{
		Lat: o.Lat, Lng: o.Lng, HasCoordinates: o.Lat != 0 || o.Lng != 0,
		DeforestationFreeStatement: o.DeforestationFreeStatement,
	}
	if o.ProductionStartDate.Valid {
		of.HasProductionStartDate = true
		of.ProductionStartDate = o.ProductionStartDate.Time
	}
	return of
}
