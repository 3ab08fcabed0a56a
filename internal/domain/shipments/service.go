package shipments

import (
	"fmt"

	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

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
	var u pgtype.UUID
	_ = u.Scan(parsed.String())
	return u, nil
}

// Service drives the shipment lifecycle against internal/repository/db.
type Service struct {
	pool    *pgxpool.Pool
	querier db.Querier
	log     *zap.Logger
}

func NewService(pool *pgxpool.Pool, q db.Querier, log *zap.Logger) *Service {
	return &Service{pool: pool, querier: q, log: log}
}

type CreateInput struct {
	Reference           string
	ProductType         string
	BuyerOrganizationID string
	Incoterms           string
}

// Create persists a new shipment owned by the caller's organization.
func (s *Service) Create(ctx context.Context, in CreateInput) (db.Shipment, error) {
	tc, err := tenant.MustFromContext(ctx)
	if err != nil {
		return db.Shipment{}, err
	}
	if in.Reference == "" || in.ProductType == "" {
		return db.Shipment{}, fmt.Errorf("%w: reference and product_type are required", apperr.ErrInvalidInput)
	}
	orgID, err := parseUUID(tc.OrganizationID)
	if err != nil {
		return db.Shipment{}, err
	}
	buyerOrgID, err := parseUUID(in.BuyerOrganizationID)
	if err != nil {
		return db.Shipment{}, err
	}

	return s.querier.CreateShipment(ctx, db.CreateShipmentParams{
		ID: newUUID(), OrganizationID: orgID, BuyerOrganizationID: buyerOrgID, Reference: in.Reference,
		ProductType: in.ProductType, Incoterms: pgtype.Text{String: in.Incoterms, Valid: in.Incoterms != ""},
		Status: string(StatusDraft),
	})
}

// Get resolves a shipment and authorizes the read per tenant.Authorize —
// an owner-side read, a buyer-side read-only grant, or a system admin.
func (s *Service) Get(ctx context.Context, shipmentID string) (db.Shipment, error) {
	tc, err := tenant.MustFromContext(ctx)
	if err != nil {
		return db.Shipment{}, err
	}
	id, err := parseUUID(shipmentID)
	if err != nil {
		return db.Shipment{}, err
	}
	sh, err := s.querier.GetShipment(ctx, id)
	if err != nil {
		return db.Shipment{}, fmt.Errorf("%w: shipment", apperr.ErrNotFound)
	}

	decision := tenant.Authorize(tc, tenant.ActionShipmentsRead, tenant.ResourceTenancy{
		OwnerOrgID: sh.OrganizationID.String(), BuyerOrgID: bufferedOrgID(sh.BuyerOrganizationID),
	})
	if !decision.Allowed {
		// 404 preferred to 403 to avoid cross-tenant enumeration (spec §7).
		return db.Shipment{}, fmt.Errorf("%w: shipment", apperr.ErrNotFound)
	}
	return sh, nil
}

func bufferedOrgID(id pgtype.UUID) string {
	if !id.Valid {
		return ""
	}
	return id.String()
}

// AdvanceOnDocumentCompleteness transitions draft->docs_pending on first
// upload, and docs_pending->docs_complete once the caller (the evaluation
// service, after it evaluates a shipment's documents) reports the required
// set is fully satisfied.
func (s *Service) AdvanceOnDocumentCompleteness(ctx context.Context, shipmentID string, anyDocumentUploaded, requiredSetComplete bool) (db.Shipment, error) {
	id, err := parseUUID(shipmentID)
	if err != nil {
		return db.Shipment{}, err
	}
	sh, err := s.querier.GetShipment(ctx, id)
	if err != nil {
		return db.Shipment{}, fmt.Errorf("%w: shipment", apperr.ErrNotFound)
	}

	target := Status(sh.Status)
	switch {
	case Status(sh.Status) == StatusDraft && anyDocumentUploaded:
		target = StatusDocsPending
	case Status(sh.Status) == StatusDocsPending && requiredSetComplete:
		target = StatusDocsComplete
	default:
		return sh, nil
	}
	return s.applyTransition(ctx, sh, target, "document_completeness")
}

// AdvanceOnTrackingEvent advances the shipment based on a normalized
// carrier event status, silently ignoring events that would regress the
// lifecycle (spec: regressions are disallowed but still persisted for
// audit by the tracking package itself).
func (s *Service) AdvanceOnTrackingEvent(ctx context.Context, shipmentID string, eventStatus string, customsHold bool) (db.Shipment, error) {
	id, err := parseUUID(shipmentID)
	if err != nil {
		return db.Shipment{}, err
	}
	sh, err := s.querier.GetShipment(ctx, id)
	if err != nil {
		return db.Shipment{}, fmt.Errorf("%w: shipment", apperr.ErrNotFound)
	}
	current := Status(sh.Status)

	var target Status
	switch {
	case current == StatusDocsComplete && (eventStatus == "departed" || eventStatus == "in_transit"):
		target = StatusInTransit
	case current == StatusInTransit && (eventStatus == "arrived" || eventStatus == "discharged"):
		target = StatusArrived
	case current == StatusArrived && customsHold:
		target = StatusCustoms
	case (current == StatusArrived || current == StatusCustoms) && eventStatus == "delivered":
		target = StatusDelivered
	case current == StatusCustoms && eventStatus == "gate_out":
		target = StatusDelivered
	default:
		return sh, nil
	}

	if IsRegression(current, target) {
		return sh, nil
	}
	return s.applyTransition(ctx, sh, target, "tracking_event:"+eventStatus)
}

// Archive moves delivered -> archived on an explicit admin action. No
// worker archives shipments automatically after a quiescence period.
func (s *Service) Archive(ctx context.Context, shipmentID, actorID string) (db.Shipment, error) {
	tc, err := tenant.MustFromContext(ctx)
	if err != nil {
		return db.Shipment{}, err
	}
	id, err := parseUUID(shipmentID)
	if err != nil {
		return db.Shipment{}, err
	}
	sh, err := s.querier.GetShipment(ctx, id)
	if err != nil {
		return db.Shipment{}, fmt.Errorf("%w: shipment", apperr.ErrNotFound)
	}
	decision := tenant.Authorize(tc, tenant.ActionShipmentsArchive, tenant.ResourceTenancy{OwnerOrgID: sh.OrganizationID.String()})
	if !decision.Allowed {
		return db.Shipment{}, fmt.Errorf("%w: %s", apperr.ErrForbidden, decision.Reason)
	}
	if !CanTransition(Status(sh.Status), StatusArchived) {
		return db.Shipment{}, fmt.Errorf("%w: %s -> %s", apperr.ErrInvalidTransition, sh.Status, StatusArchived)
	}
	return s.applyTransition(ctx, sh, StatusArchived, "admin_archive")
}

// Reopen reverses an archived shipment back into the active lifecycle.
// SPEC_FULL.md Open Question 2 resolves this as system-admin-only; it is
// deliberately not reachable through CanTransition's regular table.
func (s *Service) Reopen(ctx context.Context, shipmentID, to string) (db.Shipment, error) {
	tc, err := tenant.MustFromContext(ctx)
	if err != nil {
		return db.Shipment{}, err
	}
	if !tc.IsSystemAdmin {
		return db.Shipment{}, fmt.Errorf("%w: reopening an archived shipment requires system admin", apperr.ErrForbidden)
	}
	id, err := parseUUID(shipmentID)
	if err != nil {
		return db.Shipment{}, err
	}
	sh, err := s.querier.GetShipment(ctx, id)
	if err != nil {
		return db.Shipment{}, fmt.Errorf("%w: shipment", apperr.ErrNotFound)
	}
	if Status(sh.Status) != StatusArchived || !ReopenFromArchived(Status(to)) {
		return db.Shipment{}, fmt.Errorf("%w: cannot reopen %s into %s", apperr.ErrInvalidTransition, sh.Status, to)
	}
	return s.applyTransition(ctx, sh, Status(to), "system_admin_reopen")
}

// MarkTrackingError suspends polling on a shipment after a permanent (4xx)
// carrier failure. tracking_error is a sidecar state outside the ranked
// forward lifecycle, so it bypasses CanTransition entirely — only the
// tracking ingestor and ClearTrackingError touch it.
func (s *Service) MarkTrackingError(ctx context.Context, shipmentID string) (db.Shipment, error) {
	id, err := parseUUID(shipmentID)
	if err != nil {
		return db.Shipment{}, err
	}
	sh, err := s.querier.GetShipment(ctx, id)
	if err != nil {
		return db.Shipment{}, fmt.Errorf("%w: shipment", apperr.ErrNotFound)
	}
	return s.applyTransition(ctx, sh, StatusTrackingError, "carrier_permanent_error")
}

// ClearTrackingError resumes normal polling at the given resolved status,
// invoked by an operator action after investigating the upstream failure.
func (s *Service) ClearTrackingError(ctx context.Context, shipmentID string, resolvedStatus Status) (db.Shipment, error) {
	id, err := parseUUID(shipmentID)
	if err != nil {
		return db.Shipment{}, err
	}
	sh, err := s.querier.GetShipment(ctx, id)
	if err != nil {
		return db.Shipment{}, fmt.Errorf("%w: shipment", apperr.ErrNotFound)
	}
	if Status(sh.Status) != StatusTrackingError {
		return db.Shipment{}, fmt.Errorf("%w: shipment is not in tracking_error", apperr.ErrInvalidTransition)
	}
	return s.applyTransition(ctx, sh, resolvedStatus, "tracking_error_resolved")
}

func (s *Service) applyTransition(ctx context.Context, sh db.Shipment, target Status, reason string) (db.Shipment, error) {
	tc, err := tenant.MustFromContext(ctx)
	if err != nil {
		return db.Shipment{}, err
	}
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return db.Shipment{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)
	if err := db.BindSession(ctx, tx, tc.OrganizationID, tc.IsSystemAdmin); err != nil {
		return db.Shipment{}, err
	}
	qtx := db.New(tx)

	if err := qtx.UpdateShipmentStatus(ctx, db.UpdateShipmentStatusParams{ID: sh.ID, Status: string(target)}); err != nil {
		return db.Shipment{}, fmt.Errorf("update shipment status: %w", err)
	}

	details := fmt.Sprintf(`{"previous_status":%q,"new_status":%q,"reason":%q}`, sh.Status, target, reason)
	if err := qtx.InsertAuditLog(ctx, db.InsertAuditLogParams{
		ID: newUUID(), OrganizationID: sh.OrganizationID, Action: "shipment.transitioned",
		ResourceType: "shipment", ResourceID: sh.ID.String(), Details: []byte(details),
	}); err != nil {
		return db.Shipment{}, fmt.Errorf("insert audit log: %w", err)
	}
	if _, err := qtx.InsertOutboxEvent(ctx, db.InsertOutboxEventParams{
		ID: newUUID(), OrganizationID: sh.OrganizationID, AggregateType: "shipment", AggregateID: sh.ID.String(),
		EventType: "ShipmentTransitioned", Payload: []byte(details),
	}); err != nil {
		return db.Shipment{}, fmt.Errorf("insert outbox event: %w", err)
	}

	sh.Status = string(target)
	return sh, tx.Commit(ctx)
}

// ListForOwner returns every shipment owned by the caller's organization.
func (s *Service) ListForOwner(ctx context.Context) ([]db.Shipment, error) {
	tc, err := tenant.MustFromContext(ctx)
	if err != nil {
		return nil, err
	}
	orgID, err := parseUUID(tc.OrganizationID)
	if err != nil {
		return nil, err
	}
	return s.querier.ListShipmentsByOrg(ctx, orgID)
}

// ListForBuyer returns every shipment where the caller's organization holds
// the buyer-side read grant.
func (s *Service) ListForBuyer(ctx context.Context) ([]db.Shipment, error) {
	tc, err := tenant.MustFromContext(ctx)
	if err != nil {
		return nil, err
	}
	orgID, err := parseUUID(tc.OrganizationID)
	if err != nil {
		return nil, err
	}
	return s.querier.ListShipmentsForBuyer(ctx, orgID)
}
