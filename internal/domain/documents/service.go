package documents

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/arc-self/tracehub/internal/adapters/blobstore"
	"github.com/arc-self/tracehub/internal/adapters/classifier"
	"github.com/arc-self/tracehub/internal/domain/compliance"
	"github.com/arc-self/tracehub/internal/domain/rules"
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
	parsed, err := uuid.Parse(s)
	if err != nil {
		return pgtype.UUID{}, fmt.Errorf("%w: invalid id %q", apperr.ErrInvalidInput, s)
	}
	var u pgtype.UUID
	_ = u.Scan(parsed.String())
	return u, nil
}

// Service drives document uploads, reviews, and time-based expiry against
// the persisted row, enforcing CanTransition at every step and recording an
// audit-log entry plus an outbox event in the same transaction as each
// mutation (spec §9: "audit logging ... never via a best-effort afterward
// path").
type Service struct {
	pool       *pgxpool.Pool
	querier    db.Querier
	matrix     *compliance.Matrix
	log        *zap.Logger
	blobs      blobstore.BlobStore
	bucket     string
	classifier classifier.DocumentClassifier
}

// NewService builds a Service. matrix is consulted when linking documents
// into a shipment's required-document set; blobs/classifier back Classify.
func NewService(pool *pgxpool.Pool, q db.Querier, matrix *compliance.Matrix, log *zap.Logger, blobs blobstore.BlobStore, bucket string, dc classifier.DocumentClassifier) *Service {
	return &Service{pool: pool, querier: q, matrix: matrix, log: log, blobs: blobs, bucket: bucket, classifier: dc}
}

// UploadInput describes a newly-persisted document file.
type UploadInput struct {
	ShipmentID      string
	DocumentType    string
	FileName        string
	FilePath        string
	FileSize        int64
	MimeType        string
	ReferenceNumber string
}

// Upload persists a document at status=uploaded (the draft state is
// ephemeral — spec's draft->uploaded guard is "file bytes persisted",
// which is the precondition for calling Upload at all). If an existing
// primary document shares (shipment_id, document_type, reference_number),
// this call creates a new version superseding it per spec's supersession
// rule (testable property / scenario S6).
func (s *Service) Upload(ctx context.Context, in UploadInput) (db.Document, error) {
	tc, err := tenant.MustFromContext(ctx)
	if err != nil {
		return db.Document{}, err
	}
	shipmentID, err := parseUUID(in.ShipmentID)
	if err != nil {
		return db.Document{}, err
	}
	orgID, err := parseUUID(tc.OrganizationID)
	if err != nil {
		return db.Document{}, err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return db.Document{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)
	if err := db.BindSession(ctx, tx, tc.OrganizationID, tc.IsSystemAdmin); err != nil {
		return db.Document{}, err
	}
	qtx := db.New(tx)

	if in.DocumentType == "eudr_due_diligence_statement" {
		products, err := qtx.ListProductsByShipment(ctx, shipmentID)
		if err != nil {
			return db.Document{}, fmt.Errorf("list shipment products: %w", err)
		}
		for _, p := range products {
			if compliance.IsHornHoof(p.HSCode) {
				return db.Document{}, fmt.Errorf("%w: horn/hoof products (HS %s) never carry EUDR due diligence statements", apperr.ErrInvalidInput, p.HSCode)
			}
		}
	}

	version := int32(1)
	var supersedes pgtype.UUID
	existing, err := qtx.GetPrimaryDocument(ctx, db.GetPrimaryDocumentParams{ShipmentID: shipmentID, DocumentType: in.DocumentType})
	if err == nil {
		sameReference := existing.ReferenceNumber.Valid && existing.ReferenceNumber.String == in.ReferenceNumber
		if sameReference {
			version = existing.Version + 1
			supersedes = existing.ID
			if err := qtx.ClearPrimaryDocument(ctx, db.ClearPrimaryDocumentParams{ShipmentID: shipmentID, DocumentType: in.DocumentType}); err != nil {
				return db.Document{}, fmt.Errorf("clear primary document: %w", err)
			}
		}
	}

	doc, err := qtx.CreateDocument(ctx, db.CreateDocumentParams{
		ID: newUUID(), ShipmentID: shipmentID, OrganizationID: orgID, DocumentType: in.DocumentType,
		Status: string(StatusUploaded), FileName: in.FileName, FilePath: in.FilePath, FileSize: in.FileSize,
		MimeType: in.MimeType, Version: version, IsPrimary: true, SupersedesID: supersedes,
	})
	if err != nil {
		return db.Document{}, fmt.Errorf("create document: %w", err)
	}

	if err := s.auditAndOutbox(ctx, qtx, orgID, tc.UserID, doc.ID, "document.uploaded", map[string]any{
		"previous_status": "", "new_status": string(StatusUploaded), "document_type": in.DocumentType, "version": version,
	}); err != nil {
		return db.Document{}, err
	}

	return doc, tx.Commit(ctx)
}

// Classify runs the document's file bytes through the configured
// classifier and stores the result as canonical_data, along with whatever
// reference_number/issue_date/expiry_date/issuing_authority the extraction
// recognized in RawFields. It does not change the document's status — that
// is Validate's job, gated on RequiredFieldsOK reading back what Classify
// just wrote.
func (s *Service) Classify(ctx context.Context, documentID string) (db.Document, error) {
	tc, err := tenant.MustFromContext(ctx)
	if err != nil {
		return db.Document{}, err
	}
	docID, err := parseUUID(documentID)
	if err != nil {
		return db.Document{}, err
	}
	doc, err := s.querier.GetDocument(ctx, docID)
	if err != nil {
		return db.Document{}, fmt.Errorf("%w: document", apperr.ErrNotFound)
	}

	rc, err := s.blobs.Get(ctx, s.bucket, doc.FilePath)
	if err != nil {
		return db.Document{}, fmt.Errorf("fetch document file: %w", err)
	}
	raw, err := io.ReadAll(rc)
	rc.Close()
	if err != nil {
		return db.Document{}, fmt.Errorf("read document file: %w", err)
	}

	classified, err := s.classifier.Classify(ctx, raw, doc.MimeType)
	if err != nil {
		return db.Document{}, fmt.Errorf("classify document: %w", err)
	}
	canonicalJSON, err := Marshal(classified)
	if err != nil {
		return db.Document{}, fmt.Errorf("marshal canonical data: %w", err)
	}

	var refNumber, issuingAuthority pgtype.Text
	if v := classified.RawFields["reference_number"]; v != "" {
		_ = refNumber.Scan(v)
	}
	if v := classified.RawFields["issuing_authority"]; v != "" {
		_ = issuingAuthority.Scan(v)
	}
	var issueDate, expiryDate pgtype.Timestamptz
	if t, ok := parseRawDate(classified.RawFields["issue_date"]); ok {
		_ = issueDate.Scan(t)
	}
	if t, ok := parseRawDate(classified.RawFields["expiry_date"]); ok {
		_ = expiryDate.Scan(t)
	}
	var parsedAt pgtype.Timestamptz
	_ = parsedAt.Scan(time.Now().UTC())

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return db.Document{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)
	if err := db.BindSession(ctx, tx, tc.OrganizationID, tc.IsSystemAdmin); err != nil {
		return db.Document{}, err
	}
	qtx := db.New(tx)

	if err := qtx.SetDocumentCanonicalData(ctx, db.SetDocumentCanonicalDataParams{
		ID: docID, CanonicalData: canonicalJSON, ReferenceNumber: refNumber, IssueDate: issueDate,
		ExpiryDate: expiryDate, IssuingAuthority: issuingAuthority, ClassificationConfidence: classified.Confidence,
		ParsedAt: parsedAt,
	}); err != nil {
		return db.Document{}, fmt.Errorf("set canonical data: %w", err)
	}

	orgID, _ := parseUUID(tc.OrganizationID)
	if err := s.auditAndOutbox(ctx, qtx, orgID, tc.UserID, docID, "document.classified", map[string]any{
		"document_type": classified.DocumentType, "confidence": classified.Confidence,
	}); err != nil {
		return db.Document{}, err
	}

	doc.CanonicalData = canonicalJSON
	doc.ReferenceNumber = refNumber
	return doc, tx.Commit(ctx)
}

func parseRawDate(v string) (time.Time, bool) {
	if v == "" {
		return time.Time{}, false
	}
	t, err := time.Parse("2006-01-02", v)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// RequestValidation moves a document uploaded -> pending_validation.
func (s *Service) RequestValidation(ctx context.Context, documentID, actorID string) (db.Document, error) {
	return s.transition(ctx, documentID, actorID, StatusPendingValidation, "", func(db.Document) error { return nil })
}

// Validate moves uploaded/pending_validation -> validated, subject to a
// required-field check for the document's type.
func (s *Service) Validate(ctx context.Context, documentID, actorID string) (db.Document, error) {
	return s.transition(ctx, documentID, actorID, StatusValidated, "", func(doc db.Document) error {
		if !RequiredFieldsOK(doc) {
			return fmt.Errorf("%w: required fields missing for document type %s", apperr.ErrInvalidInput, doc.DocumentType)
		}
		return nil
	})
}

// Reject moves uploaded/validated -> rejected; a reason is mandatory.
func (s *Service) Reject(ctx context.Context, documentID, actorID, reason string) (db.Document, error) {
	if reason == "" {
		return db.Document{}, fmt.Errorf("%w: rejection reason is required", apperr.ErrInvalidInput)
	}
	return s.transition(ctx, documentID, actorID, StatusRejected, reason, func(db.Document) error { return nil })
}

// ApplyComplianceOutcome moves validated -> compliance_ok/compliance_failed
// based on whether the Rules Engine found any un-overridden ERROR failure,
// and persists the DocumentIssue / ComplianceResult rows it produced.
func (s *Service) ApplyComplianceOutcome(ctx context.Context, documentID, actorID string, outcome rules.EvaluationOutcome) (db.Document, error) {
	target := StatusComplianceOK
	if outcome.HasErrorFailure() {
		target = StatusComplianceFailed
	}

	tc, err := tenant.MustFromContext(ctx)
	if err != nil {
		return db.Document{}, err
	}
	docID, err := parseUUID(documentID)
	if err != nil {
		return db.Document{}, err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return db.Document{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)
	if err := db.BindSession(ctx, tx, tc.OrganizationID, tc.IsSystemAdmin); err != nil {
		return db.Document{}, err
	}
	qtx := db.New(tx)

	doc, err := qtx.GetDocument(ctx, docID)
	if err != nil {
		return db.Document{}, fmt.Errorf("%w: document", apperr.ErrNotFound)
	}
	if !CanTransition(Status(doc.Status), target) {
		return db.Document{}, fmt.Errorf("%w: %s -> %s", apperr.ErrInvalidTransition, doc.Status, target)
	}

	prevOverrides, err := qtx.ListDocumentIssues(ctx, docID)
	if err != nil {
		return db.Document{}, fmt.Errorf("list prior issues: %w", err)
	}
	overrideByKey := make(map[string]db.DocumentIssue, len(prevOverrides))
	for _, issue := range prevOverrides {
		if issue.IsOverridden {
			overrideByKey[issue.RuleID+"|"+issue.Field] = issue
		}
	}
	if err := qtx.DeleteDocumentIssuesForDocument(ctx, docID); err != nil {
		return db.Document{}, fmt.Errorf("clear prior issues: %w", err)
	}

	for _, r := range outcome.Results {
		if r.Passed {
			continue
		}
		issue, err := qtx.InsertDocumentIssue(ctx, db.InsertDocumentIssueParams{
			ID: newUUID(), DocumentID: docID, ShipmentID: doc.ShipmentID, RuleID: r.RuleID, RuleName: r.RuleName,
			Severity: string(r.Severity), Message: r.Message, Field: r.Field, ExpectedValue: r.Expected, ActualValue: r.Actual,
		})
		if err != nil {
			return db.Document{}, fmt.Errorf("insert document issue: %w", err)
		}
		if prior, ok := overrideByKey[r.RuleID+"|"+r.Field]; ok {
			if err := qtx.OverrideDocumentIssue(ctx, db.OverrideDocumentIssueParams{
				ID: issue.ID, OverriddenBy: prior.OverriddenBy, OverrideReason: prior.OverrideReason,
			}); err != nil {
				return db.Document{}, fmt.Errorf("reapply override: %w", err)
			}
		}
	}
	for _, r := range outcome.Results {
		if _, err := qtx.InsertComplianceResult(ctx, db.InsertComplianceResultParams{
			ID: newUUID(), DocumentID: docID, RuleID: r.RuleID, Passed: r.Passed, Severity: string(r.Severity), Message: r.Message,
		}); err != nil {
			return db.Document{}, fmt.Errorf("insert compliance result: %w", err)
		}
	}

	if err := qtx.UpdateDocumentStatus(ctx, db.UpdateDocumentStatusParams{ID: docID, Status: string(target)}); err != nil {
		return db.Document{}, fmt.Errorf("update document status: %w", err)
	}

	orgID, _ := parseUUID(tc.OrganizationID)
	if err := s.auditAndOutbox(ctx, qtx, orgID, actorID, docID, "document.compliance_evaluated", map[string]any{
		"previous_status": doc.Status, "new_status": string(target), "decision": string(outcome.Decision),
		"active_failures": outcome.ActiveFailures,
	}); err != nil {
		return db.Document{}, err
	}

	doc.Status = string(target)
	return doc, tx.Commit(ctx)
}

// OverrideIssue marks a DocumentIssue as overridden; it no longer
// contributes to decision aggregation on the next evaluation but remains
// visible and auditable.
func (s *Service) OverrideIssue(ctx context.Context, issueID, overriddenBy, reason string) error {
	if reason == "" {
		return fmt.Errorf("%w: override reason is required", apperr.ErrInvalidInput)
	}
	id, err := parseUUID(issueID)
	if err != nil {
		return err
	}
	overrider, err := parseUUID(overriddenBy)
	if err != nil {
		return err
	}
	return s.querier.OverrideDocumentIssue(ctx, db.OverrideDocumentIssueParams{ID: id, OverriddenBy: overrider, OverrideReason: reason})
}

// Archive moves linked -> archived. The caller (shipments service) is
// responsible for verifying the parent shipment is itself terminal first.
func (s *Service) Archive(ctx context.Context, documentID, actorID string) (db.Document, error) {
	return s.transition(ctx, documentID, actorID, StatusArchived, "", func(db.Document) error { return nil })
}

// ExpireDue sweeps every non-terminal document whose expiry_date has
// passed and transitions it to expired. Called by the worker binary's
// cron-driven Expiry Sweeper.
func (s *Service) ExpireDue(ctx context.Context, now pgtype.Timestamptz) (int, error) {
	candidates, err := s.querier.ListExpiredCandidateDocuments(ctx, now)
	if err != nil {
		return 0, fmt.Errorf("list expired candidates: %w", err)
	}
	expired := 0
	for _, doc := range candidates {
		if !CanTransition(Status(doc.Status), StatusExpired) {
			continue
		}
		if _, err := s.transitionRow(ctx, doc, tenant.SystemAdminContext().UserID, StatusExpired, "expiry_date elapsed"); err != nil {
			s.log.Error("expire document failed", zap.Error(err), zap.String("document_id", doc.ID.String()))
			continue
		}
		expired++
	}
	return expired, nil
}

// transition loads the document, runs guard, and persists the new status
// plus an audit/outbox pair in one transaction.
func (s *Service) transition(ctx context.Context, documentID, actorID string, to Status, reason string, guard func(db.Document) error) (db.Document, error) {
	docID, err := parseUUID(documentID)
	if err != nil {
		return db.Document{}, err
	}
	doc, err := s.querier.GetDocument(ctx, docID)
	if err != nil {
		return db.Document{}, fmt.Errorf("%w: document", apperr.ErrNotFound)
	}
	return s.transitionRow(ctx, doc, actorID, to, reason, guard)
}

func (s *Service) transitionRow(ctx context.Context, doc db.Document, actorID string, to Status, reason string, guards ...func(db.Document) error) (db.Document, error) {
	if !CanTransition(Status(doc.Status), to) {
		return db.Document{}, fmt.Errorf("%w: %s -> %s", apperr.ErrInvalidTransition, doc.Status, to)
	}
	for _, g := range guards {
		if err := g(doc); err != nil {
			return db.Document{}, err
		}
	}

	tc, err := tenant.MustFromContext(ctx)
	if err != nil {
		return db.Document{}, err
	}
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return db.Document{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)
	if err := db.BindSession(ctx, tx, tc.OrganizationID, tc.IsSystemAdmin); err != nil {
		return db.Document{}, err
	}
	qtx := db.New(tx)

	if err := qtx.UpdateDocumentStatus(ctx, db.UpdateDocumentStatusParams{ID: doc.ID, Status: string(to)}); err != nil {
		return db.Document{}, fmt.Errorf("update document status: %w", err)
	}

	if err := s.auditAndOutbox(ctx, qtx, doc.OrganizationID, actorID, doc.ID, "document.transitioned", map[string]any{
		"previous_status": doc.Status, "new_status": string(to), "reason": reason,
	}); err != nil {
		return db.Document{}, err
	}

	doc.Status = string(to)
	return doc, tx.Commit(ctx)
}

func (s *Service) auditAndOutbox(ctx context.Context, qtx *db.Queries, orgID pgtype.UUID, actorID string, documentID pgtype.UUID, eventType string, payload map[string]any) error {
	var userID pgtype.UUID
	if actorID != "" {
		if id, err := parseUUID(actorID); err == nil {
			userID = id
		}
	}
	details, _ := json.Marshal(payload)
	if err := qtx.InsertAuditLog(ctx, db.InsertAuditLogParams{
		ID: newUUID(), OrganizationID: orgID, UserID: userID, Action: eventType,
		ResourceType: "document", ResourceID: documentID.String(), Details: details,
	}); err != nil {
		return fmt.Errorf("insert audit log: %w", err)
	}
	if _, err := qtx.InsertOutboxEvent(ctx, db.InsertOutboxEventParams{
		ID: newUUID(), OrganizationID: orgID, AggregateType: "document", AggregateID: documentID.String(),
		EventType: eventType, Payload: details,
	}); err != nil {
		return fmt.Errorf("insert outbox event: %w", err)
	}
	return nil
}

// LinkShipmentDocuments transitions every compliance_ok/compliance_failed
// primary document of shipmentID's required set into linked, once all of
// them are present and compliance_ok-or-better (spec §4.2's guard on the
// compliance_ok/compliance_failed -> linked transition). It returns
// whether the full required set was satisfied.
func (s *Service) LinkShipmentDocuments(ctx context.Context, shipmentID, actorID, productType, hsCode string) (bool, error) {
	required, err := s.matrix.RequiredDocuments(productType, hsCode)
	if err != nil {
		return false, fmt.Errorf("resolve required documents: %w", err)
	}
	sid, err := parseUUID(shipmentID)
	if err != nil {
		return false, err
	}

	present := make(map[string]db.Document)
	docs, err := s.querier.ListDocumentsByShipment(ctx, sid)
	if err != nil {
		return false, fmt.Errorf("list documents: %w", err)
	}
	for _, d := range docs {
		if !d.IsPrimary {
			continue
		}
		if Status(d.Status) == StatusComplianceOK || Status(d.Status) == StatusLinked || Status(d.Status) == StatusComplianceFailed {
			present[d.DocumentType] = d
		}
	}

	complete := true
	for _, reqType := range required {
		doc, ok := present[reqType]
		if !ok || Status(doc.Status) == StatusComplianceFailed {
			complete = false
			continue
		}
	}
	if !complete {
		return false, nil
	}

	for _, reqType := range required {
		doc := present[reqType]
		if Status(doc.Status) == StatusLinked {
			continue
		}
		if _, err := s.transitionRow(ctx, doc, actorID, StatusLinked, ""); err != nil {
			return false, fmt.Errorf("link document %s: %w", doc.ID.String(), err)
		}
	}
	return true, nil
}

// RequiredFieldsOK is the required-field check spec §4.2 gates validation
// on. A Bill of Lading's fields are authoritative only once the parser has
// run (canonical_data populated); every other document type requires at
// minimum a captured reference_number.
func RequiredFieldsOK(doc db.Document) bool {
	if doc.DocumentType == "bill_of_lading" {
		return len(doc.CanonicalData) > 0
	}
	return doc.ReferenceNumber.Valid && doc.ReferenceNumber.String != ""
}
