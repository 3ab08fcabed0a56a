package db

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

func (q *Queries) CreateDocument(ctx context.Context, arg CreateDocumentParams) (Document, error) {
	row := q.db.QueryRow(ctx, `
		INSERT INTO documents (id, shipment_id, organization_id, document_type, status, file_name, file_path,
			file_size, mime_type, version, is_primary, supersedes_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id, shipment_id, organization_id, document_type, status, file_name, file_path, file_size,
			mime_type, reference_number, issue_date, expiry_date, issuing_authority, canonical_data, version,
			is_primary, supersedes_id, classification_confidence, parsed_at, last_validated_at, created_at, updated_at`,
		arg.ID, arg.ShipmentID, arg.OrganizationID, arg.DocumentType, arg.Status, arg.FileName, arg.FilePath,
		arg.FileSize, arg.MimeType, arg.Version, arg.IsPrimary, arg.SupersedesID)
	return scanDocument(row)
}

func (q *Queries) GetDocument(ctx context.Context, id pgtype.UUID) (Document, error) {
	row := q.db.QueryRow(ctx, `
		SELECT id, shipment_id, organization_id, document_type, status, file_name, file_path, file_size,
			mime_type, reference_number, issue_date, expiry_date, issuing_authority, canonical_data, version,
			is_primary, supersedes_id, classification_confidence, parsed_at, last_validated_at, created_at, updated_at
		FROM documents WHERE id = $1`, id)
	return scanDocument(row)
}

func (q *Queries) GetPrimaryDocument(ctx context.Context, arg GetPrimaryDocumentParams) (Document, error) {
	row := q.db.QueryRow(ctx, `
		SELECT id, shipment_id, organization_id, document_type, status, file_name, file_path, file_size,
			mime_type, reference_number, issue_date, expiry_date, issuing_authority, canonical_data, version,
			is_primary, supersedes_id, classification_confidence, parsed_at, last_validated_at, created_at, updated_at
		FROM documents WHERE shipment_id = $1 AND document_type = $2 AND is_primary = true`,
		arg.ShipmentID, arg.DocumentType)
	return scanDocument(row)
}

func (q *Queries) ListDocumentsByShipment(ctx context.Context, shipmentID pgtype.UUID) ([]Document, error) {
	rows, err := q.db.Query(ctx, `
		SELECT id, shipment_id, organization_id, document_type, status, file_name, file_path, file_size,
			mime_type, reference_number, issue_date, expiry_date, issuing_authority, canonical_data, version,
			is_primary, supersedes_id, classification_confidence, parsed_at, last_validated_at, created_at, updated_at
		FROM documents WHERE shipment_id = $1 ORDER BY document_type, version DESC`, shipmentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Document
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (q *Queries) UpdateDocumentStatus(ctx context.Context, arg UpdateDocumentStatusParams) error {
	_, err := q.db.Exec(ctx, `UPDATE documents SET status = $2, updated_at = now() WHERE id = $1`, arg.ID, arg.Status)
	return err
}

func (q *Queries) SetDocumentCanonicalData(ctx context.Context, arg SetDocumentCanonicalDataParams) error {
	_, err := q.db.Exec(ctx, `
		UPDATE documents SET
			canonical_data = $2, reference_number = $3, issue_date = $4, expiry_date = $5,
			issuing_authority = $6, classification_confidence = $7, parsed_at = $8, updated_at = now()
		WHERE id = $1`,
		arg.ID, arg.CanonicalData, arg.ReferenceNumber, arg.IssueDate, arg.ExpiryDate,
		arg.IssuingAuthority, arg.ClassificationConfidence, arg.ParsedAt)
	return err
}

func (q *Queries) ClearPrimaryDocument(ctx context.Context, arg ClearPrimaryDocumentParams) error {
	_, err := q.db.Exec(ctx, `
		UPDATE documents SET is_primary = false
		WHERE shipment_id = $1 AND document_type = $2 AND is_primary = true`,
		arg.ShipmentID, arg.DocumentType)
	return err
}

func (q *Queries) ListExpiredCandidateDocuments(ctx context.Context, now pgtype.Timestamptz) ([]Document, error) {
	rows, err := q.db.Query(ctx, `
		SELECT id, shipment_id, organization_id, document_type, status, file_name, file_path, file_size,
			mime_type, reference_number, issue_date, expiry_date, issuing_authority, canonical_data, version,
			is_primary, supersedes_id, classification_confidence, parsed_at, last_validated_at, created_at, updated_at
		FROM documents
		WHERE status NOT IN ('archived', 'expired', 'rejected')
		AND expiry_date IS NOT NULL AND expiry_date < $1`, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Document
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func scanDocument(row pgx.Row) (Document, error) {
	var d Document
	err := row.Scan(&d.ID, &d.ShipmentID, &d.OrganizationID, &d.DocumentType, &d.Status, &d.FileName, &d.FilePath,
		&d.FileSize, &d.MimeType, &d.ReferenceNumber, &d.IssueDate, &d.ExpiryDate, &d.IssuingAuthority,
		&d.CanonicalData, &d.Version, &d.IsPrimary, &d.SupersedesID, &d.ClassificationConfidence,
		&d.ParsedAt, &d.LastValidatedAt, &d.CreatedAt, &d.UpdatedAt)
	return d, err
}

func (q *Queries) InsertDocumentIssue(ctx context.Context, arg InsertDocumentIssueParams) (DocumentIssue, error) {
	row := q.db.QueryRow(ctx, `
		INSERT INTO document_issues (id, document_id, shipment_id, rule_id, rule_name, severity, message,
			field, expected_value, actual_value)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, document_id, shipment_id, rule_id, rule_name, severity, message, field, expected_value,
			actual_value, is_overridden, overridden_by, override_reason, created_at`,
		arg.ID, arg.DocumentID, arg.ShipmentID, arg.RuleID, arg.RuleName, arg.Severity, arg.Message,
		arg.Field, arg.ExpectedValue, arg.ActualValue)
	var di DocumentIssue
	err := row.Scan(&di.ID, &di.DocumentID, &di.ShipmentID, &di.RuleID, &di.RuleName, &di.Severity, &di.Message,
		&di.Field, &di.ExpectedValue, &di.ActualValue, &di.IsOverridden, &di.OverriddenBy, &di.OverrideReason, &di.CreatedAt)
	return di, err
}

func (q *Queries) ListDocumentIssues(ctx context.Context, documentID pgtype.UUID) ([]DocumentIssue, error) {
	rows, err := q.db.Query(ctx, `
		SELECT id, document_id, shipment_id, rule_id, rule_name, severity, message, field, expected_value,
			actual_value, is_overridden, overridden_by, override_reason, created_at
		FROM document_issues WHERE document_id = $1 ORDER BY rule_id`, documentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []DocumentIssue
	for rows.Next() {
		var di DocumentIssue
		if err := rows.Scan(&di.ID, &di.DocumentID, &di.ShipmentID, &di.RuleID, &di.RuleName, &di.Severity, &di.Message,
			&di.Field, &di.ExpectedValue, &di.ActualValue, &di.IsOverridden, &di.OverriddenBy, &di.OverrideReason, &di.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, di)
	}
	return out, rows.Err()
}

func (q *Queries) OverrideDocumentIssue(ctx context.Context, arg OverrideDocumentIssueParams) error {
	_, err := q.db.Exec(ctx, `
		UPDATE document_issues SET is_overridden = true, overridden_by = $2, override_reason = $3
		WHERE id = $1`, arg.ID, arg.OverriddenBy, arg.OverrideReason)
	return err
}

func (q *Queries) DeleteDocumentIssuesForDocument(ctx context.Context, documentID pgtype.UUID) error {
	_, err := q.db.Exec(ctx, `DELETE FROM document_issues WHERE document_id = $1`, documentID)
	return err
}

func (q *Queries) InsertComplianceResult(ctx context.Context, arg InsertComplianceResultParams) (ComplianceResult, error) {
	row := q.db.QueryRow(ctx, `
		INSERT INTO compliance_results (id, document_id, rule_id, passed, severity, message)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, document_id, rule_id, passed, severity, message, checked_at`,
		arg.ID, arg.DocumentID, arg.RuleID, arg.Passed, arg.Severity, arg.Message)
	var cr ComplianceResult
	err := row.Scan(&cr.ID, &cr.DocumentID, &cr.RuleID, &cr.Passed, &cr.Severity, &cr.Message, &cr.CheckedAt)
	return cr, err
}

func (q *Queries) ListComplianceResults(ctx context.Context, documentID pgtype.UUID) ([]ComplianceResult, error) {
	rows, err := q.db.Query(ctx, `
		SELECT id, document_id, rule_id, passed, severity, message, checked_at
		FROM compliance_results WHERE document_id = $1 ORDER BY rule_id`, documentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []ComplianceResult
	for rows.Next() {
		var cr ComplianceResult
		if err := rows.Scan(&cr.ID, &cr.DocumentID, &cr.RuleID, &cr.Passed, &cr.Severity, &cr.Message, &cr.CheckedAt); err != nil {
			return nil, err
		}
		out = append(out, cr)
	}
	return out, rows.Err()
}

func (q *Queries) GetReferenceRegistryEntry(ctx context.Context, arg GetReferenceRegistryEntryParams) (ReferenceRegistryEntry, error) {
	row := q.db.QueryRow(ctx, `
		SELECT shipment_id, reference_number, document_type, first_seen_at
		FROM reference_registry WHERE shipment_id = $1 AND reference_number = $2`,
		arg.ShipmentID, arg.ReferenceNumber)
	var r ReferenceRegistryEntry
	err := row.Scan(&r.ShipmentID, &r.ReferenceNumber, &r.DocumentType, &r.FirstSeenAt)
	return r, err
}

func (q *Queries) UpsertReferenceRegistryEntry(ctx context.Context, arg UpsertReferenceRegistryEntryParams) error {
	_, err := q.db.Exec(ctx, `
		INSERT INTO reference_registry (shipment_id, reference_number, document_type, first_seen_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (shipment_id, reference_number) DO NOTHING`,
		arg.ShipmentID, arg.ReferenceNumber, arg.DocumentType)
	return err
}
