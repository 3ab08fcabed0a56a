package db

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

func (q *Queries) CreateInvitation(ctx context.Context, arg CreateInvitationParams) (Invitation, error) {
	row := q.db.QueryRow(ctx, `
		INSERT INTO invitations (id, organization_id, email, org_role, token_hash, status, expires_at, created_by)
		VALUES ($1, $2, $3, $4, $5, 'pending', $6, $7)
		RETURNING id, organization_id, email, org_role, token_hash, status, expires_at, created_by, created_at`,
		arg.ID, arg.OrganizationID, arg.Email, arg.OrgRole, arg.TokenHash, arg.ExpiresAt, arg.CreatedBy)
	var inv Invitation
	err := row.Scan(&inv.ID, &inv.OrganizationID, &inv.Email, &inv.OrgRole, &inv.TokenHash, &inv.Status, &inv.ExpiresAt, &inv.CreatedBy, &inv.CreatedAt)
	return inv, err
}

func (q *Queries) GetInvitationByTokenHash(ctx context.Context, tokenHash string) (Invitation, error) {
	row := q.db.QueryRow(ctx, `
		SELECT id, organization_id, email, org_role, token_hash, status, expires_at, created_by, created_at
		FROM invitations WHERE token_hash = $1`, tokenHash)
	var inv Invitation
	err := row.Scan(&inv.ID, &inv.OrganizationID, &inv.Email, &inv.OrgRole, &inv.TokenHash, &inv.Status, &inv.ExpiresAt, &inv.CreatedBy, &inv.CreatedAt)
	return inv, err
}

func (q *Queries) MarkInvitationAccepted(ctx context.Context, id pgtype.UUID) error {
	_, err := q.db.Exec(ctx, `UPDATE invitations SET status = 'accepted' WHERE id = $1`, id)
	return err
}

func (q *Queries) MarkInvitationRevoked(ctx context.Context, id pgtype.UUID) error {
	_, err := q.db.Exec(ctx, `UPDATE invitations SET status = 'revoked' WHERE id = $1`, id)
	return err
}

func (q *Queries) UpdateInvitationToken(ctx context.Context, arg UpdateInvitationTokenParams) error {
	_, err := q.db.Exec(ctx, `
		UPDATE invitations SET token_hash = $2, expires_at = $3, status = 'pending' WHERE id = $1`,
		arg.ID, arg.TokenHash, arg.ExpiresAt)
	return err
}

func (q *Queries) ListPendingInvitationsByOrg(ctx context.Context, organizationID pgtype.UUID) ([]Invitation, error) {
	rows, err := q.db.Query(ctx, `
		SELECT id, organization_id, email, org_role, token_hash, status, expires_at, created_by, created_at
		FROM invitations WHERE organization_id = $1 AND status = 'pending' ORDER BY created_at DESC`, organizationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Invitation
	for rows.Next() {
		var inv Invitation
		if err := rows.Scan(&inv.ID, &inv.OrganizationID, &inv.Email, &inv.OrgRole, &inv.TokenHash, &inv.Status, &inv.ExpiresAt, &inv.CreatedBy, &inv.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, inv)
	}
	return out, rows.Err()
}
