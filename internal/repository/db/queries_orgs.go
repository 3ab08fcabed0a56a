package db

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

func (q *Queries) CreateOrganization(ctx context.Context, arg CreateOrganizationParams) (Organization, error) {
	row := q.db.QueryRow(ctx, `
		INSERT INTO organizations (id, name, slug, type, status, contact, address, settings)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, name, slug, type, status, contact, address, settings, created_at, updated_at`,
		arg.ID, arg.Name, arg.Slug, arg.Type, arg.Status, arg.Contact, arg.Address, arg.Settings)
	var o Organization
	err := row.Scan(&o.ID, &o.Name, &o.Slug, &o.Type, &o.Status, &o.Contact, &o.Address, &o.Settings, &o.CreatedAt, &o.UpdatedAt)
	return o, err
}

func (q *Queries) GetOrganizationByID(ctx context.Context, id pgtype.UUID) (Organization, error) {
	row := q.db.QueryRow(ctx, `
		SELECT id, name, slug, type, status, contact, address, settings, created_at, updated_at
		FROM organizations WHERE id = $1`, id)
	var o Organization
	err := row.Scan(&o.ID, &o.Name, &o.Slug, &o.Type, &o.Status, &o.Contact, &o.Address, &o.Settings, &o.CreatedAt, &o.UpdatedAt)
	return o, err
}

func (q *Queries) GetOrganizationBySlug(ctx context.Context, slug string) (Organization, error) {
	row := q.db.QueryRow(ctx, `
		SELECT id, name, slug, type, status, contact, address, settings, created_at, updated_at
		FROM organizations WHERE slug = $1`, slug)
	var o Organization
	err := row.Scan(&o.ID, &o.Name, &o.Slug, &o.Type, &o.Status, &o.Contact, &o.Address, &o.Settings, &o.CreatedAt, &o.UpdatedAt)
	return o, err
}

func (q *Queries) CountPlatformOrganizations(ctx context.Context) (int64, error) {
	row := q.db.QueryRow(ctx, `SELECT count(*) FROM organizations WHERE type = 'platform'`)
	var n int64
	err := row.Scan(&n)
	return n, err
}

func (q *Queries) UpdateOrganizationStatus(ctx context.Context, arg UpdateOrganizationStatusParams) error {
	_, err := q.db.Exec(ctx, `UPDATE organizations SET status = $2, updated_at = now() WHERE id = $1`, arg.ID, arg.Status)
	return err
}

func (q *Queries) CreateUser(ctx context.Context, arg CreateUserParams) (User, error) {
	row := q.db.QueryRow(ctx, `
		INSERT INTO users (id, email, password_hash, full_name, role, organization_id, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, true)
		RETURNING id, email, password_hash, full_name, role, organization_id, is_active, deleted_at, created_at, updated_at`,
		arg.ID, arg.Email, arg.PasswordHash, arg.FullName, arg.Role, arg.OrganizationID)
	var u User
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.FullName, &u.Role, &u.OrganizationID, &u.IsActive, &u.DeletedAt, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

func (q *Queries) GetUserByEmail(ctx context.Context, email string) (User, error) {
	row := q.db.QueryRow(ctx, `
		SELECT id, email, password_hash, full_name, role, organization_id, is_active, deleted_at, created_at, updated_at
		FROM users WHERE email = $1 AND deleted_at IS NULL`, email)
	var u User
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.FullName, &u.Role, &u.OrganizationID, &u.IsActive, &u.DeletedAt, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

func (q *Queries) GetUserByID(ctx context.Context, id pgtype.UUID) (User, error) {
	row := q.db.QueryRow(ctx, `
		SELECT id, email, password_hash, full_name, role, organization_id, is_active, deleted_at, created_at, updated_at
		FROM users WHERE id = $1 AND deleted_at IS NULL`, id)
	var u User
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.FullName, &u.Role, &u.OrganizationID, &u.IsActive, &u.DeletedAt, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

func (q *Queries) CreateMembership(ctx context.Context, arg CreateMembershipParams) (OrganizationMembership, error) {
	row := q.db.QueryRow(ctx, `
		INSERT INTO organization_memberships (id, user_id, organization_id, org_role, is_primary, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, user_id, organization_id, org_role, is_primary, status, created_at`,
		arg.ID, arg.UserID, arg.OrganizationID, arg.OrgRole, arg.IsPrimary, arg.Status)
	var m OrganizationMembership
	err := row.Scan(&m.ID, &m.UserID, &m.OrganizationID, &m.OrgRole, &m.IsPrimary, &m.Status, &m.CreatedAt)
	return m, err
}

func (q *Queries) GetPrimaryMembership(ctx context.Context, userID pgtype.UUID) (OrganizationMembership, error) {
	row := q.db.QueryRow(ctx, `
		SELECT id, user_id, organization_id, org_role, is_primary, status, created_at
		FROM organization_memberships WHERE user_id = $1 AND is_primary = true`, userID)
	var m OrganizationMembership
	err := row.Scan(&m.ID, &m.UserID, &m.OrganizationID, &m.OrgRole, &m.IsPrimary, &m.Status, &m.CreatedAt)
	return m, err
}

func (q *Queries) UpdateMembershipStatus(ctx context.Context, arg UpdateMembershipStatusParams) error {
	_, err := q.db.Exec(ctx, `UPDATE organization_memberships SET status = $2 WHERE id = $1`, arg.ID, arg.Status)
	return err
}

func (q *Queries) CountActiveAdmins(ctx context.Context, organizationID pgtype.UUID) (int64, error) {
	row := q.db.QueryRow(ctx, `
		SELECT count(*) FROM organization_memberships
		WHERE organization_id = $1 AND org_role = 'admin' AND status = 'active'`, organizationID)
	var n int64
	err := row.Scan(&n)
	return n, err
}

func (q *Queries) ListMembershipsByOrg(ctx context.Context, organizationID pgtype.UUID) ([]OrganizationMembership, error) {
	rows, err := q.db.Query(ctx, `
		SELECT id, user_id, organization_id, org_role, is_primary, status, created_at
		FROM organization_memberships WHERE organization_id = $1 ORDER BY created_at`, organizationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []OrganizationMembership
	for rows.Next() {
		var m OrganizationMembership
		if err := rows.Scan(&m.ID, &m.UserID, &m.OrganizationID, &m.OrgRole, &m.IsPrimary, &m.Status, &m.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
