package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// BindSession sets the two GUCs the row-level security policies in
// migrations/0002_rls.sql read: tracehub.current_org_id and
// tracehub.is_system_admin. It must be the first statement run on tx — every
// later statement on that transaction is then subject to RLS regardless of
// which pooled connection pgx handed out. set_config's third argument
// (is_local = true) scopes both settings to the transaction, so they reset
// automatically on commit or rollback and never leak onto a connection the
// pool hands to someone else.
func BindSession(ctx context.Context, tx pgx.Tx, organizationID string, isSystemAdmin bool) error {
	_, err := tx.Exec(ctx, `SELECT set_config('tracehub.current_org_id', $1, true), set_config('tracehub.is_system_admin', $2, true)`,
		organizationID, fmt.Sprintf("%t", isSystemAdmin))
	if err != nil {
		return fmt.Errorf("bind tenant session: %w", err)
	}
	return nil
}
