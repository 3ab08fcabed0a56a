package api

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/arc-self/tracehub/internal/platform/apperr"
)

// mustUUID parses an echo path parameter into a pgtype.UUID for the
// handful of read-only handlers that call the Querier directly rather
// than going through a domain service's own parseUUID. A malformed id is
// not rejected: the parse error is dropped and the zero (invalid)
// pgtype.UUID is returned, so the lookup that follows matches no row.
func mustUUID(s string) pgtype.UUID {
	u, err := parseUUIDLocal(s)
	if err != nil {
		return pgtype.UUID{}
	}
	return u
}

func parseUUIDLocal(s string) (pgtype.UUID, error) {
	parsed, err := uuid.Parse(s)
	if err != nil {
		return pgtype.UUID{}, fmt.Errorf("%w: invalid id %q", apperr.ErrInvalidInput, s)
	}
	var out pgtype.UUID
	_ = out.Scan(parsed.String())
	return out, nil
}
