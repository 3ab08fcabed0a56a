package db

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

func (q *Queries) InsertAuditLog(ctx context.Context, arg InsertAuditLogParams) error {
	_, err := q.db.Exec(ctx, `
		INSERT INTO audit_logs (id, timestamp, organization_id, user_id, action, resource_type, resource_id,
			details, request_id)
		VALUES ($1, now(), $2, $3, $4, $5, $6, $7, $8)`,
		arg.ID, arg.OrganizationID, arg.UserID, arg.Action, arg.ResourceType, arg.ResourceID,
		arg.Details, arg.RequestID)
	return err
}

// InsertOutboxEvent must be called within the same transaction as the
// mutation it describes — the outbox row and the business change either
// both commit or both roll back, never a best-effort publish afterward.
func (q *Queries) InsertOutboxEvent(ctx context.Context, arg InsertOutboxEventParams) (OutboxEvent, error) {
	row := q.db.QueryRow(ctx, `
		INSERT INTO outbox_events (id, organization_id, aggregate_type, aggregate_id, event_type, payload)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, organization_id, aggregate_type, aggregate_id, event_type, payload, created_at, published_at`,
		arg.ID, arg.OrganizationID, arg.AggregateType, arg.AggregateID, arg.EventType, arg.Payload)
	var ev OutboxEvent
	err := row.Scan(&ev.ID, &ev.OrganizationID, &ev.AggregateType, &ev.AggregateID, &ev.EventType, &ev.Payload,
		&ev.CreatedAt, &ev.PublishedAt)
	return ev, err
}

func (q *Queries) ListUnpublishedOutboxEvents(ctx context.Context, limit int32) ([]OutboxEvent, error) {
	rows, err := q.db.Query(ctx, `
		SELECT id, organization_id, aggregate_type, aggregate_id, event_type, payload, created_at, published_at
		FROM outbox_events WHERE published_at IS NULL ORDER BY created_at ASC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []OutboxEvent
	for rows.Next() {
		var ev OutboxEvent
		if err := rows.Scan(&ev.ID, &ev.OrganizationID, &ev.AggregateType, &ev.AggregateID, &ev.EventType, &ev.Payload,
			&ev.CreatedAt, &ev.PublishedAt); err != nil {
			return nil, err
		}
		out = append(out, ev)
	}
	return out, rows.Err()
}

func (q *Queries) MarkOutboxEventPublished(ctx context.Context, id pgtype.UUID) error {
	_, err := q.db.Exec(ctx, `UPDATE outbox_events SET published_at = now() WHERE id = $1`, id)
	return err
}
