package db

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

func (q *Queries) InsertNotification(ctx context.Context, arg InsertNotificationParams) (Notification, error) {
	row := q.db.QueryRow(ctx, `
		INSERT INTO notifications (id, organization_id, user_id, event_type, channel, title, body, payload, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, organization_id, user_id, event_type, channel, title, body, payload, status, created_at, read_at`,
		arg.ID, arg.OrganizationID, arg.UserID, arg.EventType, arg.Channel, arg.Title, arg.Body, arg.Payload, arg.Status)
	var n Notification
	err := row.Scan(&n.ID, &n.OrganizationID, &n.UserID, &n.EventType, &n.Channel, &n.Title, &n.Body, &n.Payload,
		&n.Status, &n.CreatedAt, &n.ReadAt)
	return n, err
}

func (q *Queries) ListNotificationsForUser(ctx context.Context, arg ListNotificationsForUserParams) ([]Notification, error) {
	rows, err := q.db.Query(ctx, `
		SELECT id, organization_id, user_id, event_type, channel, title, body, payload, status, created_at, read_at
		FROM notifications WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2`, arg.UserID, arg.Limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Notification
	for rows.Next() {
		var n Notification
		if err := rows.Scan(&n.ID, &n.OrganizationID, &n.UserID, &n.EventType, &n.Channel, &n.Title, &n.Body, &n.Payload,
			&n.Status, &n.CreatedAt, &n.ReadAt); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func (q *Queries) MarkNotificationRead(ctx context.Context, arg MarkNotificationReadParams) error {
	_, err := q.db.Exec(ctx, `
		UPDATE notifications SET read_at = now() WHERE id = $1 AND user_id = $2`, arg.ID, arg.UserID)
	return err
}

func (q *Queries) MarkNotificationDelivered(ctx context.Context, id pgtype.UUID) error {
	_, err := q.db.Exec(ctx, `UPDATE notifications SET status = 'delivered' WHERE id = $1`, id)
	return err
}

// GetNotificationPreference reports whether channel is enabled for this
// user and event type. Absent rows default to enabled=true (opt-out model).
func (q *Queries) GetNotificationPreference(ctx context.Context, arg GetNotificationPreferenceParams) (bool, error) {
	row := q.db.QueryRow(ctx, `
		SELECT enabled FROM notification_preferences WHERE user_id = $1 AND event_type = $2 AND channel = $3`,
		arg.UserID, arg.EventType, arg.Channel)
	var enabled bool
	err := row.Scan(&enabled)
	if err == pgx.ErrNoRows {
		return true, nil
	}
	return enabled, err
}

func (q *Queries) UpsertNotificationPreference(ctx context.Context, arg UpsertNotificationPreferenceParams) error {
	_, err := q.db.Exec(ctx, `
		INSERT INTO notification_preferences (user_id, event_type, channel, enabled)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, event_type, channel) DO UPDATE SET enabled = EXCLUDED.enabled`,
		arg.UserID, arg.EventType, arg.Channel, arg.Enabled)
	return err
}

// PendingEmailRecipient pairs an undelivered email notification with the
// address to send it to, resolved across the user/notification join since
// notifications carry no address of their own.
type PendingEmailRecipient struct {
	NotificationID pgtype.UUID
	UserID         pgtype.UUID
	Email          string
	EventType      string
	Title          string
	Body           string
}

// ListPendingEmailRecipients backs the worker's email dispatch sweep: every
// notification still in channel=email/status=pending, joined against users
// for a deliverable address. Deactivated users are excluded.
func (q *Queries) ListPendingEmailRecipients(ctx context.Context, limit int32) ([]PendingEmailRecipient, error) {
	rows, err := q.db.Query(ctx, `
		SELECT n.id, n.user_id, u.email, n.event_type, n.title, n.body
		FROM notifications n
		JOIN users u ON u.id = n.user_id
		WHERE n.channel = 'email' AND n.status = 'pending' AND u.is_active
		ORDER BY n.created_at
		LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []PendingEmailRecipient
	for rows.Next() {
		var r PendingEmailRecipient
		if err := rows.Scan(&r.NotificationID, &r.UserID, &r.Email, &r.EventType, &r.Title, &r.Body); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
