// Package notifications implements the Notification Bus (C12): an in-app
// feed plus an outbox-style email dispatcher, gated per-user by event type
// and channel, delivered at-least-once and idempotent on notification_id.
package notifications

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"go.uber.org/zap"

	"github.com/arc-self/tracehub/internal/adapters/mailer"
	"github.com/arc-self/tracehub/internal/platform/apperr"
	"github.com/arc-self/tracehub/internal/repository/db"
)

const (
	ChannelInApp   = "in_app"
	ChannelEmail   = "email"
	ChannelWebhook = "webhook"
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
	var out pgtype.UUID
	_ = out.Scan(parsed.String())
	return out, nil
}

type Service struct {
	querier db.Querier
	mailer  mailer.Mailer
	log     *zap.Logger
}

func NewService(q db.Querier, m mailer.Mailer, log *zap.Logger) *Service {
	return &Service{querier: q, mailer: m, log: log}
}

type PublishInput struct {
	OrganizationID string
	UserID         string
	EventType      string
	Title, Body    string
	Payload        []byte
}

// Publish fans an event out to every channel the user's preferences allow,
// writing one durable notification row per enabled channel. in_app rows
// are immediately visible; email rows start 'pending' for DispatchEmails
// to pick up.
func (s *Service) Publish(ctx context.Context, in PublishInput) ([]db.Notification, error) {
	orgID, err := parseUUID(in.OrganizationID)
	if err != nil {
		return nil, err
	}
	userID, err := parseUUID(in.UserID)
	if err != nil {
		return nil, err
	}

	var out []db.Notification
	for _, channel := range []string{ChannelInApp, ChannelEmail} {
		allowed, err := s.querier.GetNotificationPreference(ctx, db.GetNotificationPreferenceParams{
			UserID: userID, EventType: in.EventType, Channel: channel,
		})
		if err != nil {
			return nil, fmt.Errorf("get notification preference: %w", err)
		}
		if !allowed {
			continue
		}
		status := "pending"
		if channel == ChannelInApp {
			status = "delivered"
		}
		n, err := s.querier.InsertNotification(ctx, db.InsertNotificationParams{
			ID: newUUID(), OrganizationID: orgID, UserID: userID, EventType: in.EventType, Channel: channel,
			Title: in.Title, Body: in.Body, Payload: in.Payload, Status: status,
		})
		if err != nil {
			return nil, fmt.Errorf("insert notification: %w", err)
		}
		out = append(out, n)
	}
	return out, nil
}

func (s *Service) ListForUser(ctx context.Context, userID string, limit int32) ([]db.Notification, error) {
	uid, err := parseUUID(userID)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 50
	}
	return s.querier.ListNotificationsForUser(ctx, db.ListNotificationsForUserParams{UserID: uid, Limit: limit})
}

func (s *Service) MarkRead(ctx context.Context, notificationID, userID string) error {
	id, err := parseUUID(notificationID)
	if err != nil {
		return err
	}
	uid, err := parseUUID(userID)
	if err != nil {
		return err
	}
	return s.querier.MarkNotificationRead(ctx, db.MarkNotificationReadParams{ID: id, UserID: uid})
}

func (s *Service) SetPreference(ctx context.Context, userID, eventType, channel string, enabled bool) error {
	uid, err := parseUUID(userID)
	if err != nil {
		return err
	}
	return s.querier.UpsertNotificationPreference(ctx, db.UpsertNotificationPreferenceParams{
		UserID: uid, EventType: eventType, Channel: channel, Enabled: enabled,
	})
}

// DispatchEmails is the email dispatcher subscriber: it consumes
// notification rows still pending on the email channel and is safe to
// call repeatedly (idempotent on notification_id) since delivery is
// at-least-once.
func (s *Service) DispatchEmails(ctx context.Context, userID, to string) error {
	uid, err := parseUUID(userID)
	if err != nil {
		return err
	}
	rows, err := s.querier.ListNotificationsForUser(ctx, db.ListNotificationsForUserParams{UserID: uid, Limit: 100})
	if err != nil {
		return fmt.Errorf("list notifications: %w", err)
	}
	for _, n := range rows {
		if n.Channel != ChannelEmail || n.Status != "pending" {
			continue
		}
		if _, err := s.mailer.Send(ctx, mailer.Message{
			To:       to,
			Template: n.EventType,
			Vars:     map[string]string{"title": n.Title, "body": n.Body},
		}); err != nil {
			s.log.Warn("email dispatch failed, will retry next sweep", zap.String("notification_id", n.ID.String()), zap.Error(err))
			continue
		}
		if err := s.querier.MarkNotificationDelivered(ctx, n.ID); err != nil {
			return fmt.Errorf("mark notification delivered: %w", err)
		}
	}
	return nil
}

// RunEmailSweep is the worker-side counterpart to DispatchEmails: rather
// than operating on one known user, it pulls every pending email
// notification system-wide (joined against users for an address) and
// dispatches each in turn. Returns the number successfully delivered.
func (s *Service) RunEmailSweep(ctx context.Context, limit int32) (int, error) {
	recipients, err := s.querier.ListPendingEmailRecipients(ctx, limit)
	if err != nil {
		return 0, fmt.Errorf("list pending email recipients: %w", err)
	}
	delivered := 0
	for _, r := range recipients {
		if _, err := s.mailer.Send(ctx, mailer.Message{
			To:       r.Email,
			Template: r.EventType,
			Vars:     map[string]string{"title": r.Title, "body": r.Body},
		}); err != nil {
			s.log.Warn("email dispatch failed, will retry next sweep",
				zap.String("notification_id", r.NotificationID.String()), zap.Error(err))
			continue
		}
		if err := s.querier.MarkNotificationDelivered(ctx, r.NotificationID); err != nil {
			return delivered, fmt.Errorf("mark notification delivered: %w", err)
		}
		delivered++
	}
	return delivered, nil
}
