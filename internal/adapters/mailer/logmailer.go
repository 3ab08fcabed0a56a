package mailer

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// LogMailer is the concrete Mailer used when no transactional email
// provider is configured (spec's Non-goals explicitly exclude shipping a
// real email delivery provider integration). It still returns a stable
// messageID, so callers exercise the same at-least-once delivery bookkeeping
// they would against a real provider.
type LogMailer struct {
	log *zap.Logger
}

func NewLogMailer(log *zap.Logger) *LogMailer {
	return &LogMailer{log: log}
}

func (m *LogMailer) Send(ctx context.Context, msg Message) (string, error) {
	id, _ := uuid.NewV7()
	m.log.Info("mail dispatched",
		zap.String("message_id", id.String()), zap.String("to", msg.To), zap.String("template", msg.Template))
	return id.String(), nil
}
