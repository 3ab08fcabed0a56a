// Package outbox drains the transactional outbox_events table onto NATS
// JetStream, giving every domain write an at-least-once path to downstream
// consumers without coupling the write path to a broker round-trip.
// Modeled on discovery-service's ScanPoller ticker loop, adapted from
// polling a third-party API to polling Postgres for unpublished rows.
package outbox

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/arc-self/tracehub/internal/platform/natsbus"
	"github.com/arc-self/tracehub/internal/repository/db"
)

// Publisher periodically drains outbox_events and republishes each row onto
// the DOMAIN_EVENTS stream, marking it published only once NATS has
// acknowledged the write.
type Publisher struct {
	querier  db.Querier
	nats     *natsbus.Client
	interval time.Duration
	batch    int32
	log      *zap.Logger
}

func NewPublisher(q db.Querier, nc *natsbus.Client, interval time.Duration, log *zap.Logger) *Publisher {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	return &Publisher{querier: q, nats: nc, interval: interval, batch: 100, log: log}
}

// Run blocks until ctx is cancelled, polling outbox_events on a fixed tick.
func (p *Publisher) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.log.Info("outbox publisher started", zap.Duration("interval", p.interval))
	for {
		select {
		case <-ctx.Done():
			p.log.Info("outbox publisher stopping")
			return
		case <-ticker.C:
			p.drain(ctx)
		}
	}
}

// drain publishes every unpublished row it can find in one batch, logging
// and skipping (not deleting) any row that fails to publish so the next
// tick retries it.
func (p *Publisher) drain(ctx context.Context) {
	events, err := p.querier.ListUnpublishedOutboxEvents(ctx, p.batch)
	if err != nil {
		p.log.Error("list unpublished outbox events", zap.Error(err))
		return
	}
	for _, ev := range events {
		subject := fmt.Sprintf("DOMAIN_EVENTS.tracehub.%s.%s", ev.AggregateType, ev.EventType)
		if _, err := p.nats.JS.Publish(subject, ev.Payload); err != nil {
			p.log.Warn("outbox publish failed, will retry next tick",
				zap.String("outbox_id", ev.ID.String()), zap.String("subject", subject), zap.Error(err))
			continue
		}
		if err := p.querier.MarkOutboxEventPublished(ctx, ev.ID); err != nil {
			p.log.Error("mark outbox event published", zap.String("outbox_id", ev.ID.String()), zap.Error(err))
			continue
		}
	}
}
