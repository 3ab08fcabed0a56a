// Package tracking implements the Tracking Ingestor (C9): a scheduled,
// concurrent worker pool that polls the carrier adapter for each shipment
// due for a check, dedups and persists new events, and advances the
// Shipment State Machine.
package tracking

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/robfig/cron/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/arc-self/tracehub/internal/adapters/carrier"
	"github.com/arc-self/tracehub/internal/domain/notifications"
	"github.com/arc-self/tracehub/internal/domain/shipments"
	"github.com/arc-self/tracehub/internal/platform/apperr"
	"github.com/arc-self/tracehub/internal/repository/db"
)

func newUUID() pgtype.UUID {
	id, _ := uuid.NewV7()
	var u pgtype.UUID
	_ = u.Scan(id.String())
	return u
}

// pollableStatuses is the fixed set of shipment statuses the ingestor
// sweeps, per spec §4.7.
var pollableStatuses = []string{
	string(shipments.StatusDocsComplete), string(shipments.StatusInTransit),
	string(shipments.StatusArrived), string(shipments.StatusCustoms),
}

// pollInterval computes the per-state polling cadence from spec §4.7.
func pollInterval(status shipments.Status) time.Duration {
	switch status {
	case shipments.StatusInTransit:
		return time.Hour
	case shipments.StatusArrived, shipments.StatusCustoms:
		return 30 * time.Minute
	case shipments.StatusDocsComplete:
		return 6 * time.Hour
	default:
		return time.Hour
	}
}

// newBackoff builds the retry schedule for transient carrier failures:
// base 5s, cap 30m, randomized jitter (spec §4.7 / §7).
func newBackoff() *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 5 * time.Second
	b.MaxInterval = 30 * time.Minute
	b.MaxElapsedTime = 0 // the ingestor, not the library, decides when to give up
	b.Multiplier = 2
	b.RandomizationFactor = 0.3
	b.Reset()
	return b
}

// Ingestor drives the sweep/poll/advance loop. Callers default
// PoolSize to 16 (WORKER_POOL_SIZE) if unset.
type Ingestor struct {
	querier       db.Querier
	shipmentsSvc  *shipments.Service
	notifications *notifications.Service
	carrier       carrier.Client
	log           *zap.Logger
	PoolSize      int
	CarrierDeadline time.Duration

	mu        sync.Mutex
	nextPoll  map[string]time.Time
	backoffs  map[string]*backoff.ExponentialBackOff
}

func NewIngestor(q db.Querier, shipmentsSvc *shipments.Service, notificationsSvc *notifications.Service, c carrier.Client, log *zap.Logger) *Ingestor {
	return &Ingestor{
		querier: q, shipmentsSvc: shipmentsSvc, notifications: notificationsSvc, carrier: c, log: log,
		PoolSize: 16, CarrierDeadline: 20 * time.Second,
		nextPoll: make(map[string]time.Time), backoffs: make(map[string]*backoff.ExponentialBackOff),
	}
}

// Run starts a cron-driven sweep loop (schedule expressed in robfig/cron
// syntax, e.g. "@every 1m") and blocks until ctx is cancelled, draining
// in-flight work before returning (spec: "on shutdown, in-flight work is
// drained before exit").
func (in *Ingestor) Run(ctx context.Context, schedule string) error {
	c := cron.New(cron.WithSeconds())
	var wg sync.WaitGroup
	_, err := c.AddFunc(schedule, func() {
		wg.Add(1)
		defer wg.Done()
		in.Sweep(ctx)
	})
	if err != nil {
		return fmt.Errorf("schedule tracking sweep: %w", err)
	}
	c.Start()
	<-ctx.Done()
	stopCtx := c.Stop()
	<-stopCtx.Done()
	wg.Wait()
	return nil
}

// Sweep polls every due shipment concurrently, bounded by PoolSize, and
// never lets one shipment's failure block another (spec §4.7).
func (in *Ingestor) Sweep(ctx context.Context) {
	due, err := in.querier.ListShipmentsByStatuses(ctx, pollableStatuses)
	if err != nil {
		in.log.Error("list shipments for tracking sweep", zap.Error(err))
		return
	}

	sem := make(chan struct{}, in.PoolSize)
	var wg sync.WaitGroup
	var mu sync.Mutex
	var errs error
	for _, sh := range due {
		if !in.isDue(sh.ID.String()) {
			continue
		}
		sh := sh
		wg.Add(1)
		sem <- struct{}{}
		go func() {
			defer wg.Done()
			defer func() { <-sem }()
			if err := in.pollOne(ctx, sh); err != nil {
				mu.Lock()
				errs = multierr.Append(errs, fmt.Errorf("shipment %s: %w", sh.ID.String(), err))
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	// Each failure was already logged individually as it happened
	// (handlePollError/ingestEvent); this combines them into one summary line
	// so a sweep with several unrelated failures doesn't scroll the log for
	// nothing, without masking any individual error.
	if errs != nil {
		in.log.Warn("tracking sweep completed with errors",
			zap.Int("shipment_count", len(due)), zap.Int("error_count", len(multierr.Errors(errs))))
	}
}

func (in *Ingestor) isDue(shipmentID string) bool {
	in.mu.Lock()
	defer in.mu.Unlock()
	next, ok := in.nextPoll[shipmentID]
	return !ok || !time.Now().Before(next)
}

func (in *Ingestor) scheduleNext(shipmentID string, delay time.Duration) {
	in.mu.Lock()
	defer in.mu.Unlock()
	in.nextPoll[shipmentID] = time.Now().Add(delay)
}

func (in *Ingestor) backoffFor(shipmentID string) *backoff.ExponentialBackOff {
	in.mu.Lock()
	defer in.mu.Unlock()
	b, ok := in.backoffs[shipmentID]
	if !ok {
		b = newBackoff()
		in.backoffs[shipmentID] = b
	}
	return b
}

func (in *Ingestor) clearBackoff(shipmentID string) {
	in.mu.Lock()
	defer in.mu.Unlock()
	delete(in.backoffs, shipmentID)
}

func (in *Ingestor) pollOne(ctx context.Context, sh db.Shipment) error {
	pollCtx, cancel := context.WithTimeout(ctx, in.CarrierDeadline)
	defer cancel()

	if !sh.ContainerNumber.Valid || sh.ContainerNumber.String == "" {
		in.scheduleNext(sh.ID.String(), pollInterval(shipments.Status(sh.Status)))
		return nil
	}

	since := sh.UpdatedAt.Time
	if latest, err := in.querier.GetLatestContainerEvent(pollCtx, sh.ID); err == nil {
		since = latest.EventTime.Time
	}

	events, err := in.carrier.FetchEvents(pollCtx, sh.ContainerNumber.String, since)
	if err != nil {
		in.handlePollError(ctx, sh, err)
		return err
	}
	in.clearBackoff(sh.ID.String())

	var errs error
	for _, ev := range events {
		if err := in.ingestEvent(ctx, sh, ev); err != nil {
			errs = multierr.Append(errs, err)
		}
	}
	in.scheduleNext(sh.ID.String(), pollInterval(shipments.Status(sh.Status)))
	return errs
}

func (in *Ingestor) handlePollError(ctx context.Context, sh db.Shipment, err error) {
	if errors.Is(err, apperr.ErrUpstreamPermanent) {
		in.log.Error("permanent carrier failure, marking shipment tracking_error",
			zap.String("shipment_id", sh.ID.String()), zap.Error(err))
		if _, markErr := in.shipmentsSvc.MarkTrackingError(ctx, sh.ID.String()); markErr != nil {
			in.log.Error("mark shipment tracking_error", zap.String("shipment_id", sh.ID.String()), zap.Error(markErr))
		}
		in.clearBackoff(sh.ID.String())
		return
	}
	delay := in.backoffFor(sh.ID.String()).NextBackOff()
	in.log.Warn("transient carrier failure, retrying with backoff",
		zap.String("shipment_id", sh.ID.String()), zap.Duration("retry_in", delay), zap.Error(err))
	in.scheduleNext(sh.ID.String(), delay)
}

// dedupWindow is the tolerance used to collapse near-duplicate event
// timestamps from the same carrier into a single dedup bucket (spec §4.7:
// "60-second time tolerance").
const dedupWindow = 60 * time.Second

func (in *Ingestor) ingestEvent(ctx context.Context, sh db.Shipment, ev carrier.NormalizedEvent) error {
	bucketed := ev.Time.Truncate(dedupWindow)
	var eventTime pgtype.Timestamptz
	_ = eventTime.Scan(bucketed)

	var payload []byte
	inserted, isNew, err := in.querier.InsertContainerEvent(ctx, db.InsertContainerEventParams{
		ID: newUUID(), ShipmentID: sh.ID, EventStatus: ev.Status, EventTime: eventTime,
		LocationCode: ev.Location, Vessel: ev.VesselName, Voyage: ev.VoyageNo, Source: ev.Source, RawPayload: payload,
	})
	if err != nil {
		in.log.Error("insert container event", zap.String("shipment_id", sh.ID.String()), zap.Error(err))
		return err
	}
	if !isNew {
		return nil
	}

	customsHold := ev.Status == "customs_hold"
	updated, err := in.shipmentsSvc.AdvanceOnTrackingEvent(ctx, sh.ID.String(), ev.Status, customsHold)
	if err != nil {
		in.log.Error("advance shipment on tracking event", zap.String("shipment_id", sh.ID.String()), zap.Error(err))
		return err
	}
	if updated.Status == sh.Status {
		return nil
	}
	in.notifyTransition(ctx, updated, ev.Status)
	_ = inserted
	return nil
}

func (in *Ingestor) notifyTransition(ctx context.Context, sh db.Shipment, eventStatus string) {
	if in.notifications == nil {
		return
	}
	members, err := in.querier.ListMembershipsByOrg(ctx, sh.OrganizationID)
	if err != nil {
		in.log.Warn("list org members for tracking notification", zap.Error(err))
		return
	}
	for _, m := range members {
		if m.Status != "active" {
			continue
		}
		if _, err := in.notifications.Publish(ctx, notifications.PublishInput{
			OrganizationID: sh.OrganizationID.String(),
			UserID:         m.UserID.String(),
			EventType:      "shipment_" + eventStatus,
			Title:          "Shipment " + sh.Reference + " update",
			Body:           fmt.Sprintf("Shipment %s is now %s", sh.Reference, sh.Status),
		}); err != nil {
			in.log.Warn("publish tracking notification", zap.Error(err))
		}
	}
}
