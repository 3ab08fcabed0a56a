// Package natsbus wraps a NATS JetStream connection shared process-wide by
// both binaries, adapted from the teacher's go-core/natsclient package.
// TraceHub uses it for the DOMAIN_EVENTS stream (document and shipment
// lifecycle transitions, tracking events — the outbox drains onto it).
// Nothing in this tree subscribes to the stream; cmd/worker's email
// dispatch reads pending rows from the notifications table instead.
package natsbus

import (
	"errors"
	"fmt"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

const (
	// StreamDomainEvents is the durable stream carrying every tenant
	// mutation's outbox row once published.
	StreamDomainEvents = "DOMAIN_EVENTS"
	// SubjectDomainEvents captures every component's routed domain events,
	// e.g. "DOMAIN_EVENTS.tracehub.shipment.transitioned".
	SubjectDomainEvents = "DOMAIN_EVENTS.>"
	// SubjectNotifications carries in-app/email notification fan-out.
	SubjectNotifications = "DOMAIN_EVENTS.tracehub.notification.>"
)

var streamSubjects = []string{SubjectDomainEvents}

// Client wraps a NATS connection and its JetStream context.
type Client struct {
	Conn *nats.Conn
	JS   nats.JetStreamContext
	Log  *zap.Logger
}

// NewClient connects to NATS and initializes a JetStream context with
// infinite reconnect attempts — the worker and API binaries should never
// give up on a transient broker outage.
func NewClient(url string, logger *zap.Logger) (*Client, error) {
	nc, err := nats.Connect(url, nats.RetryOnFailedConnect(true), nats.MaxReconnects(-1))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := nc.JetStream()
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("failed to initialize JetStream: %w", err)
	}

	logger.Info("NATS JetStream connected", zap.String("url", url))
	return &Client{Conn: nc, JS: js, Log: logger}, nil
}

// ProvisionStreams idempotently ensures the DOMAIN_EVENTS stream exists.
func (c *Client) ProvisionStreams() error {
	_, err := c.JS.StreamInfo(StreamDomainEvents)
	if err == nil {
		c.Log.Info("NATS stream already exists", zap.String("stream", StreamDomainEvents))
		return nil
	}
	if !errors.Is(err, nats.ErrStreamNotFound) {
		return fmt.Errorf("stream info: %w", err)
	}

	cfg := &nats.StreamConfig{
		Name:      StreamDomainEvents,
		Subjects:  streamSubjects,
		Storage:   nats.FileStorage,
		Retention: nats.LimitsPolicy,
	}
	if _, err := c.JS.AddStream(cfg); err != nil {
		return fmt.Errorf("create stream: %w", err)
	}
	c.Log.Info("NATS stream provisioned",
		zap.String("stream", StreamDomainEvents),
		zap.Strings("subjects", streamSubjects),
	)
	return nil
}

// Close drains pending publishes/deliveries before closing the connection.
func (c *Client) Close() {
	if c.Conn == nil {
		return
	}
	if err := c.Conn.Drain(); err != nil {
		c.Conn.Close()
	}
}
