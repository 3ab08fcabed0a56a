// Package carrier defines the outbound contract for external container
// tracking providers, consumed by the Tracking Ingestor (C9).
package carrier

import (
	"context"
	"time"
)

// NormalizedEvent is a carrier tracking event normalized to the engine's
// vocabulary, regardless of which upstream provider produced it.
type NormalizedEvent struct {
	Status    string
	Time      time.Time
	Location  string
	VesselName string
	VoyageNo  string
	Source    string
}

// Client is the adapter boundary the Tracking Ingestor polls. Concrete
// drivers (a specific ocean-carrier API, a freight-visibility aggregator,
// a stub for tests) are swappable behind this.
type Client interface {
	FetchEvents(ctx context.Context, containerNumber string, since time.Time) ([]NormalizedEvent, error)
}
