package tracking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/arc-self/tracehub/internal/domain/shipments"
)

func TestPollInterval_MatchesSpecTable(t *testing.T) {
	assert.Equal(t, time.Hour, pollInterval(shipments.StatusInTransit))
	assert.Equal(t, 30*time.Minute, pollInterval(shipments.StatusArrived))
	assert.Equal(t, 30*time.Minute, pollInterval(shipments.StatusCustoms))
	assert.Equal(t, 6*time.Hour, pollInterval(shipments.StatusDocsComplete))
}

func TestNewBackoff_StartsAtBaseAndCapsAtMax(t *testing.T) {
	b := newBackoff()
	first := b.NextBackOff()
	assert.GreaterOrEqual(t, first, 3500*time.Millisecond) // 5s - 30% jitter
	assert.LessOrEqual(t, first, 6500*time.Millisecond)     // 5s + 30% jitter

	for i := 0; i < 20; i++ {
		d := b.NextBackOff()
		assert.LessOrEqual(t, d, 30*time.Minute+9*time.Minute) // capped with jitter headroom
	}
}

func TestIngestor_IsDueDefaultsToTrueForUnseenShipment(t *testing.T) {
	in := NewIngestor(nil, nil, nil, nil, nil)
	assert.True(t, in.isDue("unseen-shipment"))
}

func TestIngestor_ScheduleNextDefersPolling(t *testing.T) {
	in := NewIngestor(nil, nil, nil, nil, nil)
	in.scheduleNext("sh-1", time.Hour)
	assert.False(t, in.isDue("sh-1"))
}
