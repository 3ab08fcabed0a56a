package shipments

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition_ForwardPath(t *testing.T) {
	path := []Status{
		StatusDraft, StatusDocsPending, StatusDocsComplete, StatusInTransit,
		StatusArrived, StatusCustoms, StatusDelivered, StatusArchived,
	}
	for i := 0; i < len(path)-1; i++ {
		assert.Truef(t, CanTransition(path[i], path[i+1]), "%s -> %s", path[i], path[i+1])
	}
}

func TestCanTransition_ArrivedCanSkipCustoms(t *testing.T) {
	assert.True(t, CanTransition(StatusArrived, StatusDelivered))
}

func TestCanTransition_RegressionRejected(t *testing.T) {
	assert.False(t, CanTransition(StatusInTransit, StatusDocsPending))
	assert.False(t, CanTransition(StatusDelivered, StatusInTransit))
}

func TestIsRegression(t *testing.T) {
	assert.True(t, IsRegression(StatusDelivered, StatusInTransit))
	assert.False(t, IsRegression(StatusInTransit, StatusArrived))
}

func TestCanTransition_ArchivedIsTerminal(t *testing.T) {
	assert.False(t, CanTransition(StatusArchived, StatusDocsPending))
	assert.True(t, CanTransition(StatusDelivered, StatusArchived))
}
