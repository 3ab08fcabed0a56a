// Package shipments implements the Shipment State Machine (C5) from spec
// §4.3: transitions derived from document completeness and carrier
// tracking events, with regression disallowed once delivered.
package shipments

// Status mirrors shipments.status.
type Status string

const (
	StatusDraft        Status = "draft"
	StatusDocsPending   Status = "docs_pending"
	StatusDocsComplete  Status = "docs_complete"
	StatusInTransit     Status = "in_transit"
	StatusArrived       Status = "arrived"
	StatusCustoms       Status = "customs"
	StatusDelivered     Status = "delivered"
	StatusArchived      Status = "archived"
	StatusTrackingError Status = "tracking_error"
)

// order ranks each status by its position in the forward lifecycle, used
// to detect and reject regressions (spec: "once delivered, subsequent
// older events do not revert state"). tracking_error is a sidecar state,
// not part of the ranked progression.
var order = map[Status]int{
	StatusDraft:        0,
	StatusDocsPending:  1,
	StatusDocsComplete: 2,
	StatusInTransit:    3,
	StatusArrived:      4,
	StatusCustoms:      5,
	StatusDelivered:    6,
	StatusArchived:     7,
}

// legalTransitions is the static table backing the executor.
var legalTransitions = map[Status]map[Status]bool{
	StatusDraft:        {StatusDocsPending: true},
	StatusDocsPending:  {StatusDocsComplete: true},
	StatusDocsComplete: {StatusInTransit: true},
	StatusInTransit:    {StatusArrived: true},
	StatusArrived:      {StatusCustoms: true, StatusDelivered: true},
	StatusCustoms:      {StatusDelivered: true},
	StatusDelivered:    {StatusArchived: true},
}

// CanTransition reports whether from -> to is legal under the forward
// lifecycle table. Regression to an earlier rank is always rejected, even
// if some other (from, to) pair with the same target status would
// otherwise be legal from a different origin.
func CanTransition(from, to Status) bool {
	if to == StatusArchived {
		return from == StatusDelivered
	}
	if toRank, ok := order[to]; ok {
		if fromRank, ok := order[from]; ok && toRank <= fromRank {
			return false
		}
	}
	return legalTransitions[from][to]
}

// IsRegression reports whether moving from `current` toward `candidate`
// would revert the lifecycle — used by the tracking ingestor to silently
// drop stale/out-of-order carrier events instead of erroring.
func IsRegression(current, candidate Status) bool {
	curRank, curOK := order[current]
	candRank, candOK := order[candidate]
	if !curOK || !candOK {
		return false
	}
	return candRank < curRank
}

// ReopenFromArchived is the system-admin-only exception to "archived is
// terminal" (SPEC_FULL.md Open Question 2): it is never reachable via
// CanTransition and must be invoked through Service.Reopen, which enforces
// the system-admin guard itself.
func ReopenFromArchived(to Status) bool {
	return to == StatusDocsComplete || to == StatusInTransit || to == StatusArrived || to == StatusCustoms || to == StatusDelivered
}
