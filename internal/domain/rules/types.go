// Package rules implements the Rules Engine (C7): BoL compliance rules,
// cross-document consistency rules, and EUDR product rules, evaluated
// deterministically and aggregated into an APPROVE/HOLD/REJECT decision.
// Every rule is a pure function over typed inputs — no shipment/document
// row is mutated here; callers persist the resulting DocumentIssue rows.
package rules

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Severity mirrors the document_issues.severity enumeration.
type Severity string

const (
	SeverityError   Severity = "ERROR"
	SeverityWarning Severity = "WARNING"
	SeverityInfo    Severity = "INFO"
)

// Decision is the engine's final aggregate verdict for a shipment.
type Decision string

const (
	DecisionApprove Decision = "APPROVE"
	DecisionHold    Decision = "HOLD"
	DecisionReject  Decision = "REJECT"
)

// WeightTolerancePct is the cross-document net-weight agreement tolerance.
// Spec §9 Open Question 3 leaves this as policy; SPEC_FULL.md resolves it
// to the spec's stated default, exposed here so a deployment can override
// it without touching rule logic.
var WeightTolerancePct = 1.0

// Result is one rule's outcome against a shipment/document set.
type Result struct {
	RuleID     string
	RuleName   string
	Passed     bool
	Severity   Severity
	Message    string
	Field      string
	Expected   string
	Actual     string
	Overridden bool
}

// key identifies a result for override re-application, matching spec
// §4.5's "(rule_id, field)" override matching key.
func (r Result) key() overrideKey { return overrideKey{RuleID: r.RuleID, Field: r.Field} }

type overrideKey struct {
	RuleID string
	Field  string
}

// Override describes a previously-applied override to re-apply onto a
// freshly re-evaluated result set.
type Override struct {
	RuleID string
	Field  string
	Reason string
}

// ShipmentFields is the subset of a shipment's columns the rules engine
// reasons over — a typed projection, not the full persistence row.
type ShipmentFields struct {
	ContainerNumber string
	BLNumber        string
	Vessel          string
	Voyage          string
	POLCode         string
	PODCode         string
	HSCode          string
	ProductType     string
}

// DocumentFields is a typed projection of one document's canonical_data,
// per §9's "no free-form maps" guidance — only the fields rules actually
// compare are named; everything else stays in the document's own sidecar.
type DocumentFields struct {
	DocumentType     string
	ShipperName      string
	ConsigneeName    string
	BOLNumber        string
	Containers       []string
	CargoLines       []string
	POLCode          string
	PODCode          string
	Vessel           string
	Voyage           string
	ParserConfidence float64
	NetWeightKg      float64
	HasNetWeight     bool
	IssuingAuthority string
}

// OriginFields is a typed projection of an Origin row for EUDR rules.
type OriginFields struct {
	Lat                        float64
	Lng                        float64
	HasCoordinates             bool
	ProductionStartDate        time.Time
	HasProductionStartDate     bool
	DeforestationFreeStatement string
	CountryRiskClassification  string
}

// Input bundles everything one Evaluate call needs.
type Input struct {
	Shipment       ShipmentFields
	BOL            *DocumentFields // nil if no BoL document is present yet
	Documents      []DocumentFields
	EUDRApplicable bool
	Origin         *OriginFields // nil if absent
	Overrides      []Override
}

// eudrRegulatoryCutoff is the earliest acceptable production date for an
// EUDR-applicable product (spec §4.5).
var eudrRegulatoryCutoff = time.Date(2020, 12, 31, 0, 0, 0, 0, time.UTC)

var containerNumberPattern = regexp.MustCompile(`^[A-Z]{4}[0-9]{7}$`)
var unLocodePattern = regexp.MustCompile(`\b([A-Z]{5})\b`)

var placeholderLiterals = map[string]struct{}{
	"tbd": {}, "tbc": {}, "pending": {}, "placeholder": {}, "n/a": {}, "na": {}, "": {}, "null": {},
}

var placeholderContainerPattern = regexp.MustCompile(`(?i).*-CNT-.*`)

// IsPlaceholder implements the canonical placeholder predicate from §4.5:
// a value is a placeholder iff it matches *-CNT-* or is one of the listed
// literal tokens, case-insensitively.
func IsPlaceholder(value string) bool {
	trimmed := strings.TrimSpace(value)
	if placeholderContainerPattern.MatchString(trimmed) {
		return true
	}
	_, literal := placeholderLiterals[strings.ToLower(trimmed)]
	return literal
}

// ExtractUNLOCODE returns the first uppercase 5-letter token in s, or "".
func ExtractUNLOCODE(s string) string {
	m := unLocodePattern.FindStringSubmatch(strings.ToUpper(s))
	if m == nil {
		return ""
	}
	return m[1]
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', 2, 64)
}
