// Package compliance holds the Compliance Matrix (C6): a deterministic,
// version-stamped policy table keyed by product type and HS code prefix,
// plus the eudr_applicable pure function. Loaded once at boot per the
// teacher's "global state is a snapshot, hot-reload is a swap" convention
// (see go-core/telemetry's similar singleton-provider pattern) and exposed
// through an atomically-swappable snapshot so an operator can widen the
// matrix without restarting either binary.
package compliance

import (
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/arc-self/tracehub/internal/platform/cache"
)

// hornHoofPrefixes are excluded from EUDR applicability unconditionally,
// even if the EUDR prefix list is later extended to overlap them.
var hornHoofPrefixes = []string{"0506", "0507"}

// eudrPrefixes is the canonical HS-prefix set that makes a product
// EUDR-applicable: cocoa, coffee, palm oil, rubber, soy.
var eudrPrefixes = []string{"1801", "0901", "1511", "4001", "1201"}

// Policy is one row of the Compliance Matrix.
type Policy struct {
	ProductType           string
	HSPrefixes            []string
	EUDRApplicable        bool
	RequiredDocumentTypes []string
	ValidationExpectation map[string]string // document_type -> free-text expectation
}

// DefaultPolicies is the canonical matrix from the spec's policy table.
func DefaultPolicies() []Policy {
	return []Policy{
		{
			ProductType:    "horn_hoof",
			HSPrefixes:     []string{"0506", "0507"},
			EUDRApplicable: false,
			RequiredDocumentTypes: []string{
				"eu_traces", "vet_health_cert", "certificate_of_origin",
				"bill_of_lading", "commercial_invoice", "packing_list",
			},
		},
		{
			ProductType:    "sweet_potato_pellets",
			HSPrefixes:     []string{"0714"},
			EUDRApplicable: false,
			RequiredDocumentTypes: []string{
				"phytosanitary", "certificate_of_origin", "quality_cert",
				"bill_of_lading", "commercial_invoice",
			},
		},
		{
			ProductType:    "hibiscus",
			HSPrefixes:     []string{"0902"},
			EUDRApplicable: false,
			RequiredDocumentTypes: []string{
				"phytosanitary", "certificate_of_origin", "quality_cert",
				"bill_of_lading", "commercial_invoice",
			},
		},
		{
			ProductType:    "dried_ginger",
			HSPrefixes:     []string{"0910"},
			EUDRApplicable: false,
			RequiredDocumentTypes: []string{
				"phytosanitary", "certificate_of_origin", "quality_cert",
				"bill_of_lading", "commercial_invoice",
			},
		},
		{
			ProductType:    "eudr_commodity",
			HSPrefixes:     []string{"1801", "0901", "1511", "4001", "1201"},
			EUDRApplicable: true,
			RequiredDocumentTypes: []string{
				"bill_of_lading", "commercial_invoice", "packing_list",
				"certificate_of_origin", "eudr_due_diligence",
			},
		},
	}
}

// EUDRApplicable is the canonical pure function from spec §4.4: true iff
// hsCode starts with one of the EUDR prefixes, and unconditionally false
// for horn/hoof prefixes regardless of any future prefix overlap.
func EUDRApplicable(hsCode string) bool {
	hsCode = strings.TrimSpace(hsCode)
	for _, p := range hornHoofPrefixes {
		if strings.HasPrefix(hsCode, p) {
			return false
		}
	}
	for _, p := range eudrPrefixes {
		if strings.HasPrefix(hsCode, p) {
			return true
		}
	}
	return false
}

// IsHornHoof reports whether hsCode falls under the horn/hoof exclusion.
func IsHornHoof(hsCode string) bool {
	hsCode = strings.TrimSpace(hsCode)
	for _, p := range hornHoofPrefixes {
		if strings.HasPrefix(hsCode, p) {
			return true
		}
	}
	return false
}

// snapshot is one immutable generation of the matrix.
type snapshot struct {
	version  int64
	policies []Policy
}

// Matrix is the process-wide, boot-loaded singleton. Reload swaps in a new
// snapshot atomically; readers never observe a half-updated table.
type Matrix struct {
	current atomic.Pointer[snapshot]
	lookups *cache.TTLCache[string, Policy]
}

// New builds a Matrix seeded with the given policies (DefaultPolicies() in
// production, a fixture list in tests).
func New(policies []Policy) *Matrix {
	m := &Matrix{}
	m.current.Store(&snapshot{version: 1, policies: policies})
	m.lookups, _ = cache.New[string, Policy](256, 60*time.Second)
	return m
}

// Version returns the currently active snapshot's generation counter.
func (m *Matrix) Version() int64 {
	return m.current.Load().version
}

// Reload atomically replaces the policy set with a new snapshot and drops
// the lookup cache — a swap, never an in-place mutation.
func (m *Matrix) Reload(policies []Policy) {
	prev := m.current.Load()
	next := &snapshot{version: prev.version + 1, policies: policies}
	m.current.Store(next)
	m.lookups, _ = cache.New[string, Policy](256, 60*time.Second)
}

// Lookup resolves the policy for a product type and HS code. product_type
// is matched first (exact); HS prefix match is the fallback/cross-check.
func (m *Matrix) Lookup(productType, hsCode string) (Policy, error) {
	key := productType + "|" + hsCode
	if p, ok := m.lookups.Get(key); ok {
		return p, nil
	}
	snap := m.current.Load()
	for _, p := range snap.policies {
		if p.ProductType == productType {
			m.lookups.Set(key, p)
			return p, nil
		}
	}
	for _, p := range snap.policies {
		for _, prefix := range p.HSPrefixes {
			if strings.HasPrefix(strings.TrimSpace(hsCode), prefix) {
				m.lookups.Set(key, p)
				return p, nil
			}
		}
	}
	return Policy{}, fmt.Errorf("compliance: no policy for product_type=%q hs_code=%q", productType, hsCode)
}

// RequiredDocuments returns the required document type set for a shipment's
// product type, resolved via Lookup.
func (m *Matrix) RequiredDocuments(productType, hsCode string) ([]string, error) {
	p, err := m.Lookup(productType, hsCode)
	if err != nil {
		return nil, err
	}
	return p.RequiredDocumentTypes, nil
}
