package documents

import (
	"encoding/json"
	"fmt"

	"github.com/arc-self/tracehub/internal/adapters/classifier"
	"github.com/arc-self/tracehub/internal/domain/rules"
)

// CanonicalExtraction is the JSON shape persisted into
// documents.canonical_data: the classifier's structured output, trimmed to
// the fields the Rules Engine and the API actually read back. It is never a
// copy of the uploaded file itself (see auditpack.Assembler, which reads the
// file from blob storage instead).
type CanonicalExtraction struct {
	DocumentType string              `json:"document_type"`
	Confidence   float64             `json:"confidence"`
	Shipper      string              `json:"shipper,omitempty"`
	Consignee    string              `json:"consignee,omitempty"`
	BOLNumber    string              `json:"bol_number,omitempty"`
	Containers   []string            `json:"containers,omitempty"`
	CargoLines   []CanonicalCargoLine `json:"cargo_lines,omitempty"`
	VesselName   string              `json:"vessel_name,omitempty"`
	VoyageNo     string              `json:"voyage_no,omitempty"`
	POLCode      string              `json:"pol_code,omitempty"`
	PODCode      string              `json:"pod_code,omitempty"`
	RawFields    map[string]string   `json:"raw_fields,omitempty"`
}

// CanonicalCargoLine mirrors classifier.CargoItem's shape for the subset of
// fields that survive into persistence.
type CanonicalCargoLine struct {
	Description   string  `json:"description,omitempty"`
	HSCode        string  `json:"hs_code,omitempty"`
	QuantityNetKg float64 `json:"quantity_net_kg"`
}

// FromClassified projects a classifier result into the persisted shape.
func FromClassified(cd classifier.ClassifiedDocument) CanonicalExtraction {
	out := CanonicalExtraction{
		DocumentType: cd.DocumentType,
		Confidence:   cd.Confidence,
		Shipper:      cd.Shipper,
		Consignee:    cd.Consignee,
		BOLNumber:    cd.BOLNumber,
		VesselName:   cd.VesselName,
		VoyageNo:     cd.VoyageNo,
		POLCode:      cd.POLCode,
		PODCode:      cd.PODCode,
		RawFields:    cd.RawFields,
	}
	for _, c := range cd.Containers {
		out.Containers = append(out.Containers, c.Number)
	}
	for _, item := range cd.CargoItems {
		out.CargoLines = append(out.CargoLines, CanonicalCargoLine{
			Description: item.Description, HSCode: item.HSCode, QuantityNetKg: item.QuantityNetKg,
		})
	}
	return out
}

// Marshal is the one place canonical_data bytes get produced.
func Marshal(cd classifier.ClassifiedDocument) ([]byte, error) {
	return json.Marshal(FromClassified(cd))
}

// UnmarshalCanonical decodes a document's stored canonical_data. An empty
// payload (parser hasn't run yet) decodes to the zero value, not an error.
func UnmarshalCanonical(data []byte) (CanonicalExtraction, error) {
	if len(data) == 0 {
		return CanonicalExtraction{}, nil
	}
	var out CanonicalExtraction
	if err := json.Unmarshal(data, &out); err != nil {
		return CanonicalExtraction{}, fmt.Errorf("unmarshal canonical_data: %w", err)
	}
	return out, nil
}

// ToRuleFields maps a decoded extraction plus the document's own
// issuing_authority column into the typed projection rules.Evaluate reads.
func (c CanonicalExtraction) ToRuleFields(issuingAuthority string) rules.DocumentFields {
	var netWeight float64
	for _, line := range c.CargoLines {
		netWeight += line.QuantityNetKg
	}
	return rules.DocumentFields{
		DocumentType:     c.DocumentType,
		ShipperName:      c.Shipper,
		ConsigneeName:    c.Consignee,
		BOLNumber:        c.BOLNumber,
		Containers:       c.Containers,
		CargoLines:       cargoDescriptions(c.CargoLines),
		POLCode:          c.POLCode,
		PODCode:          c.PODCode,
		Vessel:           c.VesselName,
		Voyage:           c.VoyageNo,
		ParserConfidence: c.Confidence,
		NetWeightKg:      netWeight,
		HasNetWeight:     len(c.CargoLines) > 0,
		IssuingAuthority: issuingAuthority,
	}
}

func cargoDescriptions(lines []CanonicalCargoLine) []string {
	if len(lines) == 0 {
		return nil
	}
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = l.Description
	}
	return out
}
