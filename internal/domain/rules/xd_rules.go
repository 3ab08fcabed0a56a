package rules

import "math"

// xdRule is a cross-document consistency rule; several compare the BoL
// (authoritative per §4.6) against other canonical document fields.
type xdRule func(in Input) []Result

var xdRules = []xdRule{
	ruleXDContainerAgreement,
	ruleXDNetWeightAgreement,
}

func findDocument(in Input, docType string) (DocumentFields, bool) {
	for _, d := range in.Documents {
		if d.DocumentType == docType {
			return d, true
		}
	}
	return DocumentFields{}, false
}

// ruleXDContainerAgreement: container number on BoL must equal the
// Packing List's container number when both are present. BoL is
// authoritative, so a mismatch is an ERROR rather than a WARNING.
func ruleXDContainerAgreement(in Input) []Result {
	if in.BOL == nil {
		return nil
	}
	pl, ok := findDocument(in, "packing_list")
	if !ok || len(pl.Containers) == 0 || len(in.BOL.Containers) == 0 {
		return nil
	}
	bolContainer := in.BOL.Containers[0]
	plContainer := pl.Containers[0]
	if bolContainer == plContainer {
		return []Result{{
			RuleID: "XD-001", RuleName: "container_agreement", Passed: true, Severity: SeverityError,
			Message: "container number agrees between BoL and Packing List", Field: "container_number",
			Expected: bolContainer, Actual: plContainer,
		}}
	}
	return []Result{{
		RuleID: "XD-001", RuleName: "container_agreement", Passed: false, Severity: SeverityError,
		Message: "container number on Packing List disagrees with BoL (BoL is authoritative)",
		Field: "container_number", Expected: bolContainer, Actual: plContainer,
	}}
}

// ruleXDNetWeightAgreement: Commercial Invoice net weight must be within
// WeightTolerancePct of the Packing List's net weight.
func ruleXDNetWeightAgreement(in Input) []Result {
	inv, invOK := findDocument(in, "commercial_invoice")
	pl, plOK := findDocument(in, "packing_list")
	if !invOK || !plOK || !inv.HasNetWeight || !pl.HasNetWeight || pl.NetWeightKg == 0 {
		return nil
	}
	diffPct := math.Abs(inv.NetWeightKg-pl.NetWeightKg) / pl.NetWeightKg * 100
	ok := diffPct <= WeightTolerancePct
	return []Result{{
		RuleID: "XD-002", RuleName: "net_weight_agreement", Passed: ok, Severity: SeverityWarning,
		Message: "net weight on Commercial Invoice should be within tolerance of Packing List",
		Field: "net_weight_kg", Expected: formatFloat(pl.NetWeightKg), Actual: formatFloat(inv.NetWeightKg),
	}}
}
