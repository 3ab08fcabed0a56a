package rules

import "strings"

// bolRule is a pure function over the engine Input producing one Result.
type bolRule func(in Input) Result

// bolRules is the canonical BoL rule set in rule_id ascending order — the
// slice order is the order these rules run in; Evaluate then sorts the
// combined BoL/XD/EUDR results by rule_id.
var bolRules = []bolRule{
	ruleBOL001, ruleBOL002, ruleBOL003, ruleBOL004, ruleBOL005,
	ruleBOL006, ruleBOL007, ruleBOL008, ruleBOL009, ruleBOL010, ruleBOL011,
}

func bol(in Input) DocumentFields {
	if in.BOL == nil {
		return DocumentFields{}
	}
	return *in.BOL
}

func ruleBOL001(in Input) Result {
	b := bol(in)
	ok := b.ShipperName != "" && !IsPlaceholder(b.ShipperName) &&
		!strings.EqualFold(strings.TrimSpace(b.ShipperName), "Unknown Shipper")
	return Result{
		RuleID: "BOL-001", RuleName: "shipper_present", Passed: ok, Severity: SeverityError,
		Message: "shipper name must be present and not a placeholder", Field: "shipper_name", Actual: b.ShipperName,
	}
}

func ruleBOL002(in Input) Result {
	b := bol(in)
	ok := b.ConsigneeName != "" && !IsPlaceholder(b.ConsigneeName)
	return Result{
		RuleID: "BOL-002", RuleName: "consignee_present", Passed: ok, Severity: SeverityError,
		Message: "consignee name must be present and not a placeholder", Field: "consignee_name", Actual: b.ConsigneeName,
	}
}

func ruleBOL003(in Input) Result {
	b := bol(in)
	container := firstContainer(b)
	ok := container == "" || containerNumberPattern.MatchString(container)
	return Result{
		RuleID: "BOL-003", RuleName: "container_iso6346", Passed: ok, Severity: SeverityWarning,
		Message: "container number should match ISO 6346 (4 letters + 7 digits)", Field: "container_number", Actual: container,
	}
}

func ruleBOL004(in Input) Result {
	b := bol(in)
	ok := b.BOLNumber != "" && strings.ToUpper(strings.TrimSpace(b.BOLNumber)) != "UNKNOWN" && !IsPlaceholder(b.BOLNumber)
	return Result{
		RuleID: "BOL-004", RuleName: "bol_number_present", Passed: ok, Severity: SeverityError,
		Message: "BoL number must be present and not UNKNOWN", Field: "bol_number", Actual: b.BOLNumber,
	}
}

func ruleBOL005(in Input) Result {
	b := bol(in)
	ok := b.POLCode != ""
	return Result{
		RuleID: "BOL-005", RuleName: "pol_specified", Passed: ok, Severity: SeverityWarning,
		Message: "port of loading should be specified (UN/LOCODE preferred)", Field: "pol_code", Actual: b.POLCode,
	}
}

func ruleBOL006(in Input) Result {
	b := bol(in)
	ok := len(b.CargoLines) > 0
	return Result{
		RuleID: "BOL-006", RuleName: "cargo_description_present", Passed: ok, Severity: SeverityWarning,
		Message: "at least one cargo description line is expected", Field: "cargo_items",
	}
}

func ruleBOL007(in Input) Result {
	b := bol(in)
	ok := len(b.Containers) > 0
	return Result{
		RuleID: "BOL-007", RuleName: "container_attached", Passed: ok, Severity: SeverityWarning,
		Message: "at least one container should be attached", Field: "containers",
	}
}

func ruleBOL008(in Input) Result {
	b := bol(in)
	ok := b.PODCode != ""
	return Result{
		RuleID: "BOL-008", RuleName: "pod_specified", Passed: ok, Severity: SeverityWarning,
		Message: "port of discharge should be specified", Field: "pod_code", Actual: b.PODCode,
	}
}

func ruleBOL009(in Input) Result {
	b := bol(in)
	ok := b.Vessel != ""
	return Result{
		RuleID: "BOL-009", RuleName: "vessel_present", Passed: ok, Severity: SeverityInfo,
		Message: "vessel name present", Field: "vessel", Actual: b.Vessel,
	}
}

func ruleBOL010(in Input) Result {
	b := bol(in)
	ok := b.Voyage != ""
	return Result{
		RuleID: "BOL-010", RuleName: "voyage_present", Passed: ok, Severity: SeverityInfo,
		Message: "voyage number present", Field: "voyage", Actual: b.Voyage,
	}
}

func ruleBOL011(in Input) Result {
	b := bol(in)
	ok := in.BOL == nil || b.ParserConfidence >= 0.50
	return Result{
		RuleID: "BOL-011", RuleName: "parser_confidence", Passed: ok, Severity: SeverityInfo,
		Message: "parser confidence should be at least 0.50", Field: "parser_confidence", Actual: formatFloat(b.ParserConfidence),
	}
}

func firstContainer(b DocumentFields) string {
	if len(b.Containers) == 0 {
		return ""
	}
	return b.Containers[0]
}
