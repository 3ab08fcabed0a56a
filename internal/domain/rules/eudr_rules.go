package rules

// eudrRule is a product rule that only runs when the shipment is
// EUDR-applicable (spec §4.5: "Product rules (EUDR-*) run only when
// eudr_applicable(hs_code) = true").
type eudrRule func(in Input) Result

var eudrRules = []eudrRule{
	ruleEUDRGeo,
	ruleEUDRProductionDate,
	ruleEUDRDeforestationStatement,
	ruleEUDRCountryRisk,
}

func ruleEUDRGeo(in Input) Result {
	r := Result{RuleID: "EUDR-GEO", RuleName: "geolocation_present", Severity: SeverityError,
		Message: "geolocation coordinates must be present and within valid ranges", Field: "origin.lat,lng"}
	if in.Origin == nil || !in.Origin.HasCoordinates {
		r.Passed = false
		return r
	}
	lat, lng := in.Origin.Lat, in.Origin.Lng
	r.Passed = lat >= -90 && lat <= 90 && lng >= -180 && lng <= 180
	return r
}

func ruleEUDRProductionDate(in Input) Result {
	r := Result{RuleID: "EUDR-DATE", RuleName: "production_after_cutoff", Severity: SeverityError,
		Message: "production start date must be after the regulatory cutoff (2020-12-31)", Field: "origin.production_start_date"}
	if in.Origin == nil || !in.Origin.HasProductionStartDate {
		r.Passed = false
		return r
	}
	r.Passed = in.Origin.ProductionStartDate.After(eudrRegulatoryCutoff)
	return r
}

func ruleEUDRDeforestationStatement(in Input) Result {
	r := Result{RuleID: "EUDR-DEFOR", RuleName: "deforestation_statement_present", Severity: SeverityError,
		Message: "deforestation-free statement must be attached", Field: "origin.deforestation_free_statement"}
	r.Passed = in.Origin != nil && in.Origin.DeforestationFreeStatement != ""
	return r
}

func ruleEUDRCountryRisk(in Input) Result {
	r := Result{RuleID: "EUDR-RISK", RuleName: "country_risk_classified", Severity: SeverityWarning,
		Message: "country risk classification must be present", Field: "origin.country_risk_classification"}
	r.Passed = in.Origin != nil && in.Origin.CountryRiskClassification != ""
	return r
}
