package rules

import "sort"

// EvaluationOutcome is the engine's full output for one shipment.
type EvaluationOutcome struct {
	Decision       Decision
	Results        []Result
	ActiveFailures int
}

// Evaluate runs every applicable rule over in, in deterministic rule_id
// ascending order, re-applies any prior overrides by (rule_id, field), and
// aggregates the final decision per spec §4.5 / testable property 6.
func Evaluate(in Input) EvaluationOutcome {
	var results []Result

	for _, rule := range bolRules {
		results = append(results, rule(in))
	}
	for _, rule := range xdRules {
		results = append(results, rule(in)...)
	}
	if in.EUDRApplicable {
		for _, rule := range eudrRules {
			results = append(results, rule(in))
		}
	}

	sort.SliceStable(results, func(i, j int) bool { return results[i].RuleID < results[j].RuleID })

	overridden := make(map[overrideKey]struct{}, len(in.Overrides))
	for _, o := range in.Overrides {
		overridden[overrideKey{RuleID: o.RuleID, Field: o.Field}] = struct{}{}
	}
	for i := range results {
		if _, ok := overridden[results[i].key()]; ok {
			results[i].Overridden = true
		}
	}

	return aggregate(results)
}

// HasErrorFailure reports whether the outcome contains any un-overridden
// ERROR-severity failure — the exact guard spec §4.2 uses to decide
// between a document's compliance_ok and compliance_failed transitions,
// independent of whether warnings alone would only HOLD the shipment.
func (o EvaluationOutcome) HasErrorFailure() bool {
	for _, r := range o.Results {
		if !r.Passed && !r.Overridden && r.Severity == SeverityError {
			return true
		}
	}
	return false
}

// aggregate implements testable property 6 exactly: REJECT iff any
// un-overridden ERROR failure exists; else HOLD iff any un-overridden
// WARNING failure exists; else APPROVE.
func aggregate(results []Result) EvaluationOutcome {
	hasErrorFailure := false
	hasWarningFailure := false
	activeFailures := 0

	for _, r := range results {
		if r.Passed || r.Overridden {
			continue
		}
		activeFailures++
		switch r.Severity {
		case SeverityError:
			hasErrorFailure = true
		case SeverityWarning:
			hasWarningFailure = true
		}
	}

	decision := DecisionApprove
	switch {
	case hasErrorFailure:
		decision = DecisionReject
	case hasWarningFailure:
		decision = DecisionHold
	}

	return EvaluationOutcome{Decision: decision, Results: results, ActiveFailures: activeFailures}
}
