package admission

// Validate runs every rule against the record in the order given, with no
// short-circuiting, and collects one RuleFailure per failed check in that same
// order. The decision is ACCEPT iff nothing failed.
//
// Validate is deterministic: the same record and rule list always produce the
// same result.
func Validate(r NormalizedRequest, rules []Rule) ValidationResult {
	var failures []RuleFailure

	for _, rule := range rules {
		reason, failed := rule.Check(r)
		if !failed {
			continue
		}
		failures = append(failures, RuleFailure{
			RuleID:   rule.RuleID(),
			Severity: rule.Severity(),
			Reason:   reason,
		})
	}

	if len(failures) > 0 {
		return ValidationResult{Decision: DecisionReject, Failures: failures}
	}
	return ValidationResult{Decision: DecisionAccept}
}
