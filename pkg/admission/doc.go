// Package admission contains the core record model and eligibility engine for
// the Saturn batch admission pipeline.
//
// # Record Model
//
// Records move through two representations:
//
//  1. RawRequest - untyped string fields exactly as read from the input file
//  2. NormalizedRequest - typed, canonical projection with a derived risk bucket
//
// Both are value types constructed once and never mutated.
//
// # Normalization
//
// Normalize converts a RawRequest into a NormalizedRequest. It is pure and
// deterministic. A malformed field produces a *NormalizationError naming the
// offending field; callers treat this as a record-scoped rejection, not a
// fatal condition.
//
// # Eligibility Rules
//
// Rules implement the Rule interface and are evaluated by Validate in the
// order the caller provides them, with no short-circuiting:
//
//	rules := []admission.Rule{
//		admission.NewRequiredFieldsRule(),
//		admission.NewCurrencyAllowedRule(nil),
//		admission.NewAmountRangeRule(0, 0),
//	}
//	result := admission.Validate(normalized, rules)
//
// The result is ACCEPT iff no rule failed; otherwise REJECT with one
// RuleFailure per failed rule, in evaluation order.
package admission
