package admission

import (
	"fmt"
	"strings"
)

// Stable rule identifiers. RuleNormalizationError is synthetic: it tags
// records that failed normalization before any eligibility rule could run.
const (
	RuleRequiredFields     = "REQUIRED_FIELDS"
	RuleCurrencyAllowed    = "CURRENCY_ALLOWED"
	RuleAmountRange        = "AMOUNT_RANGE"
	RuleNormalizationError = "NORMALIZATION_ERROR"
)

// Rule is a single eligibility check over a normalized record. Implementations
// must be pure: no side effects, same record in, same answer out.
type Rule interface {
	// RuleID returns the stable identifier used in artifacts and audit events.
	RuleID() string

	// Severity returns how serious a failure of this rule is.
	Severity() Severity

	// Check evaluates the rule. When the record fails, it returns the failure
	// reason and true; otherwise ("", false).
	Check(r NormalizedRequest) (string, bool)
}

// RequiredFieldsRule rejects records with an empty identifier, client,
// product type, currency, or country after normalization.
type RequiredFieldsRule struct{}

// NewRequiredFieldsRule creates the baseline required-fields rule.
func NewRequiredFieldsRule() RequiredFieldsRule { return RequiredFieldsRule{} }

func (RequiredFieldsRule) RuleID() string     { return RuleRequiredFields }
func (RequiredFieldsRule) Severity() Severity { return SeverityHigh }

func (RequiredFieldsRule) Check(r NormalizedRequest) (string, bool) {
	required := []struct {
		name  string
		value string
	}{
		{"id", r.ID},
		{"client_id", r.ClientID},
		{"product_type", r.ProductType},
		{"currency", r.Currency},
		{"country", r.Country},
	}
	for _, f := range required {
		if f.value == "" {
			return f.name + " is empty", true
		}
	}
	return "", false
}

// CurrencyAllowedRule rejects records whose currency is outside a fixed
// allow-list.
type CurrencyAllowedRule struct {
	allowed []string
}

// DefaultAllowedCurrencies is the baseline currency allow-list.
var DefaultAllowedCurrencies = []string{"ARS", "USD", "EUR"}

// NewCurrencyAllowedRule creates the currency rule. A nil or empty allow-list
// falls back to DefaultAllowedCurrencies.
func NewCurrencyAllowedRule(allowed []string) CurrencyAllowedRule {
	if len(allowed) == 0 {
		allowed = DefaultAllowedCurrencies
	}
	return CurrencyAllowedRule{allowed: allowed}
}

func (CurrencyAllowedRule) RuleID() string     { return RuleCurrencyAllowed }
func (CurrencyAllowedRule) Severity() Severity { return SeverityMedium }

func (c CurrencyAllowedRule) Check(r NormalizedRequest) (string, bool) {
	for _, cur := range c.allowed {
		if r.Currency == cur {
			return "", false
		}
	}
	return fmt.Sprintf("currency %q not in allowed list [%s]", r.Currency, strings.Join(c.allowed, " ")), true
}

// AmountRangeRule rejects records whose amount falls outside an inclusive
// [min, max] bound.
type AmountRangeRule struct {
	min float64
	max float64
}

// Baseline amount bounds.
const (
	DefaultAmountMin = 1.0
	DefaultAmountMax = 1_000_000.0
)

// NewAmountRangeRule creates the amount rule. When min and max are both zero
// the baseline bounds apply.
func NewAmountRangeRule(min, max float64) AmountRangeRule {
	if min == 0 && max == 0 {
		min, max = DefaultAmountMin, DefaultAmountMax
	}
	return AmountRangeRule{min: min, max: max}
}

func (AmountRangeRule) RuleID() string     { return RuleAmountRange }
func (AmountRangeRule) Severity() Severity { return SeverityMedium }

func (a AmountRangeRule) Check(r NormalizedRequest) (string, bool) {
	if r.AmountOrLimit < a.min || r.AmountOrLimit > a.max {
		return fmt.Sprintf("amount_or_limit %g out of range [%g, %g]", r.AmountOrLimit, a.min, a.max), true
	}
	return "", false
}
