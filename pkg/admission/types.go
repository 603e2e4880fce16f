package admission

import "time"

// Severity classifies how serious a rule failure is.
type Severity string

const (
	SeverityLow    Severity = "LOW"
	SeverityMedium Severity = "MEDIUM"
	SeverityHigh   Severity = "HIGH"
)

// Decision is the outcome of validating one record.
type Decision string

const (
	DecisionAccept Decision = "ACCEPT"
	DecisionReject Decision = "REJECT"
)

// RiskBucket is the coarse risk tier derived from the numeric risk score.
type RiskBucket string

const (
	RiskLow  RiskBucket = "LOW"
	RiskMed  RiskBucket = "MED"
	RiskHigh RiskBucket = "HIGH"
)

// RawRequest is one input record with every field as the literal string read
// from the source file. It exists only for the duration of a run.
type RawRequest struct {
	ID            string `json:"id"`
	Date          string `json:"date"`
	ProductType   string `json:"product_type"`
	ClientID      string `json:"client_id"`
	AmountOrLimit string `json:"amount_or_limit"`
	Currency      string `json:"currency"`
	Country       string `json:"country"`
	IsVIP         string `json:"is_vip"`
	RiskScore     string `json:"risk_score"`
}

// NormalizedRequest is the typed, canonical projection of a RawRequest.
// Currency and country are uppercase, product type lowercase, identifiers
// trimmed. RiskBucket is derived from RiskScore.
type NormalizedRequest struct {
	ID            string     `json:"id"`
	Date          time.Time  `json:"date"`
	ProductType   string     `json:"product_type"`
	ClientID      string     `json:"client_id"`
	AmountOrLimit float64    `json:"amount_or_limit"`
	Currency      string     `json:"currency"`
	Country       string     `json:"country"`
	IsVIP         bool       `json:"is_vip"`
	RiskScore     int        `json:"risk_score"`
	RiskBucket    RiskBucket `json:"risk_bucket"`
}

// RuleFailure records one failed rule check for one record.
type RuleFailure struct {
	RuleID   string   `json:"rule_id"`
	Severity Severity `json:"severity"`
	Reason   string   `json:"reason"`
}

// ValidationResult is the decision for one record. Decision is REJECT iff
// Failures is non-empty, and Failures preserves rule evaluation order.
type ValidationResult struct {
	Decision Decision      `json:"decision"`
	Failures []RuleFailure `json:"failures"`
}

// WorkflowStats are the record counts for a whole run. Total is always
// Valid + Invalid.
type WorkflowStats struct {
	Total   int `json:"total"`
	Valid   int `json:"valid"`
	Invalid int `json:"invalid"`
}
