package quality

import (
	"fmt"
	"math"
)

// Gate verdicts. WARN is a governance signal, not an error: the run still
// completes.
const (
	GatePass = "PASS"
	GateWarn = "WARN"
)

// GatePolicy is the versioned threshold set the gate evaluates against.
type GatePolicy struct {
	PolicyID          string  `json:"policy_id" yaml:"policy_id"`
	MaxRejectionRate  float64 `json:"max_rejection_rate" yaml:"max_rejection_rate"`
	MinAcceptanceRate float64 `json:"min_acceptance_rate" yaml:"min_acceptance_rate"`
}

// DefaultGatePolicy returns the baseline policy.
func DefaultGatePolicy() GatePolicy {
	return GatePolicy{
		PolicyID:          "quality_gate.v2",
		MaxRejectionRate:  0.40,
		MinAcceptanceRate: 0.10,
	}
}

// GateDecision is the gate verdict with everything needed to replay it: the
// policy verbatim, the rationale, and the rounded input rates.
type GateDecision struct {
	Decision        string             `json:"decision"`
	Rationale       string             `json:"rationale"`
	PolicyID        string             `json:"policy_id"`
	Policy          GatePolicy         `json:"policy"`
	MetricsSnapshot map[string]float64 `json:"metrics_snapshot"`
}

// EvaluateGate applies the policy to the aggregate rates. First match wins:
// excess rejection, then insufficient acceptance, then PASS.
func EvaluateGate(acceptanceRate, rejectionRate float64, policy GatePolicy) GateDecision {
	snapshot := map[string]float64{
		"acceptance_rate": Round4(acceptanceRate),
		"rejection_rate":  Round4(rejectionRate),
	}

	if rejectionRate > policy.MaxRejectionRate {
		return GateDecision{
			Decision:        GateWarn,
			Rationale:       fmt.Sprintf("Rejection rate above threshold: %.4f > %.4f", rejectionRate, policy.MaxRejectionRate),
			PolicyID:        policy.PolicyID,
			Policy:          policy,
			MetricsSnapshot: snapshot,
		}
	}

	if acceptanceRate < policy.MinAcceptanceRate {
		return GateDecision{
			Decision:        GateWarn,
			Rationale:       fmt.Sprintf("Acceptance rate below minimum: %.4f < %.4f", acceptanceRate, policy.MinAcceptanceRate),
			PolicyID:        policy.PolicyID,
			Policy:          policy,
			MetricsSnapshot: snapshot,
		}
	}

	return GateDecision{
		Decision:        GatePass,
		Rationale:       "Quality gate passed",
		PolicyID:        policy.PolicyID,
		Policy:          policy,
		MetricsSnapshot: snapshot,
	}
}

// SafeRate divides numer by denom, defining a zero denominator as rate 0.0.
func SafeRate(numer, denom int) float64 {
	if denom <= 0 {
		return 0.0
	}
	return float64(numer) / float64(denom)
}

// Round4 rounds to four decimal digits, the precision reported in every
// metrics snapshot.
func Round4(x float64) float64 {
	return math.Round(x*10000) / 10000
}
