package admission

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the only accepted input date shape.
const DateLayout = "2006-01-02"

// Risk bucket thresholds over the integer risk score.
const (
	riskMedThreshold  = 34
	riskHighThreshold = 67
)

// NormalizationError reports a single malformed field in one record. It is
// record-scoped: the caller rejects the record and continues the run.
type NormalizationError struct {
	Field   string // input column name
	Value   string // offending raw value
	Message string
}

// Error implements the error interface.
func (e *NormalizationError) Error() string {
	return fmt.Sprintf("%s %s: %q", e.Field, e.Message, e.Value)
}

// Normalize converts a RawRequest into its typed canonical form. It is pure
// and deterministic; any malformed field yields a *NormalizationError.
func Normalize(raw RawRequest) (NormalizedRequest, error) {
	date, err := parseDate(raw.Date)
	if err != nil {
		return NormalizedRequest{}, err
	}

	amount, err := parseAmount(raw.AmountOrLimit)
	if err != nil {
		return NormalizedRequest{}, err
	}

	vip, err := parseBool(raw.IsVIP)
	if err != nil {
		return NormalizedRequest{}, err
	}

	score, err := parseRiskScore(raw.RiskScore)
	if err != nil {
		return NormalizedRequest{}, err
	}

	return NormalizedRequest{
		ID:            strings.TrimSpace(raw.ID),
		Date:          date,
		ProductType:   strings.ToLower(strings.TrimSpace(raw.ProductType)),
		ClientID:      strings.TrimSpace(raw.ClientID),
		AmountOrLimit: amount,
		Currency:      strings.ToUpper(strings.TrimSpace(raw.Currency)),
		Country:       strings.ToUpper(strings.TrimSpace(raw.Country)),
		IsVIP:         vip,
		RiskScore:     score,
		RiskBucket:    riskBucket(score),
	}, nil
}

func parseDate(s string) (time.Time, error) {
	trimmed := strings.TrimSpace(s)
	t, err := time.Parse(DateLayout, trimmed)
	if err != nil {
		return time.Time{}, &NormalizationError{
			Field:   "date",
			Value:   s,
			Message: "has invalid format (expected YYYY-MM-DD)",
		}
	}
	return t, nil
}

func parseAmount(s string) (float64, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return 0, &NormalizationError{Field: "amount_or_limit", Value: s, Message: "is empty"}
	}
	f, err := strconv.ParseFloat(trimmed, 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, &NormalizationError{Field: "amount_or_limit", Value: s, Message: "is not numeric"}
	}
	return f, nil
}

func parseBool(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "1", "yes", "y":
		return true, nil
	case "false", "0", "no", "n":
		return false, nil
	default:
		return false, &NormalizationError{Field: "is_vip", Value: s, Message: "is not a boolean"}
	}
}

func parseRiskScore(s string) (int, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return 0, &NormalizationError{Field: "risk_score", Value: s, Message: "is empty"}
	}
	n, err := strconv.Atoi(trimmed)
	if err != nil {
		return 0, &NormalizationError{Field: "risk_score", Value: s, Message: "is not an integer"}
	}
	return n, nil
}

func riskBucket(score int) RiskBucket {
	switch {
	case score < riskMedThreshold:
		return RiskLow
	case score < riskHighThreshold:
		return RiskMed
	default:
		return RiskHigh
	}
}
