// Package metrics collects run counters and exports them as a Prometheus
// textfile artifact. A batch run has no scrape endpoint, so the standard
// node-exporter textfile-collector format stands in for one: drop the written
// file into a textfile collector directory and the counters surface on the
// next scrape.
package metrics

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
)

const namespace = "saturn"

// Collector owns the per-run metric instances and their registry.
type Collector struct {
	registry *prometheus.Registry

	recordsTotal   prometheus.Counter
	recordsValid   prometheus.Counter
	recordsInvalid prometheus.Counter
	ruleFailures   *prometheus.CounterVec
	gateDecision   *prometheus.GaugeVec
	stageDuration  *prometheus.GaugeVec
}

// NewCollector creates a collector with a fresh registry. Each run owns its
// own collector; nothing is shared across runs.
func NewCollector() *Collector {
	registry := prometheus.NewRegistry()

	c := &Collector{
		registry: registry,
		recordsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_total",
			Help:      "Raw records read from the input file.",
		}),
		recordsValid: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_valid_total",
			Help:      "Records accepted by the eligibility rules.",
		}),
		recordsInvalid: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_invalid_total",
			Help:      "Records rejected by normalization or eligibility rules.",
		}),
		ruleFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rule_failures_total",
			Help:      "Rule check failures by rule id.",
		}, []string{"rule_id"}),
		gateDecision: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "quality_gate_decision",
			Help:      "Quality gate verdict (1 for the decision taken).",
		}, []string{"decision", "policy_id"}),
		stageDuration: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "stage_duration_milliseconds",
			Help:      "Wall time per pipeline stage.",
		}, []string{"stage"}),
	}

	registry.MustRegister(
		c.recordsTotal,
		c.recordsValid,
		c.recordsInvalid,
		c.ruleFailures,
		c.gateDecision,
		c.stageDuration,
	)
	return c
}

// RecordRead counts one raw record read from the input.
func (c *Collector) RecordRead() { c.recordsTotal.Inc() }

// RecordAccepted counts one accepted record.
func (c *Collector) RecordAccepted() { c.recordsValid.Inc() }

// RecordRejected counts one rejected record.
func (c *Collector) RecordRejected() { c.recordsInvalid.Inc() }

// RecordRuleFailure counts one failed rule check.
func (c *Collector) RecordRuleFailure(ruleID string) {
	c.ruleFailures.WithLabelValues(ruleID).Inc()
}

// RecordGateDecision marks the gate verdict taken.
func (c *Collector) RecordGateDecision(decision, policyID string) {
	c.gateDecision.WithLabelValues(decision, policyID).Set(1)
}

// RecordStageDuration records a stage's wall time.
func (c *Collector) RecordStageDuration(stage string, ms int64) {
	c.stageDuration.WithLabelValues(stage).Set(float64(ms))
}

// WriteTextfile gathers the registry and writes the metrics to path in
// Prometheus text exposition format.
func (c *Collector) WriteTextfile(path string) error {
	families, err := c.registry.Gather()
	if err != nil {
		return fmt.Errorf("gathering metrics: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating metrics directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating metrics file: %w", err)
	}
	defer f.Close()

	enc := expfmt.NewEncoder(f, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, mf := range families {
		if err := enc.Encode(mf); err != nil {
			return fmt.Errorf("encoding metric family %s: %w", mf.GetName(), err)
		}
	}
	return nil
}
