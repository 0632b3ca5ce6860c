package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// TickMetricsCollector records game loop tick outcomes. It implements the
// gameloop.Metrics interface.
type TickMetricsCollector struct {
	tickOutcomesTotal *prometheus.CounterVec
	tickDuration      prometheus.Histogram
}

// NewTickMetricsCollector creates a new tick metrics collector
func NewTickMetricsCollector() *TickMetricsCollector {
	return &TickMetricsCollector{
		// Tick outcome counter per queue type
		tickOutcomesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "tick_outcomes_total",
				Help:      "Total number of tick item outcomes by queue type and outcome",
			},
			[]string{"queue_type", "outcome"},
		),

		// Full tick pass duration histogram
		tickDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "tick_duration_seconds",
				Help:      "Tick pass duration distribution",
				Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0},
			},
		),
	}
}

// RecordTickOutcome records one processed due item
func (c *TickMetricsCollector) RecordTickOutcome(queueType, outcome string) {
	c.tickOutcomesTotal.WithLabelValues(queueType, outcome).Inc()
}

// RecordTickDuration records the duration of a full tick pass
func (c *TickMetricsCollector) RecordTickDuration(seconds float64) {
	c.tickDuration.Observe(seconds)
}

// Register registers all tick metrics with the Prometheus registry
func (c *TickMetricsCollector) Register() error {
	if Registry == nil {
		return nil // Metrics not enabled
	}

	metrics := []prometheus.Collector{
		c.tickOutcomesTotal,
		c.tickDuration,
	}

	for _, metric := range metrics {
		if err := Registry.Register(metric); err != nil {
			return err
		}
	}

	return nil
}
