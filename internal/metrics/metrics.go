package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Collector is the metrics interface the engine and workers record into.
type Collector interface {
	RecordUpdate(kind string)
	RecordOrderCreated(kind string)
	RecordEventFailure()
	RecordSweepRun()
	RecordSweepFailure()
	RecordExpiryWarning()
	RecordDeactivation()
}

// PromCollector implements Collector with Prometheus counters.
type PromCollector struct {
	updates       *prometheus.CounterVec
	ordersCreated *prometheus.CounterVec
	eventFailures prometheus.Counter
	sweepRuns     prometheus.Counter
	sweepFailures prometheus.Counter
	warnings      prometheus.Counter
	deactivations prometheus.Counter
}

// NewPromCollector creates a collector and registers its metrics.
func NewPromCollector(reg prometheus.Registerer) *PromCollector {
	c := &PromCollector{
		updates: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "subbot_updates_total",
			Help: "Inbound updates received, by kind.",
		}, []string{"kind"}),
		ordersCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "subbot_orders_created_total",
			Help: "Orders created, by kind.",
		}, []string{"kind"}),
		eventFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "subbot_event_failures_total",
			Help: "Updates whose processing was abandoned on error.",
		}),
		sweepRuns: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "subbot_sweep_runs_total",
			Help: "Expiry sweep invocations.",
		}),
		sweepFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "subbot_sweep_failures_total",
			Help: "Per-order failures inside the expiry sweep.",
		}),
		warnings: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "subbot_expiry_warnings_total",
			Help: "Expiry warnings delivered.",
		}),
		deactivations: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "subbot_deactivations_total",
			Help: "Subscriptions expired by the sweep.",
		}),
	}
	reg.MustRegister(c.updates, c.ordersCreated, c.eventFailures, c.sweepRuns, c.sweepFailures, c.warnings, c.deactivations)
	return c
}

func (c *PromCollector) RecordUpdate(kind string)       { c.updates.WithLabelValues(kind).Inc() }
func (c *PromCollector) RecordOrderCreated(kind string) { c.ordersCreated.WithLabelValues(kind).Inc() }
func (c *PromCollector) RecordEventFailure()            { c.eventFailures.Inc() }
func (c *PromCollector) RecordSweepRun()                { c.sweepRuns.Inc() }
func (c *PromCollector) RecordSweepFailure()            { c.sweepFailures.Inc() }
func (c *PromCollector) RecordExpiryWarning()           { c.warnings.Inc() }
func (c *PromCollector) RecordDeactivation()            { c.deactivations.Inc() }

// Noop is a Collector that records nothing; handy for tests.
type Noop struct{}

func (Noop) RecordUpdate(string)       {}
func (Noop) RecordOrderCreated(string) {}
func (Noop) RecordEventFailure()       {}
func (Noop) RecordSweepRun()           {}
func (Noop) RecordSweepFailure()       {}
func (Noop) RecordExpiryWarning()      {}
func (Noop) RecordDeactivation()       {}
