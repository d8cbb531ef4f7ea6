package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"
)

// Module wires the Prometheus registry and collector.
var Module = fx.Provide(
	func() *prometheus.Registry { return prometheus.NewRegistry() },
	func(reg *prometheus.Registry) prometheus.Registerer { return reg },
	func(reg prometheus.Registerer) *PromCollector { return NewPromCollector(reg) },
	func(c *PromCollector) Collector { return c },
)
