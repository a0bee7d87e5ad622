// Package metrics implements Prometheus metrics for one analysis pass.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "seqgap"

// Metrics holds the collectors of one run on a private registry, so tests and
// repeated runs in one process never collide on the default registry.
type Metrics struct {
	registry *prometheus.Registry

	// PacketsTotal counts packets read from the capture by class
	PacketsTotal *prometheus.CounterVec

	// GapsTotal counts forward gaps detected across all streams
	GapsTotal prometheus.Counter

	// MissingSequencesTotal counts sequence numbers reported missing when a gap is detected
	MissingSequencesTotal prometheus.Counter

	// RecoveredSequencesTotal counts missing sequence numbers filled by overlapping packets
	RecoveredSequencesTotal prometheus.Counter

	// OutcomesTotal counts gap-engine outcomes by name
	OutcomesTotal *prometheus.CounterVec

	// SelectedPacketsTotal counts packets copied to the output capture
	SelectedPacketsTotal prometheus.Counter

	// Streams tracks the number of streams with sequence state
	Streams prometheus.Gauge
}

// New creates the collectors. withProcess adds Go runtime and process
// collectors, useful when the registry is served while a long capture runs.
func New(exchange string, withProcess bool) *Metrics {
	reg := prometheus.NewRegistry()
	if withProcess {
		reg.MustRegister(collectors.NewGoCollector())
		reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	}

	constLabels := prometheus.Labels{"exchange": exchange}
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		PacketsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   namespace,
				Name:        "packets_total",
				Help:        "Total number of packets read from the capture, by class",
				ConstLabels: constLabels,
			},
			[]string{"class"},
		),
		GapsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "gaps_total",
			Help:        "Total number of forward sequence gaps detected",
			ConstLabels: constLabels,
		}),
		MissingSequencesTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "missing_sequences_total",
			Help:        "Total number of sequence numbers found missing",
			ConstLabels: constLabels,
		}),
		RecoveredSequencesTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "recovered_sequences_total",
			Help:        "Total number of missing sequence numbers later filled by overlapping packets",
			ConstLabels: constLabels,
		}),
		OutcomesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   namespace,
				Name:        "outcomes_total",
				Help:        "Total number of packets per gap-detection outcome",
				ConstLabels: constLabels,
			},
			[]string{"outcome"},
		),
		SelectedPacketsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "selected_packets_total",
			Help:        "Total number of packets copied to the output capture",
			ConstLabels: constLabels,
		}),
		Streams: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   namespace,
			Name:        "streams",
			Help:        "Number of streams with sequence state",
			ConstLabels: constLabels,
		}),
	}
}

// Registry exposes the private registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// WriteTextfile writes every metric in the text exposition format, for the
// node_exporter textfile collector. The file is replaced atomically.
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("failed to write metrics textfile %s: %w", path, err)
	}
	return nil
}
