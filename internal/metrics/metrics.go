// Package metrics records import counters on a private prometheus registry.
//
// A run is a short-lived process, so metrics are not scraped; they are
// written once at the end in the node_exporter textfile format.
package metrics

import (
	"time"

	"github.com/go-faster/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/JonMunkholm/importdata/internal/core"
)

// Recorder implements core.Recorder.
type Recorder struct {
	registry *prometheus.Registry

	rowsTotal    *prometheus.CounterVec
	entriesTotal *prometheus.CounterVec
	rowDuration  *prometheus.HistogramVec
	runDuration  *prometheus.GaugeVec
}

var _ core.Recorder = (*Recorder)(nil)

// New returns a recorder with its own registry.
func New() *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &Recorder{
		registry: reg,
		rowsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "importdata",
			Name:      "rows_total",
			Help:      "Rows processed, by entity and outcome.",
		}, []string{"entity", "outcome"}),
		entriesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "importdata",
			Name:      "entries_total",
			Help:      "Row error list entries, by entity and severity.",
		}, []string{"entity", "severity"}),
		rowDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "importdata",
			Name:      "row_duration_seconds",
			Help:      "Time spent importing one row.",
			Buckets: []float64{
				0.001, 0.002, 0.005,
				0.01, 0.02, 0.05,
				0.1, 0.2, 0.5,
				1, 2, 5,
			},
		}, []string{"entity"}),
		runDuration: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "importdata",
			Name:      "run_duration_seconds",
			Help:      "Wall time of the last run, by action.",
		}, []string{"action"}),
	}
}

// ObserveRow records one processed row.
func (r *Recorder) ObserveRow(entity string, outcome core.Outcome, entries core.ErrorList, elapsed time.Duration) {
	r.rowsTotal.WithLabelValues(entity, string(outcome)).Inc()
	for _, e := range entries {
		r.entriesTotal.WithLabelValues(entity, string(e.Severity)).Inc()
	}
	r.rowDuration.WithLabelValues(entity).Observe(elapsed.Seconds())
}

// ObserveRun records the duration of a finished run.
func (r *Recorder) ObserveRun(action string, elapsed time.Duration) {
	r.runDuration.WithLabelValues(action).Set(elapsed.Seconds())
}

// Registry exposes the registry, mainly for tests.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// WriteTextfile writes every metric to path atomically.
func (r *Recorder) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return errors.Wrapf(err, "write metrics to %s", path)
	}
	return nil
}
