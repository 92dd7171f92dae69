// Package metrics exports run outcomes as Prometheus metrics in the textfile
// collector format, so node_exporter can pick up convergence status.
package metrics

import (
	"os"
	"path/filepath"

	"github.com/arthur-debert/omiros/pkg/errors"
	"github.com/arthur-debert/omiros/pkg/logging"
	"github.com/arthur-debert/omiros/pkg/types"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "omiros"

// Recorder holds the metrics of one run in its own registry
type Recorder struct {
	registry *prometheus.Registry

	actions       *prometheus.CounterVec
	duration      *prometheus.HistogramVec
	probeFailures *prometheus.CounterVec
	lastSuccess   prometheus.Gauge
	lastRun       prometheus.Gauge
}

// NewRecorder creates a Recorder with every metric registered.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		actions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "actions_total",
				Help:      "Actions applied in the last run by domain, kind and result.",
			},
			[]string{"domain", "kind", "result"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "action_duration_seconds",
				Help:      "Time spent applying actions, in seconds.",
				Buckets:   prometheus.ExponentialBuckets(0.01, 4, 8),
			},
			[]string{"domain"},
		),
		probeFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "probe_failures_total",
				Help:      "Domains whose actual state could not be read in the last run.",
			},
			[]string{"domain"},
		),
		lastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_success",
			Help:      "1 if the last run had no failures, 0 otherwise.",
		}),
		lastRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time the last run started.",
		}),
	}
	r.registry.MustRegister(r.actions, r.duration, r.probeFailures, r.lastSuccess, r.lastRun)
	return r
}

// Registry returns the registry holding the run's metrics.
func (r *Recorder) Registry() *prometheus.Registry { return r.registry }

// Record adds a run report to the metrics.
func (r *Recorder) Record(report types.RunReport) {
	for _, dr := range report.Domains {
		domain := string(dr.Domain)
		if dr.ProbeErr != nil {
			r.probeFailures.WithLabelValues(domain).Inc()
		}
		for _, o := range dr.Outcomes {
			r.actions.WithLabelValues(domain, string(o.Action.Kind), string(o.Result)).Inc()
			if o.Result != types.ResultSkipped {
				r.duration.WithLabelValues(domain).Observe(o.Duration.Seconds())
			}
		}
	}

	if report.Failed() {
		r.lastSuccess.Set(0)
	} else {
		r.lastSuccess.Set(1)
	}
	r.lastRun.Set(float64(report.Started.Unix()))
}

// WriteTextfile writes the metrics to path atomically.
func (r *Recorder) WriteTextfile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.Wrapf(err, errors.ErrDirCreate, "cannot create %s", filepath.Dir(path))
	}
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite, "cannot write metrics to %s", path)
	}
	logger := logging.GetLogger("metrics")
	logger.Debug().Str("path", path).Msg("Metrics written")
	return nil
}

// Export records report and writes it to path. An empty path does nothing.
func Export(report types.RunReport, path string) error {
	if path == "" {
		return nil
	}
	r := NewRecorder()
	r.Record(report)
	return r.WriteTextfile(path)
}
