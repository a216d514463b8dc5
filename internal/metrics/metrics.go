// Package metrics exports run outcomes in Prometheus text format.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/octans/frontcheck/pkg/models"
)

// Recorder owns a private registry so repeated runs in one process do not
// collide with the default registry.
type Recorder struct {
	registry      *prometheus.Registry
	checkSuccess  *prometheus.GaugeVec
	checkDuration *prometheus.GaugeVec
	runSuccess    prometheus.Gauge
	lastRun       prometheus.Gauge
}

// NewRecorder creates and registers the frontcheck metrics.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		checkSuccess: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "frontcheck_check_success",
				Help: "1 if the check passed on the last run, 0 otherwise",
			},
			[]string{"check"},
		),
		checkDuration: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "frontcheck_check_duration_seconds",
				Help: "Time spent on the check during the last run",
			},
			[]string{"check"},
		),
		runSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "frontcheck_run_success",
			Help: "1 if every check passed on the last run",
		}),
		lastRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "frontcheck_last_run_timestamp_seconds",
			Help: "Unix time the last run finished",
		}),
	}
	r.registry.MustRegister(r.checkSuccess, r.checkDuration, r.runSuccess, r.lastRun)
	return r
}

// Observe records a finished run.
func (r *Recorder) Observe(report *models.Report) {
	for _, s := range report.Steps {
		ok := 0.0
		if s.Status == models.StatusPassed {
			ok = 1
		}
		r.checkSuccess.WithLabelValues(s.Check).Set(ok)
		r.checkDuration.WithLabelValues(s.Check).Set(float64(s.DurationMs) / 1000)
	}
	if report.OK() {
		r.runSuccess.Set(1)
	} else {
		r.runSuccess.Set(0)
	}
	r.lastRun.Set(float64(report.FinishedAt.Unix()))
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// WriteTextfile writes all metrics to path for the node_exporter textfile
// collector. The file is replaced atomically.
func (r *Recorder) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, r.registry)
}
