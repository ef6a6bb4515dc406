package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/fx"
)

const namespace = "unfc_tracker"

// Metrics is safe to use as a nil pointer; every method is then a no-op.
type Metrics struct {
	Registry *prometheus.Registry

	runs        *prometheus.CounterVec
	runDuration *prometheus.HistogramVec
	jobs        *prometheus.CounterVec
	rows        *prometheus.GaugeVec
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := &Metrics{
		Registry: reg,
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Tracker operations by outcome.",
		}, []string{"operation", "outcome"}),
		runDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Wall time of tracker operations.",
			Buckets:   []float64{0.1, 1, 10, 30, 60, 300, 900, 1800},
		}, []string{"operation"}),
		jobs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pipeline_jobs_total",
			Help:      "Ingestion jobs by result.",
		}, []string{"result"}),
		rows: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "table_rows",
			Help:      "Rows currently stored per table.",
		}, []string{"table"}),
	}
	reg.MustRegister(m.runs, m.runDuration, m.jobs, m.rows)
	return m
}

func (m *Metrics) ObserveRun(operation string, start time.Time, err error) {
	if m == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	m.runs.WithLabelValues(operation, outcome).Inc()
	m.runDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

// JobDone counts one pipeline job; result is built, errored or fallback.
func (m *Metrics) JobDone(result string) {
	if m == nil {
		return
	}
	m.jobs.WithLabelValues(result).Inc()
}

func (m *Metrics) SetRows(table string, n int) {
	if m == nil {
		return
	}
	m.rows.WithLabelValues(table).Set(float64(n))
}

var Module = fx.Provide(New)
