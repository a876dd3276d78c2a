// Package metrics provides Prometheus metrics for the import pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"photo-curator/internal/domain"
	"photo-curator/internal/pipeline"
)

// Result label values for imports_total.
const (
	ResultRegistered  = "registered"
	ResultQuarantined = "quarantined"
	ResultStuck       = "stuck" // quarantine itself failed
)

// PipelineMetrics contains the counters the watch loop maintains.
type PipelineMetrics struct {
	importsTotal    *prometheus.CounterVec
	failuresTotal   *prometheus.CounterVec
	promotionsTotal prometheus.Counter
	pendingFiles    prometheus.Gauge
	batchDuration   prometheus.Histogram

	collectors []prometheus.Collector
}

// NewPipelineMetrics creates the metrics and registers them with registry.
func NewPipelineMetrics(registry prometheus.Registerer) (*PipelineMetrics, error) {
	m := &PipelineMetrics{}
	m.initMetrics()
	if err := registry.Register(m); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *PipelineMetrics) initMetrics() {
	m.importsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "photo_curator_imports_total",
			Help: "Total number of import attempts by result",
		},
		[]string{"result"},
	)
	m.failuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "photo_curator_failures_total",
			Help: "Total number of import failures by error kind",
		},
		[]string{"kind"},
	)
	m.promotionsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "photo_curator_promotions_total",
		Help: "Total number of annotated photos promoted to the import directory",
	})
	m.pendingFiles = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "photo_curator_pending_files",
		Help: "Photos found in the import directory at the start of the last batch",
	})
	m.batchDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "photo_curator_batch_duration_seconds",
		Help:    "Time taken to run one import batch",
		Buckets: prometheus.ExponentialBuckets(0.01, 2, 14), // 10ms to ~80s
	})

	m.collectors = []prometheus.Collector{
		m.importsTotal,
		m.failuresTotal,
		m.promotionsTotal,
		m.pendingFiles,
		m.batchDuration,
	}
}

// Describe implements the Collector interface
func (m *PipelineMetrics) Describe(ch chan<- *prometheus.Desc) {
	for _, c := range m.collectors {
		c.Describe(ch)
	}
}

// Collect implements the Collector interface
func (m *PipelineMetrics) Collect(ch chan<- prometheus.Metric) {
	for _, c := range m.collectors {
		c.Collect(ch)
	}
}

// RecordOutcome counts one file's import.
func (m *PipelineMetrics) RecordOutcome(o pipeline.Outcome) {
	switch o.State {
	case pipeline.Registered:
		m.importsTotal.WithLabelValues(ResultRegistered).Inc()
		return
	case pipeline.Quarantined:
		m.importsTotal.WithLabelValues(ResultQuarantined).Inc()
	default:
		m.importsTotal.WithLabelValues(ResultStuck).Inc()
	}
	m.failuresTotal.WithLabelValues(kindLabel(o.Kind())).Inc()
}

// RecordBatch counts every outcome of b and observes its duration.
func (m *PipelineMetrics) RecordBatch(b pipeline.Batch) {
	for _, o := range b.Outcomes {
		m.RecordOutcome(o)
	}
	m.batchDuration.Observe(b.Duration.Seconds())
}

// RecordPromotions adds n promoted photos.
func (m *PipelineMetrics) RecordPromotions(n int) {
	if n > 0 {
		m.promotionsTotal.Add(float64(n))
	}
}

// SetPending sets the number of photos waiting for import.
func (m *PipelineMetrics) SetPending(n int) {
	m.pendingFiles.Set(float64(n))
}

func kindLabel(k domain.ErrorKind) string {
	if k == "" {
		return "unknown"
	}
	return string(k)
}
