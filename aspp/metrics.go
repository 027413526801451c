package aspp

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts evaluator work. Observations are made by the evaluator's
// collector only, never by workers.
type Metrics struct {
	pipelines prometheus.Counter
	rows      prometheus.Counter
	batches   prometheus.Counter
	duration  prometheus.Histogram
}

// NewMetrics registers the evaluator collectors on reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		pipelines: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "aspp_pipelines_evaluated_total",
			Help: "Pipelines evaluated over a full dataset.",
		}),
		rows: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "aspp_rows_evaluated_total",
			Help: "Row evaluations (pipelines x rows).",
		}),
		batches: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "aspp_evaluation_batches_total",
			Help: "Completed evaluation batches.",
		}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "aspp_pipeline_duration_seconds",
			Help:    "Wall time to evaluate one pipeline over the dataset.",
			Buckets: prometheus.ExponentialBuckets(0.0005, 4, 10),
		}),
	}
	for _, c := range []prometheus.Collector{m.pipelines, m.rows, m.batches, m.duration} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) observePipeline(rows int, took time.Duration) {
	if m == nil {
		return
	}
	m.pipelines.Inc()
	m.rows.Add(float64(rows))
	m.duration.Observe(took.Seconds())
}

func (m *Metrics) observeBatch() {
	if m == nil {
		return
	}
	m.batches.Inc()
}
