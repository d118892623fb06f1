package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "finanalyzer"

// Metrics holds the analyzer's Prometheus collectors. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	analyses       *prometheus.CounterVec
	llmDuration    prometheus.Histogram
	extractionTime prometheus.Histogram
	pagesExtracted prometheus.Counter
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		analyses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "analyses_total",
			Help:      "Analyses and comparisons by outcome.",
		}, []string{"operation", "analysis_type", "outcome"}),
		llmDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "llm_request_duration_seconds",
			Help:      "Duration of chat completion requests.",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 20, 40, 80},
		}),
		extractionTime: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "extraction_duration_seconds",
			Help:      "Duration of PDF text extraction.",
			Buckets:   prometheus.DefBuckets,
		}),
		pagesExtracted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pages_extracted_total",
			Help:      "Pages whose text was extracted.",
		}),
	}

	reg.MustRegister(m.analyses, m.llmDuration, m.extractionTime, m.pagesExtracted)

	return m
}

func (m *Metrics) ObserveAnalysis(operation, analysisType, outcome string) {
	if m == nil {
		return
	}
	m.analyses.WithLabelValues(operation, analysisType, outcome).Inc()
}

func (m *Metrics) ObserveLLM(d time.Duration) {
	if m == nil {
		return
	}
	m.llmDuration.Observe(d.Seconds())
}

func (m *Metrics) ObserveExtraction(d time.Duration, pages int) {
	if m == nil {
		return
	}
	m.extractionTime.Observe(d.Seconds())
	if pages > 0 {
		m.pagesExtracted.Add(float64(pages))
	}
}
