package metrics

import (
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveAnalysis(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ObserveAnalysis("analyze", "risk-factors", "success")
	m.ObserveAnalysis("analyze", "risk-factors", "success")
	m.ObserveAnalysis("compare", "", "remote")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.analyses.WithLabelValues("analyze", "risk-factors", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.analyses.WithLabelValues("compare", "", "remote")))
}

func TestObserveExtraction(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ObserveExtraction(20*time.Millisecond, 3)
	m.ObserveExtraction(10*time.Millisecond, 0)
	m.ObserveLLM(time.Second)

	assert.Equal(t, 3.0, testutil.ToFloat64(m.pagesExtracted))

	expected := `
# HELP finanalyzer_llm_request_duration_seconds Duration of chat completion requests.
# TYPE finanalyzer_llm_request_duration_seconds histogram
finanalyzer_llm_request_duration_seconds_bucket{le="0.5"} 0
finanalyzer_llm_request_duration_seconds_bucket{le="1"} 1
finanalyzer_llm_request_duration_seconds_bucket{le="2"} 1
finanalyzer_llm_request_duration_seconds_bucket{le="5"} 1
finanalyzer_llm_request_duration_seconds_bucket{le="10"} 1
finanalyzer_llm_request_duration_seconds_bucket{le="20"} 1
finanalyzer_llm_request_duration_seconds_bucket{le="40"} 1
finanalyzer_llm_request_duration_seconds_bucket{le="80"} 1
finanalyzer_llm_request_duration_seconds_bucket{le="+Inf"} 1
finanalyzer_llm_request_duration_seconds_sum 1
finanalyzer_llm_request_duration_seconds_count 1
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "finanalyzer_llm_request_duration_seconds"))
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.ObserveAnalysis("analyze", "risk-factors", "success")
		m.ObserveLLM(time.Second)
		m.ObserveExtraction(time.Second, 1)
	})
}
