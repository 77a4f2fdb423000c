package obs

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	domainOnce sync.Once

	// QuoteEvaluationsTotal counts quote evaluations by operation and outcome.
	QuoteEvaluationsTotal *prometheus.CounterVec
	// QuoteMergeTotal counts merge requests by strategy and outcome.
	QuoteMergeTotal *prometheus.CounterVec
	// QuoteLines records the number of lines priced per evaluation.
	QuoteLines prometheus.Histogram
	// QuoteEvaluationLatency records evaluation latency in milliseconds.
	QuoteEvaluationLatency *prometheus.HistogramVec
)

// MustRegisterDomainMetrics initialises and registers domain-specific Prometheus collectors.
func MustRegisterDomainMetrics(namespace string, reg prometheus.Registerer) {
	domainOnce.Do(func() {
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		QuoteEvaluationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "quote_evaluations_total",
			Help:      "Count of quote evaluations by operation and outcome.",
		}, []string{"op", "result"})
		QuoteMergeTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "quote_merge_total",
			Help:      "Count of quote merges by strategy and outcome.",
		}, []string{"strategy", "result"})
		QuoteLines = prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "quote_lines",
			Help:      "Number of lines priced per quote evaluation.",
			Buckets:   []float64{1, 2, 5, 10, 25, 50, 100, 200},
		})
		QuoteEvaluationLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "quote_evaluation_duration_ms",
			Help:      "Latency of quote evaluations in milliseconds.",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 25, 50, 100},
		}, []string{"op"})

		QuoteEvaluationsTotal = registerOrReuse(reg, QuoteEvaluationsTotal)
		QuoteMergeTotal = registerOrReuse(reg, QuoteMergeTotal)
		QuoteLines = registerOrReuse(reg, QuoteLines)
		QuoteEvaluationLatency = registerOrReuse(reg, QuoteEvaluationLatency)
	})
}

// ObserveQuote records one evaluation. It is a no-op until the domain metrics are registered.
func ObserveQuote(op, result string, lines int, elapsedMillis float64) {
	if QuoteEvaluationsTotal == nil {
		return
	}
	QuoteEvaluationsTotal.WithLabelValues(op, result).Inc()
	if result == "ok" {
		QuoteLines.Observe(float64(lines))
	}
	QuoteEvaluationLatency.WithLabelValues(op).Observe(elapsedMillis)
}

// ObserveMerge records one merge outcome.
func ObserveMerge(strategy, result string) {
	if QuoteMergeTotal == nil {
		return
	}
	QuoteMergeTotal.WithLabelValues(strategy, result).Inc()
}
