package obs_test

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-pricing/internal/obs"
)

func TestDomainMetricsObserveQuote(t *testing.T) {
	registry := prometheus.NewRegistry()
	obs.MustRegisterDomainMetrics("pricing", registry)

	obs.ObserveQuote("quote", "ok", 3, 1.5)
	obs.ObserveQuote("quote", "invalid", 0, 0.2)
	obs.ObserveMerge("difference", "ok")

	require.Equal(t, float64(1), testutil.ToFloat64(obs.QuoteEvaluationsTotal.WithLabelValues("quote", "ok")))
	require.Equal(t, float64(1), testutil.ToFloat64(obs.QuoteEvaluationsTotal.WithLabelValues("quote", "invalid")))
	require.Equal(t, float64(1), testutil.ToFloat64(obs.QuoteMergeTotal.WithLabelValues("difference", "ok")))
	require.Equal(t, 1, testutil.CollectAndCount(obs.QuoteLines))
}
