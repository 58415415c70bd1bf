package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"marketsync-service/internal/domain"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Counters(t *testing.T) {
	m := New()
	m.ObserveFetch(domain.ExchangeNSE, true, 50, 3*time.Second)
	m.ObserveFetch(domain.ExchangeNSE, false, 0, 45*time.Second)
	m.ObserveFetch(domain.ExchangeBSE, true, 8, time.Second)
	m.CycleSkipped()
	m.AlertSent(domain.ExchangeNSE)
	m.AlertSuppressed(domain.ExchangeNSE)
	m.AlertSuppressed(domain.ExchangeNSE)
	m.DurableWriteFailed(domain.ExchangeBSE)
	m.CacheSize(58)

	require.Equal(t, 1.0, testutil.ToFloat64(m.fetchTotal.WithLabelValues("NSE", "ok")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.fetchTotal.WithLabelValues("NSE", "failed")))
	require.Equal(t, 50.0, testutil.ToFloat64(m.fetchRecords.WithLabelValues("NSE")))
	require.Equal(t, 8.0, testutil.ToFloat64(m.fetchRecords.WithLabelValues("BSE")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.cyclesSkipped))
	require.Equal(t, 2.0, testutil.ToFloat64(m.alertsDropped.WithLabelValues("NSE")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.durableFailures.WithLabelValues("BSE")))
	require.Equal(t, 58.0, testutil.ToFloat64(m.cacheSize))
}

func TestMetrics_Handler(t *testing.T) {
	m := New()
	m.CacheSize(3)
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	require.True(t, strings.Contains(body, "marketsync_cache_records 3"), body)
	require.Contains(t, body, "go_goroutines")
}
