package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

func gatherValue(t *testing.T, reg *prometheus.Registry, name string) float64 {
	t.Helper()

	metrics, err := reg.Gather()
	require.NoError(t, err, "gathering metrics should not fail")

	for _, mf := range metrics {
		if mf.GetName() == name {
			require.Len(t, mf.GetMetric(), 1)
			return mf.GetMetric()[0].GetCounter().GetValue()
		}
	}

	t.Fatalf("metric %s not found", name)
	return 0
}

func TestCollector(t *testing.T) {
	t.Parallel()

	t.Run("http status counted by code", func(t *testing.T) {
		reg := prometheus.NewRegistry()
		c := NewCollector(reg)

		c.RecordHTTPStatus(http.StatusOK)
		c.RecordHTTPStatus(http.StatusOK)
		c.RecordHTTPStatus(http.StatusUnauthorized)

		metrics, err := reg.Gather()
		require.NoError(t, err)

		for _, mf := range metrics {
			if mf.GetName() != "smoothtransact_http_status_total" {
				continue
			}
			require.Len(t, mf.GetMetric(), 2, "two status codes should be tracked")
		}
	})

	t.Run("auth events counted", func(t *testing.T) {
		reg := prometheus.NewRegistry()
		c := NewCollector(reg)

		c.RecordAuthEvent("signin", "ok")

		require.Equal(t, float64(1), gatherValue(t, reg, "smoothtransact_auth_events_total"))
	})

	t.Run("payments settled counted", func(t *testing.T) {
		reg := prometheus.NewRegistry()
		c := NewCollector(reg)

		c.RecordPaymentSettled()
		c.RecordPaymentSettled()

		require.Equal(t, float64(2), gatherValue(t, reg, "smoothtransact_payments_settled_total"))
	})

	t.Run("latency observed without panic", func(t *testing.T) {
		reg := prometheus.NewRegistry()
		c := NewCollector(reg)

		c.RecordRequestLatency("/api/auth/signin", 15*time.Millisecond)

		metrics, err := reg.Gather()
		require.NoError(t, err)
		require.NotEmpty(t, metrics)
	})
}

func TestHandler(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	c := NewCollector(reg)
	c.RecordHTTPStatus(http.StatusOK)

	srv := httptest.NewServer(Handler(reg))
	t.Cleanup(srv.Close)

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close() // nolint:errcheck

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, string(body), "smoothtransact_http_status_total")
}
