package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCollector_Counters(t *testing.T) {
	c := NewCollector("climate_test", prometheus.NewRegistry())

	c.RecordAPIRequest("/api/v1.0/{start}", "GET", "404")
	c.RecordAPIRequest("/api/v1.0/{start}", "GET", "404")
	c.RecordAPIError("invalid_date", "/api/v1.0/{start}")
	c.RecordDBError("select_error")
	c.RecordIngestionError("parse_error")

	if got := testutil.ToFloat64(c.APIRequestsTotal.WithLabelValues("/api/v1.0/{start}", "GET", "404")); got != 2 {
		t.Errorf("api_requests_total = %v, want 2", got)
	}
	if got := testutil.ToFloat64(c.APIErrorsTotal.WithLabelValues("invalid_date", "/api/v1.0/{start}")); got != 1 {
		t.Errorf("api_errors_total = %v, want 1", got)
	}
	if got := testutil.ToFloat64(c.DBErrorsTotal.WithLabelValues("select_error")); got != 1 {
		t.Errorf("db_errors_total = %v, want 1", got)
	}
	if got := testutil.ToFloat64(c.IngestionErrorsTotal.WithLabelValues("parse_error")); got != 1 {
		t.Errorf("ingestion_errors_total = %v, want 1", got)
	}
}

func TestCollector_UpdateDBConnectionPool(t *testing.T) {
	c := NewCollector("climate_test", prometheus.NewRegistry())

	c.UpdateDBConnectionPool(3, 2, 5)

	tests := map[string]float64{"in_use": 3, "idle": 2, "total": 5}
	for state, want := range tests {
		if got := testutil.ToFloat64(c.DBConnectionPool.WithLabelValues(state)); got != want {
			t.Errorf("db_connection_pool{state=%q} = %v, want %v", state, got, want)
		}
	}
}

func TestCollector_SeparateRegistries(t *testing.T) {
	// Registering the same namespace twice must not panic when registries differ
	NewCollector("climate_test", prometheus.NewRegistry())
	NewCollector("climate_test", prometheus.NewRegistry())
}

func TestTimer_ObserveDuration(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector("climate_test", reg)

	timer := c.NewTimer(c.StatisticsQueryDuration)
	time.Sleep(time.Millisecond)
	if d := timer.ObserveDuration(); d <= 0 {
		t.Errorf("ObserveDuration() = %v, want > 0", d)
	}

	if got := testutil.CollectAndCount(c.StatisticsQueryDuration); got != 1 {
		t.Errorf("statistics_query_duration_seconds series = %d, want 1", got)
	}

	nilTimer := c.NewTimer(nil)
	if d := nilTimer.ObserveDuration(); d < 0 {
		t.Errorf("ObserveDuration() with nil observer = %v, want >= 0", d)
	}
}
