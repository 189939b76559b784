package metrics

import (
	"errors"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserve(t *testing.T) {
	m := New()

	m.ObserveLoad(time.Millisecond, nil)
	m.ObserveLoad(time.Millisecond, errors.New("bad csv"))
	m.ObserveOperation("dedupe", time.Millisecond, 3, nil)
	m.ObserveOperation("dedupe", time.Millisecond, 2, nil)
	m.ObserveOperation("scale", time.Millisecond, 0, errors.New("no numeric columns"))
	m.SetSessions(7)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.loads.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.loads.WithLabelValues("error")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.operations.WithLabelValues("dedupe", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.operations.WithLabelValues("scale", "error")))
	assert.Equal(t, 5.0, testutil.ToFloat64(m.rowsRemoved.WithLabelValues("dedupe")))
	assert.Equal(t, 7.0, testutil.ToFloat64(m.sessions))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.ObserveLoad(time.Second, nil)
	m.ObserveOperation("dedupe", time.Second, 1, nil)
	m.SetSessions(1)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	assert.Equal(t, 404, rec.Code)
}

func TestHandler(t *testing.T) {
	m := New()
	m.ObserveOperation("missing", time.Millisecond, 1, nil)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	require.Equal(t, 200, rec.Code)

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `tidycsv_operations_total{operation="missing",result="ok"} 1`)
	assert.Contains(t, string(body), "tidycsv_operation_duration_seconds_bucket")
}
