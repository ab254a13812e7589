package observability_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/domrec/pkg/observability"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Counters(t *testing.T) {
	m := observability.NewMetrics()

	m.ActionRecorded("click")
	m.ActionRecorded("click")
	m.ActionRejected("skipped")
	m.ReplayDispatched()
	m.ReplaySkipped("tangent")
	m.ReplayPass(120 * time.Millisecond)
	m.StoreRequest(http.MethodGet, http.StatusNotFound)

	expected := `
# HELP domrec_actions_recorded_total Total number of actions retained by recording sessions
# TYPE domrec_actions_recorded_total counter
domrec_actions_recorded_total{type="click"} 2
# HELP domrec_store_requests_total Total number of store endpoint requests
# TYPE domrec_store_requests_total counter
domrec_store_requests_total{code="404",method="GET"} 1
`
	err := testutil.GatherAndCompare(m.Registry(), strings.NewReader(expected),
		"domrec_actions_recorded_total", "domrec_store_requests_total")
	require.NoError(t, err)

	count, err := testutil.GatherAndCount(m.Registry(), "domrec_replay_pass_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *observability.Metrics
	assert.NotPanics(t, func() {
		m.ActionRecorded("click")
		m.ActionRejected("skipped")
		m.ReplayDispatched()
		m.ReplaySkipped("tangent")
		m.ReplayPass(time.Second)
		m.StoreRequest(http.MethodPost, http.StatusOK)
	})
}

func TestMetrics_Handler(t *testing.T) {
	m := observability.NewMetrics()
	m.ReplayDispatched()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "domrec_replay_dispatched_total 1")
}
