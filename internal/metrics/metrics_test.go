package metrics

import (
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"
)

func TestCounters(t *testing.T) {
	m := New()

	m.Imported(3)
	m.Imported(2)
	m.Deleted(4)
	m.ImportFailed("missing_columns")
	m.ObserveRequest("GET", "/employees", 200, 5*time.Millisecond)
	m.ObserveRequest("GET", "", 404, time.Millisecond)

	assert.Equal(t, 5.0, testutil.ToFloat64(m.imported))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.deleted))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.importFailures.WithLabelValues("missing_columns")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues("GET", "unmatched", "404")))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.Imported(1)
		m.Deleted(1)
		m.ImportFailed("x")
		m.ObserveAnalytics(time.Second)
		m.ObserveRequest("GET", "/", 200, time.Second)
	})
}

func TestHandler(t *testing.T) {
	m := New()
	m.Imported(7)

	var ctx fasthttp.RequestCtx
	ctx.Request.SetRequestURI("/metrics")
	ctx.Request.Header.SetMethod(fasthttp.MethodGet)
	m.Handler()(&ctx)

	require.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())
	assert.True(t, strings.Contains(string(ctx.Response.Body()), "people_records_imported_total 7"))
}
