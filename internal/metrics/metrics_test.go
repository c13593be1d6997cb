package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Counters(t *testing.T) {
	m := New()

	m.ObserveRequest(http.MethodGet, "/api/recipients", http.StatusOK, 20*time.Millisecond)
	m.ObserveRequest(http.MethodGet, "/api/recipients", http.StatusOK, 10*time.Millisecond)
	m.CommandProcessed("add", nil)
	m.CommandProcessed("add", errors.New("boom"))
	m.SetActiveChats(3)
	m.SessionRefreshed(nil)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("GET", "/api/recipients", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.botCommands.WithLabelValues("add", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.botCommands.WithLabelValues("add", "error")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.activeChats))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.refreshes.WithLabelValues("ok")))
}

func TestMetrics_Handler(t *testing.T) {
	m := New()
	m.CommandProcessed("start", nil)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, `giftmind_bot_commands_total{command="start",outcome="ok"} 1`))
	assert.True(t, strings.Contains(body, "go_goroutines"))
}
