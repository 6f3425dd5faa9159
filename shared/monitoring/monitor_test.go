package monitoring

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMonitorLifecycle(t *testing.T) {
	m := NewMonitor()
	assert.True(t, m.IsHealthy(), "no runs yet counts as healthy")
	assert.Equal(t, "No runs yet", m.GetStatusSummary())

	m.RecordSuccess("merged 2 items for abc123", time.Second)
	assert.True(t, m.IsHealthy())
	assert.Contains(t, m.GetStatusSummary(), "merged 2 items for abc123")

	m.RecordPartialFailure(errors.New("title lookup failed"), time.Second)
	assert.True(t, m.IsHealthy(), "partial failures keep the previous health state")

	m.RecordCriticalFailure(errors.New("ledger unreadable"), time.Second)
	assert.False(t, m.IsHealthy())
	assert.Contains(t, m.GetStatusSummary(), "Last run failed")
	assert.Contains(t, m.GetStatusSummary(), "ledger unreadable")
}

func get(t *testing.T, h http.Handler, path string) (int, string) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	body, err := io.ReadAll(rec.Result().Body)
	require.NoError(t, err)
	return rec.Code, string(body)
}

func TestHealthServerRoutes(t *testing.T) {
	m := NewMonitor()
	h := NewHealthServer(m, "").Handler()

	code, body := get(t, h, "/health")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "OK - No runs yet", body)

	m.RecordCriticalFailure(errors.New("boom"), time.Millisecond)
	code, body = get(t, h, "/health")
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Contains(t, body, "Service unhealthy")

	code, body = get(t, h, "/status")
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, "boom")

	CommentsFetched.Add(3)
	code, body = get(t, h, "/metrics")
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, "mention_miner_comments_fetched_total")
}
