package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serveHealth(t *testing.T, h http.Handler) (int, HealthResponse) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	var resp HealthResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return rec.Code, resp
}

func TestLivenessHandler(t *testing.T) {
	h := NewHealthChecker(nil)
	code, resp := serveHealth(t, h.LivenessHandler())
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, healthStatusOK, resp.Status)
}

func TestReadinessHandler(t *testing.T) {
	sc := newTestServerContext(t, Options{})
	h := NewHealthChecker(sc)

	code, resp := serveHealth(t, h.ReadinessHandler())
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, map[string]string{"ready": "ok", "shutdown": "ok", "store": "ok"}, resp.Checks)

	h.SetReady(false)
	code, resp = serveHealth(t, h.ReadinessHandler())
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, healthStatusNotReady, resp.Checks["ready"])
}

func TestReadinessHandler_ShuttingDown(t *testing.T) {
	sc := newTestServerContext(t, Options{})
	h := NewHealthChecker(sc)
	require.NoError(t, sc.Shutdown())

	code, resp := serveHealth(t, h.ReadinessHandler())
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, healthStatusShuttingDown, resp.Checks["shutdown"])
	assert.Equal(t, healthStatusShuttingDown, resp.Checks["store"])
}

func TestDetailedHealthHandler(t *testing.T) {
	h := NewHealthChecker(nil)
	rec := httptest.NewRecorder()
	h.DetailedHealthHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz/detailed", nil))

	var resp DetailedHealthResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, healthStatusOK, resp.Status)
	assert.NotEmpty(t, resp.Uptime)
}
