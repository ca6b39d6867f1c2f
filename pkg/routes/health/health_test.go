package health

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer() (*echo.Echo, *Checker) {
	e := echo.New()
	checker := NewChecker(nil, nil, "test")
	checker.RegisterRoutes(e)
	return e, checker
}

func get(e *echo.Echo, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestLivenessProbeAtRoot(t *testing.T) {
	e, _ := newTestServer()

	rec := get(e, "/health/live")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "alive")
}

func TestReadinessProbeAtRoot(t *testing.T) {
	e, checker := newTestServer()

	rec := get(e, "/health/ready")
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	checker.SetReady(true)
	rec = get(e, "/health/ready")
	require.Equal(t, http.StatusOK, rec.Code)

	checker.SetReady(false)
	rec = get(e, "/health/ready")
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestHealthWithoutDatabaseIsUnhealthy(t *testing.T) {
	e, _ := newTestServer()

	rec := get(e, "/api/v1/health")
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "database not configured")
}
