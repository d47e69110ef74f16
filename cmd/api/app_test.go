package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imrishuroy/dispatch-board/internal/config"
)

func TestNewApp_LocalWithoutAWS(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg, err := config.Load("")
	require.NoError(t, err)
	cfg.Metrics.PrometheusEnabled = true
	require.False(t, cfg.NeedsAWS())

	a, err := newApp(context.Background(), cfg)
	require.NoError(t, err)
	defer a.close()

	rr := httptest.NewRecorder()
	a.router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/dispatch", nil))
	assert.Equal(t, http.StatusNoContent, rr.Code)

	req := httptest.NewRequest(http.MethodPost, "/api/dispatch", strings.NewReader(`{"action":"ambulance"}`))
	req.Header.Set("Content-Type", "application/json")
	rr = httptest.NewRecorder()
	a.router.ServeHTTP(rr, req)
	require.Equal(t, http.StatusCreated, rr.Code)
	assert.Equal(t, 1, a.store.Len())

	rr = httptest.NewRecorder()
	a.router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `dispatch_ingested_total{action="ambulance"}`)
}

func TestNewApp_MetricsDisabled(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg, err := config.Load("")
	require.NoError(t, err)

	a, err := newApp(context.Background(), cfg)
	require.NoError(t, err)
	defer a.close()

	rr := httptest.NewRecorder()
	a.router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)
}
