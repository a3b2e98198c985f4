package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abel-rois666/Generador-Horarios-CUOM/internal/models"
	"github.com/abel-rois666/Generador-Horarios-CUOM/internal/service"
)

func newOpsRouter(h *MetricsHandler, catalog *CatalogHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/health", h.Health)
	router.GET("/ready", h.Ready)
	router.GET("/metrics", h.Prometheus)
	router.GET("/metrics/summary", h.Summary)
	if catalog != nil {
		router.GET("/catalog/sample", catalog.Sample)
	}
	return router
}

func TestMetricsHandlerReady(t *testing.T) {
	healthy := PingerFunc(func(ctx context.Context) error { return nil })
	router := newOpsRouter(NewMetricsHandler(nil, map[string]Pinger{"postgres": healthy, "redis": nil}), nil)

	w := serveJSON(router, http.MethodGet, "/ready", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ready","checks":{"postgres":"ok"}}`, w.Body.String())

	down := PingerFunc(func(ctx context.Context) error { return errors.New("dial tcp: refused") })
	router = newOpsRouter(NewMetricsHandler(nil, map[string]Pinger{"redis": down}), nil)
	w = serveJSON(router, http.MethodGet, "/ready", nil)
	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.JSONEq(t, `{"status":"degraded","checks":{"redis":"dial tcp: refused"}}`, w.Body.String())
}

func TestMetricsHandlerPrometheusAndSummary(t *testing.T) {
	metrics := service.NewMetricsService()
	metrics.ObserveScheduleRun(&models.ScheduleResult{Status: models.RunStatusSolved})
	router := newOpsRouter(NewMetricsHandler(metrics, nil), nil)

	w := serveJSON(router, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `schedule_runs_total{status="SOLVED"} 1`)

	w = serveJSON(router, http.MethodGet, "/metrics/summary", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Data models.SystemMetrics `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, uint64(1), body.Data.ScheduleRuns["SOLVED"])

	w = serveJSON(router, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestMetricsHandlerWithoutService(t *testing.T) {
	router := newOpsRouter(NewMetricsHandler(nil, nil), nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestCatalogHandlerSample(t *testing.T) {
	catalog := NewCatalogHandler(func() models.Catalog {
		return models.Catalog{Degrees: []models.Degree{{ID: "D1", Name: "ISC"}}}
	})
	router := newOpsRouter(NewMetricsHandler(nil, nil), catalog)

	w := serveJSON(router, http.MethodGet, "/catalog/sample", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"degrees":[{"id":"D1","name":"ISC"}]`)
}
