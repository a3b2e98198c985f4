package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abel-rois666/Generador-Horarios-CUOM/internal/service"
)

func TestResponseMetaCollectsCacheAndDigest(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(WithResponseMeta())

	var meta map[string]interface{}
	router.GET("/runs", func(c *gin.Context) {
		SetCacheHit(c, true)
		SetDigest(c, "abc")
		SetDigest(c, "")
		meta = ExtractMeta(c)
		c.Status(http.StatusOK)
	})

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/runs", nil))
	require.NotNil(t, meta)
	assert.Equal(t, true, meta["cache_hit"])
	assert.Equal(t, "abc", meta["snapshot_digest"])
	assert.Contains(t, meta, "processing_time_ms")
}

func TestExtractMetaEmpty(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.Nil(t, ExtractMeta(c))
	assert.Nil(t, ExtractMeta(nil))
}

func TestMetricsUsesRouteTemplate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	metrics := service.NewMetricsService()
	router := gin.New()
	router.Use(Metrics(metrics))
	router.GET("/runs/:id", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/runs/1", nil))
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nowhere", nil))

	rec := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := rec.Body.String()
	assert.Contains(t, body, `http_requests_total{method="GET",path="/runs/:id",status="204"} 1`)
	assert.Contains(t, body, `path="unmatched",status="404"`)
	assert.Equal(t, uint64(2), metrics.Snapshot().RequestsTotal)
}
