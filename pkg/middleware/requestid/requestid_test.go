package requestid

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serve(t *testing.T, header string) (*httptest.ResponseRecorder, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	var seen string
	router := gin.New()
	router.Use(Middleware())
	router.GET("/ping", func(c *gin.Context) {
		seen = Value(c)
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	if header != "" {
		req.Header.Set(headerKey, header)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w, seen
}

func TestMiddlewareGeneratesUUID(t *testing.T) {
	w, seen := serve(t, "")
	_, err := uuid.Parse(seen)
	require.NoError(t, err)
	assert.Equal(t, seen, w.Header().Get(headerKey))
}

func TestMiddlewareReusesIncomingID(t *testing.T) {
	w, seen := serve(t, "audit-42")
	assert.Equal(t, "audit-42", seen)
	assert.Equal(t, "audit-42", w.Header().Get(headerKey))
}

func TestMiddlewareReplacesOversizedID(t *testing.T) {
	_, seen := serve(t, strings.Repeat("x", maxLength+1))
	_, err := uuid.Parse(seen)
	assert.NoError(t, err)
}
