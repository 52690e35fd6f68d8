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

func TestMiddlewareGeneratesAndPropagatesID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Middleware())

	var fromGin, fromCtx string
	r.GET("/", func(c *gin.Context) {
		fromGin = Value(c)
		fromCtx = FromContext(c.Request.Context())
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	_, err := uuid.Parse(fromGin)
	require.NoError(t, err)
	assert.Equal(t, fromGin, fromCtx)
	assert.Equal(t, fromGin, w.Header().Get(Header()))
}

func TestMiddlewareReusesCallerID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Middleware())
	r.GET("/", func(c *gin.Context) {})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(Header(), "trace-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "trace-123", w.Header().Get(Header()))

	long := httptest.NewRequest(http.MethodGet, "/", nil)
	long.Header.Set(Header(), strings.Repeat("x", 200))
	w = httptest.NewRecorder()
	r.ServeHTTP(w, long)
	assert.NotEqual(t, strings.Repeat("x", 200), w.Header().Get(Header()))
}
