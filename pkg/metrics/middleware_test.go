package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestGinPrometheusMiddleware_UsesRouteTemplate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(GinPrometheusMiddleware("metrics-test"))
	router.GET("/products/:productID", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	before := testutil.ToFloat64(HttpRequestsTotal.WithLabelValues("metrics-test", http.MethodGet, "/products/:productID", "200"))

	for _, id := range []string{"P1", "P2", "P3"} {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/products/"+id, nil))
		assert.Equal(t, http.StatusOK, w.Code)
	}

	after := testutil.ToFloat64(HttpRequestsTotal.WithLabelValues("metrics-test", http.MethodGet, "/products/:productID", "200"))
	assert.Equal(t, 3.0, after-before)
}

func TestGinPrometheusMiddleware_UnmatchedRoute(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(GinPrometheusMiddleware("metrics-test-404"))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nope/123", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, 1.0, testutil.ToFloat64(HttpRequestsTotal.WithLabelValues("metrics-test-404", http.MethodGet, "unmatched", "404")))
}

func TestDbTimer_DoneRecordsErrors(t *testing.T) {
	before := testutil.ToFloat64(DbErrors.WithLabelValues("timer-test", string(DbOpInsert)))

	NewDbTimer("timer-test", DbOpInsert, "reviews").Done(nil)
	NewDbTimer("timer-test", DbOpInsert, "reviews").Done(assert.AnError)

	after := testutil.ToFloat64(DbErrors.WithLabelValues("timer-test", string(DbOpInsert)))
	assert.Equal(t, 1.0, after-before)
}
