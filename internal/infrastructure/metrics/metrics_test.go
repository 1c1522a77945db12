package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/savetide/backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordComparison(t *testing.T) {
	m := New()

	m.RecordComparison("provider", domain.PipelineReport{
		Received:   12,
		Accepted:   7,
		Duplicates: 3,
		Returned:   4,
		Rejected: map[domain.RejectReason]int{
			domain.ReasonUntrustedMerchant: 4,
			domain.ReasonNoUsableLink:      1,
		},
	}, 250*time.Millisecond)
	m.RecordComparison("cache", domain.PipelineReport{Returned: 4}, time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Comparisons.WithLabelValues("provider")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Comparisons.WithLabelValues("cache")))
	assert.Equal(t, 12.0, testutil.ToFloat64(m.OffersReceived))
	assert.Equal(t, 8.0, testutil.ToFloat64(m.OffersReturned))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.OffersDuplicate))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.OffersRejected.WithLabelValues("untrusted_merchant")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.OffersRejected.WithLabelValues("no_usable_link")))
}

func TestRecordDependencies(t *testing.T) {
	m := New()

	m.RecordProviderError("timeout")
	m.RecordProviderError("timeout")
	m.RecordCacheLookup(true)
	m.RecordCacheLookup(false)
	m.RecordCacheLookup(false)
	m.RecordBarcodeLookup("found")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.ProviderErrors.WithLabelValues("timeout")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheLookups.WithLabelValues("hit")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.CacheLookups.WithLabelValues("miss")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.BarcodeLookups.WithLabelValues("found")))
}

func TestNew_IndependentRegistries(t *testing.T) {
	// two instances must not collide on registration
	a, b := New(), New()
	a.RecordProviderError("upstream")

	assert.Equal(t, 1.0, testutil.ToFloat64(a.ProviderErrors.WithLabelValues("upstream")))
	assert.Equal(t, 0.0, testutil.ToFloat64(b.ProviderErrors.WithLabelValues("upstream")))
}

func TestMiddlewareAndHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := New()

	router := gin.New()
	router.Use(m.Middleware())
	router.GET("/items/:id", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	router.GET("/metrics", gin.WrapH(m.Handler()))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/items/42", nil))
	require.Equal(t, http.StatusNoContent, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nowhere", nil))
	require.Equal(t, http.StatusNotFound, w.Code)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequests.WithLabelValues("GET", "/items/:id", "204")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequests.WithLabelValues("GET", "unmatched", "404")))

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)

	body, err := io.ReadAll(w.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `savetide_http_requests_total{method="GET",route="/items/:id",status="204"} 1`)
	assert.Contains(t, string(body), "go_goroutines")
}
