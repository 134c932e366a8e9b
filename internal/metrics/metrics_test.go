package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMiddleware_UsesRouteTemplate(t *testing.T) {
	e := echo.New()
	e.Use(Middleware())
	e.GET("/manhwa/:id", func(c echo.Context) error {
		return c.String(http.StatusOK, c.Param("id"))
	})
	e.GET("/missing/:id", func(c echo.Context) error {
		return echo.NewHTTPError(http.StatusNotFound, "nope")
	})

	for _, id := range []string{"1", "2", "3"} {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/manhwa/"+id, nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	}
	assert.Equal(t, float64(3), testutil.ToFloat64(httpRequests.WithLabelValues("GET", "/manhwa/:id", "200")))

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/missing/9", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, float64(1), testutil.ToFloat64(httpRequests.WithLabelValues("GET", "/missing/:id", "404")))
}

func TestCounters(t *testing.T) {
	before := testutil.ToFloat64(ratingsSubmitted)
	RecordRating()
	assert.Equal(t, before+1, testutil.ToFloat64(ratingsSubmitted))

	RecordCacheLookup("manhwa", true)
	RecordCacheLookup("manhwa", false)
	assert.GreaterOrEqual(t, testutil.ToFloat64(cacheLookups.WithLabelValues("manhwa", "hit")), float64(1))
	assert.GreaterOrEqual(t, testutil.ToFloat64(cacheLookups.WithLabelValues("manhwa", "miss")), float64(1))

	created := testutil.ToFloat64(seedUpserts.WithLabelValues("created"))
	updated := testutil.ToFloat64(seedUpserts.WithLabelValues("updated"))
	RecordSeedUpserts(3, 2)
	assert.Equal(t, created+3, testutil.ToFloat64(seedUpserts.WithLabelValues("created")))
	assert.Equal(t, updated+2, testutil.ToFloat64(seedUpserts.WithLabelValues("updated")))
}

func TestHandlerServesRegistry(t *testing.T) {
	RecordRating()
	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "rankhwa_ratings_submitted_total")
}
