package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/charlesng35/orgdirectory/pkg/metrics"
)

type failingRateStore struct{}

func (failingRateStore) Increment(context.Context, string, time.Duration) (int, time.Duration, error) {
	return 0, 0, errors.New("store down")
}

func rateLimitedRouter(store RateStore, limit int) *gin.Engine {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.POST("/seed", RateLimit(store, limit, time.Minute), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return r
}

func TestRateLimitRejectsOverLimit(t *testing.T) {
	r := rateLimitedRouter(NewMemoryRateStore(), 2)
	before := testutil.ToFloat64(metrics.RateLimitedRequests.WithLabelValues("/seed"))

	for i, want := range []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/seed", nil))
		require.Equal(t, want, w.Code, "request %d", i+1)
		require.Equal(t, "2", w.Header().Get("X-RateLimit-Limit"))
		require.Equal(t, "60", w.Header().Get("X-RateLimit-Reset"))

		if want == http.StatusTooManyRequests {
			require.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))
			require.Equal(t, "60", w.Header().Get("Retry-After"))
			require.JSONEq(t, `{"Message":"Rate limit exceeded, retry later"}`, w.Body.String())
		}
	}

	require.Equal(t, before+1, testutil.ToFloat64(metrics.RateLimitedRequests.WithLabelValues("/seed")))
}

func TestRateLimitKeysByClient(t *testing.T) {
	r := rateLimitedRouter(NewMemoryRateStore(), 1)

	for _, ip := range []string{"10.0.0.1:1234", "10.0.0.2:1234"} {
		req := httptest.NewRequest(http.MethodPost, "/seed", nil)
		req.RemoteAddr = ip
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		require.Equal(t, http.StatusOK, w.Code)
	}
}

func TestRateLimitFailsOpen(t *testing.T) {
	r := rateLimitedRouter(failingRateStore{}, 1)

	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/seed", nil))
		require.Equal(t, http.StatusOK, w.Code)
		require.Empty(t, w.Header().Get("X-RateLimit-Limit"))
	}
}

func TestRateLimitDisabled(t *testing.T) {
	r := rateLimitedRouter(nil, 1)

	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/seed", nil))
		require.Equal(t, http.StatusOK, w.Code)
	}
}

func TestMemoryRateStoreWindows(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	store := newMemoryRateStore(func() time.Time { return now })
	ctx := context.Background()

	count, ttl, err := store.Increment(ctx, "a", time.Minute)
	require.NoError(t, err)
	require.Equal(t, 1, count)
	require.Equal(t, time.Minute, ttl)

	now = now.Add(30 * time.Second)
	count, ttl, err = store.Increment(ctx, "a", time.Minute)
	require.NoError(t, err)
	require.Equal(t, 2, count)
	require.Equal(t, 30*time.Second, ttl)

	_, _, err = store.Increment(ctx, "b", time.Minute)
	require.NoError(t, err)

	now = now.Add(2 * time.Minute)
	count, _, err = store.Increment(ctx, "a", time.Minute)
	require.NoError(t, err)
	require.Equal(t, 1, count)
	require.NotContains(t, store.data, "b")
}
