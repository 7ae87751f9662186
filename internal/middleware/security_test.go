package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
)

func TestIPAllowList(t *testing.T) {
	open := NewIPAllowList(nil)
	assert.True(t, open.IsAllowed("203.0.113.9"))

	al := NewIPAllowList([]string{"10.0.0.5"})
	assert.True(t, al.IsAllowed("10.0.0.5"))
	assert.True(t, al.IsAllowed("10.0.0.5:8080"))
	assert.True(t, al.IsAllowed("127.0.0.1"))
	assert.False(t, al.IsAllowed("10.0.0.6"))
}

func TestRateLimitMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	logger, hook := test.NewNullLogger()

	r := gin.New()
	r.Use(RateLimitMiddleware(NewRateLimiter(0.001, 2), logrus.NewEntry(logger)))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		codes = append(codes, w.Code)
	}

	assert.Equal(t, []int{http.StatusNoContent, http.StatusNoContent, http.StatusTooManyRequests}, codes)
	assert.Equal(t, "rate limit exceeded", hook.LastEntry().Message)
}

func TestRateLimiterEvictsIdleIPs(t *testing.T) {
	clock := time.Unix(1_700_000_000, 0)
	rl := NewRateLimiter(1, 1)
	rl.now = func() time.Time { return clock }
	rl.lastSweep = clock

	first := rl.GetLimiter("10.0.0.1")
	rl.GetLimiter("10.0.0.2")
	assert.Equal(t, 2, rl.Len())
	assert.Same(t, first, rl.GetLimiter("10.0.0.1"))

	clock = clock.Add(limiterIdleTTL / 2)
	rl.GetLimiter("10.0.0.1")

	clock = clock.Add(limiterIdleTTL / 2)
	rl.GetLimiter("10.0.0.3")
	assert.Equal(t, 2, rl.Len(), "10.0.0.2 idle for a full TTL is evicted")

	clock = clock.Add(2 * limiterIdleTTL)
	fresh := rl.GetLimiter("10.0.0.1")
	assert.Equal(t, 1, rl.Len())
	assert.NotSame(t, first, fresh)
}
