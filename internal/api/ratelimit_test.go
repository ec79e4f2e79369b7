package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestIPRateLimiter(t *testing.T) {
	gin.SetMode(gin.TestMode)

	clock := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	l := NewIPRateLimiter(60, 2, time.Minute)
	l.now = func() time.Time { return clock }

	r := gin.New()
	r.POST("/login", l.Middleware(), func(c *gin.Context) { c.Status(http.StatusOK) })

	call := func(ip string) int {
		req := httptest.NewRequest(http.MethodPost, "/login", nil)
		req.RemoteAddr = ip + ":5555"
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusOK, call("10.0.0.1"))
	assert.Equal(t, http.StatusOK, call("10.0.0.1"))
	assert.Equal(t, http.StatusTooManyRequests, call("10.0.0.1"))
	assert.Equal(t, http.StatusOK, call("10.0.0.2"), "limits are per IP")

	clock = clock.Add(time.Second)
	assert.Equal(t, http.StatusOK, call("10.0.0.1"), "one token refills per second")

	clock = clock.Add(2 * time.Minute)
	l.allow("10.0.0.3")
	l.mu.Lock()
	_, kept := l.visitors["10.0.0.1"]
	l.mu.Unlock()
	assert.False(t, kept, "idle buckets are evicted")
}
