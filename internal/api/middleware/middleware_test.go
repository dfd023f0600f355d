package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func okRouter(mw ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(mw...)
	r.Any("/x", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	r.GET("/panic", func(c *gin.Context) { panic("boom") })
	return r
}

func do(r http.Handler, method, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, "/x", strings.NewReader(body))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRateLimiter_RefillsFractionally(t *testing.T) {
	clock := time.Unix(0, 0)
	rl := newRateLimiter(2, 2*time.Second, func() time.Time { return clock })

	assert.True(t, rl.Allow())
	assert.True(t, rl.Allow())
	assert.False(t, rl.Allow())

	// 每 0.5 秒補半個令牌，兩次後才夠一次
	clock = clock.Add(500 * time.Millisecond)
	assert.False(t, rl.Allow())
	clock = clock.Add(500 * time.Millisecond)
	assert.True(t, rl.Allow())
}

func TestRateLimit_Returns429(t *testing.T) {
	clock := time.Unix(0, 0)
	limiter := newRateLimiter(1, time.Minute, func() time.Time { return clock })
	r := okRouter(rateLimitWith(limiter, time.Minute))

	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "").Code)

	w := do(r, http.MethodGet, "")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "60", w.Header().Get("Retry-After"))
	assert.Contains(t, w.Body.String(), "TOO_MANY_REQUESTS")
}

func TestDeduplicator_RejectsRepeatWithinWindow(t *testing.T) {
	d := NewDeduplicator(time.Second)
	defer d.Close()
	clock := time.Unix(100, 0)
	d.now = func() time.Time { return clock }

	r := okRouter(d.Middleware())

	assert.Equal(t, http.StatusOK, do(r, http.MethodPost, `{"a":1}`).Code)
	assert.Equal(t, http.StatusTooManyRequests, do(r, http.MethodPost, `{"a":1}`).Code)
	assert.Equal(t, http.StatusOK, do(r, http.MethodPost, `{"a":2}`).Code)
	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "").Code)
	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "").Code)

	clock = clock.Add(2 * time.Second)
	assert.Equal(t, http.StatusOK, do(r, http.MethodPost, `{"a":1}`).Code)

	clock = clock.Add(time.Hour)
	d.cleanup()
	d.mu.Lock()
	assert.Empty(t, d.requests)
	d.mu.Unlock()
}

func TestBodySizeLimit(t *testing.T) {
	r := okRouter(BodySizeLimit(4))

	assert.Equal(t, http.StatusOK, do(r, http.MethodPost, "abc").Code)

	w := do(r, http.MethodPost, "abcdefgh")
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Contains(t, w.Body.String(), "PAYLOAD_TOO_LARGE")
}

func TestRecovery(t *testing.T) {
	r := okRouter(Recovery(), Logger())

	req := httptest.NewRequest(http.MethodGet, "/panic", nil)
	w := httptest.NewRecorder()
	require.NotPanics(t, func() { r.ServeHTTP(w, req) })
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "INTERNAL_ERROR")
}

func TestTimeout_WritesGatewayTimeout(t *testing.T) {
	r := gin.New()
	r.Use(Timeout(10 * time.Millisecond))
	r.GET("/slow", func(c *gin.Context) {
		<-c.Request.Context().Done()
	})

	req := httptest.NewRequest(http.MethodGet, "/slow", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusGatewayTimeout, w.Code)
}
