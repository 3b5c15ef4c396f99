package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

// fakeClock はテスト用に手動で進められる時計です。
type fakeClock struct{ t time.Time }

func (f *fakeClock) now() time.Time          { return f.t }
func (f *fakeClock) advance(d time.Duration) { f.t = f.t.Add(d) }

func newTestLimiter(perMinute int) (*Limiter, *fakeClock) {
	clock := &fakeClock{t: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
	l := NewPerMinute(perMinute)
	l.now = clock.now
	return l, clock
}

func TestLimiter_Allow(t *testing.T) {
	t.Parallel()

	l, clock := newTestLimiter(2)

	assert.True(t, l.Allow("a"))
	assert.True(t, l.Allow("a"))
	assert.False(t, l.Allow("a"), "third request within the burst window should be rejected")

	// 他のキーには影響しない
	assert.True(t, l.Allow("b"))

	// 2回/分なので約30秒で1トークン回復
	clock.advance(31 * time.Second)
	assert.True(t, l.Allow("a"))
	assert.False(t, l.Allow("a"))
}

func TestNewPerMinute_Minimum(t *testing.T) {
	t.Parallel()

	l := NewPerMinute(0)

	assert.Equal(t, 1, l.burst)
}

func TestLimiter_Sweep(t *testing.T) {
	t.Parallel()

	l, clock := newTestLimiter(5)
	l.Allow("old")
	clock.advance(20 * time.Minute)
	l.Allow("fresh")

	removed := l.Sweep(10 * time.Minute)

	assert.Equal(t, 1, removed)
	assert.Equal(t, 1, l.Len())
}

func TestLimiter_Middleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	l, _ := newTestLimiter(1)
	limited := 0

	router := gin.New()
	router.POST("/upload",
		l.Middleware(func(c *gin.Context) string { return c.GetHeader("X-Session") }, func() { limited++ }),
		func(c *gin.Context) { c.Status(http.StatusOK) },
	)

	do := func(session string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/upload", nil)
		if session != "" {
			req.Header.Set("X-Session", session)
		}
		router.ServeHTTP(w, req)
		return w
	}

	assert.Equal(t, http.StatusOK, do("s1").Code)

	w := do("s1")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "60", w.Header().Get("Retry-After"))
	assert.JSONEq(t, `{"error":{"kind":"RateLimited","message":"too many uploads; please wait a minute and try again"}}`, w.Body.String())
	assert.Equal(t, 1, limited)

	assert.Equal(t, http.StatusOK, do("s2").Code)

	// キーが空ならクライアントIPで識別
	assert.Equal(t, http.StatusOK, do("").Code)
	assert.Equal(t, http.StatusTooManyRequests, do("").Code)
}
