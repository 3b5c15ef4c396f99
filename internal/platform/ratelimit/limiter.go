// Package ratelimit は、キーごとのトークンバケットでリクエスト頻度を制限します。
package ratelimit

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

type entry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// Limiter はキー（セッションIDやクライアントIP）ごとに rate.Limiter を保持します。
type Limiter struct {
	mu       sync.Mutex
	limiters map[string]*entry
	limit    rate.Limit
	burst    int
	now      func() time.Time
}

// NewPerMinute は1分あたり perMinute 回まで許可する Limiter を生成します。
// バースト幅も perMinute とし、連続アップロードはその後平準化されます。
func NewPerMinute(perMinute int) *Limiter {
	if perMinute < 1 {
		perMinute = 1
	}
	return &Limiter{
		limiters: make(map[string]*entry),
		limit:    rate.Limit(float64(perMinute) / 60),
		burst:    perMinute,
		now:      time.Now,
	}
}

// Allow はキーに対するリクエストが許可されるかを返します。
func (l *Limiter) Allow(key string) bool {
	l.mu.Lock()
	e, ok := l.limiters[key]
	if !ok {
		e = &entry{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.limiters[key] = e
	}
	now := l.now()
	e.lastSeen = now
	l.mu.Unlock()

	return e.limiter.AllowN(now, 1)
}

// Sweep は idle 以上使われていないキーを削除し、削除件数を返します。
func (l *Limiter) Sweep(idle time.Duration) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := l.now().Add(-idle)
	n := 0
	for k, e := range l.limiters {
		if e.lastSeen.Before(cutoff) {
			delete(l.limiters, k)
			n++
		}
	}
	return n
}

// Len は保持しているキーの数を返します。
func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.limiters)
}

// Middleware はキー関数で識別したクライアントごとに頻度を制限する Gin ミドルウェアを返します。
// 上限を超えた場合は 429 を返し、onLimited が指定されていれば呼び出します。
func (l *Limiter) Middleware(key func(c *gin.Context) string, onLimited func()) gin.HandlerFunc {
	return func(c *gin.Context) {
		k := key(c)
		if k == "" {
			k = c.ClientIP()
		}
		if !l.Allow(k) {
			slog.Warn("rate limit exceeded", "key", k, "path", c.FullPath(), "remote_addr", c.ClientIP())
			if onLimited != nil {
				onLimited()
			}
			c.Header("Retry-After", "60")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": gin.H{
				"kind":    "RateLimited",
				"message": "too many uploads; please wait a minute and try again",
			}})
			return
		}
		c.Next()
	}
}
