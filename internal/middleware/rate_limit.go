package middleware

import (
	"sync"
	"time"

	"github.com/kataras/iris/v12"
)

// TokenBucket 令牌桶限流器
type TokenBucket struct {
	capacity   int64 // 桶容量
	tokens     float64
	refillRate float64 // 每秒补充的令牌数
	lastRefill time.Time
	now        func() time.Time
	mu         sync.Mutex
}

// NewTokenBucket 创建令牌桶
func NewTokenBucket(capacity, refillRate int64) *TokenBucket {
	tb := &TokenBucket{
		capacity:   capacity,
		tokens:     float64(capacity),
		refillRate: float64(refillRate),
		now:        time.Now,
	}
	tb.lastRefill = tb.now()
	return tb
}

// Allow 检查是否允许请求，按经过的时间连续补充令牌
func (tb *TokenBucket) Allow() bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	now := tb.now()
	elapsed := now.Sub(tb.lastRefill).Seconds()
	if elapsed > 0 {
		tb.tokens += elapsed * tb.refillRate
		if tb.tokens > float64(tb.capacity) {
			tb.tokens = float64(tb.capacity)
		}
		tb.lastRefill = now
	}

	if tb.tokens >= 1 {
		tb.tokens--
		return true
	}
	return false
}

// ClientLimiter 按客户端地址分桶的限流器，长时间空闲的桶定期清理
type ClientLimiter struct {
	capacity   int64
	refillRate int64
	idle       time.Duration
	now        func() time.Time

	mu        sync.Mutex
	buckets   map[string]*clientBucket
	lastSweep time.Time
}

type clientBucket struct {
	*TokenBucket
	seen time.Time
}

// NewClientLimiter 每个客户端独立一个容量为 capacity 的令牌桶
func NewClientLimiter(capacity, refillRate int64) *ClientLimiter {
	return &ClientLimiter{
		capacity:   capacity,
		refillRate: refillRate,
		idle:       10 * time.Minute,
		now:        time.Now,
		buckets:    make(map[string]*clientBucket),
	}
}

// Allow 消耗 key 对应桶中的一个令牌
func (l *ClientLimiter) Allow(key string) bool {
	l.mu.Lock()
	now := l.now()
	if now.Sub(l.lastSweep) >= l.idle {
		for k, b := range l.buckets {
			if now.Sub(b.seen) >= l.idle {
				delete(l.buckets, k)
			}
		}
		l.lastSweep = now
	}
	b, ok := l.buckets[key]
	if !ok {
		tb := NewTokenBucket(l.capacity, l.refillRate)
		tb.now = l.now
		tb.lastRefill = now
		b = &clientBucket{TokenBucket: tb}
		l.buckets[key] = b
	}
	b.seen = now
	l.mu.Unlock()
	return b.Allow()
}

func (l *ClientLimiter) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}

// RateLimit 限流中间件，以 RemoteAddr 区分客户端
func RateLimit(l *ClientLimiter) iris.Handler {
	return func(ctx iris.Context) {
		if !l.Allow(ctx.RemoteAddr()) {
			ctx.StopWithJSON(iris.StatusTooManyRequests, iris.Map{
				"message": "Too many requests, please try again later",
			})
			return
		}
		ctx.Next()
	}
}

// SignInRateLimit 登录/注册接口限流：每个客户端容量 10，每秒补充 5 个
func SignInRateLimit() iris.Handler {
	return RateLimit(NewClientLimiter(10, 5))
}
