package middleware

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTokenBucketDrainsAndRefills(t *testing.T) {
	clock := time.Unix(1_700_000_000, 0)
	tb := NewTokenBucket(2, 1)
	tb.now = func() time.Time { return clock }
	tb.lastRefill = clock

	assert.True(t, tb.Allow())
	assert.True(t, tb.Allow())
	assert.False(t, tb.Allow())

	clock = clock.Add(500 * time.Millisecond)
	assert.False(t, tb.Allow())

	clock = clock.Add(500 * time.Millisecond)
	assert.True(t, tb.Allow())

	// 长时间空闲后不超过容量
	clock = clock.Add(time.Hour)
	assert.True(t, tb.Allow())
	assert.True(t, tb.Allow())
	assert.False(t, tb.Allow())
}

func TestClientLimiterSeparatesClients(t *testing.T) {
	clock := time.Unix(1_700_000_000, 0)
	l := NewClientLimiter(1, 1)
	l.now = func() time.Time { return clock }

	assert.True(t, l.Allow("10.0.0.1"))
	assert.False(t, l.Allow("10.0.0.1"))
	// 其他客户端不受影响
	assert.True(t, l.Allow("10.0.0.2"))
	assert.Equal(t, 2, l.size())

	clock = clock.Add(time.Second)
	assert.True(t, l.Allow("10.0.0.1"))
}

func TestClientLimiterDropsIdleBuckets(t *testing.T) {
	clock := time.Unix(1_700_000_000, 0)
	l := NewClientLimiter(1, 1)
	l.now = func() time.Time { return clock }

	l.Allow("10.0.0.1")
	l.Allow("10.0.0.2")
	assert.Equal(t, 2, l.size())

	clock = clock.Add(l.idle)
	l.Allow("10.0.0.3")
	assert.Equal(t, 1, l.size())
}
