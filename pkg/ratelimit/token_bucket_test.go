package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func newTestBucket(qpm, capacity int) (*TokenBucket, *time.Time) {
	tb := NewTokenBucket(qpm, capacity)
	clock := tb.lastRefillTime
	tb.now = func() time.Time { return clock }
	return tb, &clock
}

func TestTokenBucketAllow(t *testing.T) {
	tb, clock := newTestBucket(60, 2)

	assert.True(t, tb.Allow())
	assert.True(t, tb.Allow())
	assert.False(t, tb.Allow(), "容量耗尽")

	*clock = clock.Add(time.Second)
	assert.True(t, tb.Allow(), "每秒补充一个令牌")
	assert.False(t, tb.Allow())

	*clock = clock.Add(time.Hour)
	assert.True(t, tb.Allow())
	assert.True(t, tb.Allow())
	assert.False(t, tb.Allow(), "补充不超过容量")
}

func TestTokenBucketDefaultCapacity(t *testing.T) {
	tb := NewTokenBucket(1, 0)
	assert.Equal(t, 1.0, tb.capacity)

	tb = NewTokenBucket(120, 0)
	assert.Equal(t, 60.0, tb.capacity)
}

func TestTokenBucketWaitCanceled(t *testing.T) {
	tb, _ := newTestBucket(1, 1)
	assert.True(t, tb.Allow())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, tb.Wait(ctx), context.Canceled)
}
