package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Disabled(t *testing.T) {
	l, err := New(context.Background(), "", 10, 5)
	require.NoError(t, err)
	assert.Nil(t, l)

	l, err = New(context.Background(), "redis://localhost:6379", 0, 5)
	require.NoError(t, err)
	assert.Nil(t, l)
}

func TestNew_BadURL(t *testing.T) {
	_, err := New(context.Background(), "http://not-redis", 10, 5)
	assert.Error(t, err)
}

func TestNilLimiterAllows(t *testing.T) {
	var l *Limiter
	res := l.Allow(context.Background(), "user-1")
	assert.True(t, res.Allowed)
	assert.NoError(t, l.Close())
}

func TestAllow_FailsOpen(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	l := NewWithClient(client, 10, 0)
	defer l.Close()

	res := l.Allow(context.Background(), "user-1")
	assert.True(t, res.Allowed)
	assert.Equal(t, int64(1), res.Remaining, "burst raised to one")
}
