package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestTopicLimiterAllowsUpToBurst(t *testing.T) {
	l := NewTopicLimiter(60, 3)
	require.True(t, l.Allow("topic"))
	require.True(t, l.Allow("topic"))
	require.True(t, l.Allow("topic"))
	require.False(t, l.Allow("topic"))
}

func TestTopicLimiterTracksTopicsIndependently(t *testing.T) {
	l := NewTopicLimiter(60, 1)
	require.True(t, l.Allow("a"))
	require.False(t, l.Allow("a"))
	require.True(t, l.Allow("b"))
}

func TestTopicLimiterRefillsOverTime(t *testing.T) {
	l := NewTopicLimiter(60, 1)
	require.True(t, l.Allow("topic"))
	require.False(t, l.Allow("topic"))

	tokens, ok := l.Stats("topic")
	require.True(t, ok)
	require.Less(t, tokens, 1.0)

	time.Sleep(1100 * time.Millisecond)
	require.True(t, l.Allow("topic"))
}

func TestTopicLimiterForgetDropsBucket(t *testing.T) {
	l := NewTopicLimiter(60, 1)
	l.Allow("topic")
	_, ok := l.Stats("topic")
	require.True(t, ok)

	l.Forget("topic")
	_, ok = l.Stats("topic")
	require.False(t, ok)
}

func TestTopicLimiterStatsUnknownTopic(t *testing.T) {
	l := NewTopicLimiter(60, 1)
	_, ok := l.Stats("nope")
	require.False(t, ok)
}
