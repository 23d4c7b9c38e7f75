package comm

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestContextCommunicator(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var posted []int
	c := New(ctx, func(current int) {
		posted = append(posted, current)
	})
	c.Interval = 0

	require.False(t, c.IsCancelled())
	require.NoError(t, Check(c, "test"))

	c.PostProgress(10)
	c.PostProgress(20)
	require.Equal(t, []int{10, 20}, posted)

	cancel()
	require.True(t, c.IsCancelled())

	err := Check(c, "test")
	require.Error(t, err)
	require.True(t, IsCancelled(err))
}

func TestContextCommunicatorThrottle(t *testing.T) {
	var posted int
	c := New(context.Background(), func(int) { posted++ })

	c.PostProgress(1)
	c.PostProgress(2)
	require.Equal(t, 1, posted)
}

func TestCheckNil(t *testing.T) {
	require.NoError(t, Check(nil, "test"))
	Post(nil, 1)
}

func TestLock(t *testing.T) {
	var l Lock
	require.True(t, l.TryLock())
	require.False(t, l.TryLock())
	l.Unlock()

	l.Lock()
	require.False(t, l.TryLock())
	l.Unlock()
}
