package resource

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestController_InFlight(t *testing.T) {
	c := NewController(Config{MaxInFlight: 2})

	require.NoError(t, c.AcquireCall(context.Background()))
	require.NoError(t, c.AcquireCall(context.Background()))
	assert.Equal(t, int64(2), c.InFlight())

	assert.False(t, c.TryAcquireCall())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, c.AcquireCall(ctx), context.DeadlineExceeded)

	c.ReleaseCall()
	assert.True(t, c.TryAcquireCall())
	assert.Equal(t, int64(3), c.Calls())
}

func TestController_Nil(t *testing.T) {
	var c *Controller
	require.NoError(t, c.AcquireCall(context.Background()))
	assert.True(t, c.TryAcquireCall())
	c.ReleaseCall()
	assert.Zero(t, c.InFlight())
	require.NoError(t, c.AcquireIO(context.Background(), 1<<20))
}

func TestController_RateLimit(t *testing.T) {
	c := NewController(Config{CallsPerSecond: 1, Burst: 1})

	require.True(t, c.TryAcquireCall())
	c.ReleaseCall()

	// The single token is spent.
	assert.False(t, c.TryAcquireCall())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.Error(t, c.AcquireCall(ctx))
	assert.Zero(t, c.InFlight())
}

func TestDo(t *testing.T) {
	c := NewController(Config{MaxInFlight: 1})

	got, err := Do(context.Background(), c, func(context.Context) (int, error) {
		assert.Equal(t, int64(1), c.InFlight())
		return 42, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 42, got)
	assert.Zero(t, c.InFlight())

	boom := errors.New("boom")
	_, err = Do(context.Background(), c, func(context.Context) (int, error) { return 0, boom })
	assert.ErrorIs(t, err, boom)
	assert.Zero(t, c.InFlight())
}

func TestDo_Concurrent(t *testing.T) {
	c := NewController(Config{MaxInFlight: 3})

	var (
		mu      sync.Mutex
		maxSeen int64
		wg      sync.WaitGroup
	)
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := Do(context.Background(), c, func(context.Context) (struct{}, error) {
				mu.Lock()
				maxSeen = max(maxSeen, c.InFlight())
				mu.Unlock()
				time.Sleep(time.Millisecond)
				return struct{}{}, nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.LessOrEqual(t, maxSeen, int64(3))
	assert.Equal(t, int64(20), c.Calls())
}

func TestReadAll(t *testing.T) {
	c := NewController(Config{IOLimitBytesPerSec: 1 << 20})
	data := bytes.Repeat([]byte("x"), 3<<20/2)

	got, err := ReadAll(context.Background(), bytes.NewReader(data), c)
	require.NoError(t, err)
	assert.Equal(t, data, got)
}
