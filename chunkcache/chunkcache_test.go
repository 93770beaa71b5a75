package chunkcache

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetCachesResult(t *testing.T) {
	c := New(DefaultCapacity)
	var calls int32
	fetch := func() ([]byte, error) {
		atomic.AddInt32(&calls, 1)
		return []byte("data"), nil
	}

	key := Key{FirstVOff: 1, NextVOff: 2}
	data, err := c.Get(context.Background(), key, fetch)
	require.NoError(t, err)
	assert.Equal(t, "data", string(data))

	data, err = c.Get(context.Background(), key, fetch)
	require.NoError(t, err)
	assert.Equal(t, "data", string(data))
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestEvictsLeastRecentlyUsed(t *testing.T) {
	c := New(2)
	fetchFor := func(v byte) FetchFunc {
		return func() ([]byte, error) { return []byte{v}, nil }
	}

	k1 := Key{FirstVOff: 1, NextVOff: 1}
	k2 := Key{FirstVOff: 2, NextVOff: 2}
	k3 := Key{FirstVOff: 3, NextVOff: 3}

	_, err := c.Get(context.Background(), k1, fetchFor(1))
	require.NoError(t, err)
	_, err = c.Get(context.Background(), k2, fetchFor(2))
	require.NoError(t, err)
	_, err = c.Get(context.Background(), k3, fetchFor(3))
	require.NoError(t, err)

	assert.Equal(t, 2, c.Len())
	_, ok := c.lookup(k1)
	assert.False(t, ok, "k1 should have been evicted")
	_, ok = c.lookup(k3)
	assert.True(t, ok)
}

func TestConcurrentGetCoalescesFetch(t *testing.T) {
	c := New(DefaultCapacity)
	var calls int32
	release := make(chan struct{})
	fetch := func() ([]byte, error) {
		atomic.AddInt32(&calls, 1)
		<-release
		return []byte("data"), nil
	}

	key := Key{FirstVOff: 1, NextVOff: 2}
	results := make(chan []byte, 2)
	for i := 0; i < 2; i++ {
		go func() {
			data, err := c.Get(context.Background(), key, fetch)
			require.NoError(t, err)
			results <- data
		}()
	}

	time.Sleep(20 * time.Millisecond) // let both callers join the same flight
	close(release)

	for i := 0; i < 2; i++ {
		assert.Equal(t, "data", string(<-results))
	}
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestCancelledCallerDoesNotCancelSharedFetch(t *testing.T) {
	c := New(DefaultCapacity)
	release := make(chan struct{})
	fetch := func() ([]byte, error) {
		<-release
		return []byte("data"), nil
	}

	key := Key{FirstVOff: 1, NextVOff: 2}
	ctx, cancel := context.WithCancel(context.Background())

	errc := make(chan error, 1)
	go func() {
		_, err := c.Get(ctx, key, fetch)
		errc <- err
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()
	require.Equal(t, context.Canceled, <-errc)

	// A later, uncancelled caller still observes the shared fetch's result.
	close(release)
	data, err := c.Get(context.Background(), key, fetch)
	require.NoError(t, err)
	assert.Equal(t, "data", string(data))
}
