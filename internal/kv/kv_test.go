// ABOUTME: Tests for the Badger and in-memory key-value stores.
// ABOUTME: Verifies round-trips, not-found semantics, persistence, and subscriptions.
package kv

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryRoundTrip(t *testing.T) {
	m := NewMemory()

	_, err := m.Get("missing")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, m.Set("k", []byte("v1")))
	got, err := m.Get("k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v1"), got)

	require.NoError(t, m.Set("k", []byte("v2")))
	got, err = m.Get("k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v2"), got)

	require.NoError(t, m.Delete("k"))
	_, err = m.Get("k")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryGetReturnsCopy(t *testing.T) {
	m := NewMemory()
	require.NoError(t, m.Set("k", []byte("abc")))

	got, err := m.Get("k")
	require.NoError(t, err)
	got[0] = 'x'

	again, err := m.Get("k")
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), again)
}

func TestMemorySubscribe(t *testing.T) {
	m := NewMemory()

	var fired atomic.Int32
	m.Subscribe(context.Background(), "watched", func() { fired.Add(1) })

	require.NoError(t, m.Set("watched", []byte("x")))
	require.NoError(t, m.Set("watched", []byte("y")))
	require.Eventually(t, func() bool {
		return fired.Load() == 2
	}, time.Second, 5*time.Millisecond)

	require.NoError(t, m.Set("other", []byte("x")))
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, int32(2), fired.Load())
}

func TestMemorySubscriberMayReenterStore(t *testing.T) {
	m := NewMemory()

	// Delivery must not run on the writer's call stack, or a subscriber
	// reading the store back through a lock held around Set would hang.
	reread := make(chan struct{})
	m.Subscribe(context.Background(), "watched", func() {
		if _, err := m.Get("watched"); err == nil {
			close(reread)
		}
	})

	require.NoError(t, m.Set("watched", []byte("x")))
	select {
	case <-reread:
	case <-time.After(time.Second):
		t.Fatal("subscriber never ran")
	}
}

func TestBadgerRoundTrip(t *testing.T) {
	b, err := Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = b.Close() })

	_, err = b.Get("missing")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, b.Set("k", []byte("v")))
	got, err := b.Get("k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), got)

	require.NoError(t, b.Delete("k"))
	_, err = b.Get("k")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestBadgerPersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()

	b, err := Open(dir)
	require.NoError(t, err)
	require.NoError(t, b.Set("k", []byte("durable")))
	require.NoError(t, b.Close())

	b, err = Open(dir)
	require.NoError(t, err)
	t.Cleanup(func() { _ = b.Close() })

	got, err := b.Get("k")
	require.NoError(t, err)
	assert.Equal(t, []byte("durable"), got)
}

func TestBadgerDeleteMissingKey(t *testing.T) {
	b, err := Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = b.Close() })

	assert.NoError(t, b.Delete("never-existed"))
}
