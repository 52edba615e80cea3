// ABOUTME: Tests for the persisted sync queue.
// ABOUTME: Covers FIFO ordering, front-requeue, pruning, and crash-consistent persistence.
package queue

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/steviebd/swole-tracker-sub010/internal/kv"
	"github.com/steviebd/swole-tracker-sub010/internal/models"
)

func newSession(templateID int64) models.WorkoutSession {
	return *models.NewWorkoutSession(templateID, time.Now())
}

func TestEnqueueDequeueFIFO(t *testing.T) {
	q := New(kv.NewMemory(), nil)

	q.Enqueue(newSession(1))
	q.Enqueue(newSession(2))
	q.Enqueue(newSession(3))
	require.Equal(t, 3, q.Len())

	first := q.Dequeue()
	require.NotNil(t, first)
	assert.Equal(t, int64(1), first.Session.TemplateID)

	second := q.Dequeue()
	require.NotNil(t, second)
	assert.Equal(t, int64(2), second.Session.TemplateID)

	assert.Equal(t, 1, q.Len())
}

func TestQueueMonotonicity(t *testing.T) {
	q := New(kv.NewMemory(), nil)

	for i := 0; i < 7; i++ {
		q.Enqueue(newSession(int64(i)))
	}
	for i := 0; i < 4; i++ {
		require.NotNil(t, q.Dequeue())
	}
	assert.Equal(t, 3, q.Len())
}

func TestDequeueEmpty(t *testing.T) {
	q := New(kv.NewMemory(), nil)
	assert.Nil(t, q.Dequeue())
	assert.Zero(t, q.Len())
}

func TestRequeueFront(t *testing.T) {
	q := New(kv.NewMemory(), nil)

	q.Enqueue(newSession(1))
	q.Enqueue(newSession(2))

	failed := q.Dequeue()
	require.NotNil(t, failed)
	failed.Attempts = 1
	q.RequeueFront(*failed)

	// The failed item retries ahead of newer work.
	next := q.Dequeue()
	require.NotNil(t, next)
	assert.Equal(t, failed.ID, next.ID)
	assert.Equal(t, 1, next.Attempts)
}

func TestUpdateAttempts(t *testing.T) {
	q := New(kv.NewMemory(), nil)

	item := q.Enqueue(newSession(1))
	q.Enqueue(newSession(2))

	q.UpdateAttempts(item.ID, 4)

	items := q.Items()
	require.Len(t, items, 2)
	assert.Equal(t, item.ID, items[0].ID, "update must not reorder")
	assert.Equal(t, 4, items[0].Attempts)

	// Unknown IDs are a no-op.
	q.UpdateAttempts("missing", 9)
	assert.Equal(t, 2, q.Len())
}

func TestPruneExhausted(t *testing.T) {
	q := New(kv.NewMemory(), nil)

	stuck := q.Enqueue(newSession(1))
	q.Enqueue(newSession(2))
	q.UpdateAttempts(stuck.ID, 5)

	removed := q.PruneExhausted(5)
	assert.Equal(t, 1, removed)
	require.Equal(t, 1, q.Len())
	assert.Equal(t, int64(2), q.Items()[0].Session.TemplateID)

	assert.Zero(t, q.PruneExhausted(5))
}

func TestPersistsAcrossInstances(t *testing.T) {
	mem := kv.NewMemory()

	q := New(mem, nil)
	q.Enqueue(newSession(1))
	q.Enqueue(newSession(2))
	require.NotNil(t, q.Dequeue())

	// A fresh queue over the same storage sees the last completed state.
	q2 := New(mem, nil)
	require.Equal(t, 1, q2.Len())
	assert.Equal(t, int64(2), q2.Items()[0].Session.TemplateID)
}

func TestMalformedQueueFailsOpen(t *testing.T) {
	mem := kv.NewMemory()
	require.NoError(t, mem.Set(QueueKey, []byte("[{broken")))

	q := New(mem, nil)
	assert.Zero(t, q.Len())

	q.Enqueue(newSession(1))
	assert.Equal(t, 1, q.Len())
}

func TestReloadRefreshesFromStorage(t *testing.T) {
	mem := kv.NewMemory()

	q := New(mem, nil)
	require.Zero(t, q.Len())

	// Another process writes the queue key behind our back.
	other := New(mem, nil)
	other.Enqueue(newSession(1))

	assert.Zero(t, q.Len(), "cached view until reload")
	q.Reload()
	assert.Equal(t, 1, q.Len())
}
