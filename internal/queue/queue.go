// ABOUTME: Persisted FIFO backlog of pending sync operations.
// ABOUTME: Every mutation writes the full queue to storage before returning.
package queue

import (
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/steviebd/swole-tracker-sub010/internal/kv"
	"github.com/steviebd/swole-tracker-sub010/internal/models"
)

// QueueKey is the fixed storage key for the sync queue.
const QueueKey = "offline.sync_queue.v1"

// Queue is the ordered backlog of pending create operations. FIFO at enqueue
// time; failed items are reinserted at the front so an in-flight retry
// resolves ahead of newer, unrelated work.
type Queue struct {
	mu     sync.Mutex
	kv     kv.Store
	logger *log.Logger
	items  []models.SyncQueueItem
	loaded bool
}

// New creates a queue over the given key-value store.
func New(store kv.Store, logger *log.Logger) *Queue {
	if logger == nil {
		logger = log.Default()
	}
	return &Queue{kv: store, logger: logger}
}

// Enqueue appends a new queue item snapshotting the session.
func (q *Queue) Enqueue(session models.WorkoutSession) *models.SyncQueueItem {
	q.mu.Lock()
	defer q.mu.Unlock()

	item := models.NewSessionCreateItem(session)
	q.load()
	q.items = append(q.items, *item)
	q.persist()
	return item
}

// Dequeue pops the head item and persists its removal. Returns nil when the
// queue is empty.
func (q *Queue) Dequeue() *models.SyncQueueItem {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.load()
	if len(q.items) == 0 {
		return nil
	}
	item := q.items[0]
	q.items = q.items[1:]
	q.persist()
	return &item
}

// RequeueFront reinserts an item at the head of the queue for next-attempt
// priority.
func (q *Queue) RequeueFront(item models.SyncQueueItem) {
	q.mu.Lock()
	defer q.mu.Unlock()

	item.UpdatedAt = time.Now()
	q.load()
	q.items = append([]models.SyncQueueItem{item}, q.items...)
	q.persist()
}

// UpdateAttempts sets the attempt counter on an item in place, without
// reordering. Unknown IDs are a no-op.
func (q *Queue) UpdateAttempts(id string, attempts int) {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.load()
	for i := range q.items {
		if q.items[i].ID == id {
			q.items[i].Attempts = attempts
			q.items[i].UpdatedAt = time.Now()
			q.persist()
			return
		}
	}
}

// PruneExhausted removes all items whose attempt count reached maxAttempts.
// Runs before each drain pass so a queue left inconsistent by a crash
// mid-drain self-heals. Returns the number of items removed.
func (q *Queue) PruneExhausted(maxAttempts int) int {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.load()
	kept := q.items[:0]
	removed := 0
	for _, item := range q.items {
		if item.Attempts >= maxAttempts {
			removed++
			continue
		}
		kept = append(kept, item)
	}
	if removed > 0 {
		q.items = kept
		q.persist()
	}
	return removed
}

// Len returns the number of pending items.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.load()
	return len(q.items)
}

// Items returns a copy of the pending items in order.
func (q *Queue) Items() []models.SyncQueueItem {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.load()
	out := make([]models.SyncQueueItem, len(q.items))
	copy(out, q.items)
	return out
}

// Reload discards the in-memory view and re-reads the queue from storage.
// Used when another process writes the queue key; it only refreshes the
// displayed depth and never triggers work by itself.
func (q *Queue) Reload() {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.loaded = false
	q.items = nil
	q.load()
}

// load reads the queue from storage once. Callers must hold mu.
func (q *Queue) load() {
	if q.loaded {
		return
	}
	q.loaded = true

	data, err := q.kv.Get(QueueKey)
	if err != nil {
		if !errors.Is(err, kv.ErrNotFound) {
			q.logger.Warn("read sync queue, starting empty", "err", err)
		}
		return
	}

	var items []models.SyncQueueItem
	if err := json.Unmarshal(data, &items); err != nil {
		q.logger.Warn("malformed sync queue, starting empty", "err", err)
		return
	}
	q.items = items
}

// persist writes the full queue to storage so a crash immediately after a
// mutation leaves storage consistent with the last completed operation.
// Callers must hold mu.
func (q *Queue) persist() {
	data, err := json.Marshal(q.items)
	if err != nil {
		q.logger.Warn("marshal sync queue", "err", err)
		return
	}
	if err := q.kv.Set(QueueKey, data); err != nil {
		q.logger.Warn("persist sync queue", "err", err)
	}
}
