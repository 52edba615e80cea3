// ABOUTME: SyncQueueItem model for the pending-operation backlog.
// ABOUTME: Items wrap a self-contained session snapshot taken at enqueue time.
package models

import (
	"time"

	"github.com/google/uuid"
)

// QueueItemType discriminates pending operation kinds. Modeled as an open
// tagged union so future operation types can be added without a queue
// format change.
type QueueItemType string

const (
	// QueueSessionCreate is a pending "create workout session" call.
	QueueSessionCreate QueueItemType = "session_create"
)

// SyncQueueItem is one unit of pending sync work. The embedded session is a
// snapshot, not a live reference, so the item can be retried even if the
// session store format changes underneath it.
type SyncQueueItem struct {
	ID        string         `json:"id"`
	Type      QueueItemType  `json:"type"`
	Session   WorkoutSession `json:"session"`
	Attempts  int            `json:"attempts"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
}

// NewSessionCreateItem builds a queue item snapshotting the given session.
func NewSessionCreateItem(session WorkoutSession) *SyncQueueItem {
	now := time.Now()
	return &SyncQueueItem{
		ID:        uuid.New().String(),
		Type:      QueueSessionCreate,
		Session:   session,
		Attempts:  0,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
