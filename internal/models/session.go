// ABOUTME: WorkoutSession model for offline-first session tracking.
// ABOUTME: Sessions are created locally and reconciled with the server by the sync engine.
package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// SyncStatus is the sync lifecycle state of a locally recorded session.
type SyncStatus string

const (
	// StatusLocal means the session exists only on this device.
	StatusLocal SyncStatus = "local"
	// StatusSyncing means a create call for this session is in flight.
	StatusSyncing SyncStatus = "syncing"
	// StatusSynced means the server confirmed the session and assigned an ID.
	StatusSynced SyncStatus = "synced"
	// StatusSyncFailed means the last create attempt failed. The session stays
	// on the device and may be retried, or remains here after retry exhaustion.
	StatusSyncFailed SyncStatus = "sync_failed"
)

// Valid reports whether s is a known sync status.
func (s SyncStatus) Valid() bool {
	switch s {
	case StatusLocal, StatusSyncing, StatusSynced, StatusSyncFailed:
		return true
	}
	return false
}

// Telemetry carries optional client context through to the create call.
// The sync engine treats these fields as opaque.
type Telemetry struct {
	DeviceType string `json:"device_type,omitempty"`
	Theme      string `json:"theme,omitempty"`
}

// WorkoutSession is the authoritative local record of a workout the user
// started. LocalID is the primary key for the device; ServerID is assigned
// exactly once, when the remote create call succeeds.
type WorkoutSession struct {
	LocalID       string     `json:"localId"`
	ServerID      *int64     `json:"serverId,omitempty"`
	TemplateID    int64      `json:"templateId"`
	WorkoutDate   time.Time  `json:"workoutDate"`
	Status        SyncStatus `json:"status"`
	SyncAttempts  int        `json:"syncAttempts"`
	LastSyncError *string    `json:"lastSyncError,omitempty"`
	Telemetry     *Telemetry `json:"telemetry,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

// NewWorkoutSession creates a session in status "local" with a generated
// local ID and current timestamps.
func NewWorkoutSession(templateID int64, workoutDate time.Time) *WorkoutSession {
	now := time.Now()
	return &WorkoutSession{
		LocalID:     uuid.New().String(),
		TemplateID:  templateID,
		WorkoutDate: workoutDate,
		Status:      StatusLocal,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// WithTelemetry attaches optional client telemetry.
func (w *WorkoutSession) WithTelemetry(t Telemetry) *WorkoutSession {
	w.Telemetry = &t
	return w
}

// Synced reports whether the session has been confirmed by the server.
func (w *WorkoutSession) Synced() bool {
	return w.Status == StatusSynced && w.ServerID != nil
}

// SessionRoute resolves the navigation path for a session: the server route
// once a server ID exists, otherwise the local route.
func SessionRoute(w *WorkoutSession) string {
	if w.ServerID != nil {
		return fmt.Sprintf("/workout/session/%d", *w.ServerID)
	}
	return fmt.Sprintf("/workout/session/local/%s", w.LocalID)
}
