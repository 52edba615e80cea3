// ABOUTME: Local session store, the durable on-device record of workout sessions.
// ABOUTME: Persists the full session list as JSON under a fixed key on every mutation.
package store

import (
	"encoding/json"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/steviebd/swole-tracker-sub010/internal/kv"
	"github.com/steviebd/swole-tracker-sub010/internal/models"
)

// SessionsKey is the fixed storage key for the session collection.
const SessionsKey = "offline.workout_sessions.v1"

// ErrSessionNotFound is returned when no session matches the given ID.
var ErrSessionNotFound = errors.New("store: session not found")

// Sessions is the local session store. Reads fail open: missing or malformed
// data is treated as an empty collection. Write failures are logged and
// swallowed; the in-memory state still reflects the mutation, so durability
// is best-effort.
type Sessions struct {
	mu       sync.Mutex
	kv       kv.Store
	logger   *log.Logger
	sessions []models.WorkoutSession
	loaded   bool
}

// NewSessions creates a session store over the given key-value store.
func NewSessions(store kv.Store, logger *log.Logger) *Sessions {
	if logger == nil {
		logger = log.Default()
	}
	return &Sessions{kv: store, logger: logger}
}

// Patch holds optional field updates for a session. Nil fields are left
// untouched. ClearSyncError clears LastSyncError regardless of the pointer.
type Patch struct {
	Status         *models.SyncStatus
	SyncAttempts   *int
	LastSyncError  *string
	ClearSyncError bool
}

// Create persists a new session with status "local" and returns it.
func (s *Sessions) Create(templateID int64, workoutDate time.Time, telemetry *models.Telemetry) *models.WorkoutSession {
	s.mu.Lock()
	defer s.mu.Unlock()

	session := models.NewWorkoutSession(templateID, workoutDate)
	session.Telemetry = telemetry

	s.load()
	s.sessions = append(s.sessions, *session)
	s.persist()
	return session
}

// Get returns the session with the given local ID.
func (s *Sessions) Get(localID string) (*models.WorkoutSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.load()
	for i := range s.sessions {
		if s.sessions[i].LocalID == localID {
			session := s.sessions[i]
			return &session, nil
		}
	}
	return nil, ErrSessionNotFound
}

// GetByServerID returns the session that was assigned the given server ID.
func (s *Sessions) GetByServerID(serverID int64) (*models.WorkoutSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.load()
	for i := range s.sessions {
		if s.sessions[i].ServerID != nil && *s.sessions[i].ServerID == serverID {
			session := s.sessions[i]
			return &session, nil
		}
	}
	return nil, ErrSessionNotFound
}

// List returns all sessions, most recently created first.
func (s *Sessions) List() []models.WorkoutSession {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.load()
	out := make([]models.WorkoutSession, len(s.sessions))
	copy(out, s.sessions)
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

// Update merges patch fields into the session and bumps UpdatedAt. Unknown
// local IDs are a no-op, not an error.
func (s *Sessions) Update(localID string, patch Patch) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.load()
	for i := range s.sessions {
		if s.sessions[i].LocalID != localID {
			continue
		}
		if patch.Status != nil {
			s.sessions[i].Status = *patch.Status
		}
		if patch.SyncAttempts != nil {
			s.sessions[i].SyncAttempts = *patch.SyncAttempts
		}
		if patch.ClearSyncError {
			s.sessions[i].LastSyncError = nil
		} else if patch.LastSyncError != nil {
			s.sessions[i].LastSyncError = patch.LastSyncError
		}
		s.sessions[i].UpdatedAt = time.Now()
		s.persist()
		return
	}
}

// MarkSyncing sets the session to "syncing" and increments its attempt
// counter. The counter only resets on success.
func (s *Sessions) MarkSyncing(localID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.load()
	for i := range s.sessions {
		if s.sessions[i].LocalID != localID {
			continue
		}
		s.sessions[i].Status = models.StatusSyncing
		s.sessions[i].SyncAttempts++
		s.sessions[i].UpdatedAt = time.Now()
		s.persist()
		return
	}
}

// MarkFailed sets the session to "sync_failed" with the failure reason.
func (s *Sessions) MarkFailed(localID, reason string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.load()
	for i := range s.sessions {
		if s.sessions[i].LocalID != localID {
			continue
		}
		s.sessions[i].Status = models.StatusSyncFailed
		s.sessions[i].LastSyncError = &reason
		s.sessions[i].UpdatedAt = time.Now()
		s.persist()
		return
	}
}

// MarkSynced records the server-assigned ID, resets the attempt counter, and
// clears the last error.
func (s *Sessions) MarkSynced(localID string, serverID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.load()
	for i := range s.sessions {
		if s.sessions[i].LocalID != localID {
			continue
		}
		s.sessions[i].Status = models.StatusSynced
		s.sessions[i].ServerID = &serverID
		s.sessions[i].SyncAttempts = 0
		s.sessions[i].LastSyncError = nil
		s.sessions[i].UpdatedAt = time.Now()
		s.persist()
		return
	}
}

// load reads the collection from storage once. Callers must hold mu.
func (s *Sessions) load() {
	if s.loaded {
		return
	}
	s.loaded = true

	data, err := s.kv.Get(SessionsKey)
	if err != nil {
		if !errors.Is(err, kv.ErrNotFound) {
			s.logger.Warn("read sessions, starting empty", "err", err)
		}
		return
	}

	var sessions []models.WorkoutSession
	if err := json.Unmarshal(data, &sessions); err != nil {
		s.logger.Warn("malformed session data, starting empty", "err", err)
		return
	}
	s.sessions = sessions
}

// persist writes the full collection to storage. Callers must hold mu.
// Failures are logged and swallowed.
func (s *Sessions) persist() {
	data, err := json.Marshal(s.sessions)
	if err != nil {
		s.logger.Warn("marshal sessions", "err", err)
		return
	}
	if err := s.kv.Set(SessionsKey, data); err != nil {
		s.logger.Warn("persist sessions", "err", err)
	}
}
