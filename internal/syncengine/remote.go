// ABOUTME: Contracts for the engine's external collaborators.
// ABOUTME: Remote create-session endpoint, error classification, and cache invalidation.
package syncengine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/steviebd/swole-tracker-sub010/internal/models"
)

// CreateSessionRequest is the payload for the remote create call. Telemetry
// fields are carried through unmodified.
type CreateSessionRequest struct {
	TemplateID  int64             `json:"templateId"`
	WorkoutDate time.Time         `json:"workoutDate"`
	Telemetry   *models.Telemetry `json:"telemetry,omitempty"`
}

// CreateSessionResponse is the server's answer to a successful create.
type CreateSessionResponse struct {
	SessionID int64 `json:"sessionId"`
}

// RemoteClient is the "create workout session" collaborator.
type RemoteClient interface {
	CreateSession(ctx context.Context, req CreateSessionRequest) (CreateSessionResponse, error)
}

// RemoteError is a classified failure from the remote endpoint. Permanent
// errors (e.g. validation rejections) will never succeed on retry and must
// not consume the retry budget.
type RemoteError struct {
	Permanent  bool
	StatusCode int
	Message    string
}

// Error implements the error interface.
func (e *RemoteError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("remote create failed (%d): %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("remote create failed: %s", e.Message)
}

// IsPermanent reports whether err is a remote error classified as permanent.
// Unclassified errors are treated as retryable.
func IsPermanent(err error) bool {
	var re *RemoteError
	return errors.As(err, &re) && re.Permanent
}

// CacheInvalidator is notified after a successful sync so dependent caches
// can refresh. Fire-and-forget: its failure never rolls back synced status.
type CacheInvalidator interface {
	InvalidateRecentWorkouts(ctx context.Context)
}

// NopInvalidator is a CacheInvalidator that does nothing.
type NopInvalidator struct{}

// InvalidateRecentWorkouts implements CacheInvalidator.
func (NopInvalidator) InvalidateRecentWorkouts(context.Context) {}
