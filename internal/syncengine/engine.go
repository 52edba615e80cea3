// ABOUTME: Single-flight drain engine reconciling queued sessions with the server.
// ABOUTME: Retries with capped exponential backoff via delayed re-trigger, never a blocking sleep.
package syncengine

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"

	"github.com/steviebd/swole-tracker-sub010/internal/kv"
	"github.com/steviebd/swole-tracker-sub010/internal/models"
	"github.com/steviebd/swole-tracker-sub010/internal/queue"
	"github.com/steviebd/swole-tracker-sub010/internal/store"
)

// MaxSyncAttempts is the retry ceiling per queue item. An item reaching it is
// abandoned and its session left durably in sync_failed.
const MaxSyncAttempts = 5

const (
	backoffBase = 500 * time.Millisecond
	backoffCap  = 8 * time.Second
)

// ErrManualSyncUnavailable is returned by ManualSync when gating disallows it.
var ErrManualSyncUnavailable = errors.New("syncengine: manual sync unavailable")

// Backoff returns the retry delay after the given number of prior failures:
// min(500ms * 2^attempts, 8s), so the sequence runs 500ms, 1s, 2s, 4s, 8s.
// A pure function of the persisted counter so the cadence survives process
// restarts.
func Backoff(attempts int) time.Duration {
	if attempts < 0 {
		attempts = 0
	}
	d := backoffBase << uint(attempts)
	if d > backoffCap || d <= 0 {
		return backoffCap
	}
	return d
}

// Options configures an Engine.
type Options struct {
	// Caches is notified after each successful sync. Defaults to a no-op.
	Caches CacheInvalidator
	// Logger defaults to log.Default().
	Logger *log.Logger
	// Schedule runs fn after the given delay. Defaults to time.AfterFunc.
	// Tests substitute a recording scheduler.
	Schedule func(delay time.Duration, fn func())
	// Online is the initial connectivity state.
	Online bool
}

// Engine drains the sync queue to the remote endpoint, one item at a time.
// All previously ambient state (running flag, counters, last error) lives on
// the instance so independent engines never interfere.
type Engine struct {
	sessions *store.Sessions
	queue    *queue.Queue
	remote   RemoteClient
	caches   CacheInvalidator
	logger   *log.Logger
	schedule func(time.Duration, func())

	running   atomic.Bool
	online    atomic.Bool
	fetches   atomic.Int32
	mutations atomic.Int32
	drains    sync.WaitGroup

	mu        sync.Mutex
	lastError string
}

// New creates an engine over the given store, queue, and remote client.
func New(sessions *store.Sessions, q *queue.Queue, remote RemoteClient, opts Options) *Engine {
	if opts.Caches == nil {
		opts.Caches = NopInvalidator{}
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.Schedule == nil {
		opts.Schedule = func(delay time.Duration, fn func()) {
			time.AfterFunc(delay, fn)
		}
	}

	e := &Engine{
		sessions: sessions,
		queue:    q,
		remote:   remote,
		caches:   opts.Caches,
		logger:   opts.Logger,
		schedule: opts.Schedule,
	}
	e.online.Store(opts.Online)
	return e
}

// StartSession creates a local session, enqueues it for sync, and, when the
// device is online, kicks off a background drain the caller does not wait on.
func (e *Engine) StartSession(ctx context.Context, templateID int64, workoutDate time.Time, telemetry *models.Telemetry) *models.WorkoutSession {
	session := e.sessions.Create(templateID, workoutDate, telemetry)
	e.queue.Enqueue(*session)

	if e.online.Load() {
		e.drainInBackground(context.WithoutCancel(ctx))
	}
	return session
}

// drainInBackground runs a drain on a tracked goroutine so hosts can wait
// for in-flight work before tearing down storage.
func (e *Engine) drainInBackground(ctx context.Context) {
	e.drains.Add(1)
	go func() {
		defer e.drains.Done()
		e.Drain(ctx)
	}()
}

// WaitForDrains blocks until the background drain goroutines finish, or until
// the timeout elapses, and reports whether they finished in time. Backoff
// retries still pending on the scheduler are not waited on; their items stay
// in the durable queue for the next trigger.
func (e *Engine) WaitForDrains(timeout time.Duration) bool {
	done := make(chan struct{})
	go func() {
		e.drains.Wait()
		close(done)
	}()
	select {
	case <-done:
		return true
	case <-time.After(timeout):
		return false
	}
}

// Drain runs one pass over the queue: dequeue, call the remote endpoint,
// continue on success. A retryable failure requeues the item at the front,
// schedules a re-drain after backoff, and ends the pass. A permanent failure
// or an exhausted item is abandoned and also ends the pass, so one poison
// item cannot starve healthy ones in a tight loop.
//
// Single-flight: if a drain is already running the call is a no-op. The
// guard is in-memory only; cross-process exclusion comes from the storage
// layer's directory lock.
func (e *Engine) Drain(ctx context.Context) {
	if !e.running.CompareAndSwap(false, true) {
		return
	}
	defer e.running.Store(false)

	if pruned := e.queue.PruneExhausted(MaxSyncAttempts); pruned > 0 {
		e.logger.Warn("pruned exhausted queue items", "count", pruned)
	}

	for {
		item := e.queue.Dequeue()
		if item == nil {
			return
		}

		localID := item.Session.LocalID
		e.sessions.MarkSyncing(localID)

		resp, err := e.remote.CreateSession(ctx, CreateSessionRequest{
			TemplateID:  item.Session.TemplateID,
			WorkoutDate: item.Session.WorkoutDate,
			Telemetry:   item.Session.Telemetry,
		})
		if err == nil {
			e.sessions.MarkSynced(localID, resp.SessionID)
			e.setLastError("")
			e.caches.InvalidateRecentWorkouts(ctx)
			e.logger.Debug("session synced", "localID", localID, "serverID", resp.SessionID)
			continue
		}

		e.sessions.MarkFailed(localID, err.Error())
		e.setLastError(err.Error())
		item.Attempts++

		if IsPermanent(err) {
			e.logger.Error("abandoning session, permanent failure", "localID", localID, "err", err)
			return
		}
		if item.Attempts >= MaxSyncAttempts {
			e.logger.Error("abandoning session, retries exhausted", "localID", localID, "attempts", item.Attempts)
			return
		}

		e.queue.RequeueFront(*item)
		delay := Backoff(item.Attempts - 1)
		e.logger.Info("sync failed, retry scheduled", "localID", localID, "attempt", item.Attempts, "delay", delay)
		e.schedule(delay, func() {
			e.Drain(context.WithoutCancel(ctx))
		})
		return
	}
}

// SetOnline records a connectivity change. A transition to online with a
// non-empty queue triggers a background drain.
func (e *Engine) SetOnline(online bool) {
	was := e.online.Swap(online)
	if online && !was && e.queue.Len() > 0 {
		e.drainInBackground(context.Background())
	}
}

// Online reports the current connectivity state.
func (e *Engine) Online() bool {
	return e.online.Load()
}

// CanManualSync reports whether a user-initiated sync would be accepted:
// online, queue non-empty, and no drain or save currently in progress.
func (e *Engine) CanManualSync() bool {
	if !e.online.Load() || e.queue.Len() == 0 {
		return false
	}
	switch e.Status().State {
	case StateSyncing, StateSaving:
		return false
	}
	return true
}

// ManualSync runs a drain pass synchronously on behalf of the user.
func (e *Engine) ManualSync(ctx context.Context) error {
	if !e.CanManualSync() {
		return ErrManualSyncUnavailable
	}
	e.Drain(ctx)
	return nil
}

// Status aggregates queue depth, network state, and in-flight counts into
// the single user-facing status.
func (e *Engine) Status() Result {
	return ComputeStatus(Inputs{
		Online:            e.online.Load(),
		FetchesInFlight:   int(e.fetches.Load()),
		MutationsInFlight: int(e.mutations.Load()),
		QueueLen:          e.queue.Len(),
		LastError:         e.LastError(),
		Draining:          e.running.Load(),
	})
}

// TrackFetch registers an in-flight data fetch; the returned func ends it.
func (e *Engine) TrackFetch() func() {
	e.fetches.Add(1)
	var once sync.Once
	return func() {
		once.Do(func() { e.fetches.Add(-1) })
	}
}

// TrackMutation registers an in-flight mutation; the returned func ends it.
func (e *Engine) TrackMutation() func() {
	e.mutations.Add(1)
	var once sync.Once
	return func() {
		once.Do(func() { e.mutations.Add(-1) })
	}
}

// LastError returns the most recent queue error, empty after a success.
func (e *Engine) LastError() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastError
}

func (e *Engine) setLastError(msg string) {
	e.mu.Lock()
	e.lastError = msg
	e.mu.Unlock()
}

// WatchQueue refreshes the in-memory queue view whenever another process
// writes the queue key. Display-only: it never triggers a drain.
func (e *Engine) WatchQueue(ctx context.Context, sub kv.Subscriber) {
	sub.Subscribe(ctx, queue.QueueKey, func() {
		e.queue.Reload()
	})
}
