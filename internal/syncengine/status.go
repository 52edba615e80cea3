// ABOUTME: Pure status aggregation combining network, in-flight work, and queue health.
// ABOUTME: Total function: every input combination maps to exactly one status.
package syncengine

import "fmt"

// State is the user-facing aggregate sync status.
type State string

const (
	StateOffline State = "offline"
	StateSaving  State = "saving"
	StateSyncing State = "syncing"
	StateError   State = "error"
	StateIdle    State = "idle"
)

// Tone is the presentation tone mapped to a state.
type Tone string

const (
	ToneSuccess Tone = "success"
	ToneInfo    Tone = "info"
	ToneWarning Tone = "warning"
	ToneDanger  Tone = "danger"
)

// Inputs are the signals the aggregator combines.
type Inputs struct {
	Online            bool
	FetchesInFlight   int
	MutationsInFlight int
	QueueLen          int
	LastError         string
	Draining          bool
}

// Result is the aggregated status with its presentation mapping.
type Result struct {
	State State
	Tone  Tone
	Badge string
}

// ComputeStatus reduces the input signals to one status, in strict
// precedence order: offline > saving > syncing > error > idle. The badge
// embeds the queue depth when non-zero.
func ComputeStatus(in Inputs) Result {
	switch {
	case !in.Online:
		badge := "Offline"
		if in.QueueLen > 0 {
			badge = fmt.Sprintf("Offline (%d)", in.QueueLen)
		}
		return Result{State: StateOffline, Tone: ToneWarning, Badge: badge}

	case in.MutationsInFlight > 0:
		return Result{State: StateSaving, Tone: ToneInfo, Badge: "Saving..."}

	case in.Draining || (in.FetchesInFlight > 0 && in.QueueLen > 0):
		badge := "Syncing..."
		if in.QueueLen > 0 {
			badge = fmt.Sprintf("Syncing (%d)", in.QueueLen)
		}
		return Result{State: StateSyncing, Tone: ToneInfo, Badge: badge}

	case in.LastError != "":
		badge := "Sync error"
		if in.QueueLen > 0 {
			badge = fmt.Sprintf("%d to retry", in.QueueLen)
		}
		return Result{State: StateError, Tone: ToneDanger, Badge: badge}

	default:
		return Result{State: StateIdle, Tone: ToneSuccess, Badge: "All synced"}
	}
}
