// ABOUTME: Tests for the pure status aggregator.
// ABOUTME: Verifies precedence order, badge strings, and tone mapping.
package syncengine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeStatus(t *testing.T) {
	tests := []struct {
		name  string
		in    Inputs
		state State
		tone  Tone
		badge string
	}{
		{
			name:  "offline with queued work",
			in:    Inputs{Online: false, QueueLen: 3},
			state: StateOffline,
			tone:  ToneWarning,
			badge: "Offline (3)",
		},
		{
			name:  "offline empty queue",
			in:    Inputs{Online: false},
			state: StateOffline,
			tone:  ToneWarning,
			badge: "Offline",
		},
		{
			name:  "offline wins over everything",
			in:    Inputs{Online: false, MutationsInFlight: 2, Draining: true, LastError: "boom", QueueLen: 1},
			state: StateOffline,
			tone:  ToneWarning,
			badge: "Offline (1)",
		},
		{
			name:  "mutation in flight",
			in:    Inputs{Online: true, MutationsInFlight: 1},
			state: StateSaving,
			tone:  ToneInfo,
			badge: "Saving...",
		},
		{
			name:  "saving wins over syncing and error",
			in:    Inputs{Online: true, MutationsInFlight: 1, Draining: true, LastError: "boom", QueueLen: 2},
			state: StateSaving,
			tone:  ToneInfo,
			badge: "Saving...",
		},
		{
			name:  "drain running",
			in:    Inputs{Online: true, Draining: true, QueueLen: 2},
			state: StateSyncing,
			tone:  ToneInfo,
			badge: "Syncing (2)",
		},
		{
			name:  "drain running, queue already empty",
			in:    Inputs{Online: true, Draining: true},
			state: StateSyncing,
			tone:  ToneInfo,
			badge: "Syncing...",
		},
		{
			name:  "fetches in flight with pending queue",
			in:    Inputs{Online: true, FetchesInFlight: 1, QueueLen: 1},
			state: StateSyncing,
			tone:  ToneInfo,
			badge: "Syncing (1)",
		},
		{
			name:  "fetches in flight, empty queue is idle",
			in:    Inputs{Online: true, FetchesInFlight: 1},
			state: StateIdle,
			tone:  ToneSuccess,
			badge: "All synced",
		},
		{
			name:  "last error with queued retries",
			in:    Inputs{Online: true, QueueLen: 2, LastError: "server said no"},
			state: StateError,
			tone:  ToneDanger,
			badge: "2 to retry",
		},
		{
			name:  "last error without queued work",
			in:    Inputs{Online: true, LastError: "server said no"},
			state: StateError,
			tone:  ToneDanger,
			badge: "Sync error",
		},
		{
			name:  "idle",
			in:    Inputs{Online: true},
			state: StateIdle,
			tone:  ToneSuccess,
			badge: "All synced",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeStatus(tt.in)
			assert.Equal(t, tt.state, got.State)
			assert.Equal(t, tt.tone, got.Tone)
			assert.Equal(t, tt.badge, got.Badge)
		})
	}
}

func TestComputeStatusTotal(t *testing.T) {
	// Every combination of boolean-ish inputs yields exactly one known state.
	for _, online := range []bool{true, false} {
		for _, fetches := range []int{0, 1} {
			for _, mutations := range []int{0, 1} {
				for _, queueLen := range []int{0, 2} {
					for _, lastErr := range []string{"", "x"} {
						for _, draining := range []bool{true, false} {
							got := ComputeStatus(Inputs{
								Online:            online,
								FetchesInFlight:   fetches,
								MutationsInFlight: mutations,
								QueueLen:          queueLen,
								LastError:         lastErr,
								Draining:          draining,
							})
							switch got.State {
							case StateOffline, StateSaving, StateSyncing, StateError, StateIdle:
							default:
								t.Fatalf("unknown state %q", got.State)
							}
							assert.NotEmpty(t, got.Badge)
						}
					}
				}
			}
		}
	}
}
