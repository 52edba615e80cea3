// ABOUTME: CLI commands for the background sync engine.
// ABOUTME: Supports manual drains and a status view of queue health.
package main

import (
	"errors"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/steviebd/swole-tracker-sub010/internal/models"
	"github.com/steviebd/swole-tracker-sub010/internal/syncengine"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Push pending sessions to the server",
	Long: `Inspect and drive the background sync queue.

Sessions sync automatically when created while a server is configured. Use
these commands to check on the queue or to push pending sessions by hand.

COMMANDS:

  now       Drain the queue immediately
  status    Show queue depth, connectivity, and failed sessions`,
}

var syncNowCmd = &cobra.Command{
	Use:   "now",
	Short: "Sync pending sessions now",
	RunE: func(cmd *cobra.Command, args []string) error {
		before := engine.Status()

		err := engine.ManualSync(cmd.Context())
		if errors.Is(err, syncengine.ErrManualSyncUnavailable) {
			switch {
			case !engine.Online():
				color.Yellow("Offline - configure a server URL to sync")
			case before.State == syncengine.StateIdle:
				color.Green("✓ Nothing to sync")
			default:
				color.Yellow("Sync already in progress")
			}
			return nil
		}
		if err != nil {
			return err
		}

		after := engine.Status()
		if after.State == syncengine.StateIdle {
			color.Green("✓ All sessions synced")
		} else {
			color.Yellow("⚠ %s", after.Badge)
		}
		return nil
	},
}

var syncStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show sync status",
	RunE: func(cmd *cobra.Command, args []string) error {
		status := engine.Status()
		fmt.Printf("Status: %s\n", badge(status))

		if cfg.ServerURL != "" {
			fmt.Printf("Server: %s\n", cfg.ServerURL)
		} else {
			fmt.Println("Server: not configured")
		}

		var failed []models.WorkoutSession
		for _, s := range sessions.List() {
			if s.Status == models.StatusSyncFailed {
				failed = append(failed, s)
			}
		}
		if len(failed) > 0 {
			color.Red("\n%d session(s) need attention:", len(failed))
			for _, s := range failed {
				reason := "unknown error"
				if s.LastSyncError != nil {
					reason = *s.LastSyncError
				}
				fmt.Printf("  %s  template %d  %s\n", s.LocalID[:8], s.TemplateID, reason)
			}
		}
		return nil
	},
}

// badge renders the aggregate status badge in its mapped tone.
func badge(r syncengine.Result) string {
	switch r.Tone {
	case syncengine.ToneSuccess:
		return color.GreenString(r.Badge)
	case syncengine.ToneWarning:
		return color.YellowString(r.Badge)
	case syncengine.ToneDanger:
		return color.RedString(r.Badge)
	default:
		return color.CyanString(r.Badge)
	}
}

func init() {
	syncCmd.AddCommand(syncNowCmd)
	syncCmd.AddCommand(syncStatusCmd)
}
