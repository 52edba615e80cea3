// ABOUTME: CLI commands for starting and inspecting workout sessions.
// ABOUTME: Supports start, list, and show subcommands.
package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/steviebd/swole-tracker-sub010/internal/models"
)

var startDate string

var startCmd = &cobra.Command{
	Use:   "start <template-id>",
	Short: "Start a workout session",
	Long: `Start a new workout session from a template.

The session is recorded locally right away. If a server is configured it is
pushed in the background; otherwise it waits in the sync queue.

Examples:
  swole start 42
  swole start 42 --date 2026-08-28`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		templateID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid template ID %q", args[0])
		}

		workoutDate := time.Now()
		if startDate != "" {
			workoutDate, err = time.Parse("2006-01-02", startDate)
			if err != nil {
				return fmt.Errorf("invalid date %q (want YYYY-MM-DD)", startDate)
			}
		}

		var telemetry *models.Telemetry
		if cfg.DeviceType != "" || cfg.Theme != "" {
			telemetry = &models.Telemetry{DeviceType: cfg.DeviceType, Theme: cfg.Theme}
		}

		session := engine.StartSession(cmd.Context(), templateID, workoutDate, telemetry)

		color.Green("✓ Started session from template %d", templateID)
		fmt.Printf("  ID: %s\n", session.LocalID[:8])
		if !engine.Online() {
			color.Yellow("  Offline - will sync when a server is reachable")
		}
		return nil
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List workout sessions",
	RunE: func(cmd *cobra.Command, args []string) error {
		all := sessions.List()
		if len(all) == 0 {
			fmt.Println("No sessions yet. Start one with 'swole start <template-id>'.")
			return nil
		}

		for _, s := range all {
			fmt.Printf("%s  template %-4d  %s  %s\n",
				s.LocalID[:8],
				s.TemplateID,
				s.WorkoutDate.Format("2006-01-02"),
				statusLabel(&s),
			)
		}
		return nil
	},
}

var showCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a session",
	Long: `Show a session by local ID prefix or by server ID.

Examples:
  swole show 3f2a91c0
  swole show 1207`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		session, err := resolveSession(args[0])
		if err != nil {
			return err
		}

		fmt.Printf("Session %s\n", session.LocalID)
		fmt.Printf("  Template:  %d\n", session.TemplateID)
		fmt.Printf("  Date:      %s\n", session.WorkoutDate.Format("2006-01-02"))
		fmt.Printf("  Status:    %s\n", statusLabel(session))
		if session.ServerID != nil {
			fmt.Printf("  Server ID: %d\n", *session.ServerID)
		}
		if session.SyncAttempts > 0 {
			fmt.Printf("  Attempts:  %d\n", session.SyncAttempts)
		}
		if session.LastSyncError != nil {
			fmt.Printf("  Last err:  %s\n", *session.LastSyncError)
		}
		fmt.Printf("  Route:     %s\n", models.SessionRoute(session))
		return nil
	},
}

// resolveSession finds a session by server ID or local ID prefix.
func resolveSession(idOrPrefix string) (*models.WorkoutSession, error) {
	if serverID, err := strconv.ParseInt(idOrPrefix, 10, 64); err == nil {
		if s, err := sessions.GetByServerID(serverID); err == nil {
			return s, nil
		}
	}

	var match *models.WorkoutSession
	for _, s := range sessions.List() {
		if strings.HasPrefix(s.LocalID, idOrPrefix) {
			if match != nil {
				return nil, fmt.Errorf("ambiguous prefix %s: matches multiple sessions", idOrPrefix)
			}
			found := s
			match = &found
		}
	}
	if match == nil {
		return nil, fmt.Errorf("not found: %s", idOrPrefix)
	}
	return match, nil
}

// statusLabel renders a session's sync status with color.
func statusLabel(s *models.WorkoutSession) string {
	switch s.Status {
	case models.StatusSynced:
		return color.GreenString("synced")
	case models.StatusSyncing:
		return color.CyanString("syncing")
	case models.StatusSyncFailed:
		return color.RedString("sync failed")
	default:
		return color.YellowString("local")
	}
}

func init() {
	startCmd.Flags().StringVar(&startDate, "date", "", "Workout date (YYYY-MM-DD, default today)")
}
