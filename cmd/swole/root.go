// ABOUTME: Root Cobra command for the swole CLI.
// ABOUTME: Wires config, Badger storage, and the sync engine via PersistentPre/PostRunE.
package main

import (
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/steviebd/swole-tracker-sub010/internal/api"
	"github.com/steviebd/swole-tracker-sub010/internal/config"
	"github.com/steviebd/swole-tracker-sub010/internal/kv"
	"github.com/steviebd/swole-tracker-sub010/internal/queue"
	"github.com/steviebd/swole-tracker-sub010/internal/store"
	"github.com/steviebd/swole-tracker-sub010/internal/syncengine"
)

var (
	cfg      *config.Config
	kvStore  *kv.Badger
	sessions *store.Sessions
	engine   *syncengine.Engine
)

var rootCmd = &cobra.Command{
	Use:   "swole",
	Short: "Offline-first workout session tracker",
	Long: `Swole records workout sessions on-device and reconciles them with the
server in the background.

Sessions are always written locally first. When a server is configured and
reachable, a background drain pushes pending sessions one at a time with
bounded retries and exponential backoff. Nothing ever blocks on the network.

QUICK START:

  $ swole start 42                  # Start a session from template 42
  $ swole list                      # See local and synced sessions
  $ swole sync status               # Queue depth and sync health
  $ swole sync now                  # Push pending sessions manually

CONFIGURATION:

  Server URL and API token come from ~/.config/swole/config.json or the
  SWOLE_SERVER_URL / SWOLE_API_TOKEN environment variables. Without a server
  configured, sessions simply stay local until one is added.

DATA STORAGE:

  Sessions and the sync queue live in a Badger database under
  ~/.local/share/swole.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "version" || cmd.Name() == "help" {
			return nil
		}

		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		kvStore, err = kv.Open(cfg.GetDataDir())
		if err != nil {
			return fmt.Errorf("open local storage: %w", err)
		}

		logger := log.Default()
		sessions = store.NewSessions(kvStore, logger)
		syncQueue := queue.New(kvStore, logger)

		remote := api.NewClient(cfg.ServerURL, cfg.APIToken)
		engine = syncengine.New(sessions, syncQueue, remote, syncengine.Options{
			Logger: logger,
			Online: cfg.ServerURL != "",
		})
		engine.WatchQueue(cmd.Context(), kvStore)
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		// Give an in-flight background push a moment to land before the
		// database closes. Anything unfinished stays queued for next run.
		if engine != nil {
			engine.WaitForDrains(5 * time.Second)
		}
		if kvStore != nil {
			return kvStore.Close()
		}
		return nil
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(startCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(syncCmd)
}
