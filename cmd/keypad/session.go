package main

import (
	"github.com/aretw0/keypad/internal/cli"
	"github.com/aretw0/keypad/internal/config"
	"github.com/aretw0/keypad/internal/logging"
	"github.com/spf13/cobra"
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Manage persistent sessions",
	Long:  `List, inspect, and remove sessions in the configured store (.keypad/sessions by default).`,
}

var sessionLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List all sessions",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withBackend(cmd, func(b *cli.Backend) error {
			return cli.ListSessions(cmd.Context(), cmd.OutOrStdout(), b.Store)
		})
	},
}

var sessionInspectCmd = &cobra.Command{
	Use:   "inspect <session-id>",
	Short: "Inspect the state of a session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withBackend(cmd, func(b *cli.Backend) error {
			return cli.InspectSession(cmd.Context(), cmd.OutOrStdout(), b.Store, args[0])
		})
	},
}

var sessionRmCmd = &cobra.Command{
	Use:   "rm <session-id>...",
	Short: "Remove one or more sessions",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withBackend(cmd, func(b *cli.Backend) error {
			return cli.RemoveSessions(cmd.Context(), cmd.OutOrStdout(), b.Store, args)
		})
	},
}

func init() {
	rootCmd.AddCommand(sessionCmd)
	sessionCmd.AddCommand(sessionLsCmd)
	sessionCmd.AddCommand(sessionInspectCmd)
	sessionCmd.AddCommand(sessionRmCmd)
}

// withBackend opens the configured store for fn. Sessions only outlive a
// process in file or redis, so the memory backend falls back to file here.
func withBackend(cmd *cobra.Command, fn func(*cli.Backend) error) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cfg.Store.Backend == config.BackendMemory {
		cfg.Store.Backend = config.BackendFile
	}
	b, err := cli.OpenBackend(cmd.Context(), cfg.Store, logging.NewNop())
	if err != nil {
		return err
	}
	defer b.Close()
	return fn(b)
}
