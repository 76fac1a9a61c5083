package main

import (
	"github.com/aretw0/keypad/internal/cli"
	"github.com/aretw0/keypad/internal/config"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the interactive calculator",
	Long: `Starts a calculator prompt. Type keys such as "12 + 3 =" or "12+3=".
With --session the calculation is saved after every line and resumed on the next run.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		debug, _ := cmd.Flags().GetBool("debug")
		jsonMode, _ := cmd.Flags().GetBool("json")
		sessionID, _ := cmd.Flags().GetString("session")
		fresh, _ := cmd.Flags().GetBool("fresh")

		// Named sessions default to the file store.
		if sessionID != "" && !cmd.Flags().Changed("store") && cfg.Store.Backend == config.BackendMemory {
			cfg.Store.Backend = config.BackendFile
		}

		return cli.RunSession(cmd.Context(), cli.RunOptions{
			Config:    cfg,
			Debug:     debug,
			JSON:      jsonMode,
			SessionID: sessionID,
			Fresh:     fresh,
		})
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().Bool("json", false, "Run in JSON mode (NDJSON input/output)")
	runCmd.Flags().StringP("session", "s", "", "Session ID to persist and resume")
	runCmd.Flags().Bool("fresh", false, "Discard the stored session before starting")

	// 'run' is the default command
	rootCmd.RunE = runCmd.RunE
	rootCmd.Flags().AddFlagSet(runCmd.Flags())
}
