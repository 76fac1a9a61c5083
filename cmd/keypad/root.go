package main

import (
	"fmt"
	"os"

	"github.com/aretw0/keypad/internal/cli"
	"github.com/aretw0/keypad/internal/config"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "keypad",
	Short: "keypad is a four-function calculator engine",
	Long: `keypad turns key presses into a running calculation, like a pocket calculator.
Use it interactively, evaluate one line, or serve sessions over HTTP and MCP.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("config", "keypad.yaml", "Configuration file (ignored if missing)")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging to stderr")
	rootCmd.PersistentFlags().String("store", "", "Session store backend: memory, file or redis (overrides config)")
}

// loadConfig reads the configuration file and applies the persistent flag overrides.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, err
	}
	if backend, _ := cmd.Flags().GetString("store"); backend != "" {
		cfg.Store.Backend = backend
	}
	if debug, _ := cmd.Flags().GetBool("debug"); debug {
		cfg.Log.Level = "debug"
	}
	return cfg, cfg.Validate()
}

// setup loads the configuration and the logger for a command.
func setup(cmd *cobra.Command) (config.Config, *cli.SignalContext, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return cfg, nil, err
	}
	return cfg, cli.NewSignalContext(cmd.Context()), nil
}
