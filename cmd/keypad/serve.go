package main

import (
	"github.com/aretw0/keypad/internal/cli"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Serves calculator sessions over a JSON API, with Server-Sent Events for
display updates and Prometheus metrics. See GET /openapi.yaml for the contract.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, sigCtx, err := setup(cmd)
		if err != nil {
			return err
		}
		defer sigCtx.Cancel()

		if addr, _ := cmd.Flags().GetString("addr"); cmd.Flags().Changed("addr") {
			cfg.Server.Addr = addr
		}
		logger, err := cli.NewLogger(cfg, false)
		if err != nil {
			return err
		}
		return cli.Serve(sigCtx, cfg, logger)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("addr", "a", ":8080", "Address to listen on (overrides server.addr)")
}
