package main

import (
	"strings"

	"github.com/aretw0/keypad/internal/cli"
	"github.com/spf13/cobra"
)

var evalCmd = &cobra.Command{
	Use:   "eval <keys>...",
	Short: "Press keys on a fresh calculator and print the display",
	Example: `  keypad eval 12+3=
  keypad eval 1 . 5 x 4 =
  keypad eval --json "9 neg / 2 ="`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		jsonOut, _ := cmd.Flags().GetBool("json")
		return cli.Eval(cmd.Context(), cmd.OutOrStdout(), strings.Join(args, " "), jsonOut)
	},
}

func init() {
	rootCmd.AddCommand(evalCmd)
	evalCmd.Flags().Bool("json", false, "Print state and display as JSON")
}
