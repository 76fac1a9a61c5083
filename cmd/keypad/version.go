package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/keypad"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of keypad",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "keypad version %s\n", strings.TrimSpace(keypad.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
