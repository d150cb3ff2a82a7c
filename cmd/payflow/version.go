package main

import (
	"fmt"
	"strings"

	"github.com/payflowkr/payflow"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of payflow",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("payflow version %s\n", strings.TrimSpace(payflow.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
