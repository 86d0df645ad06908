package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/tgadmin"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of tgadmin",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "tgadmin version %s\n", strings.TrimSpace(tgadmin.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
