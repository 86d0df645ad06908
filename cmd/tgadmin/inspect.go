package main

import (
	"github.com/aretw0/tgadmin/internal/cli"
	"github.com/spf13/cobra"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <file> [address]",
	Short: "Print the menu the bot would show at an address",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := cli.InspectOptions{Path: args[0], Out: cmd.OutOrStdout()}
		if len(args) > 1 {
			opts.Address = args[1]
		}
		opts.Plain, _ = cmd.Flags().GetBool("plain")
		opts.Width, _ = cmd.Flags().GetInt("width")
		return cli.RunInspect(opts)
	},
}

func init() {
	rootCmd.AddCommand(inspectCmd)
	inspectCmd.Flags().Bool("plain", false, "Print raw markdown")
	inspectCmd.Flags().Int("width", 80, "Word wrap width")
}
