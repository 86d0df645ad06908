package main

import (
	"context"
	"fmt"
	"os"

	"github.com/aretw0/tgadmin"
	"github.com/aretw0/tgadmin/internal/cli"
	"github.com/spf13/cobra"
)

var manageCmd = &cobra.Command{
	Use:   "manage <file>",
	Short: "Serve a file for editing over Telegram",
	Long: `Starts the bot and serves <file> until interrupted. The bot token comes from
telegram.token (or TGADMIN_TELEGRAM_TOKEN); telegram.admin_list restricts who
may edit.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		sigCtx := cli.NewSignalContext(context.Background())
		defer sigCtx.Cancel()

		err = cli.RunManage(sigCtx, cli.ManageOptions{
			Path:    args[0],
			Config:  cfg,
			Version: tgadmin.Version,
			Banner:  os.Stdout,
		})
		if sig := sigCtx.Signal(); sig != nil {
			fmt.Fprintf(os.Stdout, "Received %s, stopped.\n", sig)
		}
		return err
	},
}

func init() {
	rootCmd.AddCommand(manageCmd)

	manageCmd.Flags().String("token", "", "Telegram bot token")
	manageCmd.Flags().Int64Slice("admin", nil, "Chat or user id allowed to edit (repeatable)")
	manageCmd.Flags().BoolP("watch", "w", false, "Reload the file when another program changes it")
	manageCmd.Flags().String("metrics-addr", "", "Serve /healthz and /metrics on this address")
	manageCmd.Flags().String("redis-addr", "", "Redis address for the cross-process file lock")

	for key, flag := range map[string]string{
		"telegram.token":      "token",
		"telegram.admin_list": "admin",
		"watch":               "watch",
		"metrics.addr":        "metrics-addr",
		"redis.addr":          "redis-addr",
	} {
		if err := v.BindPFlag(key, manageCmd.Flags().Lookup(flag)); err != nil {
			panic(err)
		}
	}
}
