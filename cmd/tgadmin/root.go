package main

import (
	"fmt"
	"os"

	"github.com/aretw0/tgadmin/internal/config"
	"github.com/spf13/cobra"
)

var v = config.NewViper()

var rootCmd = &cobra.Command{
	Use:   "tgadmin",
	Short: "tgadmin edits a JSON, YAML or TOML file through a Telegram bot",
	Long: `tgadmin serves a structured configuration file as navigable inline menus in a
Telegram chat. Authorized operators browse objects and arrays, replace scalar
values and append or remove array elements; every change is written back to the
file in its original format.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return config.ReadFile(v, v.GetString("config"))
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig decodes the merged flags, environment and config file.
func loadConfig() (*config.Config, error) {
	return config.Load(v)
}

func bindFlag(key, flag string) {
	if err := v.BindPFlag(key, rootCmd.PersistentFlags().Lookup(flag)); err != nil {
		panic(err)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("config", "", "Config file (yaml, toml or json)")
	rootCmd.PersistentFlags().String("log-level", "info", "Logging level: debug|info|warn|error")
	rootCmd.PersistentFlags().String("log-format", "text", "Logging format: text|json")
	rootCmd.PersistentFlags().String("log-file", "", "Write logs to this file with size-based rotation")

	bindFlag("config", "config")
	bindFlag("logging.level", "log-level")
	bindFlag("logging.format", "log-format")
	bindFlag("logging.file", "log-file")
}
