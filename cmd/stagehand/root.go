package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/wyattjouan/stagehand/internal/cli"
	"github.com/wyattjouan/stagehand/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "stagehand",
	Short: "Stagehand loads and supervises project sessions",
	Long:  `Stagehand loads user-created projects from a remote host, a local file, or raw bytes, attaches a session, and drives its lifecycle.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to a YAML configuration file")
	rootCmd.PersistentFlags().String("host", "", "Base URL of the remote project host")
	rootCmd.PersistentFlags().String("log-level", "", "Log level (debug, info, warn, error)")
}

// loadConfig resolves the configuration for a command invocation, applying
// flag overrides on top of file and environment values.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return cfg, err
	}

	if host, _ := cmd.Flags().GetString("host"); host != "" {
		cfg.ProjectHost = host
	}
	if level, _ := cmd.Flags().GetString("log-level"); level != "" {
		cfg.LogLevel = level
	}
	if cfg.Options.Theme == "" {
		cfg.Options.Theme = cli.DefaultTheme()
	}
	return cfg, nil
}
