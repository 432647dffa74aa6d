package main

import (
	"github.com/spf13/cobra"

	"github.com/wyattjouan/stagehand/internal/cli"
	"github.com/wyattjouan/stagehand/internal/logging"
	mcpAdapter "github.com/wyattjouan/stagehand/pkg/adapters/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the player as an MCP server on stdio",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		// Stdio carries the protocol; keep logs on stderr only.
		logger := logging.New(cli.ParseLevel(cfg.LogLevel))
		player, _, err := cli.BuildPlayer(cfg, logger)
		if err != nil {
			return err
		}
		defer player.Detach()

		return mcpAdapter.NewServer(player).ServeStdio()
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
