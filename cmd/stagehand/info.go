package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"github.com/wyattjouan/stagehand/internal/cli"
	"github.com/wyattjouan/stagehand/internal/logging"
	"github.com/wyattjouan/stagehand/pkg/domain"
)

var infoCmd = &cobra.Command{
	Use:   "info <project-id|path>",
	Short: "Load a project and print its metadata without running it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		// Never autoplay for inspection.
		cfg.Options.Autoplay = domain.AutoplayManual

		logger := logging.New(cli.ParseLevel(cfg.LogLevel))
		player, _, err := cli.BuildPlayer(cfg, logger)
		if err != nil {
			return err
		}
		defer player.Detach()

		var loadErr error
		player.Bus().Error.Subscribe(func(err error) { loadErr = err })

		target := args[0]
		if looksLikeFile(target) {
			player.LoadFromFile(cmd.Context(), target)
		} else {
			player.LoadByID(cmd.Context(), target)
		}
		if loadErr != nil {
			return loadErr
		}

		sess := player.Session()
		if sess == nil {
			return fmt.Errorf("no session attached")
		}
		printProject(sess, cli.Interactive())
		return nil
	},
}

func looksLikeFile(target string) bool {
	_, err := os.Stat(target)
	return err == nil
}

func printProject(sess *domain.Session, interactive bool) {
	project := sess.Project

	title := project.Title
	if title == "" {
		title = sess.SourceID
	}
	fmt.Printf("project: %s\n", title)
	fmt.Printf("targets: %d\n", len(project.Targets))

	cloudVars := project.CloudVariables()
	sort.Strings(cloudVars)
	if len(cloudVars) > 0 {
		fmt.Printf("cloud variables: %v\n", cloudVars)
	}

	if project.Notes == "" {
		return
	}
	if !interactive {
		fmt.Println(project.Notes)
		return
	}
	rendered, err := glamour.Render(project.Notes, "auto")
	if err != nil {
		fmt.Println(project.Notes)
		return
	}
	fmt.Print(rendered)
}

func init() {
	rootCmd.AddCommand(infoCmd)
}
