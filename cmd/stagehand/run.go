package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/wyattjouan/stagehand/internal/cli"
	"github.com/wyattjouan/stagehand/internal/logging"
	"github.com/wyattjouan/stagehand/pkg/adapters/ws"
	"github.com/wyattjouan/stagehand/pkg/domain"
)

var runCmd = &cobra.Command{
	Use:   "run <project-id|path>",
	Short: "Load a project and run its session until interrupted",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if autoplay, _ := cmd.Flags().GetBool("autoplay"); autoplay {
			cfg.Options.Autoplay = domain.AutoplayAlways
		}
		if turbo, _ := cmd.Flags().GetBool("turbo"); turbo {
			cfg.Options.Turbo = true
		}

		logger := logging.New(cli.ParseLevel(cfg.LogLevel))
		player, _, err := cli.BuildPlayer(cfg, logger)
		if err != nil {
			return err
		}
		defer player.Detach()

		interactive := cli.Interactive()
		bus := player.Bus()
		bus.Progress.Subscribe(func(p float64) {
			if interactive {
				fmt.Printf("\rloading… %3.0f%%", p*100)
			}
		})
		bus.SessionAttached.Subscribe(func(s *domain.Session) {
			if interactive {
				fmt.Print("\r")
			}
			fmt.Printf("attached %q (%d targets)\n", s.SourceID, len(s.Project.Targets))
		})

		var loadErr error
		bus.Error.Subscribe(func(err error) { loadErr = err })

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		target := args[0]
		if _, statErr := os.Stat(target); statErr == nil {
			player.LoadFromFile(ctx, target)
		} else {
			player.LoadByID(ctx, target)
		}
		if loadErr != nil {
			return loadErr
		}

		sess := player.Session()
		if sess == nil {
			return fmt.Errorf("load was cancelled before a session attached")
		}

		if !sess.Running() {
			if err := player.TriggerGreenFlag(); err != nil {
				return err
			}
		}
		fmt.Println(player.Status())

		// Follow the live cloud feed, if configured, for the life of the run.
		if cfg.CloudFeedURL != "" && sess.HasCloudVariables() {
			follower := ws.NewFollower(cfg.CloudFeedURL, ws.WithLogger(logger))
			go func() {
				if err := follower.Run(ctx, sess.SourceID, sess); err != nil && ctx.Err() == nil {
					logger.Warn("cloud feed stopped", "err", err)
				}
			}()
		}

		<-ctx.Done()
		fmt.Println("\nstopping session")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().Bool("autoplay", false, "Start the session immediately after attach")
	runCmd.Flags().Bool("turbo", false, "Enable turbo mode")
}
