package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wyattjouan/stagehand/internal/cli"
	"github.com/wyattjouan/stagehand/internal/logging"
	"github.com/wyattjouan/stagehand/pkg/adapters/httpapi"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP control surface",
	Long:  `Exposes project loading, session lifecycle control, options patching, and Prometheus metrics over a JSON HTTP API.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		port, _ := cmd.Flags().GetString("port")

		logger := logging.New(cli.ParseLevel(cfg.LogLevel))
		player, registry, err := cli.BuildPlayer(cfg, logger)
		if err != nil {
			return err
		}
		defer player.Detach()

		srv := &http.Server{
			Addr:    ":" + port,
			Handler: httpapi.NewHandler(player, registry, logger),
		}

		serverErrors := make(chan error, 1)
		go func() {
			logger.Info("control surface listening", "addr", srv.Addr)
			serverErrors <- srv.ListenAndServe()
		}()

		shutdown := make(chan os.Signal, 1)
		signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

		select {
		case err := <-serverErrors:
			return fmt.Errorf("server error: %w", err)

		case sig := <-shutdown:
			logger.Info("shutting down", "signal", sig.String())

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			if err := srv.Shutdown(ctx); err != nil {
				logger.Warn("graceful shutdown did not complete", "err", err)
				if err := srv.Close(); err != nil {
					return fmt.Errorf("closing server: %w", err)
				}
			}
			return nil
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("port", "p", "8080", "Port to listen on")
}
