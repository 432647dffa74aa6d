// Package cli holds the shared construction helpers behind the cobra
// commands: turning a Config into a wired Player, log level parsing, and
// terminal detection.
package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/muesli/termenv"
	"github.com/prometheus/client_golang/prometheus"
	backend "github.com/redis/go-redis/v9"
	"golang.org/x/term"

	"github.com/wyattjouan/stagehand"
	"github.com/wyattjouan/stagehand/internal/config"
	"github.com/wyattjouan/stagehand/pkg/adapters/httpsource"
	redisadapter "github.com/wyattjouan/stagehand/pkg/adapters/redis"
	"github.com/wyattjouan/stagehand/pkg/ports"
)

// ParseLevel maps a config string to a slog level, defaulting to info.
func ParseLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// DefaultTheme picks the theme matching the terminal background.
func DefaultTheme() string {
	if termenv.HasDarkBackground() {
		return "dark"
	}
	return "light"
}

// Interactive reports whether stdout is a terminal.
func Interactive() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// BuildPlayer wires a Player from the configuration. The returned registry
// backs the /metrics endpoint in serve mode.
func BuildPlayer(cfg config.Config, logger *slog.Logger) (*stagehand.Player, *prometheus.Registry, error) {
	opts := []stagehand.Option{
		stagehand.WithLogger(logger),
		stagehand.WithOptions(cfg.Options),
	}

	var source *httpsource.Client
	if cfg.ProjectHost != "" {
		source = httpsource.New(cfg.ProjectHost, httpsource.WithLogger(logger))
		opts = append(opts, stagehand.WithProjectSource(source))
	}

	cloudLog, err := buildCloudLog(cfg, source, logger)
	if err != nil {
		return nil, nil, err
	}
	if cloudLog != nil {
		opts = append(opts, stagehand.WithCloudLog(cloudLog))
		if cfg.CloudLimit > 0 {
			opts = append(opts, stagehand.WithCloudLimit(cfg.CloudLimit))
		}
	}

	registry := prometheus.NewRegistry()
	opts = append(opts, stagehand.WithMetrics(registry))

	return stagehand.New(opts...), registry, nil
}

func buildCloudLog(cfg config.Config, source *httpsource.Client, logger *slog.Logger) (ports.CloudLogSource, error) {
	switch cfg.CloudBackend {
	case "":
		return nil, nil
	case "http":
		if source == nil {
			return nil, nil
		}
		return source, nil
	case "redis":
		if cfg.RedisAddr == "" {
			return nil, fmt.Errorf("cloud_backend is redis but redis_addr is empty")
		}
		client := backend.NewClient(&backend.Options{Addr: cfg.RedisAddr})
		return redisadapter.NewCloudLog(client, "stagehand:", redisadapter.WithLogger(logger)), nil
	default:
		return nil, fmt.Errorf("unknown cloud_backend %q", cfg.CloudBackend)
	}
}
