package stagehand

import (
	"context"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/wyattjouan/stagehand/internal/controller"
	"github.com/wyattjouan/stagehand/internal/logging"
	"github.com/wyattjouan/stagehand/pkg/cancellation"
	"github.com/wyattjouan/stagehand/pkg/cloud"
	"github.com/wyattjouan/stagehand/pkg/domain"
	"github.com/wyattjouan/stagehand/pkg/events"
	"github.com/wyattjouan/stagehand/pkg/layout"
	"github.com/wyattjouan/stagehand/pkg/observability"
	"github.com/wyattjouan/stagehand/pkg/ports"
	"github.com/wyattjouan/stagehand/pkg/stage"
)

// Player is the high-level entry point for the Stagehand library. It wraps
// the internal controller and provides a simplified API for consumers.
type Player struct {
	ctrl    *controller.Controller
	metrics *observability.Metrics
}

type config struct {
	logger     *slog.Logger
	source     ports.ProjectSource
	cloudLog   ports.CloudLogSource
	cloudLimit int
	factory    domain.StageFactory
	options    domain.Options
	registerer prometheus.Registerer
}

// Option defines a functional option for configuring the Player.
type Option func(*config)

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) { c.logger = logger }
}

// WithProjectSource injects the remote source used by LoadByID.
func WithProjectSource(src ports.ProjectSource) Option {
	return func(c *config) { c.source = src }
}

// WithCloudLog injects the change-log source used for cloud variable replay.
func WithCloudLog(src ports.CloudLogSource) Option {
	return func(c *config) { c.cloudLog = src }
}

// WithCloudLimit overrides how many log entries a replay fetches.
func WithCloudLimit(n int) Option {
	return func(c *config) { c.cloudLimit = n }
}

// WithStageFactory injects the stage runtime constructor. The default is
// the headless reference stage.
func WithStageFactory(factory domain.StageFactory) Option {
	return func(c *config) { c.factory = factory }
}

// WithOptions sets the initial configuration snapshot.
func WithOptions(opts domain.Options) Option {
	return func(c *config) { c.options = opts }
}

// WithMetrics registers Prometheus collectors on the given registerer and
// feeds them from the event bus.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(c *config) { c.registerer = reg }
}

// New initializes a Player.
func New(opts ...Option) *Player {
	cfg := &config{
		factory:    stage.Factory,
		options:    domain.DefaultOptions(),
		cloudLimit: cloud.DefaultLimit,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.logger == nil {
		cfg.logger = logging.NewNop()
	}

	bus := events.NewBus(cfg.logger)

	var replayer *cloud.Replayer
	if cfg.cloudLog != nil {
		replayer = cloud.NewReplayer(cfg.cloudLog,
			cloud.WithLimit(cfg.cloudLimit),
			cloud.WithLogger(cfg.logger),
		)
	}

	p := &Player{
		ctrl: controller.New(controller.Config{
			Bus:     bus,
			Logger:  cfg.logger,
			Source:  cfg.source,
			Cloud:   replayer,
			Factory: cfg.factory,
			Options: cfg.options,
		}),
	}

	if cfg.registerer != nil {
		p.metrics = observability.New(cfg.registerer)
		p.metrics.Observe(bus)
	}
	return p
}

// Bus returns the event bus. Subscribe before starting loads to observe the
// full load-started → progress → session-attached sequence.
func (p *Player) Bus() *events.Bus { return p.ctrl.Bus() }

// Session returns the attached session, or nil.
func (p *Player) Session() *domain.Session { return p.ctrl.Session() }

// Options returns the current configuration snapshot.
func (p *Player) Options() domain.Options { return p.ctrl.Options() }

// SetOptions applies a partial configuration update and returns the new
// snapshot.
func (p *Player) SetOptions(patch domain.Patch) domain.Options {
	return p.ctrl.SetOptions(patch)
}

// LoadByID loads a project from the remote source. The call blocks until
// the load settles; failures surface on the error channel, not as a return
// value. The returned token cancels the load from another goroutine.
func (p *Player) LoadByID(ctx context.Context, id string) *cancellation.Token {
	return p.ctrl.LoadByID(ctx, id)
}

// LoadFromFile loads a local project file; the extension is authoritative.
func (p *Player) LoadFromFile(ctx context.Context, path string) *cancellation.Token {
	return p.ctrl.LoadFromFile(ctx, path)
}

// LoadFromBuffer loads raw bytes with an explicit format tag, or
// ClassUnknown to sniff the content.
func (p *Player) LoadFromBuffer(ctx context.Context, payload []byte, class domain.Classification) *cancellation.Token {
	return p.ctrl.LoadFromBuffer(ctx, payload, class)
}

// Resume starts or resumes the attached session.
func (p *Player) Resume() error { return p.ctrl.Resume() }

// Pause suspends the attached session.
func (p *Player) Pause() error { return p.ctrl.Pause() }

// StopAll halts all running scripts.
func (p *Player) StopAll() error { return p.ctrl.StopAll() }

// TriggerGreenFlag restarts scripts from the top, resuming first if needed.
func (p *Player) TriggerGreenFlag() error { return p.ctrl.TriggerGreenFlag() }

// ToggleRunning flips between running and paused.
func (p *Player) ToggleRunning() error { return p.ctrl.ToggleRunning() }

// Resize recomputes the presentation geometry for new window dimensions.
func (p *Player) Resize(winWidth, winHeight int) layout.Geometry {
	return p.ctrl.Resize(winWidth, winHeight)
}

// EnterFullscreen switches to fullscreen presentation.
func (p *Player) EnterFullscreen(winWidth, winHeight int) layout.Geometry {
	return p.ctrl.EnterFullscreen(winWidth, winHeight)
}

// ExitFullscreen leaves fullscreen and restores the previous theme.
func (p *Player) ExitFullscreen() layout.Geometry { return p.ctrl.ExitFullscreen() }

// SyncFullscreen reconciles with the platform's fullscreen state after an
// out-of-band exit.
func (p *Player) SyncFullscreen(platformActive bool) { p.ctrl.SyncFullscreen(platformActive) }

// Fullscreen reports whether fullscreen presentation is active.
func (p *Player) Fullscreen() bool { return p.ctrl.Fullscreen() }

// Detach destroys the attached session and supersedes any in-flight load.
func (p *Player) Detach() { p.ctrl.Detach() }

// Status renders a short human-readable status line.
func (p *Player) Status() string { return p.ctrl.String() }
