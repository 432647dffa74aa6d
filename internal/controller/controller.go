// Package controller implements the load orchestration state machine and
// the lifecycle operations over the attached session. It owns the single
// live Session and the single current cancellation token; replacing either
// tears down the previous one before new state is installed.
package controller

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/wyattjouan/stagehand/internal/logging"
	"github.com/wyattjouan/stagehand/pkg/cancellation"
	"github.com/wyattjouan/stagehand/pkg/cloud"
	"github.com/wyattjouan/stagehand/pkg/domain"
	"github.com/wyattjouan/stagehand/pkg/events"
	"github.com/wyattjouan/stagehand/pkg/format"
	"github.com/wyattjouan/stagehand/pkg/loaders"
	"github.com/wyattjouan/stagehand/pkg/ports"
)

// Config wires the controller's collaborators. Bus and Factory are
// required; Source is required only for loads by remote identifier.
type Config struct {
	Bus     *events.Bus
	Logger  *slog.Logger
	Source  ports.ProjectSource
	Cloud   *cloud.Replayer
	Factory domain.StageFactory
	Options domain.Options
}

// Controller drives one loading session end-to-end and exposes the
// lifecycle operations. All public methods are safe for concurrent use;
// stale continuations are fenced by token identity, not by holding locks
// across I/O.
type Controller struct {
	bus     *events.Bus
	logger  *slog.Logger
	source  ports.ProjectSource
	cloud   *cloud.Replayer
	factory domain.StageFactory

	mu      sync.Mutex
	opts    domain.Options
	session *domain.Session
	token   *cancellation.Token

	fullscreen fullscreenState
}

// New creates a controller. A nil logger falls back to a no-op logger.
func New(cfg Config) *Controller {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Controller{
		bus:     cfg.Bus,
		logger:  logger,
		source:  cfg.Source,
		cloud:   cfg.Cloud,
		factory: cfg.Factory,
		opts:    cfg.Options,
	}
}

// Bus returns the event bus the controller emits on.
func (c *Controller) Bus() *events.Bus { return c.bus }

// Session returns the attached session, or nil.
func (c *Controller) Session() *domain.Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session
}

// LoadByID fetches the project bytes from the remote source, classifies
// them, and loads. Failures are routed to the error channel, never
// returned; the returned token can cancel the load.
func (c *Controller) LoadByID(ctx context.Context, id string) *cancellation.Token {
	tok := c.begin(ctx, id)
	if c.source == nil {
		c.fail(tok, "fetch", errors.New("no project source configured"))
		return tok
	}

	payload, err := c.source.Fetch(tok.Context(), id)
	if err != nil {
		c.fail(tok, "fetch", err)
		return tok
	}
	if !tok.Active() {
		return tok
	}

	class, err := format.DetectBytes(payload)
	if err != nil {
		c.fail(tok, "detect", err)
		return tok
	}

	c.load(tok, id, id, payload, class)
	return tok
}

// LoadFromFile reads a local project file. The filename extension is
// authoritative; the content is not sniffed.
func (c *Controller) LoadFromFile(ctx context.Context, path string) *cancellation.Token {
	tok := c.begin(ctx, path)

	class, err := format.DetectFile(path)
	if err != nil {
		c.fail(tok, "detect", err)
		return tok
	}

	payload, err := os.ReadFile(path)
	if err != nil {
		c.fail(tok, "read", err)
		return tok
	}

	c.load(tok, path, "", payload, class)
	return tok
}

// LoadFromBuffer loads raw bytes. Pass ClassUnknown to request content
// sniffing; otherwise the explicit classification is trusted.
func (c *Controller) LoadFromBuffer(ctx context.Context, payload []byte, class domain.Classification) *cancellation.Token {
	tok := c.begin(ctx, "")

	if class == domain.ClassUnknown {
		var err error
		class, err = format.DetectBytes(payload)
		if err != nil {
			c.fail(tok, "detect", err)
			return tok
		}
	}

	c.load(tok, "", "", payload, class)
	return tok
}

// begin starts a new loading session: the previous token is superseded
// (aborting its bound loader), the previous session is detached and
// destroyed, a fresh token becomes current, and load-started is emitted.
func (c *Controller) begin(ctx context.Context, sourceID string) *cancellation.Token {
	tok := cancellation.New(ctx)

	c.mu.Lock()
	oldTok := c.token
	oldSess := c.session
	c.token = tok
	c.session = nil
	c.mu.Unlock()

	if oldTok != nil {
		oldTok.Supersede()
	}
	if oldSess != nil {
		oldSess.Destroy()
		c.bus.SessionDetached.Emit(oldSess)
	}

	c.logger.Info("load started", "source", sourceID)
	c.bus.LoadStarted.Emit(sourceID)
	return tok
}

// load runs the Loading phase: select the loader, bind it to the token,
// await it, and attach the result.
func (c *Controller) load(tok *cancellation.Token, sourceID, remoteID string, payload []byte, class domain.Classification) {
	if !tok.Active() {
		return
	}

	if class == domain.ClassLegacyUnsupported {
		c.fail(tok, "detect", &domain.ProjectNotSupportedError{Kind: format.LegacyKind})
		return
	}

	ldr, err := loaders.Select(class, payload, c.factory, c.snapshotOptions())
	if err != nil {
		c.fail(tok, "select", err)
		return
	}

	ldr.SetProgress(func(p float64) {
		if tok.Active() {
			c.bus.Progress.Emit(p)
		}
	})

	if err := tok.Bind(ldr); err != nil {
		// Superseded while detection was in flight; discard silently.
		return
	}

	result, err := ldr.Load(tok.Context())
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		c.fail(tok, "load", err)
		return
	}

	c.attach(tok, sourceID, remoteID, result)
}

// attach installs the session if, and only if, the token is still the
// current one. A stale result tears its stage down and vanishes without a
// trace.
func (c *Controller) attach(tok *cancellation.Token, sourceID, remoteID string, result *loaders.Result) {
	sess := &domain.Session{
		Stage:    result.Stage,
		SourceID: sourceID,
		Project:  result.Project,
	}

	c.mu.Lock()
	if c.token != tok || !tok.Active() {
		c.mu.Unlock()
		sess.Destroy()
		return
	}
	c.session = sess
	opts := c.opts
	c.mu.Unlock()

	sess.Stage.Focus()
	c.logger.Info("session attached", "source", sourceID, "targets", len(result.Project.Targets))
	c.bus.SessionAttached.Emit(sess)

	if opts.Autoplay == domain.AutoplayAlways {
		if err := c.Resume(); err != nil && !errors.Is(err, domain.ErrAlreadyRunning) {
			c.logger.Warn("autoplay resume failed", "err", err)
		}
	}

	if c.cloud != nil && remoteID != "" && sess.HasCloudVariables() {
		if err := c.cloud.Run(tok.Context(), remoteID, sess); err != nil {
			// Replay is best-effort; the session stays attached.
			c.logger.Warn("cloud variable replay failed", "project", remoteID, "err", err)
		}
	}
}

// fail routes a load failure to the error channel, unless the token was
// already cancelled or superseded, in which case the failure is swallowed
// so stale error UI cannot resurface.
func (c *Controller) fail(tok *cancellation.Token, phase string, err error) {
	if !tok.Active() {
		return
	}

	var notFound *domain.ProjectNotFoundError
	var notSupported *domain.ProjectNotSupportedError
	if !errors.As(err, &notFound) && !errors.As(err, &notSupported) {
		err = &domain.LoadError{Phase: phase, Err: err}
	}

	c.logger.Error("load failed", "phase", phase, "err", err)
	c.bus.Error.Emit(err)
}

// Detach destroys the attached session, if any, and supersedes the current
// token. Used on shutdown.
func (c *Controller) Detach() {
	c.mu.Lock()
	tok := c.token
	sess := c.session
	c.token = nil
	c.session = nil
	c.mu.Unlock()

	if tok != nil {
		tok.Supersede()
	}
	if sess != nil {
		sess.Destroy()
		c.bus.SessionDetached.Emit(sess)
	}
}

// Options returns the current configuration snapshot.
func (c *Controller) Options() domain.Options {
	return c.snapshotOptions()
}

// SetOptions applies a partial update. The change notification carries
// exactly the fields whose values changed; a theme change additionally
// emits on the theme channel.
func (c *Controller) SetOptions(patch domain.Patch) domain.Options {
	c.mu.Lock()
	next, changed := patch.Apply(c.opts)
	c.opts = next
	c.mu.Unlock()

	if changed.IsZero() {
		return next
	}
	c.bus.OptionsChanged.Emit(changed)
	if changed.Theme != nil {
		c.bus.ThemeChanged.Emit(*changed.Theme)
	}
	return next
}

func (c *Controller) snapshotOptions() domain.Options {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.opts
}

func (c *Controller) attached() (*domain.Session, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil {
		return nil, domain.ErrNoSession
	}
	return c.session, nil
}

// Resume starts script execution. It fails with ErrNoSession when nothing
// is attached and ErrAlreadyRunning when the stage already runs.
func (c *Controller) Resume() error {
	sess, err := c.attached()
	if err != nil {
		return err
	}
	if sess.Running() {
		return domain.ErrAlreadyRunning
	}
	sess.Stage.Start()
	c.bus.Resumed.Emit(struct{}{})
	return nil
}

// Pause suspends script execution. It fails with ErrNoSession when nothing
// is attached and ErrAlreadyPaused when the stage is already paused.
func (c *Controller) Pause() error {
	sess, err := c.attached()
	if err != nil {
		return err
	}
	if !sess.Running() {
		return domain.ErrAlreadyPaused
	}
	sess.Stage.Pause()
	c.bus.Paused.Emit(struct{}{})
	return nil
}

// StopAll halts every running script without pausing the stage.
func (c *Controller) StopAll() error {
	sess, err := c.attached()
	if err != nil {
		return err
	}
	sess.Stage.StopAll()
	return nil
}

// TriggerGreenFlag restarts scripts from the top, resuming first if the
// stage is paused. It never leaves the session paused.
func (c *Controller) TriggerGreenFlag() error {
	sess, err := c.attached()
	if err != nil {
		return err
	}
	if !sess.Running() {
		sess.Stage.Start()
		c.bus.Resumed.Emit(struct{}{})
	}
	sess.Stage.GreenFlag()
	return nil
}

// ToggleRunning pauses a running session and resumes a paused one.
func (c *Controller) ToggleRunning() error {
	sess, err := c.attached()
	if err != nil {
		return err
	}
	if sess.Running() {
		return c.Pause()
	}
	return c.Resume()
}

// String renders a short status line for logs and CLI output.
func (c *Controller) String() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil {
		return "no session"
	}
	state := "paused"
	if c.session.Running() {
		state = "running"
	}
	return fmt.Sprintf("session %q (%s)", c.session.SourceID, state)
}
