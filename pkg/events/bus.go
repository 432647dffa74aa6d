// Package events provides the typed publish/subscribe channels the player
// emits on. Emission is a plain synchronous iteration over the registered
// handlers; there is no hidden global registry and no unsubscribe, since
// subscribers live exactly as long as the controller instance.
package events

import (
	"log/slog"
	"sync"

	"github.com/wyattjouan/stagehand/internal/logging"
	"github.com/wyattjouan/stagehand/pkg/domain"
)

// Channel is a strongly typed event stream. Handlers run synchronously in
// registration order. A handler registered during an emit does not receive
// that emit; a handler that panics is recovered and logged so the remaining
// handlers still run.
type Channel[T any] struct {
	mu       sync.Mutex
	handlers []func(T)
	logger   *slog.Logger
	name     string
}

func newChannel[T any](name string, logger *slog.Logger) *Channel[T] {
	return &Channel[T]{logger: logger, name: name}
}

// Subscribe registers a handler. Handlers cannot be removed.
func (c *Channel[T]) Subscribe(fn func(T)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handlers = append(c.handlers, fn)
}

// Emit invokes every handler registered at the time of the call.
func (c *Channel[T]) Emit(value T) {
	c.mu.Lock()
	handlers := make([]func(T), len(c.handlers))
	copy(handlers, c.handlers)
	c.mu.Unlock()

	for _, fn := range handlers {
		c.invoke(fn, value)
	}
}

func (c *Channel[T]) invoke(fn func(T), value T) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("event handler panicked", "channel", c.name, "err", r)
		}
	}()
	fn(value)
}

// Bus groups the channels the controller emits on over the life of one
// player instance.
type Bus struct {
	// LoadStarted fires when a load begins; payload is the source
	// identifier (empty for buffer loads).
	LoadStarted *Channel[string]

	// Progress reports loader progress in [0, 1], monotonically
	// non-decreasing within one load.
	Progress *Channel[float64]

	// SessionAttached fires once per successful load.
	SessionAttached *Channel[*domain.Session]

	// SessionDetached fires when an attached session is torn down.
	SessionDetached *Channel[*domain.Session]

	// Error carries load failures. Cancelled loads never emit here.
	Error *Channel[error]

	// Resumed and Paused track lifecycle transitions.
	Resumed *Channel[struct{}]
	Paused  *Channel[struct{}]

	// ThemeChanged carries the new theme name.
	ThemeChanged *Channel[string]

	// OptionsChanged carries exactly the fields that changed.
	OptionsChanged *Channel[domain.Patch]
}

// NewBus creates a bus. A nil logger falls back to a no-op logger.
func NewBus(logger *slog.Logger) *Bus {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Bus{
		LoadStarted:     newChannel[string]("load_started", logger),
		Progress:        newChannel[float64]("progress", logger),
		SessionAttached: newChannel[*domain.Session]("session_attached", logger),
		SessionDetached: newChannel[*domain.Session]("session_detached", logger),
		Error:           newChannel[error]("error", logger),
		Resumed:         newChannel[struct{}]("resumed", logger),
		Paused:          newChannel[struct{}]("paused", logger),
		ThemeChanged:    newChannel[string]("theme_changed", logger),
		OptionsChanged:  newChannel[domain.Patch]("options_changed", logger),
	}
}
