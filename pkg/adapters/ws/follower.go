// Package ws follows a live cloud-variable feed over a websocket. The
// one-shot log replay runs first and gives the approximate snapshot; the
// follower then keeps declared cloud variables current while the session
// stays attached.
package ws

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gorilla/websocket"

	"github.com/wyattjouan/stagehand/internal/logging"
	"github.com/wyattjouan/stagehand/pkg/domain"
)

// message is one feed frame. Only set_var frames are applied; the feed may
// carry other verbs which are ignored here (the replayer owns full folds).
type message struct {
	Verb  domain.CloudVerb `json:"verb"`
	Name  string           `json:"name"`
	Value any              `json:"value"`
}

// Follower subscribes to a feed endpoint and applies updates to a session.
type Follower struct {
	url    string
	dialer *websocket.Dialer
	logger *slog.Logger
}

// Option configures the Follower.
type Option func(*Follower)

// WithDialer overrides the websocket dialer.
func WithDialer(d *websocket.Dialer) Option {
	return func(f *Follower) { f.dialer = d }
}

// WithLogger configures a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(f *Follower) { f.logger = logger }
}

// NewFollower creates a follower for the given websocket URL. The project
// identifier is sent as the first frame after connecting.
func NewFollower(url string, opts ...Option) *Follower {
	f := &Follower{
		url:    url,
		dialer: &websocket.Dialer{HandshakeTimeout: 10 * time.Second},
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Run connects and applies set_var frames to the session's declared cloud
// variables until the context is cancelled or the connection drops. Frames
// naming undeclared or non-cloud variables are dropped with a diagnostic.
func (f *Follower) Run(ctx context.Context, id string, sess *domain.Session) error {
	conn, _, err := f.dialer.DialContext(ctx, f.url, nil)
	if err != nil {
		return fmt.Errorf("dialing cloud feed: %w", err)
	}
	defer conn.Close()

	if err := conn.WriteJSON(map[string]string{"project": id}); err != nil {
		return fmt.Errorf("subscribing to cloud feed: %w", err)
	}

	// Unblock ReadJSON when the caller goes away.
	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	declared := sess.Stage.Variables()
	for {
		var msg message
		if err := conn.ReadJSON(&msg); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("reading cloud feed: %w", err)
		}
		if msg.Verb != domain.CloudSet {
			continue
		}
		if !domain.IsCloudName(msg.Name) {
			f.logger.Warn("ignoring feed update for non-cloud variable", "name", msg.Name)
			continue
		}
		if _, ok := declared[msg.Name]; !ok {
			f.logger.Warn("ignoring feed update for undeclared variable", "name", msg.Name)
			continue
		}
		sess.Stage.SetVariable(msg.Name, msg.Value)
	}
}
