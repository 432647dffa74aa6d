// Package cancellation provides the revocable token guarding one in-flight
// load against stale completion. The token replaces a mutable "current
// loader" global: it is an owned capability passed explicitly into every
// asynchronous continuation that might outlive a cancellation.
package cancellation

import (
	"context"
	"sync"

	"github.com/wyattjouan/stagehand/pkg/domain"
)

// Aborter is the slice of the loader contract the token needs: a request to
// stop, idempotent from the token's perspective.
type Aborter interface {
	Abort()
}

type state int

const (
	stateActive state = iota
	stateSuperseded
	stateCancelled
)

// Token guards one load attempt. It is constructed active; it becomes
// cancelled via Cancel (terminal) or superseded when a newer load begins.
// A superseded token may still be cancelled once to abort network work, but
// its results, if they arrive late, are discarded by the controller.
type Token struct {
	mu     sync.Mutex
	state  state
	loader Aborter

	ctx    context.Context
	cancel context.CancelFunc
}

// New creates an active token. The derived context is cancelled when the
// token is cancelled or superseded, so blocking I/O unwinds promptly.
func New(parent context.Context) *Token {
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithCancel(parent)
	return &Token{ctx: ctx, cancel: cancel}
}

// Context returns the context bound to this token's lifetime.
func (t *Token) Context() context.Context { return t.ctx }

// Active reports whether the token may still affect shared state.
func (t *Token) Active() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state == stateActive
}

// Bind attaches the loader that should be aborted if the token is revoked.
// It fails with ErrTokenInactive once the token has been cancelled or
// superseded; this closes the race where a slow detection step completes
// after the user already started a different load.
func (t *Token) Bind(loader Aborter) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state != stateActive {
		return domain.ErrTokenInactive
	}
	t.loader = loader
	return nil
}

// Cancel revokes the token. A second Cancel fails with ErrAlreadyCancelled.
// Cancelling an already-superseded token is permitted and still aborts the
// bound loader.
func (t *Token) Cancel() error {
	t.mu.Lock()
	if t.state == stateCancelled {
		t.mu.Unlock()
		return domain.ErrAlreadyCancelled
	}
	t.state = stateCancelled
	loader := t.loader
	t.mu.Unlock()

	t.revoke(loader)
	return nil
}

// Supersede invalidates the token's right to affect shared state because a
// newer load has begun. It aborts the bound loader but, unlike Cancel, may
// be followed by one explicit Cancel. Idempotent.
func (t *Token) Supersede() {
	t.mu.Lock()
	if t.state != stateActive {
		t.mu.Unlock()
		return
	}
	t.state = stateSuperseded
	loader := t.loader
	t.mu.Unlock()

	t.revoke(loader)
}

func (t *Token) revoke(loader Aborter) {
	t.cancel()
	if loader != nil {
		loader.Abort()
	}
}
