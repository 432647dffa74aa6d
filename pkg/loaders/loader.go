// Package loaders maps a format classification to a loader implementing the
// uniform two-phase contract: an asynchronous Load that parses the payload
// and instantiates the stage, and an idempotent Abort.
package loaders

import (
	"context"
	"sync/atomic"

	"github.com/wyattjouan/stagehand/pkg/domain"
)

// Result is what a successful load produces: the parsed model and the
// instantiated stage. The controller assembles the Session from it.
type Result struct {
	Project *domain.Project
	Stage   domain.Stage
}

// Loader is the uniform contract every format-specific loader exposes.
type Loader interface {
	// Load parses the payload and builds the stage. It may suspend on
	// CPU-bound parse work and returns context.Canceled after Abort.
	Load(ctx context.Context) (*Result, error)

	// Abort requests the loader to stop. It may be called even if loading
	// already finished; it is a no-op in that case.
	Abort()

	// SetProgress installs the progress callback, reported in [0, 1] and
	// monotonically non-decreasing.
	SetProgress(fn func(float64))
}

// Select returns the loader for a classification. The mapping is pure;
// unknown classifications fail with ErrUnsupportedFormat.
func Select(class domain.Classification, payload []byte, factory domain.StageFactory, opts domain.Options) (Loader, error) {
	switch class {
	case domain.ClassLegacyJSON:
		return &legacyJSONLoader{base: newBase(payload, factory, opts)}, nil
	case domain.ClassMultiTargetJSON:
		return &multiTargetLoader{base: newBase(payload, factory, opts)}, nil
	case domain.ClassArchiveBinary:
		return &archiveLoader{base: newBase(payload, factory, opts)}, nil
	default:
		return nil, domain.ErrUnsupportedFormat
	}
}

// base carries the state shared by every loader: the payload, the stage
// factory, the abort flag, and the progress callback.
type base struct {
	payload  []byte
	factory  domain.StageFactory
	opts     domain.Options
	aborted  atomic.Bool
	progress atomic.Pointer[func(float64)]
}

func newBase(payload []byte, factory domain.StageFactory, opts domain.Options) base {
	return base{payload: payload, factory: factory, opts: opts}
}

func (b *base) Abort() { b.aborted.Store(true) }

func (b *base) SetProgress(fn func(float64)) {
	if fn != nil {
		b.progress.Store(&fn)
	}
}

func (b *base) report(value float64) {
	if fn := b.progress.Load(); fn != nil {
		(*fn)(value)
	}
}

// checkpoint returns context.Canceled once the loader has been aborted or
// the context cancelled. Loaders call it between phases; cancellation is
// cooperative, not preemptive.
func (b *base) checkpoint(ctx context.Context) error {
	if b.aborted.Load() {
		return context.Canceled
	}
	return ctx.Err()
}

// build runs the instantiate phase through the stage factory.
func (b *base) build(ctx context.Context, project *domain.Project) (*Result, error) {
	if err := b.checkpoint(ctx); err != nil {
		return nil, err
	}
	stage, err := b.factory(ctx, project, b.opts)
	if err != nil {
		return nil, err
	}
	b.report(1)
	return &Result{Project: project, Stage: stage}, nil
}
