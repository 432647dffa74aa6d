package domain

import "context"

// Stage is the contract the controller expects from the project runtime.
// The controller never reaches past this surface; how scripts execute or
// graphics render is the runtime's business.
type Stage interface {
	// Start begins or resumes script execution.
	Start()

	// Pause suspends script execution without resetting it.
	Pause()

	// StopAll halts every running script.
	StopAll()

	// GreenFlag restarts scripts from the top. Callers must ensure the
	// stage is running first; GreenFlag does not resume a paused stage.
	GreenFlag()

	// Running reports whether scripts are currently executing. The
	// running/paused flag lives here, not on the Session.
	Running() bool

	// Focus makes the stage the observable input target.
	Focus()

	// SetZoom applies a uniform presentation scale factor.
	SetZoom(scale float64)

	// Variables exposes the declared variable mapping keyed by name.
	Variables() map[string]any

	// SetVariable writes a declared variable. Unknown names are ignored.
	SetVariable(name string, value any)

	// Destroy releases the stage's resources. It is called exactly once,
	// when the session is detached or replaced.
	Destroy()
}

// StageFactory builds a Stage from a parsed project. Loaders call it during
// their instantiate phase; the real implementation lives outside this module.
type StageFactory func(ctx context.Context, project *Project, opts Options) (Stage, error)
