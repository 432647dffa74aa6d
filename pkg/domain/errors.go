package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors raised synchronously for controller misuse.
var (
	// ErrNoSession is returned by lifecycle operations when no session is attached.
	ErrNoSession = errors.New("no session attached")

	// ErrAlreadyRunning is returned by Resume when the session is already running.
	ErrAlreadyRunning = errors.New("session already running")

	// ErrAlreadyPaused is returned by Pause when the session is already paused.
	ErrAlreadyPaused = errors.New("session already paused")

	// ErrAlreadyCancelled is returned when a load token is cancelled twice.
	ErrAlreadyCancelled = errors.New("load token already cancelled")

	// ErrTokenInactive is returned when binding a loader to a token that has
	// been cancelled or superseded.
	ErrTokenInactive = errors.New("load token is no longer active")
)

// Sentinel errors from format detection and loader selection.
var (
	// ErrUnrecognizedExtension is returned when a filename hint carries an
	// extension that maps to no known container format.
	ErrUnrecognizedExtension = errors.New("unrecognized project file extension")

	// ErrUnknownProjectStructure is returned when a payload parses as JSON
	// but matches neither supported container shape.
	ErrUnknownProjectStructure = errors.New("unknown project structure")

	// ErrUnsupportedFormat is returned by the loader selector for a
	// classification it has no loader for.
	ErrUnsupportedFormat = errors.New("unsupported project format")
)

// ProjectNotFoundError reports that the remote source has no project for the
// given identifier. It is kept distinct from generic fetch failures so the
// presentation layer can show a tailored message.
type ProjectNotFoundError struct {
	ID string
}

func (e *ProjectNotFoundError) Error() string {
	return fmt.Sprintf("project %q does not exist", e.ID)
}

// ProjectNotSupportedError reports a payload in a container format that
// predates the supported ones and cannot be loaded.
type ProjectNotSupportedError struct {
	Kind string
}

func (e *ProjectNotSupportedError) Error() string {
	return fmt.Sprintf("project format %q is not supported", e.Kind)
}

// LoadError wraps any other failure surfaced through the error channel
// during a load, tagged with the phase it occurred in.
type LoadError struct {
	Phase string
	Err   error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load failed during %s: %v", e.Phase, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }
