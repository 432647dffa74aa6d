package domain

// Session is the currently attached project. At most one exists at a time;
// it is created only on successful load completion and destroyed on cleanup
// or replacement. The running/paused flag is delegated to the stage runtime
// and never duplicated here.
type Session struct {
	// Stage is the opaque runtime handle.
	Stage Stage

	// SourceID identifies where the project came from. Empty for buffer loads.
	SourceID string

	// Project is the parsed model the stage was built from.
	Project *Project
}

// Running reports the stage runtime's running flag.
func (s *Session) Running() bool { return s.Stage.Running() }

// Destroy tears down the stage. The session must not be used afterwards.
func (s *Session) Destroy() { s.Stage.Destroy() }

// HasCloudVariables reports whether the project declares at least one
// variable with the cloud marker, making it eligible for log replay.
func (s *Session) HasCloudVariables() bool {
	return len(s.Project.CloudVariables()) > 0
}
