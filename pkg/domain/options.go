package domain

// AutoplayPolicy decides whether a freshly attached session starts on its own.
type AutoplayPolicy string

const (
	// AutoplayAlways starts the session immediately after attach.
	AutoplayAlways AutoplayPolicy = "always"

	// AutoplayManual leaves the session paused until Resume is called.
	AutoplayManual AutoplayPolicy = "manual"
)

// Options is an immutable configuration snapshot for the player. It is
// replaced wholesale (or via Patch) rather than mutated in place; every
// replacement emits an OptionsChanged event carrying only the fields that
// actually changed.
type Options struct {
	Theme     string         `yaml:"theme" mapstructure:"theme"`
	FrameRate int            `yaml:"frame_rate" mapstructure:"frame_rate"`
	Turbo     bool           `yaml:"turbo" mapstructure:"turbo"`
	Username  string         `yaml:"username" mapstructure:"username"`
	Autoplay  AutoplayPolicy `yaml:"autoplay" mapstructure:"autoplay"`

	// Fullscreen layout parameters.
	Padding  int `yaml:"padding" mapstructure:"padding"`
	MaxWidth int `yaml:"max_width" mapstructure:"max_width"` // <= 0 means uncapped
}

// DefaultOptions returns the baseline configuration.
func DefaultOptions() Options {
	return Options{
		Theme:     "light",
		FrameRate: 30,
		Autoplay:  AutoplayManual,
		Padding:   8,
	}
}

// Patch is a partial Options update. Nil fields are left untouched.
// The mapstructure tags let loose map payloads (HTTP PATCH bodies, MCP tool
// arguments) decode directly into a Patch.
type Patch struct {
	Theme     *string         `json:"theme,omitempty" mapstructure:"theme"`
	FrameRate *int            `json:"frame_rate,omitempty" mapstructure:"frame_rate"`
	Turbo     *bool           `json:"turbo,omitempty" mapstructure:"turbo"`
	Username  *string         `json:"username,omitempty" mapstructure:"username"`
	Autoplay  *AutoplayPolicy `json:"autoplay,omitempty" mapstructure:"autoplay"`
	Padding   *int            `json:"padding,omitempty" mapstructure:"padding"`
	MaxWidth  *int            `json:"max_width,omitempty" mapstructure:"max_width"`
}

// IsZero reports whether the patch changes nothing.
func (p Patch) IsZero() bool {
	return p.Theme == nil && p.FrameRate == nil && p.Turbo == nil &&
		p.Username == nil && p.Autoplay == nil && p.Padding == nil && p.MaxWidth == nil
}

// Apply merges the patch into a copy of opts and returns the new snapshot
// plus a patch containing exactly the fields whose values changed.
func (p Patch) Apply(opts Options) (Options, Patch) {
	var changed Patch
	next := opts

	if p.Theme != nil && *p.Theme != next.Theme {
		next.Theme = *p.Theme
		changed.Theme = p.Theme
	}
	if p.FrameRate != nil && *p.FrameRate != next.FrameRate {
		next.FrameRate = *p.FrameRate
		changed.FrameRate = p.FrameRate
	}
	if p.Turbo != nil && *p.Turbo != next.Turbo {
		next.Turbo = *p.Turbo
		changed.Turbo = p.Turbo
	}
	if p.Username != nil && *p.Username != next.Username {
		next.Username = *p.Username
		changed.Username = p.Username
	}
	if p.Autoplay != nil && *p.Autoplay != next.Autoplay {
		next.Autoplay = *p.Autoplay
		changed.Autoplay = p.Autoplay
	}
	if p.Padding != nil && *p.Padding != next.Padding {
		next.Padding = *p.Padding
		changed.Padding = p.Padding
	}
	if p.MaxWidth != nil && *p.MaxWidth != next.MaxWidth {
		next.MaxWidth = *p.MaxWidth
		changed.MaxWidth = p.MaxWidth
	}

	return next, changed
}
