package controller

import (
	"github.com/wyattjouan/stagehand/pkg/domain"
	"github.com/wyattjouan/stagehand/pkg/layout"
)

// fullscreenTheme is forced while fullscreen is active; the previous theme
// is restored on exit.
const fullscreenTheme = "dark"

type fullscreenState struct {
	active    bool
	prevTheme string
	winW      int
	winH      int
}

// Resize records the new window dimensions and reapplies the computed
// geometry to the attached session, if any.
func (c *Controller) Resize(winWidth, winHeight int) layout.Geometry {
	c.mu.Lock()
	c.fullscreen.winW = winWidth
	c.fullscreen.winH = winHeight
	c.mu.Unlock()
	return c.applyGeometry()
}

// EnterFullscreen switches to fullscreen presentation: padding and width
// cap no longer apply, and the theme is forced dark until exit.
func (c *Controller) EnterFullscreen(winWidth, winHeight int) layout.Geometry {
	c.mu.Lock()
	if !c.fullscreen.active {
		c.fullscreen.active = true
		c.fullscreen.prevTheme = c.opts.Theme
	}
	c.fullscreen.winW = winWidth
	c.fullscreen.winH = winHeight
	c.mu.Unlock()

	theme := fullscreenTheme
	c.SetOptions(domain.Patch{Theme: &theme})
	return c.applyGeometry()
}

// ExitFullscreen leaves fullscreen and restores the pre-fullscreen theme.
func (c *Controller) ExitFullscreen() layout.Geometry {
	c.mu.Lock()
	wasActive := c.fullscreen.active
	prev := c.fullscreen.prevTheme
	c.fullscreen.active = false
	c.mu.Unlock()

	if wasActive && prev != "" {
		c.SetOptions(domain.Patch{Theme: &prev})
	}
	return c.applyGeometry()
}

// SyncFullscreen reconciles internal state with the platform's. The host
// calls it when fullscreen is left out-of-band (e.g. an external escape
// gesture); if the platform says fullscreen is gone while the controller
// still believes otherwise, the exit path runs.
func (c *Controller) SyncFullscreen(platformActive bool) {
	c.mu.Lock()
	active := c.fullscreen.active
	c.mu.Unlock()

	if active && !platformActive {
		c.ExitFullscreen()
	}
}

// Fullscreen reports whether fullscreen presentation is active.
func (c *Controller) Fullscreen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fullscreen.active
}

// applyGeometry computes the current geometry and pushes the derived scale
// factor to the stage. With no recorded window size it does nothing.
func (c *Controller) applyGeometry() layout.Geometry {
	c.mu.Lock()
	fs := c.fullscreen
	opts := c.opts
	sess := c.session
	c.mu.Unlock()

	if fs.winW == 0 && fs.winH == 0 {
		return layout.Geometry{}
	}

	padding, maxWidth := opts.Padding, opts.MaxWidth
	if fs.active {
		padding, maxWidth = 0, 0
	}

	geo := layout.Compute(fs.winW, fs.winH, padding, maxWidth)
	if sess != nil {
		sess.Stage.SetZoom(geo.Scale)
	}
	return geo
}
