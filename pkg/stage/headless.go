// Package stage provides a reference headless implementation of the stage
// runtime contract. It executes nothing; it tracks the lifecycle, variable,
// and zoom state the controller drives, which is enough for the CLI, the
// HTTP surface, and tests. A real rendering runtime plugs in through
// domain.StageFactory instead.
package stage

import (
	"context"
	"sync"

	"github.com/wyattjouan/stagehand/pkg/domain"
)

// Headless implements domain.Stage without a script engine behind it.
type Headless struct {
	mu        sync.Mutex
	running   bool
	focused   bool
	destroyed bool
	zoom      float64
	vars      map[string]any

	greenFlags int
	stops      int
}

var _ domain.Stage = (*Headless)(nil)

// NewHeadless builds a stage holding the project's declared variables.
func NewHeadless(project *domain.Project) *Headless {
	return &Headless{
		zoom: 1,
		vars: project.DeclaredVariables(),
	}
}

// Factory is a domain.StageFactory producing headless stages.
func Factory(ctx context.Context, project *domain.Project, opts domain.Options) (domain.Stage, error) {
	return NewHeadless(project), nil
}

func (h *Headless) Start() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.running = true
}

func (h *Headless) Pause() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.running = false
}

func (h *Headless) StopAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.stops++
}

func (h *Headless) GreenFlag() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.greenFlags++
}

func (h *Headless) Running() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.running
}

func (h *Headless) Focus() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.focused = true
}

func (h *Headless) SetZoom(scale float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.zoom = scale
}

// Zoom returns the last applied scale factor.
func (h *Headless) Zoom() float64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.zoom
}

func (h *Headless) Variables() map[string]any {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make(map[string]any, len(h.vars))
	for k, v := range h.vars {
		out[k] = v
	}
	return out
}

func (h *Headless) SetVariable(name string, value any) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.vars[name]; ok {
		h.vars[name] = value
	}
}

func (h *Headless) Destroy() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.running = false
	h.destroyed = true
}

// Destroyed reports whether Destroy has been called.
func (h *Headless) Destroyed() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.destroyed
}

// GreenFlags counts GreenFlag invocations since creation.
func (h *Headless) GreenFlags() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.greenFlags
}
