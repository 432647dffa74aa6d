// Package httpapi exposes the player over a small JSON HTTP surface: load
// by identifier, lifecycle transitions, options patching, and Prometheus
// metrics.
package httpapi

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/mitchellh/mapstructure"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wyattjouan/stagehand"
	"github.com/wyattjouan/stagehand/internal/logging"
	"github.com/wyattjouan/stagehand/pkg/domain"
)

// Server adapts a Player to HTTP.
type Server struct {
	player *stagehand.Player
	logger *slog.Logger

	mu       sync.Mutex
	lastErr  error
	lastLoad string
}

// NewHandler builds the router. gatherer may be nil to omit /metrics.
func NewHandler(player *stagehand.Player, gatherer prometheus.Gatherer, logger *slog.Logger) http.Handler {
	if logger == nil {
		logger = logging.NewNop()
	}
	s := &Server{player: player, logger: logger}

	// Remember load outcomes so the load endpoint can report them; the
	// player routes load failures to the bus, not to the caller.
	player.Bus().LoadStarted.Subscribe(func(src string) {
		s.mu.Lock()
		s.lastErr = nil
		s.lastLoad = src
		s.mu.Unlock()
	})
	player.Bus().Error.Subscribe(func(err error) {
		s.mu.Lock()
		s.lastErr = err
		s.mu.Unlock()
	})

	r := chi.NewRouter()
	r.Post("/projects/{id}/load", s.handleLoad)
	r.Get("/session", s.handleStatus)
	r.Post("/session/resume", s.lifecycle(player.Resume))
	r.Post("/session/pause", s.lifecycle(player.Pause))
	r.Post("/session/stop", s.lifecycle(player.StopAll))
	r.Post("/session/green-flag", s.lifecycle(player.TriggerGreenFlag))
	r.Post("/session/toggle", s.lifecycle(player.ToggleRunning))
	r.Get("/options", s.handleGetOptions)
	r.Patch("/options", s.handlePatchOptions)
	if gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}
	return r
}

type statusResponse struct {
	Attached bool   `json:"attached"`
	Running  bool   `json:"running"`
	SourceID string `json:"source_id,omitempty"`
	Targets  int    `json:"targets,omitempty"`
}

func (s *Server) status() statusResponse {
	sess := s.player.Session()
	if sess == nil {
		return statusResponse{}
	}
	return statusResponse{
		Attached: true,
		Running:  sess.Running(),
		SourceID: sess.SourceID,
		Targets:  len(sess.Project.Targets),
	}
}

func (s *Server) handleLoad(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.player.LoadByID(r.Context(), id)

	s.mu.Lock()
	err := s.lastErr
	s.mu.Unlock()

	if err != nil {
		var notFound *domain.ProjectNotFoundError
		var notSupported *domain.ProjectNotSupportedError
		switch {
		case errors.As(err, &notFound):
			writeError(w, http.StatusNotFound, err)
		case errors.As(err, &notSupported):
			writeError(w, http.StatusUnprocessableEntity, err)
		default:
			writeError(w, http.StatusBadGateway, err)
		}
		return
	}
	writeJSON(w, http.StatusOK, s.status())
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.status())
}

// lifecycle wraps an operation, mapping the synchronous misuse errors to
// HTTP statuses: no session -> 404, invalid transition -> 409.
func (s *Server) lifecycle(op func() error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := op(); err != nil {
			switch {
			case errors.Is(err, domain.ErrNoSession):
				writeError(w, http.StatusNotFound, err)
			case errors.Is(err, domain.ErrAlreadyRunning), errors.Is(err, domain.ErrAlreadyPaused):
				writeError(w, http.StatusConflict, err)
			default:
				writeError(w, http.StatusInternalServerError, err)
			}
			return
		}
		writeJSON(w, http.StatusOK, s.status())
	}
}

func (s *Server) handleGetOptions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.player.Options())
}

func (s *Server) handlePatchOptions(w http.ResponseWriter, r *http.Request) {
	var body map[string]any
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	var patch domain.Patch
	if err := mapstructure.Decode(body, &patch); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	writeJSON(w, http.StatusOK, s.player.SetOptions(patch))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
