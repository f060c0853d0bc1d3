package offline

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
)

// Scope routes requests to the worker in control.
type Scope struct {
	fallback   http.Handler
	logger     *slog.Logger
	controller atomic.Pointer[Worker]

	// mu serializes registrations.
	mu sync.Mutex
}

// NewScope creates a scope that sends requests to fallback until a worker
// is activated. fallback is usually a reverse proxy to the origin.
func NewScope(fallback http.Handler, logger *slog.Logger) *Scope {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scope{fallback: fallback, logger: logger}
}

// Register installs and activates w, then hands it control. On failure the
// current controller keeps serving and the error is returned.
func (s *Scope) Register(ctx context.Context, w *Worker) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := w.Install(ctx); err != nil {
		if prev := s.controller.Load(); prev != nil {
			s.logger.Warn("install failed, keeping previous cache", "version", w.Version(), "serving", prev.Version(), "error", err)
		}
		return err
	}
	if err := w.Activate(ctx); err != nil {
		return err
	}

	// claim
	if prev := s.controller.Swap(w); prev != nil && prev != w {
		prev.retire()
	}
	s.logger.Info("cache worker in control", "version", w.Version())
	return nil
}

// Controller returns the worker in control, or nil.
func (s *Scope) Controller() *Worker {
	return s.controller.Load()
}

// ServeHTTP routes req to the controller, or to the fallback when no
// worker is in control yet.
func (s *Scope) ServeHTTP(rw http.ResponseWriter, req *http.Request) {
	if w := s.controller.Load(); w != nil {
		w.ServeHTTP(rw, req)
		return
	}
	s.fallback.ServeHTTP(rw, req)
}
