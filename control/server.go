// Package control exposes a local HTTP surface for inspecting and steering
// the running augmenter: diagnostics, tracked item content, tone selection,
// and a manual scan kick.
package control

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/hazyhaar/feedloom/engine"
	"github.com/hazyhaar/feedloom/generate"
)

// Engine is the slice of the engine the control surface needs.
type Engine interface {
	Diagnostics() engine.Diagnostics
	Items() []string
	ItemContent(id string) (engine.ItemContent, error)
	SetTone(t generate.Tone)
	Signal()
}

// Server is the control HTTP server. It binds to a local address; there is
// no auth because it never leaves the machine.
type Server struct {
	eng    Engine
	logger *slog.Logger
	router chi.Router
}

// NewServer builds the control router around an engine.
func NewServer(eng Engine, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{eng: eng, logger: logger}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/v1/diagnostics", s.handleDiagnostics)
	r.Get("/v1/items", s.handleItems)
	r.Get("/v1/item", s.handleItemContent)
	r.Put("/v1/tone", s.handleSetTone)
	r.Post("/v1/scan", s.handleScan)

	s.router = r
	return s
}

// Handler returns the HTTP handler for mounting or serving.
func (s *Server) Handler() http.Handler { return s.router }

// Run serves on addr until ctx is cancelled, then drains in-flight
// requests with a bounded shutdown.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("control: listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("control: shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func (s *Server) handleDiagnostics(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.eng.Diagnostics())
}

func (s *Server) handleItems(w http.ResponseWriter, r *http.Request) {
	ids := s.eng.Items()
	if ids == nil {
		ids = []string{}
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"items": ids})
}

func (s *Server) handleItemContent(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		s.writeError(w, http.StatusBadRequest, "missing id parameter")
		return
	}
	content, err := s.eng.ItemContent(id)
	if err != nil {
		s.writeError(w, http.StatusNotFound, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, content)
}

func (s *Server) handleSetTone(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Tone string `json:"tone"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	t, err := generate.ParseTone(body.Tone)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.eng.SetTone(t)
	s.writeJSON(w, http.StatusOK, map[string]string{"tone": string(t)})
}

func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	s.eng.Signal()
	w.WriteHeader(http.StatusAccepted)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("control: write response", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}
