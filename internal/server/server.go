// Package server exposes a running engine over a small JSON HTTP API.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/vovakirdan/chaosynth/internal/engine"
)

// Config holds server configuration.
type Config struct {
	Addr string
}

// Server is the HTTP control API.
type Server struct {
	config Config
	engine *engine.Engine
	router *chi.Mux
	logger *log.Logger
}

// New creates a server over e.
func New(cfg Config, e *engine.Engine, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	s := &Server{
		config: cfg,
		engine: e,
		router: chi.NewRouter(),
		logger: logger,
	}
	s.setupRoutes()
	return s
}

// Handler returns the router.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) setupRoutes() {
	r := s.router

	r.Use(middleware.RequestID)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/health", s.handleHealth)
	r.Get("/state", s.handleState)
	r.Get("/events", s.handleEvents)
	r.Get("/spectrum", s.handleSpectrum)

	r.Post("/chaos/morph", s.handleMorph)
	r.Route("/{target}", func(r chi.Router) {
		r.Get("/", s.handleTarget)
		r.Put("/kind", s.handleKind)
		r.Post("/params", s.handleParams)
		r.Post("/reset", s.handleReset)
		r.Post("/start", s.handleStart)
		r.Post("/stop", s.handleStop)
	})

	r.Get("/presets", s.handlePresetList)
	r.Route("/presets/{name}", func(r chi.Router) {
		r.Get("/", s.handlePresetGet)
		r.Put("/", s.handlePresetPut)
		r.Delete("/", s.handlePresetDelete)
		r.Post("/load", s.handlePresetLoad)
	})

	r.Post("/midi", s.handleMIDI)
}

// requestLogger logs each request at debug level.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("http",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"dur", time.Since(start),
			"req", middleware.GetReqID(r.Context()),
		)
	})
}

// Run serves until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.config.Addr,
		Handler:      s.router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http api listening", "addr", s.config.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down http api")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
