package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"clipboard-registers/internal/content"
	"clipboard-registers/internal/service"
	"clipboard-registers/internal/validate"
)

// Server exposes the register operations over a localhost HTTP API for
// the presentation surfaces. It carries no logic of its own: every
// handler calls into the register service and renders what it returns.
type Server struct {
	registers *service.RegisterService
	hub       *Hub
	srv       *http.Server
	pid       *pidFile
	config    Config
	logger    *zap.Logger
}

type Config struct {
	Port int
}

func New(registers *service.RegisterService, config Config, logger *zap.Logger) *Server {
	return &Server{
		registers: registers,
		hub:       newHub(logger),
		config:    config,
		logger:    logger,
	}
}

func (s *Server) Start() error {
	pid, err := ensureSingleInstance()
	if err != nil {
		return err
	}
	s.pid = pid

	go s.hub.run()

	r := chi.NewRouter()

	// Middleware
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(10 * time.Second))

	// Routes
	r.Get("/status", s.handleStatus)
	r.Get("/ws", s.serveWs)
	r.Route("/api", func(r chi.Router) {
		r.Get("/registers", s.handleDisplayData)
		r.Post("/registers/{id}/switch", s.handleSwitch)
		r.Post("/registers/{id}/copy", s.handleCopy)
		r.Post("/registers/{id}/clear", s.handleClear)
	})

	addr := fmt.Sprintf("localhost:%d", s.config.Port)
	s.srv = &http.Server{
		Addr:    addr,
		Handler: r,
	}

	serverErr := make(chan error, 1)
	go func() {
		if err := s.srv.ListenAndServe(); err != http.ErrServerClosed {
			serverErr <- fmt.Errorf("http server error on %s: %w", addr, err)
		}
	}()

	select {
	case err := <-serverErr:
		s.pid.remove()
		return err
	case <-time.After(100 * time.Millisecond):
		s.logger.Info("server started", zap.String("addr", addr))
		return nil
	}
}

func (s *Server) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if s.pid != nil {
		if err := s.pid.remove(); err != nil {
			s.logger.Warn("failed to remove PID file", zap.Error(err))
		}
	}

	if err := s.srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("error shutting down server: %w", err)
	}

	return nil
}

// requestLogger logs every request through the structured logger,
// filling the slot chi's stock request logger would occupy.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		s.logger.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("duration", time.Since(start)))
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"status": "ok",
		"time":   time.Now().Format(time.RFC3339),
		"addr":   s.srv.Addr,
	})
}

func (s *Server) handleDisplayData(w http.ResponseWriter, r *http.Request) {
	data, err := s.registers.DisplayData(r.Context())
	if err != nil {
		// Display reads degrade to an error payload instead of crashing
		// the view.
		s.logger.Error("failed to build display data", zap.Error(err))
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(data)
}

func (s *Server) handleSwitch(w http.ResponseWriter, r *http.Request) {
	s.handleMutation(w, r, s.registers.Switch)
}

func (s *Server) handleCopy(w http.ResponseWriter, r *http.Request) {
	s.handleMutation(w, r, s.registers.Copy)
}

func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	s.handleMutation(w, r, s.registers.Clear)
}

func (s *Server) handleMutation(w http.ResponseWriter, r *http.Request, op func(context.Context, int) (*service.Result, error)) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid register id", http.StatusBadRequest)
		return
	}

	result, err := op(r.Context(), id)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, validate.ErrInvalidRegisterID) {
			status = http.StatusBadRequest
		} else if errors.Is(err, content.ErrContentLoadFailed) {
			status = http.StatusNotFound
		}
		http.Error(w, err.Error(), status)
		return
	}

	// Let connected views re-read their display data.
	if data, dataErr := s.registers.DisplayData(r.Context()); dataErr == nil {
		s.hub.broadcastDisplayData(data)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}
