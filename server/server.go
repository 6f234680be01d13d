// Package server provides HTTP server management and lifecycle handling for the
// panel gateway. It includes server setup, middleware configuration, route
// management, and graceful shutdown capabilities with proper error handling
// and logging.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/casadonazulmira/painel-api/config"
	"github.com/casadonazulmira/painel-api/interfaces"
	"github.com/casadonazulmira/painel-api/logging"
	"github.com/casadonazulmira/painel-api/metrics"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server represents the HTTP server
type Server struct {
	server  *http.Server
	router  chi.Router
	handler interfaces.HTTPHandler
	config  *config.Config
}

// NewServer creates a new server instance
func NewServer(cfg *config.Config, handler interfaces.HTTPHandler) *Server {
	router := chi.NewRouter()

	server := &Server{
		server: &http.Server{
			Handler:      router,
			Addr:         cfg.Address + ":" + cfg.Port,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		router:  router,
		handler: handler,
		config:  cfg,
	}

	server.setupMiddleware()
	server.setupRoutes()

	return server
}

// setupMiddleware configures all middleware
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(RealIPMiddleware)
	s.router.Use(logging.LoggingMiddleware(logging.Default.Logger))
	s.router.Use(middleware.RedirectSlashes)
	s.router.Use(middleware.Recoverer)
	s.router.Use(metrics.Metrics)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.config.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	s.router.Use(RequestSizeMiddleware(s.config))
	s.router.Use(RateLimitHandler)
}

// setupRoutes configures all routes. Everything under /api forwards the
// caller's token to the backend, so it requires an Authorization header.
func (s *Server) setupRoutes() {
	s.router.Route("/api", func(r chi.Router) {
		r.Use(RequireAuthorization)

		r.Get("/moradores/{id}/evolucoes", s.handler.ListEvolucoes)
		r.Post("/moradores/{id}/evolucoes", s.handler.CreateEvolucao)
		r.Patch("/evolucoes/{id}", s.handler.UpdateEvolucao)
		r.Delete("/evolucoes/{id}", s.handler.DeleteEvolucao)

		r.Get("/moradores/{id}/prescricoes", s.handler.ListPrescricoes)
		r.Post("/prescricoes", s.handler.CreatePrescricao)
		r.Patch("/medicamentos-prescricao/{id}", s.handler.UpdateMedicamentoPrescricao)

		r.Get("/relatorios", s.handler.ListRelatorios)
		r.Get("/relatorios/{id}", s.handler.GetRelatorio)
		r.Post("/relatorios", s.handler.CreateRelatorio)
		r.Patch("/relatorios/{id}", s.handler.UpdateRelatorio)

		r.Get("/catalogos/medicos", s.handler.ListMedicos)
		r.Get("/catalogos/medicamentos", s.handler.ListMedicamentos)
		r.Post("/catalogos/refresh", s.handler.RefreshCatalogos)
	})

	s.router.Get("/health", s.handler.HealthCheck)
	s.router.Handle("/metrics", promhttp.Handler())
}

// Start starts the server
func (s *Server) Start() error {
	// Start profiling server if in development mode
	if s.config.Env == "dev" {
		s.startProfilingServer()
	}

	logging.Info(fmt.Sprintf("Starting server at: %s:%s", s.config.Address, s.config.Port))
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	logging.Info("Shutting down server...")

	if err := s.server.Shutdown(ctx); err != nil {
		logging.Error("Server forced to shutdown", "error", err)
		// If graceful shutdown fails, force close
		if err := s.server.Close(); err != nil {
			logging.Error("Server close error", "error", err)
			return err
		}
	}

	logging.Info("Server shutdown complete")
	return nil
}

// Router exposes the configured router, used by the HTTP tests
func (s *Server) Router() chi.Router {
	return s.router
}

// startProfilingServer starts the pprof profiling server in development mode
func (s *Server) startProfilingServer() {
	go func() {
		fmt.Println("Profiling server started at http://localhost:6060/debug/pprof/")
		if err := http.ListenAndServe("localhost:6060", nil); err != nil {
			fmt.Println("Profiling server failed: ", err)
		}
	}()
}
