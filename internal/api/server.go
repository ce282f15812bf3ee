// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package api wires together the HTTP router, middleware chain, and all
domain handlers into a runnable [http.Server].

Architecture:

  - This package is the topmost Presentation layer boundary.
  - It acts as the central composition root for the HTTP transport framework (chi router).
  - Only this package and cmd/api are allowed to import net/http server primitives.
*/
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/corebase/corebase/internal/platform/config"
	"github.com/corebase/corebase/internal/platform/constants"
	"github.com/corebase/corebase/internal/platform/middleware"
)

// ControllerRoutes is satisfied by every corebase.Controller[T] instance
// (one per demo entity). Kept entity-agnostic here so server.go doesn't
// need a type parameter or a case per entity when mounting routes.
type ControllerRoutes interface {
	RegisterRoutes(router chi.Router)
}

// # Server Definitions

// Server wraps the chi router and the [http.Server].
//
// It is constructed once in main.go with all dependencies injected.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	log        *slog.Logger
}

// # Handler Registry

// Handlers groups all domain-specific HTTP handler sets.
//
// # Usage
//
// New entities add a *corebase.Controller[T] to Entities — no other change
// to server.go is required, since RegisterRoutes is entity-agnostic.
type Handlers struct {
	// Liveness is the /health handler — always returns 200 if process is alive.
	Liveness http.HandlerFunc

	// Readiness is the /ready handler — returns 200 when all deps are healthy.
	Readiness http.HandlerFunc

	// Auth handles login/refresh/logout.
	Auth *AuthHandler

	// Entities is every demo ModelSpec-backed REST controller, each
	// self-contained (auth, projection, join wiring already configured by
	// its own package's NewController).
	Entities []ControllerRoutes
}

// # Server Initialization

// NewServer constructs the chi router with the full middleware chain and
// registers all route groups. There's no global Authenticate middleware:
// each corebase.Controller[T] enforces its own auth per-route
// (RegisterRoutes installs requireAuth), and the auth handler's own
// endpoints (login/refresh) must stay reachable unauthenticated.
func NewServer(ctx context.Context, cfg *config.Config, log *slog.Logger, h Handlers) *Server {
	rte := chi.NewRouter()

	// # Middleware Chain
	// Global middleware applied in order of execution.
	rte.Use(middleware.RequestID())
	rte.Use(middleware.StructuredLogger(log))
	rte.Use(chimw.Timeout(constants.GlobalRequestTimeout))
	rte.Use(middleware.RateLimit(ctx))
	rte.Use(middleware.PanicRecovery(log))
	rte.Use(middleware.CORS(cfg))
	rte.Use(chimw.CleanPath)

	// # Infrastructure Endpoints
	// Unauthenticated health probes for container orchestration.
	rte.Get("/health", h.Liveness)
	rte.Get("/ready", h.Readiness)

	// # Application API
	// Domain-specific route groups mounted under /api.
	rte.Route("/api", func(apiRouter chi.Router) {
		h.Auth.RegisterRoutes(apiRouter)
		for _, entity := range h.Entities {
			entity.RegisterRoutes(apiRouter)
		}
	})

	return &Server{
		router: rte,
		log:    log,
		httpServer: &http.Server{
			Addr:              ":" + cfg.ServerPort,
			Handler:           rte,
			ReadTimeout:       constants.DefaultReadTimeout,
			WriteTimeout:      constants.DefaultWriteTimeout,
			IdleTimeout:       constants.DefaultIdleTimeout,
			ReadHeaderTimeout: constants.DefaultReadHeaderTimeout,
		},
	}
}

// # Server Lifecycle

// ListenAndServe starts the HTTP server.
//
// It blocks until the server is closed or an error occurs.
func (s *Server) ListenAndServe() error {
	s.log.Info("server starting", slog.String("addr", s.httpServer.Addr))
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the server, waiting for in-flight requests.
func (s *Server) Shutdown(timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return s.httpServer.Shutdown(ctx)
}
