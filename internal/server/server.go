// Package server assembles the studio HTTP surface: project REST, semantic
// search, the preview document route and the studio websocket.
package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/ashwanth2007/TheVibeCoders/internal/apply"
	"github.com/ashwanth2007/TheVibeCoders/internal/db"
	"github.com/ashwanth2007/TheVibeCoders/internal/generate"
	"github.com/ashwanth2007/TheVibeCoders/internal/preview"
	"github.com/ashwanth2007/TheVibeCoders/internal/project"
	"github.com/ashwanth2007/TheVibeCoders/internal/search"
	"github.com/ashwanth2007/TheVibeCoders/internal/studio"
)

// Config holds server configuration.
type Config struct {
	Port     int
	DataDir  string // directory for the SQLite DB and index snapshots
	AllowAll bool   // allow all CORS origins (dev mode)
}

// Server is the studio server: everything a browser session needs to
// create, generate, preview and export apps.
type Server struct {
	cfg        Config
	db         *db.DB
	projects   *project.Store
	registry   *preview.Registry
	manager    *studio.Manager
	index      *search.Store
	router     chi.Router
	httpServer *http.Server
}

// New wires a server from its dependencies. The search index may be nil
// when no embedder is configured; search routes are then not mounted.
func New(cfg Config, database *db.DB, gen *generate.Service, index *search.Store) *Server {
	s := &Server{
		cfg:      cfg,
		db:       database,
		projects: project.NewStore(database),
		registry: preview.NewRegistry(),
		index:    index,
	}
	s.manager = studio.NewManager(s.projects, s.registry, gen, apply.DefaultOptions())
	s.router = s.buildRouter()
	return s
}

// buildRouter creates and configures the chi router with all routes.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// CORS
	corsOpts := cors.Options{
		AllowedOrigins:   []string{"http://localhost:*", "http://127.0.0.1:*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}
	if s.cfg.AllowAll {
		corsOpts.AllowedOrigins = []string{"*"}
	}
	r.Use(cors.Handler(corsOpts))

	// Health check
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	// REST routes get a request timeout. The websocket and the preview
	// document route stay outside it; sessions outlive any fixed deadline.
	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(60 * time.Second))
		var indexer project.Indexer
		if s.index != nil {
			indexer = s.index
			search.RegisterRoutes(r, s.index)
		}
		project.RegisterRoutes(r, s.projects, s.manager, indexer)
	})

	preview.RegisterRoutes(r, s.registry)
	studio.RegisterRoutes(r, s.manager)

	return r
}

// Router returns the chi router for registering additional routes.
func (s *Server) Router() chi.Router { return s.router }

// Database returns the database connection.
func (s *Server) Database() *db.DB { return s.db }

// Projects returns the project store.
func (s *Server) Projects() *project.Store { return s.projects }

// Manager returns the live session manager.
func (s *Server) Manager() *studio.Manager { return s.manager }

// Start begins listening on the configured port.
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.cfg.Port)
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("vibe studio listening on %s", addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server and closes live sessions.
func (s *Server) Shutdown(ctx context.Context) error {
	s.manager.CloseAll()
	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}
