// Package api exposes the classification service over HTTP.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/finsift/finsift/internal/classify"
	"github.com/finsift/finsift/internal/history"
	"github.com/finsift/finsift/internal/logging"
	"github.com/finsift/finsift/internal/metrics"
)

// Server represents the API server
type Server struct {
	router   chi.Router
	handlers *Handlers
	logger   logging.Logger
}

// NewServer creates a new API server
func NewServer(engine *classify.Engine, store history.Store, resultCache ResultCache, catalogFile string, logger logging.Logger) *Server {
	if logger == nil {
		logger = logging.GetLogger()
	}
	s := &Server{
		router:   chi.NewRouter(),
		handlers: NewHandlers(engine, store, resultCache, catalogFile, logger),
		logger:   logger,
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(requestLogger(s.logger))
	s.router.Use(middleware.Recoverer)

	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
}

func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handlers.HealthCheck)
	s.router.Get("/ready", s.handlers.ReadyCheck)
	s.router.Method(http.MethodGet, "/metrics", metrics.Handler())

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Route("/transactions", func(r chi.Router) {
			r.Post("/classify", s.handlers.ClassifyTransaction)
			r.Get("/", s.handlers.ListTransactions)
			r.Get("/stats", s.handlers.GetTransactionStats)
		})

		r.Get("/categories", s.handlers.ListCategories)
		r.Post("/catalog/reload", s.handlers.ReloadCatalog)
	})
}

// Router returns the chi router
func (s *Server) Router() http.Handler {
	return s.router
}
