// Package api provides the HTTP query surface over the indexed library.
package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/bookdex/bookdex-server/internal/config"
	"github.com/bookdex/bookdex-server/internal/service"
	"github.com/bookdex/bookdex-server/internal/validation"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	library   *service.LibraryService
	cfg       config.ServerConfig
	router    *chi.Mux
	api       huma.API
	validator *validation.Validator
	logger    *slog.Logger

	rateLimiter *RateLimiter
}

// NewServer creates an HTTP server with all routes configured.
func NewServer(library *service.LibraryService, cfg config.ServerConfig, logger *slog.Logger) *Server {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Compress(5))
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	rateLimiter := NewRateLimiter(300, time.Minute, 50)
	router.Use(RateLimitMiddleware(rateLimiter, logger))

	humaConfig := huma.DefaultConfig(cfg.Name, "1.0.0")
	api := humachi.New(router, humaConfig)
	RegisterErrorHandler()

	s := &Server{
		library:     library,
		cfg:         cfg,
		router:      router,
		api:         api,
		validator:   validation.New(),
		logger:      logger,
		rateLimiter: rateLimiter,
	}

	s.registerHealthRoutes()
	s.registerBookRoutes()
	s.registerSearchRoutes()
	s.registerStatsRoutes()
	s.registerReindexRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}
