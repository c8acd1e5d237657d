// Package api provides the HTTP API server and handlers for the ThreadKeep server.
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

	"github.com/threadkeep/threadkeep-server/internal/config"
	"github.com/threadkeep/threadkeep-server/internal/ratelimit"
	"github.com/threadkeep/threadkeep-server/internal/store/sqlite"
	"github.com/threadkeep/threadkeep-server/internal/store/views"
	"github.com/threadkeep/threadkeep-server/internal/validation"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	store           *sqlite.Store
	views           *views.Store
	services        *Services
	validator       *validation.Validator
	router          *chi.Mux
	api             huma.API
	logger          *slog.Logger
	authRateLimiter *ratelimit.KeyedRateLimiter
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(cfg *config.Config, store *sqlite.Store, viewStore *views.Store, services *Services, logger *slog.Logger) *Server {
	s := &Server{
		store:     store,
		views:     viewStore,
		services:  services,
		validator: validation.New(),
		router:    chi.NewRouter(),
		logger:    logger,
		// Login attempts: 20 per minute per IP, small burst.
		authRateLimiter: ratelimit.New(20.0/60.0, 5),
	}

	s.setupMiddleware()

	humaConfig := huma.DefaultConfig(cfg.Server.Name+" API", "1.0.0")
	humaConfig.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"bearer": {
			Type:         "http",
			Scheme:       "bearer",
			BearerFormat: "PASETO",
		},
	}
	humaConfig.Transformers = append(humaConfig.Transformers, EnvelopeTransformer)

	s.api = humachi.New(s.router, humaConfig)
	RegisterErrorHandler()

	s.registerHealthRoutes()
	s.registerAuthRoutes()
	s.registerCharacterRoutes()
	s.registerThreadRoutes()
	s.registerVocabularyRoutes()
	s.registerViewRoutes()
	s.registerExportRoutes()
	s.registerPublicRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Close releases server resources (the rate limiter's sweep goroutine).
func (s *Server) Close() {
	s.authRateLimiter.Stop()
}

// setupMiddleware configures middleware stack.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))

	// Public view pages are meant to be embedded and fetched cross-origin.
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: false,
		MaxAge:           int((5 * time.Minute).Seconds()),
	}))
}
