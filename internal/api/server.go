// Package api provides the HTTP server and handlers of the tag service.
package api

import (
	"log/slog"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/omsapp/tag-server/internal/auth"
	"github.com/omsapp/tag-server/internal/i18n"
	"github.com/omsapp/tag-server/internal/ratelimit"
	"github.com/omsapp/tag-server/internal/search"
	"github.com/omsapp/tag-server/internal/service"
	"github.com/omsapp/tag-server/internal/store"
)

// Config holds the HTTP-level settings of the server.
type Config struct {
	Title       string
	Version     string
	CORSOrigins []string
}

// Deps are the collaborators the handlers call into.
type Deps struct {
	Tags    *service.TagService
	Store   store.Repository
	Index   *search.TagIndex            // nil when search is disabled
	Catalog *i18n.Catalog
	Tokens  *auth.TokenService
	Limiter *ratelimit.KeyedRateLimiter // nil disables rate limiting
	Logger  *slog.Logger
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	tags    *service.TagService
	store   store.Repository
	index   *search.TagIndex
	catalog *i18n.Catalog
	tokens  *auth.TokenService
	limiter *ratelimit.KeyedRateLimiter
	router  *chi.Mux
	api     huma.API
	logger  *slog.Logger
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(cfg Config, deps Deps) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	s := &Server{
		tags:    deps.Tags,
		store:   deps.Store,
		index:   deps.Index,
		catalog: deps.Catalog,
		tokens:  deps.Tokens,
		limiter: deps.Limiter,
		router:  chi.NewRouter(),
		logger:  logger,
	}

	s.setupMiddleware(cfg)

	RegisterErrorHandler()
	s.api = humachi.New(s.router, humaConfig(cfg))

	s.setupRoutes()

	return s
}

func humaConfig(cfg Config) huma.Config {
	title, version := cfg.Title, cfg.Version
	if title == "" {
		title = "Tag API"
	}
	if version == "" {
		version = "1.0.0"
	}

	config := huma.DefaultConfig(title, version)
	config.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"bearer": {
			Type:         "http",
			Scheme:       "bearer",
			BearerFormat: "PASETO",
		},
	}
	return config
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// API returns the huma API, mainly for tests and OpenAPI export.
func (s *Server) API() huma.API {
	return s.api
}

func (s *Server) setupMiddleware(cfg Config) {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(requestLogger(s.logger))
	s.router.Use(middleware.Recoverer)

	origins := cfg.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Accept-Language", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	if s.limiter != nil {
		s.router.Use(RateLimitMiddleware(s.limiter, s.logger, apiPrefix))
	}

	s.router.Use(s.languageMiddleware)
	s.router.Use(s.authMiddleware)
}

func (s *Server) setupRoutes() {
	s.registerHealthRoutes()
	s.registerTagRoutes()
	s.registerL11nRoutes()

	s.router.Get("/tag/single", s.handleTagPage)
}
