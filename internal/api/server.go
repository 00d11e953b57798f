// Package api provides the HTTP API server and handlers for the comix server.
package api

import (
	"log/slog"
	"net"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/comixapp/comix-server/internal/comiclist"
	"github.com/comixapp/comix-server/internal/media/covers"
	"github.com/comixapp/comix-server/internal/ratelimit"
	"github.com/comixapp/comix-server/internal/search"
	"github.com/comixapp/comix-server/internal/service"
	"github.com/comixapp/comix-server/internal/sse"
	"github.com/comixapp/comix-server/internal/store/state"
	"github.com/comixapp/comix-server/internal/validation"
)

// Services groups the business logic services used by the API server.
// This reduces the parameter count for NewServer and improves testability.
type Services struct {
	ComicList *service.ComicListService
	Library   *service.LibraryService
	Marks     *service.MarkService
	Add       *service.AddService
}

// Options configures server construction.
type Options struct {
	// AllowedOrigins is the CORS allowlist. Empty means same-origin only.
	AllowedOrigins []string
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	services   *Services
	list       *comiclist.Controller
	search     *search.SearchIndex
	covers     *covers.Storage
	settings   *state.Store
	sseManager *sse.Manager
	sseHandler *sse.Handler

	router    *chi.Mux
	api       huma.API
	validator *validation.Validator
	limiter   *ratelimit.KeyedRateLimiter
	logger    *slog.Logger
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(
	services *Services,
	list *comiclist.Controller,
	idx *search.SearchIndex,
	coverStorage *covers.Storage,
	settings *state.Store,
	sseManager *sse.Manager,
	sseHandler *sse.Handler,
	opts Options,
	logger *slog.Logger,
) *Server {
	s := &Server{
		services:   services,
		list:       list,
		search:     idx,
		covers:     coverStorage,
		settings:   settings,
		sseManager: sseManager,
		sseHandler: sseHandler,
		router:     chi.NewRouter(),
		validator:  validation.New(),
		limiter:    ratelimit.New(1, 3), // heavy operations: sync, add
		logger:     logger,
	}

	s.setupMiddleware(opts)

	humaConfig := huma.DefaultConfig("Comix API", "1.0.0")
	humaConfig.Transformers = append(humaConfig.Transformers, EnvelopeTransformer)
	s.api = humachi.New(s.router, humaConfig)
	RegisterErrorHandler()

	s.setupRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Close releases server-held resources.
func (s *Server) Close() {
	s.limiter.Stop()
}

// setupMiddleware configures the middleware stack.
func (s *Server) setupMiddleware(opts Options) {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))

	if len(opts.AllowedOrigins) > 0 {
		s.router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   opts.AllowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
			ExposedHeaders:   []string{"Link"},
			AllowCredentials: false,
			MaxAge:           300,
		}))
	}
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	// Raw routes that bypass the huma envelope: SSE stream and binary
	// cover delivery.
	s.router.Get("/api/v1/events", s.sseHandler.ServeHTTP)
	s.router.Get("/api/v1/comics/{id}/cover", s.handleGetCover)

	s.registerHealthRoutes()
	s.registerComicRoutes()
	s.registerListRoutes()
	s.registerLibraryRoutes()
	s.registerSearchRoutes()
	s.registerScreenStateRoutes()
}

// rateLimited wraps heavy operations with a per-client rate limit.
func (s *Server) rateLimited(ctx huma.Context, next func(huma.Context)) {
	key, _, err := net.SplitHostPort(ctx.RemoteAddr())
	if err != nil {
		key = ctx.RemoteAddr()
	}

	if !s.limiter.Allow(key) {
		s.logger.Warn("rate limit exceeded", "client", key, "path", ctx.URL().Path)
		huma.WriteErr(s.api, ctx, http.StatusTooManyRequests, "Too many requests, slow down")
		return
	}

	next(ctx)
}
