package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"phishguard/internal/api/handlers"
	apimiddleware "phishguard/internal/api/middleware"
	"phishguard/internal/config"
	"phishguard/pkg/logger"
)

// Router holds dependencies for the API router
type Router struct {
	config    config.Config
	handlers  *handlers.Handlers
	rateStore apimiddleware.RateLimitStore
	feed      http.Handler
	logger    *logger.Logger
}

// RouterOption configures a Router
type RouterOption func(*Router)

// WithRateLimitStore enables rate limiting when it is also enabled in config
func WithRateLimitStore(s apimiddleware.RateLimitStore) RouterOption {
	return func(r *Router) { r.rateStore = s }
}

// WithLiveFeed mounts the WebSocket analysis feed at /ws/analyses
func WithLiveFeed(h http.Handler) RouterOption {
	return func(r *Router) { r.feed = h }
}

// NewRouter creates a new Router instance
func NewRouter(cfg config.Config, h *handlers.Handlers, log *logger.Logger, opts ...RouterOption) *Router {
	r := &Router{
		config:   cfg,
		handlers: h,
		logger:   log.WithComponent("router"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Setup sets up the Chi router with all routes and middleware
func (r *Router) Setup() http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(apimiddleware.Logger(r.logger))
	router.Use(middleware.Recoverer)

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   r.config.CORS.AllowedOrigins,
		AllowedMethods:   r.config.CORS.AllowedMethods,
		AllowedHeaders:   r.config.CORS.AllowedHeaders,
		AllowCredentials: r.config.CORS.AllowCredentials,
		MaxAge:           r.config.CORS.MaxAge,
	}))

	router.Get("/health", r.handlers.Health.Check)
	router.Get("/ready", r.handlers.Health.Ready)

	// The feed is long-lived, so it stays outside the request timeout
	if r.feed != nil {
		router.Handle("/ws/analyses", r.feed)
	}

	router.Route("/api/v1", func(api chi.Router) {
		// Model calls can take a while on a cold start
		api.Use(middleware.Timeout(r.timeout()))

		if r.config.Auth.Enabled {
			api.Use(apimiddleware.APIKeyAuth(r.config.Auth.APIKeys))
		}
		if r.config.RateLimit.Enabled && r.rateStore != nil {
			api.Use(apimiddleware.RateLimiter(r.rateStore, r.config.RateLimit, r.logger))
		}

		api.Post("/analyze", r.handlers.Analysis.Analyze)
		api.Post("/analyze/url", r.handlers.Analysis.AnalyzeURL)
		api.Post("/analyze/message", r.handlers.Analysis.AnalyzeMessage)
		api.Post("/detect", r.handlers.Analysis.Detect)
		api.Get("/features", r.handlers.Analysis.Features)

		api.Get("/analyses", r.handlers.Analysis.Recent)
		api.Get("/stats", r.handlers.Analysis.Stats)

		api.Get("/samples", r.handlers.Analysis.Samples)
	})

	return router
}

func (r *Router) timeout() time.Duration {
	if r.config.Server.WriteTimeout > 0 {
		return r.config.Server.WriteTimeout
	}
	return 60 * time.Second
}
