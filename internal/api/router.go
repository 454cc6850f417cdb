// Package api provides the local HTTP surface for the AirLens dashboard.
package api

import (
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/airlens/airlens/internal/api/handler"
	"github.com/airlens/airlens/internal/api/middleware"
	"github.com/airlens/airlens/internal/conversation"
	"github.com/airlens/airlens/internal/dashboard"
	"github.com/airlens/airlens/internal/speech"
)

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	Version      string
	BuildTime    string
	Logger       zerolog.Logger
	ServiceName  string
	Metrics      *middleware.Metrics
	Coordinator  *dashboard.Coordinator
	Insights     *conversation.Service
	Breaker      handler.BreakerStater
	Location     dashboard.LocationGate
	Speech       speech.Engine
	FallbackCity string
}

// NewRouter creates a new chi router with all API routes configured.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "airlens-dashboard"
	}

	// Global middleware - order matters
	r.Use(middleware.RequestID)            // Generate/propagate request ID first
	r.Use(middleware.Tracing(serviceName)) // Distributed tracing
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware()) // HTTP metrics
	}
	r.Use(middleware.Logger(cfg.Logger))   // Structured logging
	r.Use(middleware.Recovery(cfg.Logger)) // Panic recovery
	r.Use(chimiddleware.RealIP)            // Real IP extraction
	r.Use(middleware.ContentTypeJSON)      // JSON content type
	r.Use(middleware.RequireJSON)          // Reject non-JSON request bodies

	dashboardHandler := handler.NewDashboardHandler(cfg.Coordinator, cfg.FallbackCity)
	insightsHandler := handler.NewInsightsHandler(cfg.Insights, cfg.Coordinator)
	opsHandler := handler.NewOpsHandler(cfg.Version, cfg.BuildTime, cfg.Breaker, cfg.Location)

	engine := cfg.Speech
	if engine == nil {
		engine = speech.Noop{}
	}
	speechHandler := handler.NewSpeechHandler(engine)

	// Summary generation fans out to a language model; keep it on a
	// tighter budget than the read endpoints.
	insightRateLimit := middleware.RateLimitByIP(middleware.InsightRateLimit)
	standardRateLimit := middleware.RateLimitByIP(middleware.StandardRateLimit)

	r.Route("/v1", func(r chi.Router) {
		r.Route("/ops", func(r chi.Router) {
			r.Get("/health", opsHandler.HealthCheck)
		})

		r.Route("/dashboard", func(r chi.Router) {
			r.Use(standardRateLimit)
			r.Get("/", dashboardHandler.GetDashboard)
			r.Post("/refresh", dashboardHandler.Refresh)
		})

		r.With(standardRateLimit).Get("/history", dashboardHandler.GetHistory)

		r.With(standardRateLimit).Get("/speech", speechHandler.GetCapabilities)

		r.Route("/insights", func(r chi.Router) {
			r.Get("/", insightsHandler.Get)
			r.With(insightRateLimit).Post("/", insightsHandler.Start)
			r.With(insightRateLimit).Post("/questions", insightsHandler.Ask)
		})
	})

	return r
}
