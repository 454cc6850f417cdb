// Package main provides the entrypoint for the AirLens dashboard server.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/airlens/airlens/internal/api"
	"github.com/airlens/airlens/internal/api/middleware"
	"github.com/airlens/airlens/internal/backend"
	"github.com/airlens/airlens/internal/config"
	"github.com/airlens/airlens/internal/conversation"
	"github.com/airlens/airlens/internal/dashboard"
	"github.com/airlens/airlens/internal/location"
	"github.com/airlens/airlens/internal/location/ipapi"
	"github.com/airlens/airlens/internal/speech"
	"github.com/airlens/airlens/internal/telemetry"
)

// Version and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	const serviceName = "airlens-dashboard"

	// Setup structured logging
	log := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("version", Version).
		Logger()

	log.Info().
		Str("build_time", BuildTime).
		Msg("starting AirLens dashboard")

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	// Initialize OpenTelemetry
	ctx := context.Background()
	tp, err := telemetry.Init(ctx, telemetry.Config{
		ServiceName:    serviceName,
		ServiceVersion: Version,
		Environment:    cfg.Environment,
		OTLPEndpoint:   cfg.OTLPEndpoint,
		Enabled:        cfg.TelemetryEnabled,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize telemetry")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := tp.Shutdown(shutdownCtx); shutdownErr != nil {
			log.Error().Err(shutdownErr).Msg("failed to shutdown telemetry")
		}
	}()

	if cfg.TelemetryEnabled {
		log.Info().
			Str("otlp_endpoint", cfg.OTLPEndpoint).
			Msg("OpenTelemetry initialized")
	}

	// Initialize metrics
	metrics, err := middleware.NewMetrics()
	if err != nil {
		log.Error().Err(err).Msg("failed to initialize metrics")
		os.Exit(1) //nolint:gocritic // intentional exit, telemetry cleanup is best-effort
	}

	// Insight backend client
	backendClient := backend.NewClient(backend.ClientConfig{
		BaseURL: cfg.BackendURL,
		Logger:  log,
	})
	if cfg.WaitForBackend {
		if err := backendClient.WaitReady(ctx, backend.ProbeConfig{}, log); err != nil {
			log.Warn().Err(err).Msg("insight backend not ready, continuing anyway")
		}
	}

	// Location resolution: single-shot, fallback city applies on any
	// failure outcome.
	source := ipapi.NewClient(ipapi.ClientConfig{
		BaseURL: cfg.GeolocationURL,
		Allowed: cfg.GeolocationAllowed,
	})
	resolver := location.NewResolver(location.ResolverConfig{
		Source:  source,
		Timeout: cfg.ResolveTimeout,
		MaxAge:  cfg.PositionMaxAge,
		Logger:  log,
	})

	coordinator := dashboard.NewCoordinator(dashboard.CoordinatorConfig{
		Backend:      backendClient,
		Location:     resolver,
		FallbackCity: cfg.FallbackCity,
		Logger:       log,
	})
	defer coordinator.Close()

	insights := conversation.NewService(conversation.ServiceConfig{
		Reporter: backendClient,
		Logger:   log,
	})

	// No platform voice backend ships with the server build; the UI
	// hides the voice affordances when the engine reports unsupported.
	voice := speech.Noop{}

	// Resolve the location and warm the dashboard in the background so
	// the first GET already has data when the backend is quick enough.
	go func() {
		status := resolver.Resolve(ctx)
		log.Info().
			Str("status", string(status.Kind)).
			Msg("location resolution settled")
		if err := coordinator.Refresh(ctx); err != nil {
			log.Warn().Err(err).Msg("initial dashboard refresh failed")
		}
	}()

	// Create router with configuration
	router := api.NewRouter(api.RouterConfig{
		Version:      Version,
		BuildTime:    BuildTime,
		Logger:       log,
		ServiceName:  serviceName,
		Metrics:      metrics,
		Coordinator:  coordinator,
		Insights:     insights,
		Breaker:      backendClient,
		Location:     resolver,
		Speech:       voice,
		FallbackCity: cfg.FallbackCity,
	})

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info().
			Str("addr", server.Addr).
			Msg("server listening")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
		os.Exit(1)
	}

	log.Info().Msg("server stopped")
}
