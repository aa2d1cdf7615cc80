package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/servesync/backend/internal/adapters/cache"
	"github.com/servesync/backend/internal/adapters/database"
	"github.com/servesync/backend/internal/adapters/events"
	"github.com/servesync/backend/internal/adapters/identity"
	"github.com/servesync/backend/internal/adapters/providers/reputation"
	"github.com/servesync/backend/internal/api/handlers"
	"github.com/servesync/backend/internal/api/routes"
	"github.com/servesync/backend/internal/application/services"
	"github.com/servesync/backend/internal/domain/providers"
	"github.com/servesync/backend/internal/domain/repositories"
	"github.com/servesync/backend/internal/infrastructure/clients/postgres"
	"github.com/servesync/backend/internal/infrastructure/clients/redis"
	"github.com/servesync/backend/internal/infrastructure/observability"
	"github.com/servesync/backend/pkg/config"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	observability.InitLogger(cfg.OTEL.ServiceName, cfg.Env)
	logger := observability.GetLogger()

	// Set up context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize OpenTelemetry if enabled
	if cfg.OTEL.Enabled && cfg.OTEL.Endpoint != "" {
		shutdown, err := observability.Setup(
			ctx,
			cfg.OTEL.ServiceName,
			cfg.OTEL.ServiceVersion,
			cfg.OTEL.Endpoint,
		)
		if err != nil {
			logger.Warn().Err(err).Msg("failed to set up OpenTelemetry")
		} else {
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := shutdown(ctx); err != nil {
					logger.Error().Err(err).Msg("error shutting down OpenTelemetry")
				}
			}()
			logger.Info().Msg("OpenTelemetry initialized")
		}
	}

	// Initialize metrics
	metrics, err := observability.InitMetrics()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize metrics")
	}

	// Initialize database client
	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize PostgreSQL client")
	}
	defer pgClient.Close()
	logger.Info().Msg("PostgreSQL client initialized")

	// Initialize Redis client; the application works without caching
	redisClient, err := redis.NewClient(&cfg.Redis)
	if err != nil {
		logger.Warn().Err(err).Msg("failed to initialize Redis client, continuing without cache")
		redisClient = nil
	} else {
		defer redisClient.Close()
		logger.Info().Msg("Redis client initialized")
	}

	var cacheProvider providers.CacheProvider
	if redisClient != nil {
		cacheProvider = cache.NewRedisAdapter(redisClient)
	}

	// Initialize event bus for real-time booking updates
	var eventBus providers.EventBus
	if redisClient != nil {
		eventBus = events.NewRedisEventBus(redisClient)
		logger.Info().Msg("event bus initialized")
	} else {
		logger.Info().Msg("event bus disabled (Redis not available)")
	}

	// Initialize adapters
	userAdapter := database.NewUserAdapter(pgClient)
	bookingAdapter := database.NewBookingAdapter(pgClient)
	reviewAdapter := database.NewReviewAdapter(pgClient)

	// Wrap the catalog with caching if Redis is available
	var serviceAdapter repositories.ServiceRepository = database.NewServiceAdapter(pgClient)
	if cacheProvider != nil {
		cachedAdapter := database.NewCachedServiceAdapter(serviceAdapter, cacheProvider)
		cachedAdapter.SetMetrics(metrics)
		serviceAdapter = cachedAdapter
		logger.Info().Msg("service adapter wrapped with caching layer")
	}

	reputationProvider := reputation.NewReputationProvider(cfg.Reputation, reviewAdapter)
	idProvider := identity.NewUUIDProvider()

	// Initialize services
	scopeService := services.NewScopeService()
	lifecycleService := services.NewLifecycleService(bookingAdapter, reputationProvider, eventBus)
	lifecycleService.SetMetrics(metrics)
	statsService := services.NewStatsService()
	marketplaceService := services.NewMarketplaceService(
		userAdapter,
		serviceAdapter,
		bookingAdapter,
		scopeService,
		lifecycleService,
		statsService,
		idProvider,
		eventBus,
	)
	reviewService := services.NewReviewService(reviewAdapter, bookingAdapter, serviceAdapter, idProvider)

	// Initialize handlers
	bookingHandler := handlers.NewBookingHandler(marketplaceService)
	serviceHandler := handlers.NewServiceHandler(marketplaceService)
	statsHandler := handlers.NewStatsHandler(marketplaceService)
	reviewHandler := handlers.NewReviewHandler(reviewService)

	var sseHandler *handlers.SSEHandler
	if eventBus != nil {
		sseHandler = handlers.NewSSEHandler(eventBus)
	}

	// Set up router
	router := routes.NewRouter(
		bookingHandler,
		serviceHandler,
		statsHandler,
		reviewHandler,
		sseHandler,
		metrics,
	)
	handler := router.SetupRoutes()

	// Create HTTP server
	serverAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info().Str("addr", serverAddr).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server failed to start")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("server shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("error during server shutdown")
	}

	if eventBus != nil {
		if err := eventBus.Close(); err != nil {
			logger.Error().Err(err).Msg("error closing event bus")
		}
	}

	logger.Info().Msg("server stopped")
}
