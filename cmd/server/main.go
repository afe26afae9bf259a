package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/anokye0712/ai-route-planner/common/id"
	"github.com/anokye0712/ai-route-planner/common/logger"
	"github.com/anokye0712/ai-route-planner/common/otel"
	"github.com/anokye0712/ai-route-planner/core/config"
	"github.com/anokye0712/ai-route-planner/core/db"
	"github.com/anokye0712/ai-route-planner/internal/extract"
	"github.com/anokye0712/ai-route-planner/internal/geoapify"
	"github.com/anokye0712/ai-route-planner/internal/http/middleware"
	httprouter "github.com/anokye0712/ai-route-planner/internal/http/router"
	"github.com/anokye0712/ai-route-planner/internal/planner"
	"github.com/anokye0712/ai-route-planner/internal/service"
	"github.com/anokye0712/ai-route-planner/internal/store"
)

func main() {
	fmt.Printf("%s\n", banner)
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		slog.ErrorContext(ctx, "failed to load config", "error", err)
		os.Exit(1)
	}

	// OTel must init before logger (logger uses OTel provider in production)
	telemetry, err := otel.Setup(ctx, cfg.OTel)
	if err != nil {
		// Can't use slog yet — OTel failed before logger setup
		os.Stderr.WriteString("failed to initialize otel: " + err.Error() + "\n")
		os.Exit(1)
	}

	logger.Setup(cfg)

	if telemetry != nil {
		slog.InfoContext(ctx, "otel initialized", "endpoint", cfg.OTel.Endpoint)
	} else {
		slog.InfoContext(ctx, "otel disabled (no endpoint configured)")
	}

	slog.InfoContext(ctx, "route planner starting", "env", cfg.Env, "service", cfg.OTel.ServiceName)
	if err := id.Init(1); err != nil {
		slog.ErrorContext(ctx, "failed to initialize snowflake id generator", "error", err)
		os.Exit(1)
	}

	var stores *store.Stores
	if cfg.DB.Enabled() {
		database, err := db.New(ctx, cfg.DB)
		if err != nil {
			slog.ErrorContext(ctx, "failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer database.Close()
		slog.InfoContext(ctx, "database connected")

		stores = store.NewStores(database)
		if err := stores.PlanRuns().EnsureSchema(ctx); err != nil {
			slog.ErrorContext(ctx, "failed to ensure plan run schema", "error", err)
			os.Exit(1)
		}
	} else {
		slog.InfoContext(ctx, "persistence disabled (no DATABASE_URL configured)")
		stores = store.NewStores(nil)
	}

	geoClient, err := geoapify.NewClient(geoapify.Config{
		APIKey:  cfg.Geoapify.APIKey,
		BaseURL: cfg.Geoapify.BaseURL,
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to create geoapify client", "error", err)
		os.Exit(1)
	}

	var geocoder geoapify.Geocoder = geoClient
	if cfg.Redis.Enabled() {
		redisOpts, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			slog.ErrorContext(ctx, "failed to parse redis url", "error", err)
			os.Exit(1)
		}

		redisClient := redis.NewClient(redisOpts)
		if err := redisClient.Ping(ctx).Err(); err != nil {
			slog.ErrorContext(ctx, "failed to connect to redis", "error", err)
			os.Exit(1)
		}
		defer redisClient.Close()

		ttl := time.Duration(cfg.Redis.GeocodeCacheTTLHours) * time.Hour
		geocoder = geoapify.NewGeocodeCache(geoClient, redisClient, ttl)
		slog.InfoContext(ctx, "redis connected", "geocode_cache_ttl", ttl.String())
	} else {
		slog.InfoContext(ctx, "geocode cache disabled (no REDIS_URL configured)")
	}

	extractor, err := extract.New(&cfg)
	if err != nil {
		slog.ErrorContext(ctx, "failed to create extractor", "error", err)
		os.Exit(1)
	}
	slog.InfoContext(ctx, "extractor ready", "provider", cfg.Extractor.Provider)

	services := service.NewServices(service.ServicesConfig{
		Extractor:     extractor,
		Resolver:      planner.NewResolver(geocoder, cfg.Geoapify.GeocodeConcurrency, cfg.Geoapify.GeocodeRateLimit),
		Optimizer:     geoClient,
		Enricher:      planner.NewEnricher(geoClient, cfg.Geoapify.GeocodeConcurrency),
		Stores:        stores,
		DefaultUserID: cfg.DefaultUserID,
	})

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := setupRouter(cfg, services)
	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		slog.InfoContext(ctx, "http server starting", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.ErrorContext(ctx, "http server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.InfoContext(ctx, "shutting down...")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.ErrorContext(shutdownCtx, "http server shutdown error", "error", err)
	}

	if telemetry != nil {
		if err := telemetry.Shutdown(shutdownCtx); err != nil {
			slog.ErrorContext(shutdownCtx, "otel shutdown error", "error", err)
		}
	}

	slog.InfoContext(shutdownCtx, "shutdown complete")
}

func setupRouter(cfg config.Config, services *service.Services) *gin.Engine {
	router := gin.New()

	// Order matters: OTel creates span → Recovery catches panics → Logger logs with trace context
	if cfg.OTel.Enabled() {
		router.Use(otelgin.Middleware(cfg.OTel.ServiceName))
	}
	router.Use(middleware.Recovery())
	router.Use(middleware.Logger())

	httprouter.SetupRoutes(router, services)

	return router
}

const banner = `
██████╗  ██████╗ ██╗   ██╗████████╗███████╗    ██████╗ ██╗      █████╗ ███╗   ██╗███╗   ██╗███████╗██████╗
██╔══██╗██╔═══██╗██║   ██║╚══██╔══╝██╔════╝    ██╔══██╗██║     ██╔══██╗████╗  ██║████╗  ██║██╔════╝██╔══██╗
██████╔╝██║   ██║██║   ██║   ██║   █████╗      ██████╔╝██║     ███████║██╔██╗ ██║██╔██╗ ██║█████╗  ██████╔╝
██╔══██╗██║   ██║██║   ██║   ██║   ██╔══╝      ██╔═══╝ ██║     ██╔══██║██║╚██╗██║██║╚██╗██║██╔══╝  ██╔══██╗
██║  ██║╚██████╔╝╚██████╔╝   ██║   ███████╗    ██║     ███████╗██║  ██║██║ ╚████║██║ ╚████║███████╗██║  ██║
╚═╝  ╚═╝ ╚═════╝  ╚═════╝    ╚═╝   ╚══════╝    ╚═╝     ╚══════╝╚═╝  ╚═╝╚═╝  ╚═══╝╚═╝  ╚═══╝╚══════╝╚═╝  ╚═╝
`
