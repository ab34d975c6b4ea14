package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/maasin/byahenow/internal/api/handlers"
	"github.com/maasin/byahenow/internal/api/middleware"
	"github.com/maasin/byahenow/internal/api/routes"
	"github.com/maasin/byahenow/internal/bootstrap"
	"github.com/maasin/byahenow/internal/config"
	"github.com/maasin/byahenow/internal/domain/fare"
	"github.com/maasin/byahenow/internal/repository/kv"
	"github.com/maasin/byahenow/internal/service/account"
	feedbacksvc "github.com/maasin/byahenow/internal/service/feedback"
	"github.com/maasin/byahenow/internal/service/fares"
	"github.com/maasin/byahenow/internal/service/presence"
	"github.com/maasin/byahenow/pkg/cache"
	"github.com/maasin/byahenow/pkg/events"
	"github.com/maasin/byahenow/pkg/logger"
	"github.com/maasin/byahenow/pkg/metrics"
	"github.com/maasin/byahenow/pkg/monitoring"
	"github.com/maasin/byahenow/pkg/websocket"
)

const poolStatsInterval = 30 * time.Second

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	appLogger, err := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer appLogger.Sync()

	appLogger.Info("Starting ByaheNow",
		logger.String("env", cfg.Server.Env),
		logger.String("port", cfg.Server.Port),
		logger.String("store", cfg.Store.Backend),
		logger.String("auth", cfg.Auth.Provider),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize New Relic
	nrApp, err := monitoring.New(monitoring.Config{
		LicenseKey: cfg.NewRelic.LicenseKey,
		AppName:    cfg.NewRelic.AppName,
		Enabled:    cfg.NewRelic.Enabled,
		LogLevel:   cfg.NewRelic.LogLevel,
	})
	if err != nil {
		appLogger.Warn("Failed to initialize New Relic", logger.Err(err))
	} else if nrApp.IsEnabled() {
		appLogger.Info("New Relic APM initialized successfully",
			logger.String("app_name", cfg.NewRelic.AppName))
	} else {
		appLogger.Info("New Relic APM disabled")
	}
	defer nrApp.Shutdown(10 * time.Second)

	// Store and identity provider
	res, err := bootstrap.Open(ctx, cfg, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize backends", logger.Err(err))
	}
	defer res.Close()
	nrApp.RecordStoreBackend(res.Backend, res.Durable())

	var m *metrics.Metrics
	if cfg.Features.EnableMetrics {
		m = metrics.New()
	}

	// Repositories
	drivers := kv.NewDriverRepository(res.Store, appLogger)
	profiles := kv.NewUserRepository(res.Store)

	// Services
	presenceSvc := presence.NewService(drivers, profiles, appLogger, presence.Config{
		MaxSnapshot: cfg.Presence.MaxSnapshot,
	})
	presenceSvc.AddRecorder(m)
	presenceSvc.AddRecorder(nrApp)

	seed, err := loadFareSeed(cfg.Fares.SeedFile)
	if err != nil {
		appLogger.Fatal("Failed to load fare catalog", logger.Err(err))
	}
	faresSvc := fares.NewService(kv.NewFareRepository(res.Store), seed, appLogger)
	feedbackSvc := feedbacksvc.NewService(
		kv.NewFeedbackRepository(res.Store, appLogger),
		appLogger,
		feedbackRecorders{m, nrApp},
	)
	accounts := account.NewService(res.Provider, profiles, appLogger)

	// Optional realtime stream
	var wsHub *websocket.Hub
	if cfg.Features.EnableRealtimeStream {
		wsHub = websocket.NewHub(appLogger)
		go wsHub.Run(ctx)
		presenceSvc.AddListener(presence.HubListener(wsHub))
	}

	// Optional broker fan-out
	if cfg.AMQP.Enabled {
		pub, err := events.DialAMQP(events.Config{URL: cfg.AMQP.URL, Exchange: cfg.AMQP.Exchange}, appLogger)
		if err != nil {
			appLogger.Fatal("Failed to connect to message broker", logger.Err(err))
		}
		defer pub.Close()
		presenceSvc.AddListener(presence.EventListener(pub))
		appLogger.Info("Publishing presence events", logger.String("exchange", cfg.AMQP.Exchange))
	}

	go reportPoolStats(ctx, res, nrApp)

	// Initialize handlers with dependencies
	h := handlers.NewHandlers(presenceSvc, faresSvc, feedbackSvc, accounts, wsHub, appLogger)

	// Initialize Gin router
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())

	routes.SetupRoutes(router, h, middleware.AuthMiddleware(res.Provider, appLogger), nrApp.Agent(), m)
	appLogger.Info("Routes configured successfully")

	// Create HTTP server
	srv := &http.Server{
		Addr:           fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:        routes.CORS(router, cfg.CORS.AllowedOrigins, cfg.CORS.AllowedMethods, cfg.CORS.AllowedHeaders),
		ReadTimeout:    15 * time.Second,
		WriteTimeout:   15 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	// Start server in a goroutine
	go func() {
		appLogger.Info("Server starting", logger.String("address", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Error("Failed to start server", logger.Err(err))
			stop()
		}
	}()

	<-ctx.Done()
	appLogger.Info("Shutting down server...")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("Server forced to shutdown", logger.Err(err))
	}

	appLogger.Info("Server stopped gracefully")
}

func loadFareSeed(path string) (*fare.Catalog, error) {
	if path == "" {
		return fares.DefaultCatalog()
	}
	return fares.LoadCatalog(path)
}

// feedbackRecorders fans one rating out to every metrics sink
type feedbackRecorders []feedbacksvc.Recorder

func (rs feedbackRecorders) RecordFeedback(rating int) {
	for _, r := range rs {
		r.RecordFeedback(rating)
	}
}

func reportPoolStats(ctx context.Context, res *bootstrap.Resources, nrApp *monitoring.NewRelicApp) {
	if !nrApp.IsEnabled() || (res.DB == nil && res.Redis == nil) {
		return
	}
	ticker := time.NewTicker(poolStatsInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if res.DB != nil {
				nrApp.RecordDatabasePoolStats(res.DB.Stats())
			}
			if res.Redis != nil {
				nrApp.RecordRedisPoolStats(cache.ClientStats(res.Redis))
			}
		}
	}
}
