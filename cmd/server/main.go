package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/callsight/backend/internal/api"
	"github.com/callsight/backend/internal/auth"
	"github.com/callsight/backend/internal/cloudcall"
	"github.com/callsight/backend/internal/config"
	"github.com/callsight/backend/internal/lookup"
	"github.com/callsight/backend/internal/metrics"
	"github.com/callsight/backend/internal/refresher"
	"github.com/callsight/backend/internal/storage"
	"github.com/callsight/backend/internal/websocket"
	"github.com/callsight/backend/pkg/middleware"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	// Configure logger
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	// Set log level
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.Warn().Str("level", cfg.LogLevel).Msg("invalid log level, using info")
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	log.Info().
		Str("port", cfg.Port).
		Strs("allowed_origins", cfg.AllowedOrigins).
		Str("log_level", cfg.LogLevel).
		Str("cloudcall_base_url", cfg.CloudCallBaseURL).
		Msg("starting callsight backend server")

	// Create upstream reporting client and identity cache
	client := cloudcall.New(cfg.CloudCallBaseURL, cloudcall.StaticToken(cfg.CloudCallToken), log.Logger)
	cache := lookup.NewCache(client, log.Logger, lookup.Options{})

	// Create WebSocket hub
	hub := websocket.NewHub(log.Logger)
	go hub.Run()

	// Create context for services
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Create snapshot archive (noop unless DYNAMO_MODE is set)
	var store storage.Store = storage.NewNoopStore()
	dynamoCfg := storage.LoadDynamoConfig()
	if dynamoCfg.Mode != storage.DynamoModeNone {
		dynamoStore, err := storage.NewDynamoDBStore(ctx, dynamoCfg, log.Logger)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to initialize DynamoDB store")
		}
		store = dynamoStore
	}

	// Create background refresher
	refresherService := refresher.New(cache, hub, store, cfg.RefreshInterval, log.Logger)
	go refresherService.Start(ctx)

	// Create handlers
	wsHandler := websocket.NewHandler(hub, cfg, log.Logger)
	statsHandler := api.NewStatsHandler(cache, log.Logger)
	snapshotsHandler := api.NewSnapshotsHandler(store, log.Logger)

	// Create router
	r := chi.NewRouter()

	// Add middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger(log.Logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS(cfg.AllowedOrigins))

	// Register public routes (no auth required)
	r.Get("/health", healthHandler)
	r.Get("/metrics", metrics.Get().Handler())

	// Add auth middleware for protected routes
	r.Group(func(r chi.Router) {
		r.Use(auth.Middleware)
		r.Get("/ws", wsHandler.ServeHTTP)

		r.Route("/api", func(r chi.Router) {
			r.Get("/stats/{window}", statsHandler.HandleWindowStats)
			r.Get("/agents", statsHandler.HandleAgents)
			r.Get("/departments", statsHandler.HandleDepartments)
			r.Get("/lookup/stats", statsHandler.HandleLookupStats)
			r.Post("/lookup/rebuild", statsHandler.HandleRebuild)
			r.Get("/raw/activities", statsHandler.HandleRawActivities)
			r.Get("/raw/summaries", statsHandler.HandleRawSummaries)
			r.Get("/snapshots/{window}", snapshotsHandler.HandleWindowSnapshots)
			r.Post("/admin/snapshots/wipe", snapshotsHandler.HandleWipeSnapshots)
		})
	})

	// Create HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info().Msgf("server listening on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server...")

	// Stop the refresher
	cancel()

	// Create shutdown context with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server exited")
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok","service":"callsight-backend"}`))
}
