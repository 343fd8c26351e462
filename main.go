package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/isdelr/tasklist-be/internal/api"
	"github.com/isdelr/tasklist-be/internal/auth"
	"github.com/isdelr/tasklist-be/internal/config"
	"github.com/isdelr/tasklist-be/internal/database"
	"github.com/isdelr/tasklist-be/internal/logger"
	"github.com/isdelr/tasklist-be/internal/monitoring"
	"github.com/isdelr/tasklist-be/internal/services"
	"github.com/isdelr/tasklist-be/internal/websocket"
	"github.com/rs/zerolog/log"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Init("info", "console")
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logger.Init(cfg.LogLevel, cfg.LogFormat)
	if cfg.JWTSecretGenerated {
		log.Warn().Msg("JWT_SECRET not set; using a random secret, sessions end on restart")
	}

	// Set up database
	db, err := database.New(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer db.Close()

	migrateCtx, cancelMigrate := context.WithTimeout(context.Background(), time.Minute)
	err = database.Migrate(migrateCtx, db)
	cancelMigrate()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to apply database migrations")
	}
	log.Info().Str("dialect", string(db.Dialect())).Msg("Database ready")

	tokens, err := auth.NewTokenService(cfg.JWTSecret, cfg.TokenTTL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize token service")
	}

	// Set up WebSocket Hub
	hubCtx, stopHub := context.WithCancel(context.Background())
	hub := websocket.NewHub()
	go hub.Run(hubCtx)

	// Set up services
	userService := services.NewUserService(db, auth.NewBcryptHasher(cfg.BcryptCost), tokens)
	taskService := services.NewTaskService(db, hub)
	eventService := services.NewEventService(db)

	// Set up and run the background scheduler
	stats := monitoring.NewStatCollector()
	scheduler, err := monitoring.NewScheduler(eventService, cfg.EventRetention, cfg.EventPruneSchedule, stats)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize scheduler")
	}
	scheduler.Run()

	router := api.NewRouter(api.Dependencies{
		Users:          userService,
		Tasks:          taskService,
		Events:         eventService,
		Tokens:         tokens,
		Hub:            hub,
		DB:             db,
		Stats:          stats,
		AllowedOrigins: cfg.AllowedOrigins,
		TokenTTL:       cfg.TokenTTL,
		SecureCookies:  cfg.IsProduction(),
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Info().Int("port", cfg.ServerPort).Str("env", cfg.AppEnv).Msg("Server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("ListenAndServe failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	scheduler.Stop(ctx)
	stopHub()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exiting")
}
