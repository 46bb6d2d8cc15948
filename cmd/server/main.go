package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nbarbosa/resurface/internal/api"
	"github.com/nbarbosa/resurface/internal/config"
	"github.com/nbarbosa/resurface/internal/db"
	"github.com/nbarbosa/resurface/internal/logger"
	"github.com/nbarbosa/resurface/internal/repository/sqlite"
	"github.com/nbarbosa/resurface/internal/services"
)

func main() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration: %v", err)
		os.Exit(1)
	}

	log := logger.New(
		logger.WithLevel(logger.ParseLevel(cfg.LogLevel)),
		logger.WithColors(true),
	)
	logger.SetDefault(log)

	log.Info("===========================================")
	log.Info("Resurface Review Server Starting")
	log.Info("===========================================")
	log.Info("configuration loaded")
	log.Debug("addr=%s", cfg.Addr)
	log.Debug("db_path=%s", cfg.DBPath)
	log.Debug("log_level=%s", cfg.LogLevel)
	log.Debug("due_queue_limit=%d", cfg.DueQueueLimit)
	log.Debug("streak_lookback_days=%d", cfg.StreakLookbackDays)
	log.Debug("request_timeout_seconds=%d", cfg.RequestTimeoutSecs)

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		log.Error("failed to open database: %v", err)
		os.Exit(1)
	}
	defer func() {
		log.Debug("closing database connection")
		database.Close()
	}()

	cardRepo := sqlite.NewReviewCardRepository(database.DB)
	eventRepo := sqlite.NewReviewEventRepository(database.DB)
	statsRepo := sqlite.NewStatsRepository(database.DB)
	subjectRepo := sqlite.NewSubjectRepository(database.DB)

	reviewService := services.NewReviewService(cardRepo, eventRepo, subjectRepo)
	statsService := services.NewStatsService(statsRepo, cfg.StreakLookbackDays)

	srv := &api.Server{
		DB:             database,
		ReviewService:  reviewService,
		StatsService:   statsService,
		DueQueueLimit:  cfg.DueQueueLimit,
		RequestTimeout: cfg.RequestTimeoutSecs,
	}

	httpServer := &http.Server{
		Addr:         cfg.Addr,
		Handler:      srv.Routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("HTTP server listening on %s", cfg.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error: %v", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	sig := <-stop

	log.Info("received signal %v, initiating graceful shutdown", sig)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	log.Debug("shutting down HTTP server")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error: %v", err)
	}

	log.Info("===========================================")
	log.Info("Resurface Review Server Stopped")
	log.Info("===========================================")
}
