package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"crack-go/internal/config"
	"crack-go/internal/models"
	"crack-go/internal/router"
	"crack-go/internal/storage"
	"crack-go/internal/utils"
	"crack-go/pkg/analyzer"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
)

const shutdownTimeout = 10 * time.Second

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	// CONFIG_PATH wins; otherwise ./config.yaml or ./config/config.yaml if present
	cfg, err := config.LoadConfig(os.Getenv("CONFIG_PATH"))
	if err != nil {
		logger.WithError(err).Fatal("Failed to load config")
	}

	level, err := logrus.ParseLevel(cfg.Log.Level)
	if err != nil {
		logger.WithError(err).Warn("Unknown log level, using info")
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	db, err := models.OpenDB(cfg.Database)
	if err != nil {
		logger.WithError(err).Fatal("Failed to open database")
	}
	defer func() {
		if err := models.CloseDB(db); err != nil {
			logger.WithError(err).Warn("Failed to close database")
		}
	}()

	if err := models.AutoMigrate(db); err != nil {
		logger.WithError(err).Fatal("Failed to migrate database")
	}

	var redisClient redis.UniversalClient
	if cfg.Redis.Enabled {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.GetAddress(),
			DB:       cfg.Redis.DB,
			Password: cfg.Redis.Password,
		})
		defer client.Close()

		pingCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		if err := client.Ping(pingCtx).Err(); err != nil {
			// the limiter fails open, so an unreachable redis only disables throttling
			logger.WithError(err).Warn("Redis unreachable, uploads will not be throttled until it recovers")
		}
		cancel()
		redisClient = client
	}

	store, err := storage.New(context.Background(), cfg.Storage)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize image storage")
	}

	crackAnalyzer, err := analyzer.New(cfg.Analyzer)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize analyzer")
	}

	jwtManager := utils.NewJWTManager(cfg.JWT.SecretKey, cfg.JWT.GetExpireDuration())

	r := router.SetupRouter(cfg, jwtManager, logger, db, store, crackAnalyzer, redisClient)

	srv := &http.Server{
		Addr:              cfg.Server.GetAddress(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.WithFields(logrus.Fields{
			"addr":     srv.Addr,
			"storage":  cfg.Storage.Driver,
			"database": cfg.Database.Driver,
			"analyzer": cfg.Analyzer.Kind,
		}).Info("Server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("Server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	logger.Info("Shutdown signal received")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.WithError(err).Error("Server shutdown failed")
	}
	logger.Info("Server stopped")
}
