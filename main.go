package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"churnguard/churn"
	"churnguard/config"
	"churnguard/db"
	qhttp "churnguard/http"
	"churnguard/logging"
	"churnguard/ml"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	// 1. Load config
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.New(logging.Options{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		File:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
	})
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer logger.Sync()

	// 2. Load model artifacts
	artifacts, err := loadArtifacts(context.Background(), cfg, logger)
	if err != nil {
		logger.Fatal("failed to load model artifacts", zap.Error(err))
	}

	predictor, err := churn.NewPredictor(artifacts, cfg.Model.CacheSize, logging.Named(logger, "predictor"))
	if err != nil {
		logger.Fatal("failed to create predictor", zap.Error(err))
	}

	// 3. Start HTTP server
	server := qhttp.NewServer(qhttp.ServerConfig{
		Port:           cfg.Http.Port,
		Timeout:        cfg.Http.Timeout,
		MaxBodyBytes:   cfg.Http.MaxBodyBytes,
		AllowedOrigins: cfg.Http.AllowedOrigins,
	}, qhttp.NewHandlers(predictor, logging.Named(logger, "http")), logging.Named(logger, "server"))

	go func() {
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	// 4. Handle graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down")

	if err := server.Stop(); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
	}

	logger.Info("exiting")
}

func loadArtifacts(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*ml.Artifacts, error) {
	opts := ml.LoadOptions{
		RequiredColumns:  churn.FeatureNames(),
		ForbiddenColumns: churn.BaselineColumns(),
		Strict:           cfg.Strict(),
		Logger:           logging.Named(logger, "artifacts"),
	}

	switch cfg.Model.Source {
	case "sqlite":
		store, err := db.Open(cfg.Model.RegistryPath)
		if err != nil {
			return nil, fmt.Errorf("%w: open registry: %v", ml.ErrConfiguration, err)
		}
		defer store.Close()
		return ml.LoadArtifacts(ctx, db.NewRegistrySource(store, cfg.Model.RegistryName), opts)
	default:
		return ml.LoadArtifacts(ctx, ml.FileSource{
			ClassifierPath:     cfg.Model.ClassifierPath,
			FeatureColumnsPath: cfg.Model.FeatureColumnsPath,
		}, opts)
	}
}
