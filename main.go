package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"predmaint/config"
	phttp "predmaint/http"
	"predmaint/logging"
	"predmaint/ml"
)

func main() {
	// 1. Load config
	configPath := config.Locate()
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 2. Logger
	logger, err := logging.New(logging.Options{
		Level:      cfg.Log.Level,
		File:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
	})
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()
	logger.Info("config loaded", zap.String("path", configPath))

	// 3. Model, a missing artifact keeps the server up with prediction disabled
	registry := ml.NewRegistry(cfg.ML.ModelType, cfg.ML.ModelPath, cfg.ML.CacheSize, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if cfg.ML.Watch {
		watcher, err := ml.NewWatcher(registry, logger)
		if err != nil {
			logger.Warn("model watcher disabled", zap.Error(err))
		} else if err := watcher.Start(ctx); err != nil {
			logger.Warn("model watcher disabled", zap.Error(err))
		} else {
			defer watcher.Stop()
		}
	}

	// 4. HTTP server
	serverConfig := phttp.DefaultServerConfig()
	if cfg.Http.Port != 0 {
		serverConfig.Port = cfg.Http.Port
	}
	if cfg.Http.Timeout != 0 {
		serverConfig.Timeout = cfg.Http.Timeout
	}
	if cfg.Http.MaxRequestSize != 0 {
		serverConfig.MaxRequestSize = cfg.Http.MaxRequestSize
	}
	server := phttp.NewServer(serverConfig, registry, logger)
	go func() {
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	// 5. Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down")

	if err := server.Stop(); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
	}

	logger.Info("exiting")
}
