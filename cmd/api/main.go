package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"blueprint-backend/application/services"
	domaincfg "blueprint-backend/domain/config"
	"blueprint-backend/infrastructure/config"
	"blueprint-backend/infrastructure/persistence/sqlite"
	"blueprint-backend/interfaces/http/rest"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := newLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	// Open the snapshot store
	store, err := sqlite.NewCanvasStore(cfg.DatabasePath)
	if err != nil {
		logger.Fatal("Failed to open canvas store", zap.Error(err))
	}
	defer store.Close()

	registry := services.NewProjectRegistry(
		domaincfg.LoadDomainConfig(cfg.Environment),
		store,
		logger,
	)

	// Periodic autosave of every open project
	if cfg.AutosaveSecs > 0 {
		go autosave(ctx, registry, logger, time.Duration(cfg.AutosaveSecs)*time.Second)
	}

	// Create router
	router := rest.NewRouter(registry, logger, cfg.EnableCORS)
	handler := router.Setup()

	srv := &http.Server{
		Addr:         cfg.ServerAddress,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Info("Starting server",
			zap.String("address", cfg.ServerAddress),
			zap.String("environment", cfg.Environment),
			zap.String("database", cfg.DatabasePath),
		)

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	// Graceful shutdown
	logger.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown error", zap.Error(err))
	}

	// Persist every open project before exit
	if err := registry.SaveAll(shutdownCtx); err != nil {
		logger.Error("Failed to save open projects", zap.Error(err))
	}

	log.Println("Server stopped")
}

// autosave periodically persists every open project until ctx is done.
func autosave(ctx context.Context, registry *services.ProjectRegistry, logger *zap.Logger, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := registry.SaveAll(ctx); err != nil {
				logger.Error("Autosave failed", zap.Error(err))
			}
		}
	}
}

// newLogger builds the zap logger for the configured environment and level.
func newLogger(cfg *config.Config) (*zap.Logger, error) {
	var zcfg zap.Config
	if cfg.IsProduction() {
		zcfg = zap.NewProductionConfig()
	} else {
		zcfg = zap.NewDevelopmentConfig()
	}

	level, err := zap.ParseAtomicLevel(cfg.LogLevel)
	if err == nil {
		zcfg.Level = level
	}
	return zcfg.Build()
}
