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

	"graphnav-backend/infrastructure/config"
	"graphnav-backend/infrastructure/di"
	"graphnav-backend/infrastructure/observability"
)

func main() {
	// Initialize context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize dependency container
	container, err := di.InitializeContainer(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize container: %v", err)
	}

	// Distributed tracing
	if cfg.EnableTracing {
		tracerProvider, err := observability.InitTracing(ctx, observability.TracingConfig{
			ServiceName: "graphnav-backend",
			Environment: cfg.Environment,
			Endpoint:    cfg.TracingEndpoint,
		})
		if err != nil {
			container.Logger.Warn("Failed to initialize tracing", zap.Error(err))
		} else {
			defer func() {
				shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer shutdownCancel()
				if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
					container.Logger.Error("Failed to shut down tracer provider", zap.Error(err))
				}
			}()
		}
	}

	// Hot reload of traversal bounds from the config file
	if cfg.ConfigFile != "" {
		watcher, err := config.NewWatcher(cfg.ConfigFile, container.DynamicTraversal, container.Logger)
		if err != nil {
			container.Logger.Warn("Failed to start config watcher", zap.Error(err))
		} else {
			defer watcher.Stop()
		}
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:         cfg.ServerAddress,
		Handler:      container.Handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		container.Logger.Info("Starting server",
			zap.String("address", cfg.ServerAddress),
			zap.String("environment", cfg.Environment),
			zap.String("store", cfg.GraphStore),
		)

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			container.Logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	// Graceful shutdown
	container.Logger.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(ctx, 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		container.Logger.Error("Server shutdown error", zap.Error(err))
	}

	if err := container.Logger.Sync(); err != nil {
		log.Printf("Failed to sync logger: %v", err)
	}

	log.Println("Server stopped")
}
