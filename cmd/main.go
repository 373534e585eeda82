package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"time"

	"go.uber.org/zap"

	"eduportal/internal/api"
	"eduportal/internal/config"
	"eduportal/internal/portal"
	"eduportal/internal/web"
	"eduportal/middleware"
)

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}

	client := api.NewClient(cfg.APIBaseURL)
	store := portal.NewStore()
	portalService := portal.NewService(client, store, logger)

	// Initial load of both collections, concurrently and without an
	// ordering guarantee between them. A failure here is not fatal:
	// the portal starts with an empty cache and the user can refresh.
	if err := portalService.Refresh(context.Background()); err != nil {
		logger.Warn("Initial data load failed", zap.Error(err))
	}

	handler := web.NewWebHandler(portalService, "templates", cfg.SessionSecret, logger)
	router := handler.SetupRoutes()

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: middleware.Logging(logger)(router),
	}

	go func() {
		logger.Info("Education portal listening", zap.String("port", cfg.Port), zap.String("api", cfg.APIBaseURL))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server error", zap.Error(err))
		}
	}()

	waitForShutdown(server, logger)
}

func waitForShutdown(server *http.Server, logger *zap.Logger) {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt)
	<-stop

	logger.Info("Shutting down the server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Server shutdown error", zap.Error(err))
		os.Exit(1)
	}
	logger.Info("Server stopped")
}
