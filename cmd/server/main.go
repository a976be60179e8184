package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/cors"

	"github.com/sitewise/contractvault/internal/config"
	"github.com/sitewise/contractvault/internal/db"
	"github.com/sitewise/contractvault/internal/export"
	"github.com/sitewise/contractvault/internal/history"
	"github.com/sitewise/contractvault/internal/logger"
	"github.com/sitewise/contractvault/internal/middleware"
	"github.com/sitewise/contractvault/internal/repository"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load(".")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	appLogger, err := logger.New(cfg.Server.LogMode)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer func() { _ = appLogger.Sync() }()

	// Run migrations before opening the pool.
	if err := db.RunMigrations(cfg.Database); err != nil {
		appLogger.Fatalw("failed to run migrations", "error", err)
	}

	conn, err := db.NewConnection(ctx, cfg.Database)
	if err != nil {
		appLogger.Fatalw("failed to connect to database", "error", err)
	}
	defer conn.Close()

	versionRepo := repository.NewContractVersionRepository(conn.Pool)

	historyService := history.NewService(versionRepo, appLogger)
	exportService := export.NewService(versionRepo)

	exportHandler := export.NewHTTPHandler(exportService)
	historyHandler := history.NewHTTPHandler(historyService, exportHandler)

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   cfg.Server.AllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
	})

	logged := middleware.LoggingMiddleware(appLogger)

	versionRoutes := corsHandler.Handler(logged(middleware.ActorMiddleware(historyHandler)))

	mux := http.NewServeMux()
	mux.Handle("/contracts/", versionRoutes)
	mux.Handle("/versions/", versionRoutes)

	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		appLogger.Infow("starting contract version server", "addr", cfg.Server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Fatalw("failed to start server", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.Infow("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		appLogger.Fatalw("server forced to shutdown", "error", err)
	}

	appLogger.Infow("server exited")
}
