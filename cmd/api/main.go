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

	"github.com/emilythestrangee/community-board/backend/internal/config"
	"github.com/emilythestrangee/community-board/backend/internal/database"
	"github.com/emilythestrangee/community-board/backend/internal/logger"
	"github.com/emilythestrangee/community-board/backend/internal/observability"
	"github.com/emilythestrangee/community-board/backend/internal/server"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.LogMode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := observability.InitTracing(ctx, observability.TracingConfig{
		Enabled:      cfg.TracingEnabled,
		Exporter:     cfg.TracingExporter,
		OTLPEndpoint: cfg.OTLPEndpoint,
		Environment:  cfg.Env,
	})
	if err != nil {
		log.Fatal("Failed to initialize tracing", "error", err)
	}

	db, err := database.New(cfg, log)
	if err != nil {
		log.Fatal("Failed to initialize database", "error", err)
	}

	srv, err := server.New(ctx, cfg, log, db)
	if err != nil {
		log.Fatal("Failed to build server", "error", err)
	}
	httpServer := srv.HTTPServer()

	go func() {
		log.Info("Server starting", "addr", httpServer.Addr, "env", cfg.Env)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Server failed", "error", err)
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", "error", err)
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Error("Tracing shutdown failed", "error", err)
	}
	if err := db.Close(); err != nil {
		log.Error("Database close failed", "error", err)
	}
	log.Info("Server exited")
}
