package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/iammorganparry/clive/apps/todo/internal/api"
	"github.com/iammorganparry/clive/apps/todo/internal/config"
	"github.com/iammorganparry/clive/apps/todo/internal/logging"
	"github.com/iammorganparry/clive/apps/todo/internal/store"
)

func main() {
	// Config
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Logger
	logger := logging.New(logging.Options{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
		Output: os.Stdout,
		Prefix: "todo-server",
	})
	slog.SetDefault(logger)

	// SQLite
	db, err := store.Open(cfg.DBPath, store.Options{
		RecreateOnMismatch: cfg.RecreateOnMismatch,
		Logger:             logger,
	})
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	tasks := store.NewTaskStore(db, logger)

	// Router
	router := api.NewRouter(tasks, cfg.Server.APIKey, logger)

	// Server
	addr := cfg.Addr()
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Graceful shutdown
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("todo server starting", "addr", addr, "db", db.Path(), "auth", cfg.Server.APIKey != "")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-done
	logger.Info("shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("shutdown error", "error", err)
	}
	if err := tasks.Close(); err != nil {
		logger.Error("close store", "error", err)
	}

	logger.Info("server stopped")
}
