package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yukikurage/taskpad/internal/app"
	"github.com/yukikurage/taskpad/internal/config"
	"github.com/yukikurage/taskpad/internal/handlers"
	"github.com/yukikurage/taskpad/internal/logger"
	"github.com/yukikurage/taskpad/internal/services"
)

func main() {
	// Load configuration
	cfg, err := config.Load(config.ResolveConfigPath())
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logr, err := logger.New(logger.Options{Level: cfg.LogLevel, File: cfg.LogFile, Console: true})
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logr.Sync()

	// Set Gin mode
	gin.SetMode(cfg.GinMode)

	a, err := app.Open(cfg, logr, services.NewLogNotifier(logr.Named("notify")))
	if err != nil {
		logr.Fatalw("failed to open application", "error", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a.Start(ctx)

	srv := &http.Server{
		Addr:    cfg.ServerAddr,
		Handler: handlers.NewRouter(a),
	}

	go func() {
		logr.Infow("server starting", "addr", cfg.ServerAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Errorw("server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Errorw("server shutdown failed", "error", err)
	}
	if err := a.Close(shutdownCtx); err != nil {
		logr.Errorw("failed to close database", "error", err)
	}
}
