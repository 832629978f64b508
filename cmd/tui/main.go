package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/yukikurage/taskpad/internal/app"
	"github.com/yukikurage/taskpad/internal/config"
	"github.com/yukikurage/taskpad/internal/logger"
	"github.com/yukikurage/taskpad/internal/ui"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfgPath := config.ResolveConfigPath()
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// The terminal belongs to the UI, so logs only go to a file.
	logFile := cfg.LogFile
	if logFile == "" {
		logFile = filepath.Join(filepath.Dir(cfgPath), config.AppName+".log")
	}
	logr, err := logger.New(logger.Options{Level: cfg.LogLevel, File: logFile})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logr.Sync()

	notifier := ui.NewChannelNotifier(8)
	a, err := app.Open(cfg, logr, notifier)
	if err != nil {
		return fmt.Errorf("open app: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a.Start(ctx)
	runErr := ui.Run(ctx, a, notifier)
	stop()

	closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := a.Close(closeCtx); err != nil {
		logr.Errorw("failed to close database", "error", err)
	}
	return runErr
}
