// Package app owns every long-lived component of a taskpad instance and wires
// them together. Front-ends build one App in main and pass it down.
package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/yukikurage/taskpad/internal/config"
	"github.com/yukikurage/taskpad/internal/database"
	"github.com/yukikurage/taskpad/internal/repository"
	"github.com/yukikurage/taskpad/internal/services"
	"github.com/yukikurage/taskpad/internal/utils"
)

type App struct {
	Config config.Config
	Log    *zap.SugaredLogger
	DB     *gorm.DB
	Clock  utils.Clock

	Auth      *services.AuthService
	Session   *services.SessionService
	Store     *services.TaskStore
	Persister *services.SnapshotPersister
	Alerts    *services.AlertScheduler

	unsubscribe func()
}

// Open connects to the configured database, migrates it and builds the App.
func Open(cfg config.Config, log *zap.SugaredLogger, notifier services.Notifier) (*App, error) {
	db, err := database.Connect(cfg, log)
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(db, log); err != nil {
		database.Close(db)
		return nil, fmt.Errorf("failed to prepare database: %w", err)
	}
	return New(cfg, log, db, utils.SystemClock{}, notifier), nil
}

// New wires the components over an open database.
func New(cfg config.Config, log *zap.SugaredLogger, db *gorm.DB, clock utils.Clock, notifier services.Notifier) *App {
	store := services.NewTaskStore(clock)
	persister := services.NewSnapshotPersister(repository.NewSnapshotRepository(db), log.Named("persistence"), cfg.SaveDebounce())

	a := &App{
		Config:    cfg,
		Log:       log,
		DB:        db,
		Clock:     clock,
		Auth:      services.NewAuthService(repository.NewUserRepository(db), clock),
		Session:   services.NewSessionService(repository.NewSessionRepository(db), store, persister, log.Named("session")),
		Store:     store,
		Persister: persister,
		Alerts:    services.NewAlertScheduler(store, notifier, clock, log.Named("alerts")),
	}
	a.unsubscribe = store.Subscribe(persister)
	return a
}

// Start restores the previous session and runs the alert scheduler until ctx is done.
func (a *App) Start(ctx context.Context) {
	if account := a.Session.Restore(ctx); account != nil {
		a.Log.Infow("restored previous session", "username", account.Username)
	}
	go a.Alerts.Run(ctx, a.Config.AlertInterval())
}

// Close writes any pending snapshot and releases the database.
func (a *App) Close(ctx context.Context) error {
	a.Persister.Flush(ctx)
	a.unsubscribe()
	return database.Close(a.DB)
}
