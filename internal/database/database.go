package database

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	_ "modernc.org/sqlite"

	"github.com/yukikurage/taskpad/internal/config"
	"github.com/yukikurage/taskpad/internal/models"
)

// Connect opens the database selected by cfg.DBDriver. The default is a local
// sqlite file through the pure-Go modernc driver.
func Connect(cfg config.Config, log *zap.SugaredLogger) (*gorm.DB, error) {
	dialector, err := dialectorFor(cfg)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         newGormLogger(log, cfg.LogLevel),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if cfg.DBDriver == "" || cfg.DBDriver == "sqlite" {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to access database handle: %w", err)
		}
		sqlDB.SetMaxOpenConns(1)
	}

	log.Infow("database connection established", "driver", driverName(cfg))
	return db, nil
}

// Migrate creates or updates every table the application stores.
func Migrate(db *gorm.DB, log *zap.SugaredLogger) error {
	log.Debug("running database migrations")
	err := db.AutoMigrate(
		&models.Account{},
		&models.TaskSnapshot{},
		&models.ActiveSession{},
	)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	log.Debug("database migrations completed")
	return nil
}

// Close releases the underlying connection pool.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func dialectorFor(cfg config.Config) (gorm.Dialector, error) {
	switch driverName(cfg) {
	case "sqlite":
		if cfg.DBPath == "" {
			return nil, errors.New("db path is empty")
		}
		if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil && !errors.Is(err, os.ErrExist) {
			return nil, err
		}
		return sqlite.New(sqlite.Config{DriverName: "sqlite", DSN: sqliteDSN(cfg.DBPath)}), nil
	case "mysql":
		dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
			cfg.DBUser,
			cfg.DBPassword,
			cfg.DBHost,
			cfg.DBPort,
			cfg.DBName,
		)
		return mysql.Open(dsn), nil
	case "postgres":
		dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
			cfg.DBHost,
			cfg.DBPort,
			cfg.DBUser,
			cfg.DBPassword,
			cfg.DBName,
		)
		return postgres.Open(dsn), nil
	default:
		return nil, fmt.Errorf("unsupported db driver %q", cfg.DBDriver)
	}
}

func driverName(cfg config.Config) string {
	if cfg.DBDriver == "" {
		return "sqlite"
	}
	return strings.ToLower(cfg.DBDriver)
}

// sqliteDSN builds a file: URI the modernc driver understands. mode=rwc creates
// the database file when it does not exist yet.
func sqliteDSN(path string) string {
	if strings.HasPrefix(path, "file:") {
		return path
	}
	abs, err := filepath.Abs(path)
	if err == nil {
		path = abs
	}
	u := url.URL{
		Scheme: "file",
		Path:   path,
	}
	q := u.Query()
	q.Set("mode", "rwc")
	q.Set("_pragma", "busy_timeout(5000)")
	q.Set("_time_format", "sqlite")
	u.RawQuery = q.Encode()
	return u.String()
}
