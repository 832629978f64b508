package config

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/yukikurage/taskpad/internal/constants"
)

const (
	AppName               = "taskpad"
	DefaultConfigFileName = "config.toml"
	DefaultDBName         = "taskpad.db"
)

type Keymap struct {
	Quit           string `toml:"quit"`
	Add            string `toml:"add"`
	Up             string `toml:"up"`
	Down           string `toml:"down"`
	Toggle         string `toml:"toggle"`
	Delete         string `toml:"delete"`
	Edit           string `toml:"edit"`
	Confirm        string `toml:"confirm"`
	Cancel         string `toml:"cancel"`
	MoveUp         string `toml:"move_up"`
	MoveDown       string `toml:"move_down"`
	Search         string `toml:"search"`
	StatusFilter   string `toml:"status_filter"`
	CategoryFilter string `toml:"category_filter"`
	PriorityFilter string `toml:"priority_filter"`
	Sort           string `toml:"sort"`
	ResetFilters   string `toml:"reset_filters"`
	ClearCompleted string `toml:"clear_completed"`
	Logout         string `toml:"logout"`
}

type Config struct {
	DBDriver   string `toml:"db_driver"`
	DBPath     string `toml:"db_path"`
	DBHost     string `toml:"db_host"`
	DBPort     string `toml:"db_port"`
	DBUser     string `toml:"db_user"`
	DBPassword string `toml:"db_password"`
	DBName     string `toml:"db_name"`

	ServerAddr     string   `toml:"server_addr"`
	GinMode        string   `toml:"gin_mode"`
	AllowedOrigins []string `toml:"allowed_origins"`

	LogLevel string `toml:"log_level"`
	LogFile  string `toml:"log_file"`

	SaveDebounceMS       int `toml:"save_debounce_ms"`
	AlertIntervalMinutes int `toml:"alert_interval_minutes"`

	Keys Keymap `toml:"keys"`
}

// SaveDebounce is the persistence write delay.
func (c Config) SaveDebounce() time.Duration {
	if c.SaveDebounceMS <= 0 {
		return constants.DefaultSaveDebounce
	}
	return time.Duration(c.SaveDebounceMS) * time.Millisecond
}

// AlertInterval is the period of the due-date alert check.
func (c Config) AlertInterval() time.Duration {
	if c.AlertIntervalMinutes <= 0 {
		return constants.DefaultAlertInterval
	}
	return time.Duration(c.AlertIntervalMinutes) * time.Minute
}

// ResolveConfigPath returns $TASKPAD_CONFIG, or config.toml under the XDG config dir.
func ResolveConfigPath() string {
	if p := os.Getenv("TASKPAD_CONFIG"); p != "" {
		return p
	}
	return filepath.Join(DefaultConfigDir(), DefaultConfigFileName)
}

// DefaultConfigDir uses XDG_CONFIG_HOME if set, otherwise $HOME/.config.
func DefaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return AppName
	}
	return filepath.Join(home, ".config", AppName)
}

// Load reads the TOML file at path, writing one with defaults on first launch,
// then applies TASKPAD_* environment overrides.
func Load(path string) (Config, error) {
	cfg, err := LoadOrCreate(path)
	if err != nil {
		return cfg, err
	}
	applyEnv(&cfg)
	return cfg, nil
}

func LoadOrCreate(path string) (Config, error) {
	cfg := Default()
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := write(path, cfg); err != nil {
			return cfg, err
		}
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	if cfg.DBDriver == "" {
		cfg.DBDriver = "sqlite"
	}
	if cfg.DBPath == "" {
		cfg.DBPath = filepath.Join(filepath.Dir(path), DefaultDBName)
	}
	return cfg, nil
}

func write(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil && !errors.Is(err, os.ErrExist) {
		return err
	}
	data, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func Default() Config {
	return Config{
		DBDriver:             "sqlite",
		DBPath:               filepath.Join(DefaultConfigDir(), DefaultDBName),
		DBHost:               "localhost",
		DBPort:               "3306",
		DBUser:               "taskuser",
		DBName:               AppName,
		ServerAddr:           ":8080",
		GinMode:              "debug",
		AllowedOrigins:       []string{"http://localhost:3000"},
		LogLevel:             "info",
		SaveDebounceMS:       int(constants.DefaultSaveDebounce / time.Millisecond),
		AlertIntervalMinutes: int(constants.DefaultAlertInterval / time.Minute),
		Keys: Keymap{
			Quit:           "q",
			Add:            "a",
			Up:             "k",
			Down:           "j",
			Toggle:         " ",
			Delete:         "d",
			Edit:           "e",
			Confirm:        "enter",
			Cancel:         "esc",
			MoveUp:         "K",
			MoveDown:       "J",
			Search:         "/",
			StatusFilter:   "f",
			CategoryFilter: "c",
			PriorityFilter: "p",
			Sort:           "s",
			ResetFilters:   "r",
			ClearCompleted: "x",
			Logout:         "L",
		},
	}
}

func applyEnv(cfg *Config) {
	cfg.DBDriver = getEnv("TASKPAD_DB_DRIVER", cfg.DBDriver)
	cfg.DBPath = getEnv("TASKPAD_DB_PATH", cfg.DBPath)
	cfg.DBHost = getEnv("TASKPAD_DB_HOST", cfg.DBHost)
	cfg.DBPort = getEnv("TASKPAD_DB_PORT", cfg.DBPort)
	cfg.DBUser = getEnv("TASKPAD_DB_USER", cfg.DBUser)
	cfg.DBPassword = getEnv("TASKPAD_DB_PASSWORD", cfg.DBPassword)
	cfg.DBName = getEnv("TASKPAD_DB_NAME", cfg.DBName)
	cfg.ServerAddr = getEnv("TASKPAD_SERVER_ADDR", cfg.ServerAddr)
	cfg.GinMode = getEnv("GIN_MODE", cfg.GinMode)
	cfg.LogLevel = getEnv("TASKPAD_LOG_LEVEL", cfg.LogLevel)
	cfg.LogFile = getEnv("TASKPAD_LOG_FILE", cfg.LogFile)
	if origins := os.Getenv("TASKPAD_ALLOWED_ORIGINS"); origins != "" {
		cfg.AllowedOrigins = strings.Split(origins, ",")
	}
	cfg.SaveDebounceMS = getEnvInt("TASKPAD_SAVE_DEBOUNCE_MS", cfg.SaveDebounceMS)
	cfg.AlertIntervalMinutes = getEnvInt("TASKPAD_ALERT_INTERVAL_MINUTES", cfg.AlertIntervalMinutes)
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	value, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return value
}
