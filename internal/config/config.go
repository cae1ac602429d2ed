package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultMealDBURL is the public TheMealDB v1 endpoint with the shared test key.
	DefaultMealDBURL = "https://www.themealdb.com/api/json/v1/1"

	BackendSQLite = "sqlite"
	BackendFile   = "file"
)

// Config holds the configuration for the application.
type Config struct {
	MealDBURL      string        `yaml:"mealdb_api_url"`
	MealDBTimeout  time.Duration `yaml:"mealdb_timeout"`
	DatabasePath   string        `yaml:"database_path"`
	StateBackend   string        `yaml:"state_backend"`
	StateDir       string        `yaml:"state_dir"`
	RecipeCacheTTL time.Duration `yaml:"recipe_cache_ttl"`
	LogLevel       string        `yaml:"log_level"`

	// HTTP API Config
	APIAddr      string        `yaml:"api_addr"`
	APIJWTSecret string        `yaml:"api_jwt_secret"`
	APITokenTTL  time.Duration `yaml:"api_token_ttl"`

	// Telegram Config
	TelegramBotToken       string  `yaml:"telegram_bot_token"`
	TelegramWebhookURL     string  `yaml:"telegram_webhook_url"`
	TelegramAllowedUserIDs []int64 `yaml:"telegram_allowed_user_ids"`
	AdminTelegramID        int64   `yaml:"admin_telegram_id"`
	Port                   string  `yaml:"port"`
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		MealDBURL:      DefaultMealDBURL,
		MealDBTimeout:  10 * time.Second,
		DatabasePath:   "data/meal-planner.db",
		StateBackend:   BackendSQLite,
		StateDir:       "data/state",
		RecipeCacheTTL: 24 * time.Hour,
		LogLevel:       "info",
		APIAddr:        ":8081",
		APITokenTTL:    24 * time.Hour,
		Port:           "8080",
	}
}

// NewFromEnv creates a new Config object from environment variables.
// When MEAL_PLANNER_CONFIG names a YAML file it is loaded first and the
// environment overrides it.
func NewFromEnv() (*Config, error) {
	cfg := Default()

	if path := os.Getenv("MEAL_PLANNER_CONFIG"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	cfg.MealDBURL = strings.TrimRight(cfg.MealDBURL, "/")
	switch cfg.StateBackend {
	case BackendSQLite, BackendFile:
	default:
		return nil, fmt.Errorf("STATE_BACKEND must be %q or %q, got %q", BackendSQLite, BackendFile, cfg.StateBackend)
	}

	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	setString := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	setDuration := func(key string, dst *time.Duration) error {
		v := os.Getenv(key)
		if v == "" {
			return nil
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", key, err)
		}
		*dst = d
		return nil
	}

	setString("MEALDB_API_URL", &c.MealDBURL)
	setString("DATABASE_PATH", &c.DatabasePath)
	setString("STATE_BACKEND", &c.StateBackend)
	setString("STATE_DIR", &c.StateDir)
	setString("LOG_LEVEL", &c.LogLevel)
	setString("API_ADDR", &c.APIAddr)
	setString("API_JWT_SECRET", &c.APIJWTSecret)
	setString("TELEGRAM_BOT_TOKEN", &c.TelegramBotToken)
	setString("TELEGRAM_WEBHOOK_URL", &c.TelegramWebhookURL)
	setString("PORT", &c.Port)

	if err := setDuration("MEALDB_TIMEOUT", &c.MealDBTimeout); err != nil {
		return err
	}
	if err := setDuration("RECIPE_CACHE_TTL", &c.RecipeCacheTTL); err != nil {
		return err
	}
	if err := setDuration("API_TOKEN_TTL", &c.APITokenTTL); err != nil {
		return err
	}

	if v := os.Getenv("TELEGRAM_ALLOWED_USER_IDS"); v != "" {
		ids, err := parseIDs(v)
		if err != nil {
			return fmt.Errorf("invalid TELEGRAM_ALLOWED_USER_IDS: %w", err)
		}
		c.TelegramAllowedUserIDs = ids
	}
	if v := os.Getenv("ADMIN_TELEGRAM_ID"); v != "" {
		id, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return fmt.Errorf("invalid ADMIN_TELEGRAM_ID: %w", err)
		}
		c.AdminTelegramID = id
	}
	return nil
}

func parseIDs(s string) ([]int64, error) {
	var ids []int64
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// ValidateTelegram checks the settings the bot cannot start without.
func (c *Config) ValidateTelegram() error {
	if c.TelegramBotToken == "" {
		return fmt.Errorf("TELEGRAM_BOT_TOKEN environment variable not set")
	}
	if c.TelegramWebhookURL == "" {
		return fmt.Errorf("TELEGRAM_WEBHOOK_URL environment variable not set")
	}
	return nil
}

// ValidateAPI checks the settings the HTTP API cannot start without.
func (c *Config) ValidateAPI() error {
	if c.APIJWTSecret == "" {
		return fmt.Errorf("API_JWT_SECRET environment variable not set")
	}
	return nil
}

// IsAllowedUser reports whether a Telegram user may talk to the bot.
// An empty allow list lets everyone in.
func (c *Config) IsAllowedUser(id int64) bool {
	if len(c.TelegramAllowedUserIDs) == 0 {
		return true
	}
	if id == c.AdminTelegramID {
		return true
	}
	for _, allowed := range c.TelegramAllowedUserIDs {
		if allowed == id {
			return true
		}
	}
	return false
}

// NewLogger builds the process logger. Unknown levels fall back to info.
func NewLogger(level string, w io.Writer) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: ParseLevel(level)}))
}

// ParseLevel maps debug, info, warn and error to slog levels.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
