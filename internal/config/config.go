package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Draft store backends.
const (
	DraftStoreMemory = "memory"
	DraftStoreRedis  = "redis"
)

// Config aggregates runtime configuration for the web front end.
type Config struct {
	App       AppConfig       `yaml:"app"`
	TicketAPI TicketAPIConfig `yaml:"ticket_api"`
	Drafts    DraftConfig     `yaml:"drafts"`
	Redis     RedisConfig     `yaml:"redis"`
	Logger    LoggerConfig    `yaml:"logger"`
	UI        UIConfig        `yaml:"ui"`
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string `yaml:"name"`
	Env                   string `yaml:"env"`
	Host                  string `yaml:"host"`
	Port                  string `yaml:"port"`
	Version               string `yaml:"version"`
	RequestTimeoutSeconds int    `yaml:"request_timeout_seconds"`
}

// TicketAPIConfig locates the upstream ticket API.
type TicketAPIConfig struct {
	BaseURL        string `yaml:"base_url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// DraftConfig selects where edit drafts live between requests.
type DraftConfig struct {
	Store      string `yaml:"store"`
	TTLMinutes int    `yaml:"ttl_minutes"`
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string `yaml:"level"`
}

// UIConfig configures presentation.
type UIConfig struct {
	Locale string `yaml:"locale"`
}

// Load reads configuration from an optional YAML file named by
// INBOX_CONFIG_PATH, then environment variables, applying defaults where
// possible. Environment values win over the file.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := defaults()

	if path := os.Getenv("INBOX_CONFIG_PATH"); path != "" {
		if err := loadFromFile(path, cfg); err != nil {
			return nil, err
		}
	}

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", strconv.Itoa(cfg.Redis.DB)))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	cfg.App = AppConfig{
		Name:                  getEnv("APP_NAME", cfg.App.Name),
		Env:                   getEnv("APP_ENV", cfg.App.Env),
		Host:                  getEnv("APP_HOST", cfg.App.Host),
		Port:                  getEnv("APP_PORT", cfg.App.Port),
		Version:               getEnv("APP_VERSION", cfg.App.Version),
		RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", cfg.App.RequestTimeoutSeconds),
	}
	cfg.TicketAPI = TicketAPIConfig{
		BaseURL:        getEnv("TICKET_API_BASE_URL", cfg.TicketAPI.BaseURL),
		TimeoutSeconds: getEnvAsInt("TICKET_API_TIMEOUT_SECONDS", cfg.TicketAPI.TimeoutSeconds),
	}
	cfg.Drafts = DraftConfig{
		Store:      strings.ToLower(getEnv("DRAFT_STORE", cfg.Drafts.Store)),
		TTLMinutes: getEnvAsInt("DRAFT_TTL_MINUTES", cfg.Drafts.TTLMinutes),
	}
	cfg.Redis = RedisConfig{
		Addr:     getEnv("REDIS_ADDR", cfg.Redis.Addr),
		Password: getEnv("REDIS_PASSWORD", cfg.Redis.Password),
		DB:       redisDB,
	}
	cfg.Logger.Level = getEnv("LOG_LEVEL", cfg.Logger.Level)
	cfg.UI.Locale = getEnv("UI_LOCALE", cfg.UI.Locale)

	switch cfg.Drafts.Store {
	case DraftStoreMemory, DraftStoreRedis:
	default:
		return nil, fmt.Errorf("invalid DRAFT_STORE %q: want %s or %s", cfg.Drafts.Store, DraftStoreMemory, DraftStoreRedis)
	}
	if cfg.TicketAPI.BaseURL == "" {
		return nil, fmt.Errorf("TICKET_API_BASE_URL must not be empty")
	}

	return cfg, nil
}

func defaults() *Config {
	return &Config{
		App: AppConfig{
			Name:                  "mini-inbox",
			Env:                   "development",
			Host:                  "0.0.0.0",
			Port:                  "3000",
			Version:               "dev",
			RequestTimeoutSeconds: 30,
		},
		TicketAPI: TicketAPIConfig{
			BaseURL:        "http://localhost:8000",
			TimeoutSeconds: 10,
		},
		Drafts: DraftConfig{
			Store:      DraftStoreMemory,
			TTLMinutes: 60,
		},
		Redis: RedisConfig{
			Addr: "127.0.0.1:6379",
		},
		Logger: LoggerConfig{Level: "info"},
		UI:     UIConfig{Locale: "en"},
	}
}

func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// Timeout returns the per-call upstream timeout.
func (t TicketAPIConfig) Timeout() time.Duration {
	if t.TimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(t.TimeoutSeconds) * time.Second
}

// TTL returns how long an untouched draft is kept.
func (d DraftConfig) TTL() time.Duration {
	if d.TTLMinutes <= 0 {
		return time.Hour
	}
	return time.Duration(d.TTLMinutes) * time.Minute
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}
