package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	API       APIConfig       `mapstructure:"api"`
	Session   SessionConfig   `mapstructure:"session"`
	Logger    LoggerConfig    `mapstructure:"logger"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
	DevServer DevServerConfig `mapstructure:"devserver"`
}

// AppConfig holds application-specific configuration
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

// APIConfig holds the remote REST service configuration
type APIConfig struct {
	BaseURL   string        `mapstructure:"base_url"`
	Timeout   time.Duration `mapstructure:"timeout"`
	RateLimit float64       `mapstructure:"rate_limit"`
	RateBurst int           `mapstructure:"rate_burst"`
}

// SessionConfig holds persisted session storage configuration
type SessionConfig struct {
	Backend string      `mapstructure:"backend"`
	DSN     string      `mapstructure:"dsn"`
	Redis   RedisConfig `mapstructure:"redis"`
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Key      string `mapstructure:"key"`
}

// LoggerConfig holds logging configuration
type LoggerConfig struct {
	Level    string `mapstructure:"level"`
	Format   string `mapstructure:"format"`
	Output   string `mapstructure:"output"`
	Filename string `mapstructure:"filename"`
}

// MetricsConfig holds metrics configuration
type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
	// File receives the collectors in text exposition format when a command
	// exits. Empty disables the write.
	File string `mapstructure:"file"`
}

// DevServerConfig holds configuration of the local reference backend
type DevServerConfig struct {
	Port              int           `mapstructure:"port"`
	JWTSecret         string        `mapstructure:"jwt_secret"`
	TokenTTL          time.Duration `mapstructure:"token_ttl"`
	RateLimitRequests int           `mapstructure:"rate_limit_requests"`
	RateLimitWindow   time.Duration `mapstructure:"rate_limit_window"`
}

// Session storage backends
const (
	BackendMemory   = "memory"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
)

// Load loads configuration from various sources
func Load() (*Config, error) {
	// Load .env file if it exists (ignore errors)
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)
	bindEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	// App defaults
	v.SetDefault("app.name", "taskboard")
	v.SetDefault("app.version", "1.0.0")
	v.SetDefault("app.environment", "development")

	// API defaults
	v.SetDefault("api.base_url", "http://localhost:8080")
	v.SetDefault("api.timeout", "15s")
	v.SetDefault("api.rate_limit", 10.0)
	v.SetDefault("api.rate_burst", 5)

	// Session defaults
	v.SetDefault("session.backend", BackendSQLite)
	v.SetDefault("session.dsn", "file:taskboard-session.db?_busy_timeout=5000")
	v.SetDefault("session.redis.host", "localhost")
	v.SetDefault("session.redis.port", 6379)
	v.SetDefault("session.redis.password", "")
	v.SetDefault("session.redis.db", 0)
	v.SetDefault("session.redis.key", "taskboard:session")

	// Logger defaults
	v.SetDefault("logger.level", "warn")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.output", "stderr")
	v.SetDefault("logger.filename", "")

	// Metrics defaults
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.file", "")

	// Devserver defaults
	v.SetDefault("devserver.port", 8080)
	v.SetDefault("devserver.jwt_secret", "taskboard-dev-secret")
	v.SetDefault("devserver.token_ttl", "24h")
	v.SetDefault("devserver.rate_limit_requests", 100)
	v.SetDefault("devserver.rate_limit_window", "1m")
}

func bindEnvVars(v *viper.Viper) {
	// App
	v.BindEnv("app.environment", "TASKBOARD_ENVIRONMENT")

	// API
	v.BindEnv("api.base_url", "TASKBOARD_API_URL")
	v.BindEnv("api.timeout", "TASKBOARD_API_TIMEOUT")
	v.BindEnv("api.rate_limit", "TASKBOARD_API_RATE_LIMIT")
	v.BindEnv("api.rate_burst", "TASKBOARD_API_RATE_BURST")

	// Session
	v.BindEnv("session.backend", "TASKBOARD_SESSION_BACKEND")
	v.BindEnv("session.dsn", "TASKBOARD_SESSION_DSN")
	v.BindEnv("session.redis.host", "REDIS_HOST")
	v.BindEnv("session.redis.port", "REDIS_PORT")
	v.BindEnv("session.redis.password", "REDIS_PASSWORD")
	v.BindEnv("session.redis.db", "REDIS_DB")
	v.BindEnv("session.redis.key", "TASKBOARD_SESSION_REDIS_KEY")

	// Logger
	v.BindEnv("logger.level", "LOG_LEVEL")
	v.BindEnv("logger.format", "LOG_FORMAT")
	v.BindEnv("logger.output", "LOG_OUTPUT")
	v.BindEnv("logger.filename", "LOG_FILENAME")

	// Metrics
	v.BindEnv("metrics.enabled", "ENABLE_METRICS")
	v.BindEnv("metrics.file", "METRICS_FILE")

	// Devserver
	v.BindEnv("devserver.port", "DEVSERVER_PORT")
	v.BindEnv("devserver.jwt_secret", "DEVSERVER_JWT_SECRET")
	v.BindEnv("devserver.token_ttl", "DEVSERVER_TOKEN_TTL")
	v.BindEnv("devserver.rate_limit_requests", "DEVSERVER_RATE_LIMIT_REQUESTS")
	v.BindEnv("devserver.rate_limit_window", "DEVSERVER_RATE_LIMIT_WINDOW")
}

func validateConfig(cfg *Config) error {
	u, err := url.Parse(cfg.API.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("api base url %q must be an absolute URL", cfg.API.BaseURL)
	}

	if cfg.API.RateLimit < 0 || cfg.API.RateBurst < 0 {
		return fmt.Errorf("api rate limit and burst must not be negative")
	}

	switch cfg.Session.Backend {
	case BackendMemory, BackendRedis:
	case BackendSQLite, BackendPostgres:
		if cfg.Session.DSN == "" {
			return fmt.Errorf("session dsn is required for the %s backend", cfg.Session.Backend)
		}
	default:
		return fmt.Errorf("unknown session backend %q", cfg.Session.Backend)
	}

	if cfg.DevServer.Port <= 0 || cfg.DevServer.Port > 65535 {
		return fmt.Errorf("devserver port must be between 1 and 65535")
	}

	return nil
}

// GetAddr returns the Redis address
func (cfg *RedisConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
}

// IsDevelopment returns true if the environment is development
func (cfg *AppConfig) IsDevelopment() bool {
	return cfg.Environment == "development"
}
