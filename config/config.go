// Package config loads the price comparator configuration from a YAML
// file, an optional .env file and the environment.
package config

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"

	"github.com/kosarica/price-comparator/internal/optimizer"
	"github.com/kosarica/price-comparator/internal/telemetry"
)

// EnvPrefix prefixes every environment override, e.g.
// PRICE_COMPARATOR_ALERTS_CHECK_INTERVAL=15m.
const EnvPrefix = "PRICE_COMPARATOR"

// Alert store backends.
const (
	AlertStoreMemory   = "memory"
	AlertStorePostgres = "postgres"
)

// Config holds the application configuration
type Config struct {
	Server    ServerConfig     `mapstructure:"server"`
	Logging   LoggingConfig    `mapstructure:"logging"`
	Ingestion IngestionConfig  `mapstructure:"ingestion"`
	Alerts    AlertsConfig     `mapstructure:"alerts"`
	Optimizer optimizer.Config `mapstructure:"optimizer"`
	Database  DatabaseConfig   `mapstructure:"database"`
	RateLimit RateLimitConfig  `mapstructure:"rate_limit"`
	Auth      AuthConfig       `mapstructure:"auth"`
	Telemetry telemetry.Config `mapstructure:"telemetry"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	Host            string        `mapstructure:"host"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level   string `mapstructure:"level"`
	Format  string `mapstructure:"format"`
	NoColor bool   `mapstructure:"no_color"`
}

// IngestionConfig controls how snapshot files are loaded.
type IngestionConfig struct {
	DataDir     string        `mapstructure:"data_dir"`
	Encoding    string        `mapstructure:"encoding"` // "", utf-8, windows-1250, iso-8859-2
	Concurrency int           `mapstructure:"concurrency"`
	Watch       bool          `mapstructure:"watch"`
	Debounce    time.Duration `mapstructure:"debounce"`
}

// AlertsConfig controls alert storage and the scheduled check.
type AlertsConfig struct {
	Store         string        `mapstructure:"store"`
	CheckInterval time.Duration `mapstructure:"check_interval"`
}

// DatabaseConfig holds database connection configuration
type DatabaseConfig struct {
	URL             string        `mapstructure:"url"`
	MaxConnections  int           `mapstructure:"max_connections"`
	MinConnections  int           `mapstructure:"min_connections"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
	MaxConnIdleTime time.Duration `mapstructure:"max_conn_idle_time"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	Enabled           bool          `mapstructure:"enabled"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second"`
	Burst             int           `mapstructure:"burst"`
	IdleTimeout       time.Duration `mapstructure:"idle_timeout"`
}

// AuthConfig protects the admin routes.
type AuthConfig struct {
	APIKey string `mapstructure:"api_key"`
}

// Load loads the configuration from file, .env, and environment variables
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	if err := loadEnvFile(); err != nil {
		log.Debug().Err(err).Msg(".env file not loaded")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindEnvVars(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks settings that would otherwise fail at runtime.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return optimizer.ErrInvalidConfig{Field: "server.port", Reason: "must be between 1 and 65535"}
	}
	if c.Ingestion.DataDir == "" {
		return optimizer.ErrInvalidConfig{Field: "ingestion.data_dir", Reason: "is required"}
	}
	switch c.Alerts.Store {
	case AlertStoreMemory:
	case AlertStorePostgres:
		if c.Database.URL == "" {
			return optimizer.ErrInvalidConfig{Field: "database.url", Reason: "is required when alerts.store is postgres"}
		}
	default:
		return optimizer.ErrInvalidConfig{Field: "alerts.store", Reason: fmt.Sprintf("unknown store %q", c.Alerts.Store)}
	}
	if c.Alerts.CheckInterval <= 0 {
		return optimizer.ErrInvalidConfig{Field: "alerts.check_interval", Reason: "must be positive"}
	}
	return c.Optimizer.Validate()
}

// loadEnvFile loads the first .env file found by parsing KEY=VALUE lines.
// Variables already present in the environment win.
func loadEnvFile() error {
	for _, dir := range []string{".", "./config"} {
		envFile := filepath.Join(dir, ".env")
		if _, err := os.Stat(envFile); err == nil {
			return loadDotEnvFile(envFile)
		}
	}
	return fmt.Errorf("no .env file found")
}

// loadDotEnvFile reads a .env file and sets environment variables
func loadDotEnvFile(filename string) error {
	file, err := os.Open(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(strings.TrimPrefix(key, "export "))
		value = strings.Trim(strings.TrimSpace(value), "\"'")
		if _, set := os.LookupEnv(key); !set {
			os.Setenv(key, value)
		}
	}
	return scanner.Err()
}

// bindEnvVars binds the short, conventional environment names.
func bindEnvVars(v *viper.Viper) {
	v.BindEnv("database.url", EnvPrefix+"_DATABASE_URL", "DATABASE_URL")
	v.BindEnv("server.port", EnvPrefix+"_SERVER_PORT", "PORT")
	v.BindEnv("logging.level", EnvPrefix+"_LOGGING_LEVEL", "LOG_LEVEL")
	v.BindEnv("ingestion.data_dir", EnvPrefix+"_INGESTION_DATA_DIR", "DATA_DIR")
	v.BindEnv("auth.api_key", EnvPrefix+"_AUTH_API_KEY", "API_KEY")
	v.BindEnv("telemetry.endpoint", EnvPrefix+"_TELEMETRY_ENDPOINT", "OTEL_EXPORTER_OTLP_ENDPOINT")
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.shutdown_timeout", 5*time.Second)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.no_color", false)

	// Ingestion defaults
	v.SetDefault("ingestion.data_dir", "./data")
	v.SetDefault("ingestion.encoding", "")
	v.SetDefault("ingestion.concurrency", 4)
	v.SetDefault("ingestion.watch", true)
	v.SetDefault("ingestion.debounce", 500*time.Millisecond)

	// Alerts defaults
	v.SetDefault("alerts.store", AlertStoreMemory)
	v.SetDefault("alerts.check_interval", time.Hour)

	// Optimizer defaults
	defaults := optimizer.Defaults()
	v.SetDefault("optimizer.max_basket_items", defaults.MaxBasketItems)
	v.SetDefault("optimizer.enable_unit_price", defaults.EnableUnitPrice)

	// Database defaults
	v.SetDefault("database.url", "")
	v.SetDefault("database.max_connections", 10)
	v.SetDefault("database.min_connections", 1)
	v.SetDefault("database.max_conn_lifetime", 1*time.Hour)
	v.SetDefault("database.max_conn_idle_time", 30*time.Minute)

	// Rate limit defaults
	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.requests_per_second", 10)
	v.SetDefault("rate_limit.burst", 20)
	v.SetDefault("rate_limit.idle_timeout", 5*time.Minute)

	v.SetDefault("auth.api_key", "")

	// Telemetry defaults
	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.endpoint", "")
	v.SetDefault("telemetry.service_name", telemetry.DefaultServiceName)
	v.SetDefault("telemetry.service_version", "")
	v.SetDefault("telemetry.environment", "")
	v.SetDefault("telemetry.metric_interval", 30*time.Second)
}
