package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the dashboard service
type Config struct {
	// Server configuration
	Server ServerConfig `mapstructure:"server"`

	// Upstream service configuration
	Upstream UpstreamConfig `mapstructure:"upstream"`

	// Request validation configuration
	Validation ValidationConfig `mapstructure:"validation"`

	// Health polling configuration
	Health HealthConfig `mapstructure:"health"`

	// Monitoring configuration
	Monitoring MonitoringConfig `mapstructure:"monitoring"`

	// Logging configuration
	LogLevel string `mapstructure:"log_level"`
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	ReadTimeout  int    `mapstructure:"read_timeout"`
	WriteTimeout int    `mapstructure:"write_timeout"`
	IdleTimeout  int    `mapstructure:"idle_timeout"`
}

// UpstreamConfig holds the two upstream service endpoints. The core
// service owns request submission and patient records; the ledger
// service owns logs, analytics and system status. They are deployed
// separately and must stay independently configurable.
type UpstreamConfig struct {
	CoreBaseURL    string `mapstructure:"core_base_url"`
	LedgerBaseURL  string `mapstructure:"ledger_base_url"`
	RequestTimeout int    `mapstructure:"request_timeout"`
}

// ValidationConfig holds identifier validation configuration
type ValidationConfig struct {
	DebounceMS int `mapstructure:"debounce_ms"`
}

// HealthConfig holds health polling configuration
type HealthConfig struct {
	PollIntervalSec int `mapstructure:"poll_interval_sec"`
	RecentWindow    int `mapstructure:"recent_window"`
}

// MonitoringConfig holds monitoring configuration
type MonitoringConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	MetricsPath string `mapstructure:"metrics_path"`
	HealthPath  string `mapstructure:"health_path"`
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AddConfigPath("/etc/portal-dashboard")

	setDefaults()

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	overrideWithEnv(&config)

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// DebounceWindow returns the identifier validation debounce window
func (c *Config) DebounceWindow() time.Duration {
	return time.Duration(c.Validation.DebounceMS) * time.Millisecond
}

// PollInterval returns the health poll interval
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.Health.PollIntervalSec) * time.Second
}

// setDefaults sets default configuration values
func setDefaults() {
	// Server defaults
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8090)
	viper.SetDefault("server.read_timeout", 30)
	viper.SetDefault("server.write_timeout", 30)
	viper.SetDefault("server.idle_timeout", 120)

	// Upstream defaults mirror the standard local deployment: core on
	// 8081, ledger on 8080
	viper.SetDefault("upstream.core_base_url", "http://localhost:8081/api")
	viper.SetDefault("upstream.ledger_base_url", "http://localhost:8080/api")
	viper.SetDefault("upstream.request_timeout", 10)

	// Validation defaults
	viper.SetDefault("validation.debounce_ms", 500)

	// Health polling defaults
	viper.SetDefault("health.poll_interval_sec", 10)
	viper.SetDefault("health.recent_window", 2)

	// Monitoring defaults
	viper.SetDefault("monitoring.enabled", true)
	viper.SetDefault("monitoring.metrics_path", "/metrics")
	viper.SetDefault("monitoring.health_path", "/health")

	// Logging defaults
	viper.SetDefault("log_level", "info")
}

// overrideWithEnv overrides configuration with environment variables
func overrideWithEnv(config *Config) {
	if port := os.Getenv("PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}

	if coreURL := os.Getenv("CORE_API_BASE_URL"); coreURL != "" {
		config.Upstream.CoreBaseURL = coreURL
	}

	if ledgerURL := os.Getenv("LEDGER_API_BASE_URL"); ledgerURL != "" {
		config.Upstream.LedgerBaseURL = ledgerURL
	}

	if logLevel := os.Getenv("LOG_LEVEL"); logLevel != "" {
		config.LogLevel = logLevel
	}
}

// validate validates the configuration
func validate(config *Config) error {
	if config.Upstream.CoreBaseURL == "" {
		return fmt.Errorf("core service base URL is required")
	}

	if config.Upstream.LedgerBaseURL == "" {
		return fmt.Errorf("ledger service base URL is required")
	}

	if config.Server.Port <= 0 || config.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", config.Server.Port)
	}

	if config.Validation.DebounceMS < 0 {
		return fmt.Errorf("invalid debounce window: %dms", config.Validation.DebounceMS)
	}

	if config.Health.PollIntervalSec <= 0 {
		return fmt.Errorf("invalid poll interval: %ds", config.Health.PollIntervalSec)
	}

	return nil
}
