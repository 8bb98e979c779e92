// Package config loads the service configuration from file, .env and
// environment variables.
package config

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"

	"github.com/handlekurv/deal-service/internal/catalog"
	"github.com/handlekurv/deal-service/internal/fetch"
	"github.com/handlekurv/deal-service/internal/middleware"
	"github.com/handlekurv/deal-service/internal/planner"
	"github.com/handlekurv/deal-service/internal/telemetry"
)

// Config holds the application configuration.
type Config struct {
	Server    ServerConfig                 `mapstructure:"server"`
	Database  DatabaseConfig               `mapstructure:"database"`
	Logging   LoggingConfig                `mapstructure:"logging"`
	Auth      AuthConfig                   `mapstructure:"auth"`
	RateLimit middleware.RateLimiterConfig `mapstructure:"rate_limit"`
	Planner   planner.Config               `mapstructure:"planner"`
	Cache     catalog.CacheConfig          `mapstructure:"cache"`
	Fetch     fetch.Config                 `mapstructure:"fetch"`
	Telemetry telemetry.Config             `mapstructure:"telemetry"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port         int           `mapstructure:"port"`
	Host         string        `mapstructure:"host"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// DatabaseConfig holds database connection configuration.
type DatabaseConfig struct {
	URL             string        `mapstructure:"url"`
	MaxConnections  int           `mapstructure:"max_connections"`
	MinConnections  int           `mapstructure:"min_connections"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
	MaxConnIdleTime time.Duration `mapstructure:"max_conn_idle_time"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level   string `mapstructure:"level"`
	Format  string `mapstructure:"format"`
	NoColor bool   `mapstructure:"no_color"`
}

// AuthConfig holds authentication settings for the internal admin routes.
type AuthConfig struct {
	InternalAPIKey string `mapstructure:"internal_api_key"`
}

var globalConfig *Config

// Load loads the configuration from file, .env, and environment variables.
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
		// .env is optional
		log.Debug().Err(err).Msg(".env file not loaded")
	}

	v.AutomaticEnv()
	v.SetEnvPrefix("DEAL_SERVICE")

	bindEnvVars(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := cfg.Planner.Validate(); err != nil {
		return nil, fmt.Errorf("invalid planner config: %w", err)
	}

	globalConfig = &cfg
	return &cfg, nil
}

// loadEnvFile loads the first .env file found near the working directory.
func loadEnvFile() error {
	envPaths := []string{".", "./config", ".."}

	for _, path := range envPaths {
		envFile := fmt.Sprintf("%s/.env", path)
		if _, err := os.Stat(envFile); err == nil {
			if err := loadDotEnvFile(envFile); err == nil {
				return nil
			}
		}
	}
	return fmt.Errorf("no .env file found")
}

// loadDotEnvFile reads a .env file and sets environment variables.
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
		parts := strings.SplitN(line, "=", 2)
		if len(parts) == 2 {
			key := strings.TrimSpace(parts[0])
			value := strings.Trim(strings.TrimSpace(parts[1]), "\"'")
			os.Setenv(key, value)
		}
	}
	return scanner.Err()
}

// bindEnvVars binds well-known environment variables to config keys.
func bindEnvVars(v *viper.Viper) {
	v.BindEnv("database.url", "DATABASE_URL")
	v.BindEnv("server.port", "PORT")
	v.BindEnv("server.host", "HOST")
	v.BindEnv("logging.level", "LOG_LEVEL")
	v.BindEnv("auth.internal_api_key", "INTERNAL_API_KEY")
	v.BindEnv("telemetry.endpoint", "OTEL_EXPORTER_OTLP_ENDPOINT")
}

// setDefaults sets default configuration values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 3000)
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)

	v.SetDefault("database.max_connections", 25)
	v.SetDefault("database.min_connections", 5)
	v.SetDefault("database.max_conn_lifetime", 1*time.Hour)
	v.SetDefault("database.max_conn_idle_time", 30*time.Minute)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.no_color", false)

	rl := middleware.DefaultRateLimiterConfig()
	v.SetDefault("rate_limit.requests_per_second", rl.RequestsPerSecond)
	v.SetDefault("rate_limit.burst_size", rl.BurstSize)

	p := planner.Defaults()
	v.SetDefault("planner.match_threshold", p.MatchThreshold)
	v.SetDefault("planner.max_distance_km", p.MaxDistanceKm)
	v.SetDefault("planner.max_ingredients", p.MaxIngredients)
	v.SetDefault("planner.stop_minutes", p.StopMinutes)
	v.SetDefault("planner.travel_minutes_per_km", p.TravelMinutesPerKm)

	cc := catalog.DefaultCacheConfig()
	v.SetDefault("cache.ttl", cc.TTL)
	v.SetDefault("cache.load_timeout", cc.LoadTimeout)
	v.SetDefault("cache.warmup_concurrency", cc.WarmupConcurrency)

	fc := fetch.DefaultConfig()
	v.SetDefault("fetch.requests_per_second", fc.RequestsPerSecond)
	v.SetDefault("fetch.burst", fc.Burst)
	v.SetDefault("fetch.max_retries", fc.MaxRetries)
	v.SetDefault("fetch.initial_backoff", fc.InitialBackoff)
	v.SetDefault("fetch.max_backoff", fc.MaxBackoff)
	v.SetDefault("fetch.timeout", fc.Timeout)

	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.endpoint", "opentelemetry-collector:4317")
	v.SetDefault("telemetry.service_name", telemetry.DefaultServiceName)
}

// Get returns the global configuration.
func Get() *Config {
	return globalConfig
}

// GetDatabaseURL returns the database URL from config or environment.
func GetDatabaseURL() string {
	if cfg := Get(); cfg != nil && cfg.Database.URL != "" {
		return cfg.Database.URL
	}
	return os.Getenv("DATABASE_URL")
}
