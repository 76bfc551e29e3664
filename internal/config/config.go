// Package config provides configuration management for the prediction engine.
package config

import (
	"fmt"
	"time"
)

// Config represents the complete application configuration
type Config struct {
	App       AppConfig       `mapstructure:"app" validate:"required"`
	Database  DatabaseConfig  `mapstructure:"database" validate:"required"`
	Feed      FeedConfig      `mapstructure:"feed" validate:"required"`
	Engine    EngineConfig    `mapstructure:"engine" validate:"required"`
	Backtest  BacktestConfig  `mapstructure:"backtest" validate:"required"`
	Tuner     TunerConfig     `mapstructure:"tuner" validate:"required"`
	API       APIConfig       `mapstructure:"api" validate:"required"`
	Metrics   MetricsConfig   `mapstructure:"metrics" validate:"required"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
}

// AppConfig represents application-level configuration
type AppConfig struct {
	Name        string `mapstructure:"name" validate:"required"`
	Environment string `mapstructure:"environment" validate:"required,environment"`
	LogLevel    string `mapstructure:"log_level" validate:"required,loglevel"`
}

// DatabaseConfig represents database connection configuration
type DatabaseConfig struct {
	Host           string `mapstructure:"host" validate:"required"`
	Port           int    `mapstructure:"port" validate:"required,min=1,max=65535"`
	Name           string `mapstructure:"name" validate:"required"`
	User           string `mapstructure:"user" validate:"required"`
	Password       string `mapstructure:"password" validate:"required"`
	SSLMode        string `mapstructure:"ssl_mode" validate:"required,oneof=disable require verify-full"`
	MaxConnections int    `mapstructure:"max_connections" validate:"required,gt=0"`
}

// FeedConfig represents the external game data feed configuration
type FeedConfig struct {
	BaseURL               string  `mapstructure:"base_url" validate:"required,url"`
	StreamURL             string  `mapstructure:"stream_url"`
	APIKey                string  `mapstructure:"api_key"`
	TimeoutSeconds        int     `mapstructure:"timeout_seconds" validate:"required,gt=0"`
	MaxRetries            int     `mapstructure:"max_retries" validate:"gte=0"`
	RateLimitPerSecond    float64 `mapstructure:"rate_limit_per_second" validate:"required,gt=0"`
	ReconnectMaxRetries   int     `mapstructure:"reconnect_max_retries" validate:"gte=0"`
	ReconnectInitialDelay int     `mapstructure:"reconnect_initial_delay_seconds" validate:"gte=0"`
}

// EngineConfig represents prediction engine configuration
type EngineConfig struct {
	// Weights seeds the process-wide weight table. Empty means defaults.
	Weights map[string]float64 `mapstructure:"weights"`
	Workers int                `mapstructure:"workers" validate:"gte=0"`
	// SummaryCacheTTLSeconds bounds how long performance summaries are
	// served from cache before recomputation.
	SummaryCacheTTLSeconds int `mapstructure:"summary_cache_ttl_seconds" validate:"required,gt=0"`
}

// BacktestConfig represents backtesting configuration
type BacktestConfig struct {
	StartDate            string  `mapstructure:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate              string  `mapstructure:"end_date" validate:"required,datetime=2006-01-02"`
	Workers              int     `mapstructure:"workers" validate:"gte=0"`
	BettingStake         float64 `mapstructure:"betting_stake" validate:"gte=0"`
	BettingMinConfidence float64 `mapstructure:"betting_min_confidence" validate:"gte=0,lte=100"`
}

// TunerConfig represents weight tuner configuration
type TunerConfig struct {
	Objective     string  `mapstructure:"objective" validate:"required,oneof=hit_rate spread_error blend"`
	BlendAlpha    float64 `mapstructure:"blend_alpha" validate:"gte=0,lte=1"`
	MaxIterations int     `mapstructure:"max_iterations" validate:"required,gt=0"`
	Step          float64 `mapstructure:"step" validate:"required,gt=0"`
	Tolerance     float64 `mapstructure:"tolerance" validate:"gte=0"`
}

// APIConfig represents the query API server configuration
type APIConfig struct {
	Port           int `mapstructure:"port" validate:"required,min=1,max=65535"`
	TimeoutSeconds int `mapstructure:"timeout_seconds" validate:"required,gt=0"`
	HealthPort     int `mapstructure:"health_port" validate:"required,min=1,max=65535"`
}

// MetricsConfig represents metrics and monitoring configuration
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Port    int    `mapstructure:"port" validate:"required,min=1,max=65535"`
	Path    string `mapstructure:"path" validate:"required"`
}

// SchedulerConfig represents scheduled job configuration
type SchedulerConfig struct {
	Enabled            bool   `mapstructure:"enabled"`
	PredictionSchedule string `mapstructure:"prediction_schedule"`
	BacktestSchedule   string `mapstructure:"backtest_schedule"`
}

// IsDevelopment checks if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// IsProduction checks if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// GetDatabaseDSN returns a PostgreSQL DSN string
func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// FeedTimeout returns the feed request timeout as a duration
func (c *Config) FeedTimeout() time.Duration {
	return time.Duration(c.Feed.TimeoutSeconds) * time.Second
}

// SummaryCacheTTL returns the summary cache TTL as a duration
func (c *Config) SummaryCacheTTL() time.Duration {
	return time.Duration(c.Engine.SummaryCacheTTLSeconds) * time.Second
}
