package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration
type Config struct {
	// ESPN public feed
	FeedBaseURL string        `envconfig:"FEED_BASE_URL" default:"https://site.api.espn.com/apis/site/v2/sports/basketball/mens-college-basketball"`
	FeedTimeout time.Duration `envconfig:"FEED_TIMEOUT" default:"30s"`

	// Database
	DatabaseHost     string `envconfig:"DATABASE_HOST" default:"localhost"`
	DatabasePort     int    `envconfig:"DATABASE_PORT" default:"5432"`
	DatabaseName     string `envconfig:"DATABASE_NAME" default:"ncaa_mbb"`
	DatabaseUser     string `envconfig:"DATABASE_USER" default:"mbb_user"`
	DatabasePassword string `envconfig:"DATABASE_PASSWORD" required:"true"`
	DatabaseSSLMode  string `envconfig:"DATABASE_SSL_MODE" default:"disable"`

	// Redis (optional subscriber cache)
	RedisHost     string `envconfig:"REDIS_HOST" default:"localhost"`
	RedisPort     int    `envconfig:"REDIS_PORT" default:"6379"`
	RedisPassword string `envconfig:"REDIS_PASSWORD" default:""`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`

	// Cache TTL for the active subscriber list
	CacheTTLSubscribers time.Duration `envconfig:"CACHE_TTL_SUBSCRIBERS" default:"5m"`

	// Application
	AppEnv   string `envconfig:"APP_ENV" default:"development"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// Poller
	SeasonYear   int           `envconfig:"SEASON_YEAR" required:"true"`
	PollInterval time.Duration `envconfig:"POLL_INTERVAL" default:"60s"`
	// Fixed scoreboard date (YYYYMMDD); empty means follow the sports day
	TargetDate string `envconfig:"TARGET_DATE" default:""`
	// Sports day rolls over at this hour in RolloverTimezone
	RolloverHour     int    `envconfig:"ROLLOVER_HOUR" default:"5"`
	RolloverTimezone string `envconfig:"ROLLOVER_TIMEZONE" default:"America/New_York"`
	// Retention sweep for stale tracked games
	RetentionCron string `envconfig:"RETENTION_CRON" default:"0 * * * *"`

	// Confidence thresholds
	NotifyThreshold float64 `envconfig:"NOTIFY_THRESHOLD" default:"0.10"`
	BucketHighMin   float64 `envconfig:"BUCKET_HIGH_MIN" default:"0.20"`
	BucketMediumMin float64 `envconfig:"BUCKET_MEDIUM_MIN" default:"0.10"`

	// Twilio SMS (alerts disabled unless all three are set)
	TwilioAccountSID string `envconfig:"TWILIO_ACCOUNT_SID" default:""`
	TwilioAuthToken  string `envconfig:"TWILIO_AUTH_TOKEN" default:""`
	TwilioFromNumber string `envconfig:"TWILIO_FROM_NUMBER" default:""`

	// Monitoring
	EnableMetrics bool `envconfig:"ENABLE_METRICS" default:"true"`
	MetricsPort   int  `envconfig:"METRICS_PORT" default:"9090"`
}

// Load loads configuration from environment variables
// It first attempts to load from .env file if present
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.DatabasePassword == "" {
		return fmt.Errorf("DATABASE_PASSWORD is required")
	}

	if c.SeasonYear < 2000 || c.SeasonYear > 2100 {
		return fmt.Errorf("SEASON_YEAR out of range: %d", c.SeasonYear)
	}

	if c.RolloverHour < 0 || c.RolloverHour > 23 {
		return fmt.Errorf("ROLLOVER_HOUR must be 0-23, got %d", c.RolloverHour)
	}

	if c.NotifyThreshold < 0 {
		return fmt.Errorf("NOTIFY_THRESHOLD must be non-negative")
	}

	if c.BucketMediumMin > c.BucketHighMin {
		return fmt.Errorf("BUCKET_MEDIUM_MIN must not exceed BUCKET_HIGH_MIN")
	}

	return nil
}

// SMSEnabled reports whether outbound SMS dispatch is configured
func (c *Config) SMSEnabled() bool {
	return c.TwilioAccountSID != "" && c.TwilioAuthToken != "" && c.TwilioFromNumber != ""
}

// RedisAddr returns the Redis address
func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.RedisHost, c.RedisPort)
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// MustLoad loads configuration or panics on error
// Use this in main() where we want to fail fast
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	return cfg
}
