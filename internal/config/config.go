package config

import (
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server" validate:"required"`
	Database  DatabaseConfig  `mapstructure:"database" validate:"required"`
	Auth      AuthConfig      `mapstructure:"auth" validate:"required"`
	SRS       SRSConfig       `mapstructure:"srs" validate:"required"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit" validate:"required"`
	Jobs      JobsConfig      `mapstructure:"jobs"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port                   int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel               string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
	ShutdownTimeoutSeconds int    `mapstructure:"shutdown_timeout_seconds" validate:"gt=0"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL                    string `mapstructure:"url" validate:"required,url"`
	MaxOpenConns           int    `mapstructure:"max_open_conns" validate:"gt=0"`
	MaxIdleConns           int    `mapstructure:"max_idle_conns" validate:"gte=0"`
	ConnMaxLifetimeMinutes int    `mapstructure:"conn_max_lifetime_minutes" validate:"gt=0"`
}

// AuthConfig contains all authentication and authorization settings.
type AuthConfig struct {
	JWTSecret                   string `mapstructure:"jwt_secret" validate:"required,min=32"`
	TokenLifetimeMinutes        int    `mapstructure:"token_lifetime_minutes" validate:"required,gt=0,lt=44640"`
	RefreshTokenLifetimeMinutes int    `mapstructure:"refresh_token_lifetime_minutes" validate:"required,gt=0,lt=525600,gtfield=TokenLifetimeMinutes"`
	BCryptCost                  int    `mapstructure:"bcrypt_cost" validate:"gte=4,lte=31"`
}

// SRSConfig controls review scheduling and listing limits.
type SRSConfig struct {
	// IANA zone in which calendar days (streaks) are counted
	Timezone        string `mapstructure:"timezone" validate:"required,timezone"`
	DueLimitDefault int    `mapstructure:"due_limit_default" validate:"gt=0,ltefield=DueLimitMax"`
	DueLimitMax     int    `mapstructure:"due_limit_max" validate:"gt=0"`
	NewLimitDefault int    `mapstructure:"new_limit_default" validate:"gt=0,ltefield=NewLimitMax"`
	NewLimitMax     int    `mapstructure:"new_limit_max" validate:"gt=0"`
}

// Location resolves Timezone. It only fails for configs that skipped
// validation.
func (c SRSConfig) Location() (*time.Location, error) {
	return time.LoadLocation(c.Timezone)
}

// RateLimitConfig bounds requests per client IP.
type RateLimitConfig struct {
	Enabled           bool `mapstructure:"enabled"`
	RequestsPerWindow int  `mapstructure:"requests_per_window" validate:"gt=0"`
	WindowMs          int  `mapstructure:"window_ms" validate:"gt=0"`
	Burst             int  `mapstructure:"burst" validate:"gt=0"`
}

// Window returns WindowMs as a duration.
func (c RateLimitConfig) Window() time.Duration {
	return time.Duration(c.WindowMs) * time.Millisecond
}

// JobsConfig controls background jobs.
type JobsConfig struct {
	StreakSweepEnabled bool `mapstructure:"streak_sweep_enabled"`
	// Local time of day (HH:MM, study time zone) the sweep runs at
	StreakSweepAt string `mapstructure:"streak_sweep_at" validate:"omitempty,datetime=15:04"`
}
