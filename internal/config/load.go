package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable name.
const EnvPrefix = "HANXUE"

// Options controls where Load looks for configuration.
type Options struct {
	// EnvFile is a dotenv file loaded into the process environment before
	// reading. Existing variables win. A missing file is not an error.
	EnvFile string
	// ConfigFile is an explicit YAML/JSON/TOML file. When empty, config.yaml
	// is searched for in ConfigPaths.
	ConfigFile  string
	ConfigPaths []string
}

// DefaultOptions reads .env and ./config.yaml when present.
func DefaultOptions() Options {
	return Options{EnvFile: ".env", ConfigPaths: []string{"."}}
}

// Load configuration from environment variables and optionally config files
// using DefaultOptions. Environment variables take precedence over values
// from config files.
func Load() (*Config, error) {
	return LoadWithOptions(DefaultOptions())
}

// LoadWithOptions is Load with explicit sources.
func LoadWithOptions(opts Options) (*Config, error) {
	if opts.EnvFile != "" {
		if err := godotenv.Load(opts.EnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load env file %s: %w", opts.EnvFile, err)
		}
	}

	v := viper.New()
	setDefaults(v)

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		for _, p := range opts.ConfigPaths {
			v.AddConfigPath(p)
		}
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if opts.ConfigFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults registers every key, including those without a usable default,
// so AutomaticEnv can resolve them during Unmarshal.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 3001)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.shutdown_timeout_seconds", 10)

	v.SetDefault("database.url", "")
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime_minutes", 5)

	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.token_lifetime_minutes", 60)
	v.SetDefault("auth.refresh_token_lifetime_minutes", 10080)
	v.SetDefault("auth.bcrypt_cost", 10)

	v.SetDefault("srs.timezone", "UTC")
	v.SetDefault("srs.due_limit_default", 20)
	v.SetDefault("srs.due_limit_max", 100)
	v.SetDefault("srs.new_limit_default", 10)
	v.SetDefault("srs.new_limit_max", 50)

	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.requests_per_window", 100)
	v.SetDefault("rate_limit.window_ms", 60000)
	v.SetDefault("rate_limit.burst", 20)

	v.SetDefault("jobs.streak_sweep_enabled", true)
	v.SetDefault("jobs.streak_sweep_at", "00:05")
}
