package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "NATOURS"

// PasswordPlaceholder is substituted in database.url with database.password.
const PasswordPlaceholder = "<PASSWORD>"

var defaults = map[string]any{
	"environment":                       "production",
	"server.port":                       3000,
	"server.log_level":                  "info",
	"server.shutdown_timeout_seconds":   10,
	"database.driver":                   "postgres",
	"database.name":                     "natours",
	"auth.token_lifetime_minutes":       90 * 24 * 60,
	"auth.bcrypt_cost":                  12,
	"auth.reset_token_lifetime_minutes": 10,
	"rate_limit.requests":               100,
	"rate_limit.window_minutes":         60,
}

// keys without a default still need binding so env-only values unmarshal.
var boundKeys = []string{
	"database.url",
	"database.password",
	"auth.jwt_secret",
}

// Load configuration from environment variables and optionally a
// config.yaml in the working directory. Environment variables take
// precedence over values from the config file, e.g. NATOURS_SERVER_PORT
// overrides server.port.
// Returns a populated Config struct or an error if loading/validation fails.
func Load() (*Config, error) {
	return LoadFrom(".")
}

// LoadFrom is Load reading the optional config file from dir.
func LoadFrom(dir string) (*Config, error) {
	v := viper.New()

	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(dir)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, key := range boundKeys {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("error binding %s: %w", key, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}

	cfg.Database.URL = strings.ReplaceAll(cfg.Database.URL, PasswordPlaceholder, cfg.Database.Password)

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}
