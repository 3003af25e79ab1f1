package config

import "time"

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	// Environment selects error verbosity and request logging. Only
	// "development" exposes diagnostic detail to clients.
	Environment string          `mapstructure:"environment" validate:"required"`
	Server      ServerConfig    `mapstructure:"server" validate:"required"`
	Database    DatabaseConfig  `mapstructure:"database" validate:"required"`
	Auth        AuthConfig      `mapstructure:"auth" validate:"required"`
	RateLimit   RateLimitConfig `mapstructure:"rate_limit" validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port                   int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel               string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
	ShutdownTimeoutSeconds int    `mapstructure:"shutdown_timeout_seconds" validate:"gt=0"`
}

// Storage drivers accepted by database.driver.
const (
	DriverPostgres = "postgres"
	DriverMongo    = "mongo"
)

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	Driver string `mapstructure:"driver" validate:"required,oneof=postgres mongo"`
	URL    string `mapstructure:"url" validate:"required,url"`
	// Password replaces the <PASSWORD> placeholder in URL, so the URL can
	// be committed while the secret comes from the environment.
	Password string `mapstructure:"password"`
	// Name is the MongoDB database holding the collections.
	Name string `mapstructure:"name" validate:"required"`
}

// AuthConfig contains all authentication and authorization settings.
type AuthConfig struct {
	JWTSecret                 string `mapstructure:"jwt_secret" validate:"required,min=32"`
	TokenLifetimeMinutes      int    `mapstructure:"token_lifetime_minutes" validate:"required,gt=0"`
	BCryptCost                int    `mapstructure:"bcrypt_cost" validate:"required,min=4,max=31"`
	ResetTokenLifetimeMinutes int    `mapstructure:"reset_token_lifetime_minutes" validate:"required,gt=0"`
}

// RateLimitConfig bounds requests per client IP on the API routes.
type RateLimitConfig struct {
	Requests      int `mapstructure:"requests" validate:"required,gt=0"`
	WindowMinutes int `mapstructure:"window_minutes" validate:"required,gt=0"`
}

// IsDevelopment reports whether diagnostic detail may reach clients.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// TokenLifetime is the validity period of issued access tokens.
func (a AuthConfig) TokenLifetime() time.Duration {
	return time.Duration(a.TokenLifetimeMinutes) * time.Minute
}

// ResetTokenLifetime is the validity period of password reset tokens.
func (a AuthConfig) ResetTokenLifetime() time.Duration {
	return time.Duration(a.ResetTokenLifetimeMinutes) * time.Minute
}

// Window is the rate limit period.
func (r RateLimitConfig) Window() time.Duration {
	return time.Duration(r.WindowMinutes) * time.Minute
}

// ShutdownTimeout bounds graceful shutdown.
func (s ServerConfig) ShutdownTimeout() time.Duration {
	return time.Duration(s.ShutdownTimeoutSeconds) * time.Second
}
