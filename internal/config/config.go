package config

import (
	"time"
)

// Config is the root application configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Sighting SightingConfig `yaml:"sighting"`
	Chat     ChatConfig     `yaml:"chat"`
	Log      LogConfig      `yaml:"log"`
	CORS     CORSConfig     `yaml:"cors"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `yaml:"host"             env:"SERVER_HOST"             env-default:"0.0.0.0"`
	Port            int           `yaml:"port"             env:"SERVER_PORT"             env-default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout"     env:"SERVER_READ_TIMEOUT"     env-default:"10s"`
	WriteTimeout    time.Duration `yaml:"write_timeout"    env:"SERVER_WRITE_TIMEOUT"    env-default:"30s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"     env:"SERVER_IDLE_TIMEOUT"     env-default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT" env-default:"10s"`

	// PublicBaseURL is prepended to stored sighting image paths when
	// resolving a device's sightings.
	PublicBaseURL string `yaml:"public_base_url" env:"SERVER_PUBLIC_BASE_URL" env-default:"http://localhost:8080"`
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	DSN             string        `yaml:"dsn"                env:"DATABASE_DSN"                env-required:"true"`
	MaxConns        int32         `yaml:"max_conns"          env:"DATABASE_MAX_CONNS"          env-default:"25"`
	MinConns        int32         `yaml:"min_conns"          env:"DATABASE_MIN_CONNS"          env-default:"5"`
	MaxConnLifetime time.Duration `yaml:"max_conn_lifetime"  env:"DATABASE_MAX_CONN_LIFETIME"  env-default:"1h"`
	MaxConnIdleTime time.Duration `yaml:"max_conn_idle_time" env:"DATABASE_MAX_CONN_IDLE_TIME" env-default:"30m"`
}

// SightingConfig holds sighting ledger settings.
type SightingConfig struct {
	// SuppressionWindow is the trailing interval within which a repeat
	// sighting of the same fish on the same device is reported as skipped
	// instead of being recorded again.
	SuppressionWindow time.Duration `yaml:"suppression_window" env:"SIGHTING_SUPPRESSION_WINDOW" env-default:"5m"`
}

// ChatConfig holds assistant gateway settings.
type ChatConfig struct {
	APIKey           string        `yaml:"api_key"            env:"CHAT_API_KEY"`
	Model            string        `yaml:"model"              env:"CHAT_MODEL"              env-default:"claude-sonnet-4-5"`
	MaxTokens        int           `yaml:"max_tokens"         env:"CHAT_MAX_TOKENS"         env-default:"1000"`
	Temperature      float64       `yaml:"temperature"        env:"CHAT_TEMPERATURE"        env-default:"0.7"`
	MaxMessageLength int           `yaml:"max_message_length" env:"CHAT_MAX_MESSAGE_LENGTH" env-default:"1000"`
	RequestTimeout   time.Duration `yaml:"request_timeout"    env:"CHAT_REQUEST_TIMEOUT"    env-default:"30s"`
	MaxRetries       int           `yaml:"max_retries"        env:"CHAT_MAX_RETRIES"        env-default:"3"`
	RetryBaseDelay   time.Duration `yaml:"retry_base_delay"   env:"CHAT_RETRY_BASE_DELAY"   env-default:"500ms"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"json"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins   string `yaml:"allowed_origins"   env:"CORS_ALLOWED_ORIGINS"   env-default:"*"`
	AllowedMethods   string `yaml:"allowed_methods"   env:"CORS_ALLOWED_METHODS"   env-default:"GET,POST,OPTIONS"`
	AllowedHeaders   string `yaml:"allowed_headers"   env:"CORS_ALLOWED_HEADERS"   env-default:"Authorization,Content-Type"`
	AllowCredentials bool   `yaml:"allow_credentials" env:"CORS_ALLOW_CREDENTIALS" env-default:"true"`
	MaxAge           int    `yaml:"max_age"           env:"CORS_MAX_AGE"           env-default:"86400"`
}
