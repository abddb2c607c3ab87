package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// validEnv sets the minimum required env vars for a valid config.
func validEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DATABASE_DSN", "postgres://u:p@localhost:5432/testdb")
}

func writeYAML(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write yaml: %v", err)
	}
	return path
}

const validYAML = `
server:
  host: "127.0.0.1"
  port: 9090
  read_timeout: "5s"
  public_base_url: "https://api.example.com"

database:
  dsn: "postgres://u:p@localhost:5432/testdb"
  max_conns: 10
  min_conns: 2

sighting:
  suppression_window: "2m"

chat:
  model: "claude-sonnet-4-5"
  max_tokens: 500
  temperature: 0.5
  request_timeout: "15s"

log:
  level: "debug"
  format: "text"
`

func TestLoad_FromYAML(t *testing.T) {
	dir := t.TempDir()
	path := writeYAML(t, dir, validYAML)
	t.Setenv("CONFIG_PATH", path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Server.Host != "127.0.0.1" {
		t.Errorf("server.host = %q", cfg.Server.Host)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("server.port = %d", cfg.Server.Port)
	}
	if cfg.Server.PublicBaseURL != "https://api.example.com" {
		t.Errorf("server.public_base_url = %q", cfg.Server.PublicBaseURL)
	}
	if cfg.Sighting.SuppressionWindow != 2*time.Minute {
		t.Errorf("sighting.suppression_window = %v", cfg.Sighting.SuppressionWindow)
	}
	if cfg.Chat.MaxTokens != 500 {
		t.Errorf("chat.max_tokens = %d", cfg.Chat.MaxTokens)
	}
	if cfg.Chat.Temperature != 0.5 {
		t.Errorf("chat.temperature = %v", cfg.Chat.Temperature)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("log.level = %q", cfg.Log.Level)
	}
}

func TestLoad_EnvOnly_Defaults(t *testing.T) {
	validEnv(t)
	t.Setenv("CONFIG_PATH", "")

	// Ensure no stray config.yaml in cwd influences the test.
	wd := t.TempDir()
	oldWD, _ := os.Getwd()
	if err := os.Chdir(wd); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(oldWD) })

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("default server.port = %d", cfg.Server.Port)
	}
	if cfg.Sighting.SuppressionWindow != 5*time.Minute {
		t.Errorf("default suppression_window = %v", cfg.Sighting.SuppressionWindow)
	}
	if cfg.Chat.MaxMessageLength != 1000 {
		t.Errorf("default chat.max_message_length = %d", cfg.Chat.MaxMessageLength)
	}
	if cfg.Chat.MaxRetries != 3 {
		t.Errorf("default chat.max_retries = %d", cfg.Chat.MaxRetries)
	}
	if cfg.Log.Format != "json" {
		t.Errorf("default log.format = %q", cfg.Log.Format)
	}
}

func TestLoad_EnvOverridesYAML(t *testing.T) {
	dir := t.TempDir()
	path := writeYAML(t, dir, validYAML)
	t.Setenv("CONFIG_PATH", path)
	t.Setenv("SERVER_PORT", "7070")
	t.Setenv("SIGHTING_SUPPRESSION_WINDOW", "30s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Server.Port != 7070 {
		t.Errorf("env override server.port = %d", cfg.Server.Port)
	}
	if cfg.Sighting.SuppressionWindow != 30*time.Second {
		t.Errorf("env override suppression_window = %v", cfg.Sighting.SuppressionWindow)
	}
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	t.Setenv("CONFIG_PATH", "/nonexistent/config.yaml")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for missing explicit CONFIG_PATH")
	}
}

func TestValidate_Rejections(t *testing.T) {
	t.Parallel()

	base := func() *Config {
		return &Config{
			Server:   ServerConfig{Port: 8080},
			Database: DatabaseConfig{DSN: "x", MaxConns: 10, MinConns: 2},
			Sighting: SightingConfig{SuppressionWindow: 5 * time.Minute},
			Chat: ChatConfig{
				MaxTokens:        1000,
				Temperature:      0.7,
				MaxMessageLength: 1000,
				RequestTimeout:   30 * time.Second,
				MaxRetries:       3,
			},
		}
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad port", func(c *Config) { c.Server.Port = 0 }},
		{"max < min conns", func(c *Config) { c.Database.MaxConns = 1 }},
		{"negative window", func(c *Config) { c.Sighting.SuppressionWindow = -time.Second }},
		{"zero max tokens", func(c *Config) { c.Chat.MaxTokens = 0 }},
		{"temperature out of range", func(c *Config) { c.Chat.Temperature = 1.5 }},
		{"zero message length", func(c *Config) { c.Chat.MaxMessageLength = 0 }},
		{"zero timeout", func(c *Config) { c.Chat.RequestTimeout = 0 }},
		{"negative retries", func(c *Config) { c.Chat.MaxRetries = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := base()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestValidate_MissingAPIKeyIsAllowed(t *testing.T) {
	t.Parallel()

	cfg := &Config{
		Server:   ServerConfig{Port: 8080},
		Database: DatabaseConfig{DSN: "x", MaxConns: 10, MinConns: 2},
		Chat: ChatConfig{
			MaxTokens:        1000,
			Temperature:      0.7,
			MaxMessageLength: 1000,
			RequestTimeout:   30 * time.Second,
		},
	}

	if err := cfg.Validate(); err != nil {
		t.Fatalf("config without chat.api_key should validate: %v", err)
	}
}
