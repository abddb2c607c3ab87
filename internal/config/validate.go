package config

import (
	"fmt"
)

// Validate performs business-rule validation on the loaded configuration.
// It must be called after loading; Load calls it automatically.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be in (0, 65535] (got %d)", c.Server.Port)
	}

	if c.Database.MaxConns < c.Database.MinConns {
		return fmt.Errorf("database.max_conns (%d) must be >= min_conns (%d)",
			c.Database.MaxConns, c.Database.MinConns)
	}

	if c.Sighting.SuppressionWindow < 0 {
		return fmt.Errorf("sighting.suppression_window must be >= 0 (got %v)",
			c.Sighting.SuppressionWindow)
	}

	if err := c.Chat.validate(); err != nil {
		return fmt.Errorf("chat: %w", err)
	}

	return nil
}

func (c *ChatConfig) validate() error {
	if c.MaxTokens <= 0 {
		return fmt.Errorf("max_tokens must be > 0 (got %d)", c.MaxTokens)
	}
	if c.Temperature < 0 || c.Temperature > 1 {
		return fmt.Errorf("temperature must be in [0, 1] (got %v)", c.Temperature)
	}
	if c.MaxMessageLength <= 0 {
		return fmt.Errorf("max_message_length must be > 0 (got %d)", c.MaxMessageLength)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("request_timeout must be > 0 (got %v)", c.RequestTimeout)
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("max_retries must be >= 0 (got %d)", c.MaxRetries)
	}
	// APIKey is deliberately not required here: the chat service reports a
	// provider-misconfigured error at call time so the rest of the API
	// (registration, sightings) still works without a key.
	return nil
}
