package config

import (
	"fmt"
	"os"
)

// Config represents the complete application configuration
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Engine    EngineConfig    `mapstructure:"engine"`
	Artifacts ArtifactsConfig `mapstructure:"artifacts"`
	Queue     QueueConfig     `mapstructure:"queue"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// ServerConfig represents HTTP server configuration
type ServerConfig struct {
	Host     string `mapstructure:"host"`      // Bind address (e.g., 0.0.0.0 for all interfaces)
	HTTPPort int    `mapstructure:"http_port"` // HTTP server port
}

// EngineConfig holds defaults applied to fit requests that omit them
type EngineConfig struct {
	Strategy      string `mapstructure:"strategy"`       // recursive, direct, ensemble
	Horizon       int    `mapstructure:"horizon"`        // default forecast horizon
	Lags          []int  `mapstructure:"lags"`           // default lag set
	Frequency     string `mapstructure:"frequency"`      // default sampling frequency (e.g., "1d", "1h", "1i")
	MaxWorkers    int    `mapstructure:"max_workers"`    // entity-level parallelism during predict
	MaxFitWorkers int    `mapstructure:"max_fit_workers"` // per-horizon parallelism in direct fits
}

// ArtifactsConfig represents the fitted-model store configuration
type ArtifactsConfig struct {
	Dir string `mapstructure:"dir"` // directory for serialized model artifacts
}

// QueueConfig represents forecast event bus configuration
type QueueConfig struct {
	Type     string `mapstructure:"type"`     // Queue type: nats (default), redis, kafka, memory
	URL      string `mapstructure:"url"`      // Queue server URL (e.g., nats://localhost:4222, redis://localhost:6379)
	Username string `mapstructure:"username"` // Optional authentication
	Password string `mapstructure:"password"` // Optional authentication

	// Redis-specific options
	RedisDB       int    `mapstructure:"redis_db"`       // Redis database number (default: 0)
	RedisStream   string `mapstructure:"redis_stream"`   // Redis stream prefix (default: "panelcast")
	RedisGroup    string `mapstructure:"redis_group"`    // Redis consumer group (default: "panelcast-group")
	RedisConsumer string `mapstructure:"redis_consumer"` // Redis consumer name (default: hostname)

	// Kafka-specific options
	KafkaBrokers []string `mapstructure:"kafka_brokers"`  // Kafka broker addresses
	KafkaGroupID string   `mapstructure:"kafka_group_id"` // Kafka consumer group ID
}

// AuthConfig represents API key authentication configuration
type AuthConfig struct {
	Enabled bool     `mapstructure:"enabled"`  // Enable/disable API key authentication
	APIKeys []string `mapstructure:"api_keys"` // List of valid API keys
}

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	Level      string `mapstructure:"level"`       // debug, info, warn, error
	Format     string `mapstructure:"format"`      // json, console
	OutputPath string `mapstructure:"output_path"` // stdout, stderr, file path
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if err := c.Server.Validate(); err != nil {
		return fmt.Errorf("server config: %w", err)
	}

	if err := c.Engine.Validate(); err != nil {
		return fmt.Errorf("engine config: %w", err)
	}

	if err := c.Artifacts.Validate(); err != nil {
		return fmt.Errorf("artifacts config: %w", err)
	}

	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging config: %w", err)
	}

	return nil
}

// Validate validates server configuration
func (c *ServerConfig) Validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid http_port: %d", c.HTTPPort)
	}

	return nil
}

// Validate validates engine configuration
func (c *EngineConfig) Validate() error {
	switch c.Strategy {
	case "recursive", "direct", "ensemble":
	default:
		return fmt.Errorf("engine.strategy must be one of: recursive, direct, ensemble")
	}

	if c.Horizon < 1 {
		return fmt.Errorf("engine.horizon must be at least 1")
	}

	if len(c.Lags) == 0 {
		return fmt.Errorf("engine.lags is required")
	}
	for _, lag := range c.Lags {
		if lag < 1 {
			return fmt.Errorf("engine.lags must all be >= 1, got %d", lag)
		}
	}

	if c.MaxWorkers < 1 {
		return fmt.Errorf("engine.max_workers must be at least 1")
	}

	return nil
}

// Validate validates artifacts configuration
func (c *ArtifactsConfig) Validate() error {
	if c.Dir == "" {
		return fmt.Errorf("artifacts.dir is required")
	}

	return nil
}

// Validate validates logging configuration
func (c *LoggingConfig) Validate() error {
	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}

	if !validLevels[c.Level] {
		return fmt.Errorf("logging.level must be one of: debug, info, warn, error")
	}

	validFormats := map[string]bool{
		"json":    true,
		"console": true,
	}

	if !validFormats[c.Format] {
		return fmt.Errorf("logging.format must be 'json' or 'console'")
	}

	return nil
}

// EnsureDirectories ensures all required directories exist
func (c *Config) EnsureDirectories() error {
	return os.MkdirAll(c.Artifacts.Dir, 0755)
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Logging.Level == "debug" && c.Logging.Format == "console"
}
