// Package config provides Viper-based hierarchical configuration management
package config

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"github.com/finsift/finsift/internal/classify"
)

// Config represents the complete application configuration
type Config struct {
	Log struct {
		Level  string `mapstructure:"level" yaml:"level"`
		Format string `mapstructure:"format" yaml:"format"`
	} `mapstructure:"log" yaml:"log"`

	Server struct {
		Host                   string `mapstructure:"host" yaml:"host"`
		Port                   int    `mapstructure:"port" yaml:"port"`
		ReadTimeoutSeconds     int    `mapstructure:"read_timeout_seconds" yaml:"read_timeout_seconds"`
		WriteTimeoutSeconds    int    `mapstructure:"write_timeout_seconds" yaml:"write_timeout_seconds"`
		ShutdownTimeoutSeconds int    `mapstructure:"shutdown_timeout_seconds" yaml:"shutdown_timeout_seconds"`
	} `mapstructure:"server" yaml:"server"`

	Redis struct {
		Enabled         bool   `mapstructure:"enabled" yaml:"enabled"`
		URL             string `mapstructure:"url" yaml:"-"` // may carry credentials, never serialize
		KeyPrefix       string `mapstructure:"key_prefix" yaml:"key_prefix"`
		CacheTTLSeconds int    `mapstructure:"cache_ttl_seconds" yaml:"cache_ttl_seconds"`
	} `mapstructure:"redis" yaml:"redis"`

	Classification struct {
		BaselineConfidence float64 `mapstructure:"baseline_confidence" yaml:"baseline_confidence"`
		RefundConfidence   float64 `mapstructure:"refund_confidence" yaml:"refund_confidence"`
		FuzzyEnabled       bool    `mapstructure:"fuzzy_enabled" yaml:"fuzzy_enabled"`
		FuzzyThreshold     float64 `mapstructure:"fuzzy_threshold" yaml:"fuzzy_threshold"`
		FuzzyConfidence    float64 `mapstructure:"fuzzy_confidence" yaml:"fuzzy_confidence"`
		TokenBase          float64 `mapstructure:"token_base" yaml:"token_base"`
		TokenIncrement     float64 `mapstructure:"token_increment" yaml:"token_increment"`
		TokenCeiling       float64 `mapstructure:"token_ceiling" yaml:"token_ceiling"`
	} `mapstructure:"classification" yaml:"classification"`

	Catalog struct {
		File string `mapstructure:"file" yaml:"file"`
	} `mapstructure:"catalog" yaml:"catalog"`
}

// InitializeConfig initializes Viper configuration with hierarchical loading
func InitializeConfig() (*Config, error) {
	v := viper.New()

	// 1. Set defaults
	setDefaults(v)

	// 2. Config file locations
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("$HOME/.finsift")
	v.AddConfigPath(".finsift")
	v.AddConfigPath(".")

	// 3. Environment variables
	v.SetEnvPrefix("FINSIFT")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// 4. Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			// Log the error but don't fail - continue with defaults and env vars
			fmt.Printf("Warning: error reading config file %s: %v\n", v.ConfigFileUsed(), err)
		}
		// Config file not found or invalid is OK, we'll use defaults and env vars
	}

	// 5. Redis URL is conventionally unprefixed in container environments
	if err := v.BindEnv("redis.url", "REDIS_URL", "FINSIFT_REDIS_URL"); err != nil {
		fmt.Printf("Warning: failed to bind REDIS_URL environment variable: %v\n", err)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// 6. Validate configuration
	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Log defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	// Server defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.read_timeout_seconds", 15)
	v.SetDefault("server.write_timeout_seconds", 15)
	v.SetDefault("server.shutdown_timeout_seconds", 10)

	// Redis defaults
	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.url", "redis://localhost:6379/0")
	v.SetDefault("redis.key_prefix", "tx_classified")
	v.SetDefault("redis.cache_ttl_seconds", 3600)

	// Classification defaults mirror classify.DefaultConfig
	def := classify.DefaultConfig()
	v.SetDefault("classification.baseline_confidence", def.BaselineConfidence)
	v.SetDefault("classification.refund_confidence", def.RefundConfidence)
	v.SetDefault("classification.fuzzy_enabled", def.FuzzyEnabled)
	v.SetDefault("classification.fuzzy_threshold", def.FuzzyThreshold)
	v.SetDefault("classification.fuzzy_confidence", def.FuzzyConfidence)
	v.SetDefault("classification.token_base", def.TokenBase)
	v.SetDefault("classification.token_increment", def.TokenIncrement)
	v.SetDefault("classification.token_ceiling", def.TokenCeiling)

	// Catalog defaults
	v.SetDefault("catalog.file", "categories.yaml")
}

// validateConfig validates the configuration values
func validateConfig(config *Config) error {
	// Validate log level
	if _, err := logrus.ParseLevel(config.Log.Level); err != nil {
		return fmt.Errorf("invalid log level: %s", config.Log.Level)
	}

	// Validate log format
	if config.Log.Format != "text" && config.Log.Format != "json" {
		return fmt.Errorf("invalid log format: %s (must be 'text' or 'json')", config.Log.Format)
	}

	// Validate server settings
	if config.Server.Port < 1 || config.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got: %d", config.Server.Port)
	}
	if config.Server.ReadTimeoutSeconds < 1 || config.Server.WriteTimeoutSeconds < 1 {
		return fmt.Errorf("server read/write timeouts must be at least 1 second")
	}
	if config.Server.ShutdownTimeoutSeconds < 1 {
		return fmt.Errorf("server.shutdown_timeout_seconds must be at least 1, got: %d", config.Server.ShutdownTimeoutSeconds)
	}

	// Validate Redis settings
	if config.Redis.Enabled {
		if config.Redis.URL == "" {
			return fmt.Errorf("redis.url required when Redis is enabled")
		}
		if config.Redis.CacheTTLSeconds < 1 {
			return fmt.Errorf("redis.cache_ttl_seconds must be at least 1, got: %d", config.Redis.CacheTTLSeconds)
		}
	}

	// The confidence model enforces its own ordering invariants
	if err := config.ClassifyConfig().Validate(); err != nil {
		return fmt.Errorf("classification: %w", err)
	}

	return nil
}

// ClassifyConfig converts the classification section into the engine's config
func (c *Config) ClassifyConfig() classify.Config {
	return classify.Config{
		BaselineConfidence: c.Classification.BaselineConfidence,
		RefundConfidence:   c.Classification.RefundConfidence,
		FuzzyEnabled:       c.Classification.FuzzyEnabled,
		FuzzyThreshold:     c.Classification.FuzzyThreshold,
		FuzzyConfidence:    c.Classification.FuzzyConfidence,
		TokenBase:          c.Classification.TokenBase,
		TokenIncrement:     c.Classification.TokenIncrement,
		TokenCeiling:       c.Classification.TokenCeiling,
	}
}

// ConfigureLoggingFromConfig configures logging based on the Config struct
func ConfigureLoggingFromConfig(config *Config) *logrus.Logger {
	logger := logrus.New()

	// Parse and set log level
	logLevel, err := logrus.ParseLevel(strings.ToLower(config.Log.Level))
	if err != nil {
		logger.Warnf("Invalid log level '%s', using 'info'", config.Log.Level)
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	// Configure log format
	if strings.ToLower(config.Log.Format) == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	}

	return logger
}
