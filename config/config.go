// Package config loads tigerfetch configuration from defaults, an optional
// config file, and TIGERFETCH_* environment variables. Configuration is
// resolved once at process start and passed into component constructors;
// nothing reads the environment at query time.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

const (
	// DefaultBaseURL is the public tigerfetch PostgREST deployment.
	DefaultBaseURL = "https://tigerblue-postgrest.fly.dev"

	// DefaultTimeoutSeconds bounds the single outbound request.
	DefaultTimeoutSeconds = 30
)

// Config holds all settings for a tigerfetch invocation.
type Config struct {
	// BaseURL is the PostgREST gateway root (TIGERFETCH_BASE_URL).
	BaseURL string `mapstructure:"base_url" validate:"required,url"`

	// JWT, when set, is sent as "Authorization: Bearer <token>"
	// (TIGERFETCH_JWT). The token is passed through untouched; issuance
	// and validation belong to the gateway.
	JWT string `mapstructure:"jwt"`

	// TimeoutSeconds is the HTTP timeout for the single outbound request
	// (TIGERFETCH_TIMEOUT_SECONDS).
	TimeoutSeconds int `mapstructure:"timeout_seconds" validate:"gte=1"`

	// Debug enables verbose logging (TIGERFETCH_DEBUG).
	Debug bool `mapstructure:"debug"`
}

// Timeout returns the request timeout as a duration.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// Load resolves configuration. configFile may be empty; a missing file is
// not an error, only a malformed one is.
func Load(configFile string) (*Config, error) {
	v := viper.New()

	v.SetDefault("base_url", DefaultBaseURL)
	v.SetDefault("jwt", "")
	v.SetDefault("timeout_seconds", DefaultTimeoutSeconds)
	v.SetDefault("debug", false)

	v.SetEnvPrefix("TIGERFETCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}
