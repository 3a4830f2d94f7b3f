// Package config
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server   ServerConfig             `yaml:"server"`
	Logging  LoggingConfig            `yaml:"logging"`
	Redfish  RedfishConfig            `yaml:"redfish"`
	Profiles map[string]ProfileConfig `yaml:"profiles" validate:"required,min=1,dive"`
}

type ServerConfig struct {
	Host           string `yaml:"host"`
	Port           int    `yaml:"port" validate:"required,min=1,max=65535"`
	ReadTimeoutMS  int    `yaml:"read_timeout_ms"`
	WriteTimeoutMS int    `yaml:"write_timeout_ms"`
}

type LoggingConfig struct {
	Level  string `yaml:"level" validate:"omitempty,oneof=debug info warn error"`
	Format string `yaml:"format" validate:"omitempty,oneof=text json"`
}

// RedfishConfig bounds the per-scrape poll cycle against the BMC.
type RedfishConfig struct {
	ProbeTimeoutMS   int `yaml:"probe_timeout_ms" validate:"min=0"`
	SessionTimeoutMS int `yaml:"session_timeout_ms" validate:"min=0"`
	LoginRetries     int `yaml:"login_retries" validate:"min=0,max=10"`
}

// ProfileConfig is one credential profile, keyed by the `code` scrape
// parameter.
type ProfileConfig struct {
	Auth AuthConfig `yaml:"auth"`
}

type AuthConfig struct {
	Username string `yaml:"username" validate:"required,min=1"`
	Password string `yaml:"password" validate:"required,min=1"`
}

var validate = validator.New()

// Load reads configuration from file and applies environment variable overrides
func Load(configPath string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyDefaults(cfg)
	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate ensures all required configuration values are set
func (c *Config) Validate() error {
	return validate.Struct(c)
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "0.0.0.0"
	}
	if cfg.Server.ReadTimeoutMS == 0 {
		cfg.Server.ReadTimeoutMS = 15000
	}
	// The write timeout must outlast a full poll cycle, which can block
	// for the whole session timeout.
	if cfg.Server.WriteTimeoutMS == 0 {
		cfg.Server.WriteTimeoutMS = 60000
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "text"
	}
	if cfg.Redfish.ProbeTimeoutMS == 0 {
		cfg.Redfish.ProbeTimeoutMS = 3000
	}
	if cfg.Redfish.SessionTimeoutMS == 0 {
		cfg.Redfish.SessionTimeoutMS = 30000
	}
	if cfg.Redfish.LoginRetries == 0 {
		cfg.Redfish.LoginRetries = 2
	}
}

// applyEnvOverrides checks for environment variables with RFE_ prefix
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("RFE_SERVER_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("RFE_SERVER_PORT"); v != "" {
		fmt.Sscanf(v, "%d", &cfg.Server.Port)
	}
	if v := os.Getenv("RFE_LOGGING_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}

// GetReadTimeout returns the read timeout as a duration
func (s *ServerConfig) GetReadTimeout() time.Duration {
	return time.Duration(s.ReadTimeoutMS) * time.Millisecond
}

// GetWriteTimeout returns the write timeout as a duration
func (s *ServerConfig) GetWriteTimeout() time.Duration {
	return time.Duration(s.WriteTimeoutMS) * time.Millisecond
}

// GetProbeTimeout returns the connectivity probe timeout as a duration
func (r *RedfishConfig) GetProbeTimeout() time.Duration {
	return time.Duration(r.ProbeTimeoutMS) * time.Millisecond
}

// GetSessionTimeout returns the session timeout as a duration
func (r *RedfishConfig) GetSessionTimeout() time.Duration {
	return time.Duration(r.SessionTimeoutMS) * time.Millisecond
}
