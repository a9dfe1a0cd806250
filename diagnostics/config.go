package diagnostics

import (
	"fmt"

	"github.com/kbukum/lambdacontainer/validation"
)

// Config holds the diagnostics server configuration.
type Config struct {
	Enabled      bool   `yaml:"enabled" mapstructure:"enabled"`
	Host         string `yaml:"host" mapstructure:"host"`
	Port         int    `yaml:"port" mapstructure:"port" validate:"gte=0,lte=65535"`
	BasePath     string `yaml:"base_path" mapstructure:"base_path" validate:"omitempty,startswith=/"`
	ReadTimeout  int    `yaml:"read_timeout" mapstructure:"read_timeout" validate:"gte=0"`   // seconds
	WriteTimeout int    `yaml:"write_timeout" mapstructure:"write_timeout" validate:"gte=0"` // seconds
	IdleTimeout  int    `yaml:"idle_timeout" mapstructure:"idle_timeout" validate:"gte=0"`   // seconds
}

// ApplyDefaults sets default values for unset fields.
func (c *Config) ApplyDefaults() {
	if c.Port == 0 {
		c.Port = 9090
	}
	if c.BasePath == "" {
		c.BasePath = "/di"
	}
	if c.ReadTimeout == 0 {
		c.ReadTimeout = 5
	}
	if c.WriteTimeout == 0 {
		c.WriteTimeout = 10
	}
	if c.IdleTimeout == 0 {
		c.IdleTimeout = 60
	}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if err := validation.Validate(c); err != nil {
		return fmt.Errorf("diagnostics: %w", err)
	}
	return nil
}

// Addr returns host:port.
func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
