package config

import (
	"fmt"

	"github.com/kbukum/lambdacontainer/logger"
	"github.com/kbukum/lambdacontainer/validation"
)

// Environments accepted by ServiceConfig.
var Environments = []string{"development", "staging", "production"}

// ServiceConfig holds the fields every application needs. Applications
// embed it in their own config structs:
//
//	type AppConfig struct {
//	    config.ServiceConfig `yaml:",inline" mapstructure:",squash"`
//	    Greeting string       `yaml:"greeting" mapstructure:"greeting"`
//	}
type ServiceConfig struct {
	Name        string          `yaml:"name" mapstructure:"name"`
	Environment string          `yaml:"environment" mapstructure:"environment"`
	Version     string          `yaml:"version" mapstructure:"version"`
	Debug       bool            `yaml:"debug" mapstructure:"debug"`
	Logging     logger.Config   `yaml:"logging" mapstructure:"logging"`
	Container   ContainerConfig `yaml:"container" mapstructure:"container"`
}

// GetServiceConfig returns the base ServiceConfig. When embedded, the
// method is promoted so the embedding struct satisfies bootstrap.Config.
func (c *ServiceConfig) GetServiceConfig() *ServiceConfig {
	return c
}

// ApplyDefaults fills unset fields. Embedding structs that override it
// should call c.ServiceConfig.ApplyDefaults() first.
func (c *ServiceConfig) ApplyDefaults() {
	if c.Environment == "" {
		c.Environment = "development"
	}
	if c.Environment == "development" {
		c.Debug = true
	}
	if c.Logging.ServiceName == "" {
		c.Logging.ServiceName = c.Name
	}
	c.Logging.ApplyDefaults()
	c.Container.ApplyDefaults()
}

// Validate checks the base fields. Embedding structs that override it
// should call c.ServiceConfig.Validate() first.
func (c *ServiceConfig) Validate() error {
	if appErr := validation.New().
		Required("name", c.Name).
		OneOf("environment", c.Environment, Environments).
		Validate(); appErr != nil {
		return fmt.Errorf("config: %w", appErr)
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("config.logging: %w", err)
	}
	return c.Container.Validate()
}
