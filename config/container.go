package config

import (
	"fmt"

	"github.com/kbukum/lambdacontainer/util"
	"github.com/kbukum/lambdacontainer/validation"
)

// Duplicate registration policies.
const (
	DuplicatePolicyOverwrite = "overwrite"
	DuplicatePolicyReject    = "reject"
)

// ContainerConfig configures the dependency injection container.
type ContainerConfig struct {
	// DuplicatePolicy is "overwrite" (last registration wins) or "reject".
	DuplicatePolicy string `yaml:"duplicate_policy" mapstructure:"duplicate_policy" validate:"omitempty,oneof=overwrite reject"`
	// ImplicitConcrete lets unregistered pointer-to-struct types resolve as
	// transient self-bindings. Nil means enabled.
	ImplicitConcrete *bool `yaml:"implicit_concrete" mapstructure:"implicit_concrete"`
	// Tracing opens a span per top-level resolution.
	Tracing bool `yaml:"tracing" mapstructure:"tracing"`
	// Metrics records resolution counters and latency.
	Metrics bool `yaml:"metrics" mapstructure:"metrics"`
	// Disabled lists registry names to leave out of discovery.
	Disabled []string `yaml:"disabled_registries" mapstructure:"disabled_registries" validate:"dive,required"`
}

// ApplyDefaults fills unset fields.
func (c *ContainerConfig) ApplyDefaults() {
	if c.DuplicatePolicy == "" {
		c.DuplicatePolicy = DuplicatePolicyOverwrite
	}
	if c.ImplicitConcrete == nil {
		c.ImplicitConcrete = util.Ptr(true)
	}
}

// ImplicitConcreteEnabled reports whether implicit concrete binding is on.
func (c ContainerConfig) ImplicitConcreteEnabled() bool {
	return c.ImplicitConcrete == nil || *c.ImplicitConcrete
}

// IsDisabled reports whether the named registry is excluded.
func (c ContainerConfig) IsDisabled(registry string) bool {
	return util.Contains(c.Disabled, registry)
}

// Validate checks the container settings.
func (c *ContainerConfig) Validate() error {
	if err := validation.Validate(c); err != nil {
		return fmt.Errorf("config.container: %w", err)
	}
	return nil
}
