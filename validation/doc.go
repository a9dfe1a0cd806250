// Package validation validates configuration and request input.
//
// Struct tag validation uses go-playground/validator and reports fields by
// their mapstructure key. A "lifetime" tag accepts container lifetimes.
//
//	type ContainerConfig struct {
//	    DuplicatePolicy string `mapstructure:"duplicate_policy" validate:"omitempty,oneof=overwrite reject"`
//	}
//	err := validation.Validate(cfg)
//
// Programmatic checks collect every failure before reporting:
//
//	err := validation.New().Required("name", name).OneOf("env", env, envs).Validate()
package validation
