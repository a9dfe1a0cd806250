package bootstrap

import (
	"github.com/kbukum/lambdacontainer/config"
)

// Config is the constraint for application configuration types. Any struct
// embedding config.ServiceConfig satisfies it through promoted methods.
//
//	type MyConfig struct {
//	    config.ServiceConfig `yaml:",inline" mapstructure:",squash"`
//	    Diagnostics diagnostics.Config `yaml:"diagnostics" mapstructure:"diagnostics"`
//	}
//
//	app, err := bootstrap.NewApp(&cfg)
//
// The config value is registered in the bootstrap container, so registry
// types may take it, or *config.ServiceConfig, as a constructor parameter.
type Config interface {
	GetServiceConfig() *config.ServiceConfig
	ApplyDefaults()
	Validate() error
}
