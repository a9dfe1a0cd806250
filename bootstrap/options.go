package bootstrap

import (
	"reflect"
	"time"

	"github.com/kbukum/lambdacontainer/di"
	"github.com/kbukum/lambdacontainer/logger"
)

// Option configures the App during creation.
// Options are non-generic so they can be used with any config type.
type Option func(*appOptions)

type appOptions struct {
	logger          *logger.Logger
	containerOpts   []di.Option
	registries      []di.Registry
	registryTypes   []reflect.Type
	gracefulTimeout *time.Duration
}

func resolveOptions(opts []Option) *appOptions {
	o := &appOptions{}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithLogger sets a custom logger for the application.
// If not set, the logger is initialized from the config's Logging field.
func WithLogger(l *logger.Logger) Option {
	return func(o *appOptions) {
		o.logger = l
	}
}

// WithGracefulTimeout sets the maximum duration for graceful shutdown.
func WithGracefulTimeout(d time.Duration) Option {
	return func(o *appOptions) {
		o.gracefulTimeout = &d
	}
}

// WithContainerOptions appends container options. They apply after the
// ones derived from config, so they take precedence.
func WithContainerOptions(opts ...di.Option) Option {
	return func(o *appOptions) {
		o.containerOpts = append(o.containerOpts, opts...)
	}
}

// WithRegistries adds registry instances to the catalog.
func WithRegistries(registries ...di.Registry) Option {
	return func(o *appOptions) {
		o.registries = append(o.registries, registries...)
	}
}

// WithRegistryTypes adds registry types, constructed at boot.
func WithRegistryTypes(types ...reflect.Type) Option {
	return func(o *appOptions) {
		o.registryTypes = append(o.registryTypes, types...)
	}
}
