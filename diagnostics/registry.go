package diagnostics

import (
	"github.com/kbukum/lambdacontainer/component"
	"github.com/kbukum/lambdacontainer/di"
	"github.com/kbukum/lambdacontainer/logger"
)

// Registry contributes the diagnostics component to the container it
// reports on. It writes nothing when the config is disabled.
//
//	app.Register(diagnostics.NewRegistry(cfg.Diagnostics, app.Name, app.Container, app.Components.HealthAll, app.Logger))
type Registry struct {
	cfg       Config
	service   string
	container *di.Container
	checker   HealthChecker
	log       *logger.Logger
}

// NewRegistry creates a diagnostics registry for c.
func NewRegistry(cfg Config, service string, c *di.Container, checker HealthChecker, log *logger.Logger) *Registry {
	cfg.ApplyDefaults()
	if log == nil {
		log = logger.Get(componentName)
	}
	return &Registry{cfg: cfg, service: service, container: c, checker: checker, log: log}
}

func (r *Registry) WriteContentsTo(rec *di.Recorder) {
	if !r.cfg.Enabled {
		return
	}
	di.Record(rec, func(b *di.RegistrationsBuilder[di.FactoryRegistrations]) {
		b.WithOutputLifetime(di.Singleton).Build().
			RegisterByName(di.Func(func(di.Resolver) (component.Component, error) {
				if err := r.cfg.Validate(); err != nil {
					return nil, err
				}
				return NewComponent(NewServer(r.cfg, r.service, r.container, r.checker, r.log)), nil
			}), componentName)
	})
}
