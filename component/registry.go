package component

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/kbukum/lambdacontainer/di"
	"github.com/kbukum/lambdacontainer/logger"
)

// DefaultStopTimeout bounds each component's Stop.
const DefaultStopTimeout = 10 * time.Second

type entry struct {
	component Component
	started   bool
}

// Registry starts components in registration order and stops them in
// reverse order.
type Registry struct {
	mu          sync.RWMutex
	entries     []*entry
	lookup      map[string]*entry
	log         *logger.Logger
	stopTimeout time.Duration
}

// NewRegistry creates an empty component registry.
func NewRegistry() *Registry {
	return &Registry{
		lookup:      make(map[string]*entry),
		log:         logger.WithComponent("component"),
		stopTimeout: DefaultStopTimeout,
	}
}

// Register adds c. Components start in the order they are registered.
func (r *Registry) Register(c Component) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := c.Name()
	if _, exists := r.lookup[name]; exists {
		return fmt.Errorf("component %s already registered", name)
	}

	e := &entry{component: c}
	r.entries = append(r.entries, e)
	r.lookup[name] = e

	r.log.Debug("component registered", logger.Fields(logger.FieldComponent, name))
	return nil
}

// RegisterFrom resolves every Component registration of c, in
// registration order, and registers each one.
func (r *Registry) RegisterFrom(c *di.Container) (int, error) {
	components, err := di.ResolveAll[Component](c)
	if err != nil {
		return 0, fmt.Errorf("resolve components: %w", err)
	}
	for _, comp := range components {
		if err := r.Register(comp); err != nil {
			return 0, err
		}
	}
	return len(components), nil
}

// StartAll starts components in registration order and stops at the first
// failure. Components already started stay started.
func (r *Registry) StartAll(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.log.Info("starting components", logger.Fields(logger.FieldCount, len(r.entries)))

	for _, e := range r.entries {
		if e.started {
			continue
		}
		name := e.component.Name()
		if err := e.component.Start(ctx); err != nil {
			r.log.Error("component start failed", logger.MergeWithError(logger.Fields(logger.FieldComponent, name), err))
			return fmt.Errorf("failed to start %s: %w", name, err)
		}
		e.started = true
		r.log.Debug("component started", logger.Fields(logger.FieldComponent, name))
	}
	return nil
}

// StopAll stops started components in reverse registration order. Every
// component gets its own timeout; all stop errors are returned together.
func (r *Registry) StopAll(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var errs []error
	for i := len(r.entries) - 1; i >= 0; i-- {
		e := r.entries[i]
		if !e.started {
			continue
		}

		name := e.component.Name()
		stopCtx, cancel := context.WithTimeout(ctx, r.stopTimeout)
		if err := e.component.Stop(stopCtx); err != nil {
			errs = append(errs, fmt.Errorf("failed to stop %s: %w", name, err))
			r.log.Error("component stop failed", logger.MergeWithError(logger.Fields(logger.FieldComponent, name), err))
		} else {
			r.log.Debug("component stopped", logger.Fields(logger.FieldComponent, name))
		}
		e.started = false
		cancel()
	}
	return errors.Join(errs...)
}

// HealthAll returns the health of every component in registration order.
func (r *Registry) HealthAll(ctx context.Context) []Health {
	r.mu.RLock()
	defer r.mu.RUnlock()

	results := make([]Health, 0, len(r.entries))
	for _, e := range r.entries {
		results = append(results, e.component.Health(ctx))
	}
	return results
}

// Get returns the component named name, or nil.
func (r *Registry) Get(name string) Component {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if e, ok := r.lookup[name]; ok {
		return e.component
	}
	return nil
}

// All returns the components in registration order.
func (r *Registry) All() []Component {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Component, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e.component)
	}
	return out
}
