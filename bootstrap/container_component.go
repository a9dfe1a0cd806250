package bootstrap

import (
	"context"
	"fmt"

	"github.com/kbukum/lambdacontainer/component"
	"github.com/kbukum/lambdacontainer/di"
)

const containerComponentName = "di-container"

var (
	_ component.Component   = (*containerComponent)(nil)
	_ component.Describable = (*containerComponent)(nil)
)

// containerComponent puts a booted container under lifecycle management so
// its singletons are closed with the other components.
type containerComponent struct {
	container *di.Container
}

func (cc *containerComponent) Name() string { return containerComponentName }

func (cc *containerComponent) Start(ctx context.Context) error {
	if !cc.container.Booted() {
		return fmt.Errorf("container %s has not booted", cc.container.ID())
	}
	return nil
}

func (cc *containerComponent) Stop(ctx context.Context) error {
	return cc.container.Close()
}

func (cc *containerComponent) Health(ctx context.Context) component.Health {
	if cc.container.Booted() {
		return component.Health{Name: containerComponentName, Status: component.StatusHealthy}
	}
	return component.Health{
		Name:    containerComponentName,
		Status:  component.StatusUnhealthy,
		Message: "container not booted",
	}
}

func (cc *containerComponent) Describe() component.Description {
	stats := cc.container.Stats()
	return component.Description{
		Name:    "DI Container",
		Type:    "container",
		Details: fmt.Sprintf("%d registrations, %d singletons cached", stats.Registrations, stats.Singletons),
	}
}
