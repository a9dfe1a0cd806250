package observability

import (
	"context"
	"strconv"

	"github.com/kbukum/lambdacontainer/di"
)

// HealthStatus is the health state of a component or service.
type HealthStatus string

const (
	HealthStatusUp       HealthStatus = "up"
	HealthStatusDown     HealthStatus = "down"
	HealthStatusDegraded HealthStatus = "degraded"
)

// Health describes the health of one component.
type Health struct {
	Name    string            `json:"name"`
	Status  HealthStatus      `json:"status"`
	Message string            `json:"message,omitempty"`
	Details map[string]string `json:"details,omitempty"`
}

// ServiceHealth aggregates component health.
type ServiceHealth struct {
	Service    string       `json:"service"`
	Status     HealthStatus `json:"status"`
	Version    string       `json:"version,omitempty"`
	Components []Health     `json:"components,omitempty"`
}

// HealthChecker is implemented by components that report their health.
type HealthChecker interface {
	CheckHealth(ctx context.Context) Health
}

// NewServiceHealth creates a ServiceHealth with status up.
func NewServiceHealth(service, version string) *ServiceHealth {
	return &ServiceHealth{Service: service, Status: HealthStatusUp, Version: version}
}

// AddComponent adds a component result. Down wins over degraded.
func (sh *ServiceHealth) AddComponent(ch Health) {
	sh.Components = append(sh.Components, ch)

	switch ch.Status {
	case HealthStatusDown:
		sh.Status = HealthStatusDown
	case HealthStatusDegraded:
		if sh.Status != HealthStatusDown {
			sh.Status = HealthStatusDegraded
		}
	}
}

// ContainerHealth reports a container as up once it has booted.
func ContainerHealth(name string, c *di.Container) Health {
	h := Health{Name: name, Status: HealthStatusUp}
	if !c.Booted() {
		h.Status = HealthStatusDown
		h.Message = "container not booted"
	}
	stats := c.Stats()
	h.Details = map[string]string{
		"container_id":      c.ID(),
		"registrations":     strconv.Itoa(stats.Registrations),
		"singletons_cached": strconv.Itoa(stats.Singletons),
	}
	return h
}
