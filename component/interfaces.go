package component

import "context"

// HealthStatus is the health state of a component.
type HealthStatus string

const (
	StatusHealthy   HealthStatus = "healthy"
	StatusUnhealthy HealthStatus = "unhealthy"
	StatusDegraded  HealthStatus = "degraded"
)

// Health holds health information for a component.
type Health struct {
	Name    string       `json:"name"`
	Status  HealthStatus `json:"status"`
	Message string       `json:"message,omitempty"`
}

// Component is a lifecycle-managed service. Registries contribute
// components to the container under this contract; the application starts
// every resolved component in registration order and stops them in reverse.
type Component interface {
	// Name returns the unique name of the component.
	Name() string

	// Start starts the component.
	Start(ctx context.Context) error

	// Stop shuts the component down and releases its resources.
	Stop(ctx context.Context) error

	// Health returns the current health of the component.
	Health(ctx context.Context) Health
}

// Description is what a component reports about itself in the startup
// summary.
type Description struct {
	// Name is the display name. Empty means Component.Name().
	Name string
	// Type categorizes the component: "container", "server", ...
	Type string
	// Details is a one-line summary, e.g. "12 registrations, 3 singletons".
	Details string
	// Port is the primary port, 0 if not applicable.
	Port int
}

// Describable is implemented by components that appear in the startup
// summary.
type Describable interface {
	Describe() Description
}

// Route is one HTTP route for the startup summary.
type Route struct {
	Method  string
	Path    string
	Handler string
}

// RouteProvider is implemented by components that serve HTTP routes.
type RouteProvider interface {
	Routes() []Route
}
