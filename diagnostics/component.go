package diagnostics

import (
	"context"

	"github.com/kbukum/lambdacontainer/component"
)

const componentName = "diagnostics"

var (
	_ component.Component     = (*Component)(nil)
	_ component.Describable   = (*Component)(nil)
	_ component.RouteProvider = (*Component)(nil)
)

// Component runs a Server under lifecycle management.
type Component struct {
	server *Server
}

// NewComponent wraps s.
func NewComponent(s *Server) *Component {
	return &Component{server: s}
}

func (dc *Component) Name() string { return componentName }

func (dc *Component) Start(ctx context.Context) error { return dc.server.Start(ctx) }

func (dc *Component) Stop(ctx context.Context) error { return dc.server.Stop(ctx) }

func (dc *Component) Health(ctx context.Context) component.Health {
	if dc.server.Running() {
		return component.Health{Name: componentName, Status: component.StatusHealthy}
	}
	return component.Health{Name: componentName, Status: component.StatusUnhealthy, Message: "not serving"}
}

func (dc *Component) Describe() component.Description {
	return component.Description{
		Name:    "Diagnostics",
		Type:    "server",
		Details: dc.server.Addr() + dc.server.config.BasePath,
		Port:    dc.server.config.Port,
	}
}

// Routes lists the gin routes.
func (dc *Component) Routes() []component.Route {
	ginRoutes := dc.server.engine.Routes()
	routes := make([]component.Route, 0, len(ginRoutes))
	for _, r := range ginRoutes {
		routes = append(routes, component.Route{Method: r.Method, Path: r.Path, Handler: handlerName(r.Handler)})
	}
	return routes
}

// handlerName trims the package path gin reports.
func handlerName(full string) string {
	for i := len(full) - 1; i >= 0; i-- {
		if full[i] == '/' {
			return full[i+1:]
		}
	}
	return full
}
