package bootstrap

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/kbukum/lambdacontainer/component"
	"github.com/kbukum/lambdacontainer/util"
)

// InfrastructureInfo holds what a component reports about itself.
type InfrastructureInfo struct {
	Name    string
	Type    string // e.g. "container", "server"
	Details string
	Port    int
	Healthy bool
}

// RouteInfo represents a registered HTTP route.
type RouteInfo struct {
	Method  string
	Path    string
	Handler string
}

// Summary tracks and displays the application bootstrap process.
type Summary struct {
	serviceName     string
	version         string
	startupDuration time.Duration
	infrastructure  []InfrastructureInfo
	routes          []RouteInfo
	out             io.Writer
}

// NewSummary creates a new bootstrap summary tracker writing to stdout.
func NewSummary(serviceName, version string) *Summary {
	return &Summary{serviceName: serviceName, version: version, out: os.Stdout}
}

// SetOutput redirects the summary.
func (s *Summary) SetOutput(w io.Writer) { s.out = w }

// SetStartupDuration records the total startup time.
func (s *Summary) SetStartupDuration(d time.Duration) {
	s.startupDuration = d
}

// TrackInfrastructure adds an infrastructure entry.
func (s *Summary) TrackInfrastructure(name, componentType, details string, port int, healthy bool) {
	s.infrastructure = append(s.infrastructure, InfrastructureInfo{
		Name:    name,
		Type:    componentType,
		Details: details,
		Port:    port,
		Healthy: healthy,
	})
}

// TrackRoute records an HTTP route.
func (s *Summary) TrackRoute(method, path, handler string) {
	s.routes = append(s.routes, RouteInfo{Method: method, Path: path, Handler: handler})
}

// collect picks up Describable and RouteProvider components.
func (s *Summary) collect(ctx context.Context, registry *component.Registry) {
	for _, c := range registry.All() {
		if d, ok := c.(component.Describable); ok {
			desc := d.Describe()
			name := desc.Name
			if name == "" {
				name = c.Name()
			}
			healthy := c.Health(ctx).Status == component.StatusHealthy
			s.TrackInfrastructure(name, desc.Type, desc.Details, desc.Port, healthy)
		}
		if rp, ok := c.(component.RouteProvider); ok {
			for _, r := range rp.Routes() {
				s.TrackRoute(r.Method, r.Path, r.Handler)
			}
		}
	}
}

// DisplaySummary prints the bootstrap summary with the boot report and live
// component health.
func (s *Summary) DisplaySummary(registry *component.Registry, report *Report) {
	ctx := context.Background()
	if registry != nil {
		s.collect(ctx, registry)
	}
	w := s.out

	fmt.Fprintf(w, "\n🚀 %s v%s started in %.2fs\n\n", s.serviceName, s.version, s.startupDuration.Seconds())

	if report != nil {
		fmt.Fprintf(w, "🧩 Registries (%d registrations)\n", report.Registrations)
		lines := make([]string, 0, len(report.Recorded)+len(report.Skipped)+len(report.Disabled))
		for _, name := range report.Recorded {
			lines = append(lines, "✅ "+name)
		}
		for _, sk := range report.Skipped {
			lines = append(lines, fmt.Sprintf("⏭️  %s (skipped: %v)", sk.Name, sk.Err))
		}
		for _, name := range report.Disabled {
			lines = append(lines, "⏸️  "+name+" (disabled)")
		}
		writeTree(w, lines)
		fmt.Fprintf(w, "\n")
	}

	if len(s.infrastructure) > 0 {
		fmt.Fprintf(w, "📊 Infrastructure\n")
		lines := util.Map(s.infrastructure, func(inf InfrastructureInfo) string {
			details := inf.Details
			if inf.Port > 0 {
				details = fmt.Sprintf("%s (:%d)", details, inf.Port)
			}
			return fmt.Sprintf("%s %s: %s", healthIcon(inf.Healthy), inf.Name, details)
		})
		writeTree(w, lines)
		fmt.Fprintf(w, "\n")
	}

	if len(s.routes) > 0 {
		fmt.Fprintf(w, "🌐 Routes (%d)\n", len(s.routes))
		writeTree(w, util.Map(s.routes, func(r RouteInfo) string {
			return fmt.Sprintf("%-7s %s → %s", r.Method, r.Path, r.Handler)
		}))
		fmt.Fprintf(w, "\n")
	}

	if registry != nil {
		results := registry.HealthAll(ctx)
		if len(results) > 0 {
			fmt.Fprintf(w, "🏥 Health Check\n")
			writeTree(w, util.Map(results, func(h component.Health) string {
				msg := ""
				if h.Message != "" {
					msg = " (" + h.Message + ")"
				}
				return fmt.Sprintf("%s %s: %s%s", healthStatusIcon(h.Status), h.Name, strings.ToLower(string(h.Status)), msg)
			}))
			fmt.Fprintf(w, "\n")
		}
	}
}

func writeTree(w io.Writer, lines []string) {
	for i, line := range lines {
		prefix := "├──"
		if i == len(lines)-1 {
			prefix = "└──"
		}
		fmt.Fprintf(w, "   %s %s\n", prefix, line)
	}
}

func healthIcon(healthy bool) string {
	if healthy {
		return "✅"
	}
	return "❌"
}

func healthStatusIcon(status component.HealthStatus) string {
	switch status {
	case component.StatusHealthy:
		return "✅"
	case component.StatusDegraded:
		return "⚠️"
	case component.StatusUnhealthy:
		return "❌"
	default:
		return "❓"
	}
}
