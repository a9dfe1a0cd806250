package diagnostics

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/lambdacontainer/component"
	"github.com/kbukum/lambdacontainer/di"
	"github.com/kbukum/lambdacontainer/logger"
	"github.com/kbukum/lambdacontainer/testutil"
)

type Clock interface{ Now() int64 }

type fixedClock struct{ t int64 }

func (c *fixedClock) Now() int64 { return c.t }

type clockRegistry struct{}

func (clockRegistry) WriteContentsTo(r *di.Recorder) {
	di.Record(r, func(b *di.RegistrationsBuilder[di.TypeMappingRegistrations]) {
		b.WithOutputLifetime(di.Singleton).Build().Register(di.Map[Clock, *fixedClock]())
	})
	di.Record(r, func(b *di.RegistrationsBuilder[di.FactoryRegistrations]) {
		b.Build().RegisterByName(di.Value("eu-west"), "region")
	})
}

func bootedContainer(t *testing.T) *di.Container {
	t.Helper()
	return testutil.T(t).Boot(clockRegistry{})
}

func newTestServer(t *testing.T, c *di.Container, checker HealthChecker) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	cfg := Config{Host: "127.0.0.1"}
	cfg.ApplyDefaults()
	cfg.Port = 0
	return NewServer(cfg, "orders", c, checker, logger.Nop())
}

func get(t *testing.T, h http.Handler, path string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("%s: invalid JSON %q: %v", path, w.Body.String(), err)
	}
	return w, body
}

func TestRegistrations(t *testing.T) {
	c := bootedContainer(t)
	s := newTestServer(t, c, nil)

	w, body := get(t, s.Handler(), "/di/registrations")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if body["count"].(float64) != 2 {
		t.Errorf("expected 2 registrations, got %v", body["count"])
	}
	if body["container_id"] != c.ID() {
		t.Errorf("expected container id %s, got %v", c.ID(), body["container_id"])
	}
	regs := body["registrations"].([]any)
	first := regs[0].(map[string]any)
	if first["contract"] != "diagnostics.Clock" || first["lifetime"] != "singleton" {
		t.Errorf("unexpected first registration %v", first)
	}
}

func TestRegistrationsFilter(t *testing.T) {
	s := newTestServer(t, bootedContainer(t), nil)

	tests := []struct {
		name   string
		query  string
		status int
		count  float64
	}{
		{"known contract", "?contract=string", http.StatusOK, 1},
		{"unknown contract", "?contract=nope", http.StatusNotFound, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, body := get(t, s.Handler(), "/di/registrations"+tt.query)
			if w.Code != tt.status {
				t.Fatalf("expected %d, got %d", tt.status, w.Code)
			}
			if tt.status == http.StatusOK && body["count"].(float64) != tt.count {
				t.Errorf("expected %v registrations, got %v", tt.count, body["count"])
			}
			if tt.status == http.StatusNotFound && body["error"].(map[string]any)["code"] != "UNREGISTERED_CONTRACT" {
				t.Errorf("expected UNREGISTERED_CONTRACT, got %v", body)
			}
		})
	}
}

func TestStats(t *testing.T) {
	c := bootedContainer(t)
	if _, err := di.Resolve[Clock](c); err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	s := newTestServer(t, c, nil)

	_, body := get(t, s.Handler(), "/di/stats")
	if body["registrations"].(float64) != 2 {
		t.Errorf("expected 2 registrations, got %v", body["registrations"])
	}
	if body["singletons_cached"].(float64) != 1 {
		t.Errorf("expected 1 cached singleton, got %v", body["singletons_cached"])
	}
}

func TestHealth(t *testing.T) {
	tests := []struct {
		name       string
		container  *di.Container
		components []component.Health
		status     int
		want       string
	}{
		{"booted", bootedContainer(t), nil, http.StatusOK, "up"},
		{"degraded component", bootedContainer(t), []component.Health{
			{Name: "cache", Status: component.StatusDegraded},
		}, http.StatusOK, "degraded"},
		{"unhealthy component", bootedContainer(t), []component.Health{
			{Name: "db", Status: component.StatusUnhealthy, Message: "refused"},
		}, http.StatusServiceUnavailable, "down"},
		{"not booted", di.New(), nil, http.StatusServiceUnavailable, "down"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checker := func(context.Context) []component.Health { return tt.components }
			s := newTestServer(t, tt.container, checker)

			w, body := get(t, s.Handler(), "/di/health")
			if w.Code != tt.status {
				t.Errorf("expected %d, got %d", tt.status, w.Code)
			}
			if body["status"] != tt.want {
				t.Errorf("expected status %s, got %v", tt.want, body["status"])
			}
			if body["service"] != "orders" {
				t.Errorf("expected service orders, got %v", body["service"])
			}
		})
	}
}

func TestVersion(t *testing.T) {
	s := newTestServer(t, bootedContainer(t), nil)
	w, body := get(t, s.Handler(), "/di/version")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if body["version"] == "" {
		t.Error("expected a version")
	}
}

func TestRequestID(t *testing.T) {
	s := newTestServer(t, bootedContainer(t), nil)

	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/di/stats", nil))
	if w.Header().Get(requestIDHeader) == "" {
		t.Error("expected a generated request id")
	}

	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/di/stats", nil)
	req.Header.Set(requestIDHeader, "abc")
	s.Handler().ServeHTTP(w, req)
	if got := w.Header().Get(requestIDHeader); got != "abc" {
		t.Errorf("expected propagated request id, got %q", got)
	}
}

func TestRecovery(t *testing.T) {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.Use(Recovery(logger.Nop()))
	engine.GET("/boom", func(*gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))
	if w.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", w.Code)
	}
}

func TestComponentLifecycle(t *testing.T) {
	s := newTestServer(t, bootedContainer(t), nil)
	comp := NewComponent(s)
	ctx := context.Background()

	if h := comp.Health(ctx); h.Status != component.StatusUnhealthy {
		t.Errorf("expected unhealthy before start, got %s", h.Status)
	}
	testutil.T(t).Setup(comp)

	if h := comp.Health(ctx); h.Status != component.StatusHealthy {
		t.Errorf("expected healthy after start, got %s", h.Status)
	}

	resp, err := http.Get(fmt.Sprintf("http://%s/di/version", s.Addr()))
	if err != nil {
		t.Fatalf("GET failed: %v", err)
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}

	routes := comp.Routes()
	if len(routes) != 4 {
		t.Errorf("expected 4 routes, got %d", len(routes))
	}
	if d := comp.Describe(); d.Type != "server" {
		t.Errorf("unexpected description %+v", d)
	}
}

func TestRegistryContributesComponent(t *testing.T) {
	tests := []struct {
		name    string
		enabled bool
		want    int
	}{
		{"enabled", true, 1},
		{"disabled", false, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := di.New()
			reg := NewRegistry(Config{Enabled: tt.enabled}, "orders", c, nil, logger.Nop())
			if err := c.Boot(clockRegistry{}, reg); err != nil {
				t.Fatalf("Boot failed: %v", err)
			}

			comps, err := di.ResolveAll[component.Component](c)
			if err != nil {
				t.Fatalf("ResolveAll failed: %v", err)
			}
			if len(comps) != tt.want {
				t.Fatalf("expected %d components, got %d", tt.want, len(comps))
			}
			if tt.want == 1 && comps[0].Name() != componentName {
				t.Errorf("expected diagnostics component, got %s", comps[0].Name())
			}
		})
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"defaults", Config{}, false},
		{"bad port", Config{Port: 70000}, true},
		{"relative base path", Config{BasePath: "di"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.cfg
			cfg.ApplyDefaults()
			if err := cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
