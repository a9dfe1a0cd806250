package observability

import (
	"context"
	"testing"
	"time"

	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/kbukum/lambdacontainer/di"
)

type Clock interface{ Now() time.Time }

type systemClock struct{ id int }

func (*systemClock) Now() time.Time { return time.Now() }

type clockRegistry struct{}

func (clockRegistry) WriteContentsTo(r *di.Recorder) {
	di.Record(r, func(b *di.RegistrationsBuilder[di.TypeMappingRegistrations]) {
		b.WithOutputLifetime(di.Singleton).Build().Register(di.Map[Clock, *systemClock]())
	})
}

func TestDefaultConfigs(t *testing.T) {
	tc := DefaultTracerConfig("greeter")
	if tc.ServiceName != "greeter" || tc.Endpoint != "localhost:4318" || tc.SampleRate != 1.0 || !tc.Insecure {
		t.Errorf("unexpected tracer defaults %+v", tc)
	}
	mc := DefaultMeterConfig("greeter")
	if mc.ServiceName != "greeter" || mc.Interval != 15*time.Second {
		t.Errorf("unexpected meter defaults %+v", mc)
	}
}

func TestSampler(t *testing.T) {
	tests := []struct {
		rate float64
		want string
	}{
		{1.0, "AlwaysOnSampler"},
		{0, "AlwaysOffSampler"},
		{0.5, "TraceIDRatioBased{0.5}"},
	}
	for _, tt := range tests {
		if got := sampler(tt.rate).Description(); got != tt.want {
			t.Errorf("sampler(%v) = %s, want %s", tt.rate, got, tt.want)
		}
	}
}

func TestNewResolutionMetricsNoop(t *testing.T) {
	m, err := NewResolutionMetrics(noop.NewMeterProvider().Meter("test"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ctx := context.Background()
	m.RecordStart(ctx)
	m.RecordEnd(ctx, "di.IAchild", "", time.Millisecond)
	m.RecordEnd(ctx, "di.IAchild", "UNREGISTERED_CONTRACT", time.Millisecond)
	m.RecordRegistrations(ctx, 3)
}

func newObservedContainer(t *testing.T) (*di.Container, *tracetest.InMemoryExporter, *sdkmetric.ManualReader) {
	t.Helper()

	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })

	metrics, err := NewResolutionMetrics(mp.Meter(InstrumentationName))
	if err != nil {
		t.Fatalf("NewResolutionMetrics failed: %v", err)
	}
	obs := NewResolutionObserver(WithTracer(tp.Tracer(InstrumentationName)), WithMetrics(metrics))

	c := di.New(di.WithObserver(obs))
	if err := c.Boot(clockRegistry{}); err != nil {
		t.Fatalf("Boot failed: %v", err)
	}
	return c, exporter, reader
}

func TestResolutionObserverSpans(t *testing.T) {
	c, exporter, _ := newObservedContainer(t)

	if _, err := di.Resolve[Clock](c); err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if _, err := di.ResolveNamed[Clock](c, "missing"); err == nil {
		t.Fatal("expected unregistered error")
	}

	spans := exporter.GetSpans()
	if len(spans) != 2 {
		t.Fatalf("expected 2 spans, got %d", len(spans))
	}
	for _, s := range spans {
		if s.Name != SpanResolve {
			t.Errorf("unexpected span name %q", s.Name)
		}
	}
	if spans[0].Status.Code == codes.Error {
		t.Error("successful resolution should not be marked as error")
	}
	if spans[1].Status.Code != codes.Error {
		t.Error("failed resolution should be marked as error")
	}

	var code string
	for _, kv := range spans[1].Attributes {
		if string(kv.Key) == AttrErrorCode {
			code = kv.Value.AsString()
		}
	}
	if code != "UNREGISTERED_CONTRACT" {
		t.Errorf("expected error code attribute, got %q", code)
	}
}

func TestResolutionObserverMetrics(t *testing.T) {
	c, _, reader := newObservedContainer(t)

	for i := 0; i < 3; i++ {
		di.MustResolve[Clock](c)
	}
	_, _ = di.ResolveNamed[Clock](c, "missing")

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("Collect failed: %v", err)
	}

	totals := map[string]int64{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			sum, ok := m.Data.(metricdata.Sum[int64])
			if !ok {
				continue
			}
			for _, dp := range sum.DataPoints {
				totals[m.Name] += dp.Value
			}
		}
	}
	if totals["di.resolve.total"] != 4 {
		t.Errorf("expected 4 resolutions, got %d", totals["di.resolve.total"])
	}
	if totals["di.resolve.errors"] != 1 {
		t.Errorf("expected 1 error, got %d", totals["di.resolve.errors"])
	}
	if totals["di.resolve.active"] != 0 {
		t.Errorf("expected no active resolutions, got %d", totals["di.resolve.active"])
	}
}

func TestResolutionObserverWithoutBackends(t *testing.T) {
	obs := NewResolutionObserver()
	ctx, done := obs.ObserveResolve(context.Background(), di.KeyOf[Clock](di.Unnamed))
	if ctx == nil {
		t.Fatal("expected context")
	}
	done(nil)
}

func TestServiceHealth(t *testing.T) {
	sh := NewServiceHealth("greeter", "1.0.0")
	if sh.Status != HealthStatusUp {
		t.Fatalf("expected up, got %s", sh.Status)
	}

	sh.AddComponent(Health{Name: "a", Status: HealthStatusDegraded})
	if sh.Status != HealthStatusDegraded {
		t.Errorf("expected degraded, got %s", sh.Status)
	}
	sh.AddComponent(Health{Name: "b", Status: HealthStatusDown})
	sh.AddComponent(Health{Name: "c", Status: HealthStatusDegraded})
	if sh.Status != HealthStatusDown {
		t.Errorf("degraded should not override down, got %s", sh.Status)
	}
}

func TestContainerHealth(t *testing.T) {
	c := di.New()
	if h := ContainerHealth("di", c); h.Status != HealthStatusDown {
		t.Errorf("unbooted container should be down, got %s", h.Status)
	}

	if err := c.Boot(clockRegistry{}); err != nil {
		t.Fatalf("Boot failed: %v", err)
	}
	di.MustResolve[Clock](c)

	h := ContainerHealth("di", c)
	if h.Status != HealthStatusUp {
		t.Errorf("booted container should be up, got %s", h.Status)
	}
	if h.Details["registrations"] != "1" || h.Details["singletons_cached"] != "1" {
		t.Errorf("unexpected details %v", h.Details)
	}
	if h.Details["container_id"] != c.ID() {
		t.Error("expected container id in details")
	}
}

func TestInitTracerAndMeter(t *testing.T) {
	ctx := context.Background()

	tp, err := InitTracer(ctx, DefaultTracerConfig("greeter"))
	if err != nil {
		t.Skipf("InitTracer failed: %v", err)
	}
	defer tp.Shutdown(ctx)

	cfg := DefaultMeterConfig("greeter")
	cfg.Interval = 0
	mp, err := InitMeter(ctx, cfg)
	if err != nil {
		t.Skipf("InitMeter failed: %v", err)
	}
	defer mp.Shutdown(ctx)

	if Tracer() == nil || Meter() == nil {
		t.Error("expected global tracer and meter")
	}
}
