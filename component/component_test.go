package component

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/kbukum/lambdacontainer/di"
)

type mockComponent struct {
	name       string
	startErr   error
	stopErr    error
	health     Health
	startOrder *[]string
	stopOrder  *[]string
}

func (m *mockComponent) Name() string { return m.name }
func (m *mockComponent) Start(ctx context.Context) error {
	if m.startOrder != nil {
		*m.startOrder = append(*m.startOrder, m.name)
	}
	return m.startErr
}
func (m *mockComponent) Stop(ctx context.Context) error {
	if m.stopOrder != nil {
		*m.stopOrder = append(*m.stopOrder, m.name)
	}
	return m.stopErr
}
func (m *mockComponent) Health(ctx context.Context) Health { return m.health }

func TestRegisterDuplicate(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(&mockComponent{name: "db"}); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if err := r.Register(&mockComponent{name: "db"}); err == nil {
		t.Error("expected error for duplicate registration")
	}
	if r.Get("db") == nil || r.Get("cache") != nil {
		t.Error("Get mismatch")
	}
}

func TestStartStopOrder(t *testing.T) {
	var started, stopped []string
	r := NewRegistry()
	for _, name := range []string{"a", "b", "c"} {
		r.Register(&mockComponent{name: name, startOrder: &started, stopOrder: &stopped})
	}

	ctx := context.Background()
	if err := r.StartAll(ctx); err != nil {
		t.Fatalf("StartAll failed: %v", err)
	}
	if fmt.Sprint(started) != "[a b c]" {
		t.Errorf("unexpected start order %v", started)
	}
	if err := r.StopAll(ctx); err != nil {
		t.Fatalf("StopAll failed: %v", err)
	}
	if fmt.Sprint(stopped) != "[c b a]" {
		t.Errorf("unexpected stop order %v", stopped)
	}
}

func TestStartAllErrorStopsStarted(t *testing.T) {
	var stopped []string
	r := NewRegistry()
	r.Register(&mockComponent{name: "a", stopOrder: &stopped})
	r.Register(&mockComponent{name: "b", startErr: errors.New("refused"), stopOrder: &stopped})
	r.Register(&mockComponent{name: "c", stopOrder: &stopped})

	ctx := context.Background()
	if err := r.StartAll(ctx); err == nil {
		t.Fatal("expected start error")
	}
	if err := r.StopAll(ctx); err != nil {
		t.Fatalf("StopAll failed: %v", err)
	}
	if fmt.Sprint(stopped) != "[a]" {
		t.Errorf("only started components should stop, got %v", stopped)
	}
}

func TestStopAllWithErrors(t *testing.T) {
	r := NewRegistry()
	errA, errB := errors.New("a failed"), errors.New("b failed")
	r.Register(&mockComponent{name: "a", stopErr: errA})
	r.Register(&mockComponent{name: "b", stopErr: errB})

	ctx := context.Background()
	r.StartAll(ctx)
	err := r.StopAll(ctx)
	if !errors.Is(err, errA) || !errors.Is(err, errB) {
		t.Errorf("expected both stop errors, got %v", err)
	}
}

func TestHealthAll(t *testing.T) {
	r := NewRegistry()
	r.Register(&mockComponent{name: "a", health: Health{Name: "a", Status: StatusHealthy}})
	r.Register(&mockComponent{name: "b", health: Health{Name: "b", Status: StatusDegraded}})

	got := r.HealthAll(context.Background())
	if len(got) != 2 || got[0].Status != StatusHealthy || got[1].Status != StatusDegraded {
		t.Errorf("unexpected health %v", got)
	}
}

type serverComponent struct{ mockComponent }
type workerComponent struct{ mockComponent }

func newServer() *serverComponent { return &serverComponent{mockComponent{name: "server"}} }
func newWorker() *workerComponent { return &workerComponent{mockComponent{name: "worker"}} }

func (*serverComponent) Constructors() []any { return []any{newServer} }
func (*workerComponent) Constructors() []any { return []any{newWorker} }

type components struct{}

func (components) WriteContentsTo(r *di.Recorder) {
	di.Record(r, func(b *di.RegistrationsBuilder[di.TypeMappingRegistrations]) {
		b.WithOutputLifetime(di.Singleton).Build().
			RegisterByName(di.Map[Component, *serverComponent](), "server").
			RegisterByName(di.Map[Component, *workerComponent](), "worker")
	})
}

func TestRegisterFrom(t *testing.T) {
	c := di.New()
	if err := c.Boot(components{}); err != nil {
		t.Fatalf("Boot failed: %v", err)
	}

	r := NewRegistry()
	n, err := r.RegisterFrom(c)
	if err != nil {
		t.Fatalf("RegisterFrom failed: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 components, got %d", n)
	}
	all := r.All()
	if all[0].Name() != "server" || all[1].Name() != "worker" {
		t.Errorf("expected registration order, got %s, %s", all[0].Name(), all[1].Name())
	}
	if r.Get("server") != di.MustResolveNamed[Component](c, "server") {
		t.Error("registered component should be the container singleton")
	}
}
