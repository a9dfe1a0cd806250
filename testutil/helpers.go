package testutil

import (
	"context"
	"testing"

	"github.com/kbukum/lambdacontainer/component"
	"github.com/kbukum/lambdacontainer/di"
	apperrors "github.com/kbukum/lambdacontainer/errors"
)

// THelper ties container and component setup to a test's lifetime.
type THelper struct {
	t   testing.TB
	ctx context.Context
}

// T wraps t.
func T(t testing.TB) *THelper {
	return &THelper{t: t, ctx: context.Background()}
}

// WithContext sets the context used to start and stop components.
func (h *THelper) WithContext(ctx context.Context) *THelper {
	h.ctx = ctx
	return h
}

// Boot creates a container, boots it with registries and closes
// it when the test ends. A boot error fails the test.
func (h *THelper) Boot(registries ...di.Registry) *di.Container {
	return h.BootWith(nil, registries...)
}

// BootWith is Boot with container options.
func (h *THelper) BootWith(opts []di.Option, registries ...di.Registry) *di.Container {
	h.t.Helper()
	c := di.New(opts...)
	if err := c.Boot(registries...); err != nil {
		h.t.Fatalf("boot failed: %v", err)
	}
	h.t.Cleanup(func() {
		if err := c.Close(); err != nil {
			h.t.Errorf("container close failed: %v", err)
		}
	})
	return c
}

// Setup starts c and stops it when the test ends.
func (h *THelper) Setup(c component.Component) {
	h.t.Helper()
	if err := c.Start(h.ctx); err != nil {
		h.t.Fatalf("failed to start component %s: %v", c.Name(), err)
	}
	h.t.Cleanup(func() {
		if err := c.Stop(h.ctx); err != nil {
			h.t.Errorf("failed to stop component %s: %v", c.Name(), err)
		}
	})
}

// ExpectCode fails the test unless err carries code somewhere in its chain.
func (h *THelper) ExpectCode(err error, code apperrors.ErrorCode) {
	h.t.Helper()
	if !apperrors.HasCode(err, code) {
		h.t.Errorf("expected %s, got %v", code, err)
	}
}

// Resolve resolves T from r or fails the test.
func Resolve[T any](h *THelper, r di.Resolver) T {
	return ResolveNamed[T](h, r, di.Unnamed)
}

// ResolveNamed resolves T under name from r or fails the test.
func ResolveNamed[T any](h *THelper, r di.Resolver, name string) T {
	h.t.Helper()
	v, err := di.ResolveNamed[T](r, name)
	if err != nil {
		h.t.Fatalf("resolve %s: %v", di.KeyOf[T](name), err)
	}
	return v
}
