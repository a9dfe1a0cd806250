package di

import "context"

// Observer is notified of every top-level resolution. ObserveResolve is
// called before resolution starts; the returned function receives its
// outcome. For ResolveAll the key name is "*".
type Observer interface {
	ObserveResolve(ctx context.Context, key Key) (context.Context, func(err error))
}

type nopObserver struct{}

func (nopObserver) ObserveResolve(ctx context.Context, _ Key) (context.Context, func(error)) {
	return ctx, func(error) {}
}
