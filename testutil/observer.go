package testutil

import (
	"context"
	"sync"

	"github.com/kbukum/lambdacontainer/di"
)

// Resolution is one observed top-level resolution.
type Resolution struct {
	Key di.Key
	Err error
}

// RecordingObserver is a di.Observer that keeps every finished resolution.
type RecordingObserver struct {
	mu   sync.Mutex
	seen []Resolution
}

var _ di.Observer = (*RecordingObserver)(nil)

func (o *RecordingObserver) ObserveResolve(ctx context.Context, key di.Key) (context.Context, func(error)) {
	return ctx, func(err error) {
		o.mu.Lock()
		o.seen = append(o.seen, Resolution{Key: key, Err: err})
		o.mu.Unlock()
	}
}

// Resolutions returns what has been observed so far.
func (o *RecordingObserver) Resolutions() []Resolution {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]Resolution(nil), o.seen...)
}

// Reset forgets every observation.
func (o *RecordingObserver) Reset() {
	o.mu.Lock()
	o.seen = nil
	o.mu.Unlock()
}
