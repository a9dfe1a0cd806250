package di

import (
	"errors"
	"fmt"
	"io"
	"sync"
)

var errAbandoned = errors.New("singleton construction abandoned")

// slot tracks a singleton under construction. done is closed once the
// owner has finished, successfully or not.
type slot struct {
	key   Key
	done  chan struct{}
	owner *resolution
	value any
	err   error
}

// singletons is the singleton cache. A key is built by exactly one
// resolution at a time; concurrent resolutions of the same key wait for it.
type singletons struct {
	mu      sync.Mutex
	values  map[Key]any
	pending map[Key]*slot
	order   []Key
}

func newSingletons() *singletons {
	return &singletons{
		values:  make(map[Key]any),
		pending: make(map[Key]*slot),
	}
}

// get returns the cached instance of key, building it with create when
// absent. A failed build leaves the key absent, and waiters try again.
func (s *singletons) get(r *resolution, key Key, create func() (any, error)) (any, error) {
	for {
		s.mu.Lock()
		if v, ok := s.values[key]; ok {
			s.mu.Unlock()
			return v, nil
		}

		sl, busy := s.pending[key]
		if !busy {
			sl = &slot{key: key, done: make(chan struct{}), owner: r}
			s.pending[key] = sl
			s.mu.Unlock()
			return s.build(sl, create)
		}

		if chain, cyclic := s.waitChain(r, sl); cyclic {
			s.mu.Unlock()
			return nil, r.cyclic(chain)
		}
		r.waiting = sl
		s.mu.Unlock()

		<-sl.done

		s.mu.Lock()
		r.waiting = nil
		s.mu.Unlock()

		if sl.err == nil {
			return sl.value, nil
		}
	}
}

func (s *singletons) build(sl *slot, create func() (any, error)) (v any, err error) {
	finished := false
	defer func() {
		if !finished {
			err = errAbandoned
		}
		s.mu.Lock()
		delete(s.pending, sl.key)
		if err == nil {
			s.values[sl.key] = v
			s.order = append(s.order, sl.key)
		}
		sl.value, sl.err = v, err
		close(sl.done)
		s.mu.Unlock()
	}()

	v, err = create()
	finished = true
	return v, err
}

// waitChain follows the owners of the slots r would transitively wait on.
// Reaching r again means waiting would deadlock. Callers hold s.mu.
func (s *singletons) waitChain(r *resolution, sl *slot) ([]string, bool) {
	keys := []string{sl.key.String()}
	for owner := sl.owner; owner != nil; {
		if owner == r {
			return keys, true
		}
		next := owner.waiting
		if next == nil {
			return nil, false
		}
		keys = append(keys, next.key.String())
		owner = next.owner
		if len(keys) > len(s.pending)+1 {
			return nil, false
		}
	}
	return nil, false
}

func (s *singletons) cached(key Key) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.values[key]
	return ok
}

func (s *singletons) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.values)
}

// close empties the cache and closes every instance implementing io.Closer,
// most recently created first.
func (s *singletons) close() error {
	s.mu.Lock()
	order, values := s.order, s.values
	s.order, s.values = nil, make(map[Key]any)
	s.mu.Unlock()

	var errs []error
	for i := len(order) - 1; i >= 0; i-- {
		closer, ok := values[order[i]].(io.Closer)
		if !ok {
			continue
		}
		if err := closer.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %s: %w", order[i], err))
		}
	}
	return errors.Join(errs...)
}
