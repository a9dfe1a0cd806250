package di

import (
	"reflect"
	"sync/atomic"

	apperrors "github.com/kbukum/lambdacontainer/errors"
)

// DuplicatePolicy decides what happens when a key is registered twice.
type DuplicatePolicy int

const (
	// DuplicateOverwrite keeps the last registration (last write wins). The
	// replacement keeps the position of the first one in ResolveAll order.
	DuplicateOverwrite DuplicatePolicy = iota
	// DuplicateReject keeps the first registration and reports an error.
	DuplicateReject
)

func (p DuplicatePolicy) String() string {
	if p == DuplicateReject {
		return "reject"
	}
	return "overwrite"
}

// Table is the registration table. It is written during boot only and read
// without locks afterwards.
type Table struct {
	entries    map[Key]*Registration
	byContract map[reflect.Type][]Key
	seq        int
	sealed     atomic.Bool
}

// NewTable creates an empty registration table.
func NewTable() *Table {
	return &Table{
		entries:    make(map[Key]*Registration),
		byContract: make(map[reflect.Type][]Key),
	}
}

// put inserts reg, or replaces the registration under the same key.
// It reports whether an earlier registration was replaced.
func (t *Table) put(reg *Registration, policy DuplicatePolicy) (replaced bool, err error) {
	if t.sealed.Load() {
		return false, apperrors.Sealed(reg.key.String())
	}

	prev, exists := t.entries[reg.key]
	if exists {
		if policy == DuplicateReject {
			return false, apperrors.DuplicateRegistration(reg.key.String(), reg.registry)
		}
		reg.seq = prev.seq
		t.entries[reg.key] = reg
		return true, nil
	}

	reg.seq = t.seq
	t.seq++
	t.entries[reg.key] = reg
	ct := reg.key.Contract.t
	t.byContract[ct] = append(t.byContract[ct], reg.key)
	return false, nil
}

func (t *Table) seal() { t.sealed.Store(true) }

// Sealed reports whether boot has completed.
func (t *Table) Sealed() bool { return t.sealed.Load() }

// Lookup returns the registration under key.
func (t *Table) Lookup(key Key) (*Registration, bool) {
	reg, ok := t.entries[key]
	return reg, ok
}

// All returns every registration of contract regardless of name, in
// insertion order.
func (t *Table) All(contract Contract) []*Registration {
	keys := t.byContract[contract.t]
	out := make([]*Registration, 0, len(keys))
	for _, k := range keys {
		out = append(out, t.entries[k])
	}
	return out
}

// Has reports whether contract has any registration.
func (t *Table) Has(contract Contract) bool {
	return len(t.byContract[contract.t]) > 0
}

// Len returns the number of registrations.
func (t *Table) Len() int { return len(t.entries) }

// Registrations returns all registrations in insertion order.
func (t *Table) Registrations() []*Registration {
	out := make([]*Registration, len(t.entries))
	for _, reg := range t.entries {
		out[reg.seq] = reg
	}
	return out
}
