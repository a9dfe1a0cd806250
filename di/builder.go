package di

import (
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/kbukum/lambdacontainer/logger"
)

// Registry contributes registrations to a container. WriteContentsTo is
// called exactly once, during Boot.
type Registry interface {
	WriteContentsTo(r *Recorder)
}

// Kind selects the builder handed out by Record. It is implemented by
// FactoryRegistrations and TypeMappingRegistrations only.
type Kind interface {
	registrationKind() string
}

// FactoryRegistrations registers factory and pre-built instance sources.
type FactoryRegistrations interface {
	Kind
	Register(f Factory) FactoryRegistrations
	RegisterByName(f Factory, name string) FactoryRegistrations
}

// TypeMappingRegistrations registers contract-to-implementation mappings.
type TypeMappingRegistrations interface {
	Kind
	Register(m TypeMapping) TypeMappingRegistrations
	RegisterByName(m TypeMapping, name string) TypeMappingRegistrations
}

// Recorder is handed to a Registry during boot. Registration errors are
// collected and returned by Boot once every registry has written. A Recorder
// kept past its WriteContentsTo call records nothing.
type Recorder struct {
	table    *Table
	registry string
	policy   DuplicatePolicy
	log      *logger.Logger
	errs     []error
	count    int
	closed   atomic.Bool
}

func newRecorder(table *Table, registry string, policy DuplicatePolicy, log *logger.Logger) *Recorder {
	return &Recorder{
		table:    table,
		registry: registry,
		policy:   policy,
		log:      log.WithFields(logger.Fields(logger.FieldRegistry, registry)),
	}
}

// Registry returns the name of the registry being recorded.
func (r *Recorder) Registry() string { return r.registry }

// Count returns the number of registrations recorded so far.
func (r *Recorder) Count() int { return r.count }

// Err returns the joined registration errors, or nil.
func (r *Recorder) Err() error { return errors.Join(r.errs...) }

func (r *Recorder) close() { r.closed.Store(true) }

func (r *Recorder) add(reg *Registration) {
	if r.closed.Load() {
		r.log.Warn("registration after boot ignored", logger.Fields(logger.FieldContract, reg.key.String()))
		return
	}
	replaced, err := r.table.put(reg, r.policy)
	if err != nil {
		r.errs = append(r.errs, err)
		return
	}
	r.count++
	if replaced {
		r.log.Debug("registration overwritten", logger.Fields(logger.FieldContract, reg.key.String()))
	}
}

// Record invokes read with a builder for registrations of kind K:
//
//	di.Record(r, func(b *di.RegistrationsBuilder[di.FactoryRegistrations]) {
//	    b.Build().RegisterByName(di.Func(newName), "name")
//	})
func Record[K Kind](r *Recorder, read func(*RegistrationsBuilder[K])) {
	read(&RegistrationsBuilder[K]{rec: r, lifetime: Transient})
}

// RegistrationsBuilder produces kind-specific builders carrying a lifetime.
type RegistrationsBuilder[K Kind] struct {
	rec      *Recorder
	lifetime Lifetime
}

// WithOutputLifetime returns a builder whose registrations carry lifetime l.
// The receiver is left unchanged.
func (b *RegistrationsBuilder[K]) WithOutputLifetime(l Lifetime) *RegistrationsBuilder[K] {
	return &RegistrationsBuilder[K]{rec: b.rec, lifetime: l}
}

// Build returns the registration builder of kind K.
func (b *RegistrationsBuilder[K]) Build() K {
	var built any
	switch any((*K)(nil)).(type) {
	case *FactoryRegistrations:
		built = &factoryRegistrations{rec: b.rec, lifetime: b.lifetime}
	case *TypeMappingRegistrations:
		built = &typeMappingRegistrations{rec: b.rec, lifetime: b.lifetime}
	default:
		panic(fmt.Sprintf("di: unsupported registration kind %T", (*K)(nil)))
	}
	return built.(K)
}

type factoryRegistrations struct {
	rec      *Recorder
	lifetime Lifetime
}

func (*factoryRegistrations) registrationKind() string { return "factory" }

func (f *factoryRegistrations) Register(src Factory) FactoryRegistrations {
	return f.RegisterByName(src, Unnamed)
}

func (f *factoryRegistrations) RegisterByName(src Factory, name string) FactoryRegistrations {
	if src.contract.IsZero() {
		f.rec.errs = append(f.rec.errs, fmt.Errorf("registry %s: empty factory source", f.rec.registry))
		return f
	}
	f.rec.add(newFactoryRegistration(src, name, f.lifetime, f.rec.registry))
	return f
}

type typeMappingRegistrations struct {
	rec      *Recorder
	lifetime Lifetime
}

func (*typeMappingRegistrations) registrationKind() string { return "type-mapping" }

func (t *typeMappingRegistrations) Register(m TypeMapping) TypeMappingRegistrations {
	return t.RegisterByName(m, Unnamed)
}

func (t *typeMappingRegistrations) RegisterByName(m TypeMapping, name string) TypeMappingRegistrations {
	if m.contract.IsZero() {
		t.rec.errs = append(t.rec.errs, fmt.Errorf("registry %s: empty type mapping", t.rec.registry))
		return t
	}
	t.rec.add(newTypeRegistration(m, name, t.lifetime, t.rec.registry))
	return t
}
