package di

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/kbukum/lambdacontainer/config"
	apperrors "github.com/kbukum/lambdacontainer/errors"
	"github.com/kbukum/lambdacontainer/logger"
)

// Container owns a registration table and a singleton cache. Registries
// write into it once during Boot; afterwards it resolves concurrently.
type Container struct {
	id               string
	table            *Table
	singletons       *singletons
	log              *logger.Logger
	observer         Observer
	implicitConcrete bool
	policy           DuplicatePolicy

	bootMu sync.Mutex
	booted atomic.Bool

	implicitMu sync.RWMutex
	implicit   map[reflect.Type]*Registration
}

// Option configures a Container.
type Option func(*Container)

// WithLogger sets the container logger. The default discards everything.
func WithLogger(l *logger.Logger) Option {
	return func(c *Container) {
		if l != nil {
			c.log = l
		}
	}
}

// WithObserver sets the resolution observer.
func WithObserver(o Observer) Option {
	return func(c *Container) {
		if o != nil {
			c.observer = o
		}
	}
}

// WithImplicitConcrete toggles implicit self-binding of unregistered
// pointer-to-struct contracts. It is on by default.
func WithImplicitConcrete(enabled bool) Option {
	return func(c *Container) { c.implicitConcrete = enabled }
}

// WithDuplicatePolicy sets what happens when a key is registered twice.
func WithDuplicatePolicy(p DuplicatePolicy) Option {
	return func(c *Container) { c.policy = p }
}

// FromConfig applies a ContainerConfig. The config is expected to have
// passed Validate.
func FromConfig(cfg config.ContainerConfig) Option {
	return func(c *Container) {
		if cfg.DuplicatePolicy == config.DuplicatePolicyReject {
			c.policy = DuplicateReject
		} else {
			c.policy = DuplicateOverwrite
		}
		c.implicitConcrete = cfg.ImplicitConcreteEnabled()
	}
}

// New creates an empty container.
func New(opts ...Option) *Container {
	c := &Container{
		id:               uuid.NewString(),
		table:            NewTable(),
		singletons:       newSingletons(),
		log:              logger.Nop(),
		observer:         nopObserver{},
		implicitConcrete: true,
		implicit:         make(map[reflect.Type]*Registration),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.log = c.log.WithComponent("di").WithFields(logger.Fields(logger.FieldContainerID, c.id))
	return c
}

// ID returns the container's unique identifier.
func (c *Container) ID() string { return c.id }

// Booted reports whether Boot has completed successfully.
func (c *Container) Booted() bool { return c.booted.Load() }

// Len returns the number of registrations.
func (c *Container) Len() int { return c.table.Len() }

// Boot has every registry write its contents, in order, then seals the
// table. Registration errors from all registries are returned together and
// leave the container unbooted with an empty table, so Boot may be retried.
func (c *Container) Boot(registries ...Registry) error {
	c.bootMu.Lock()
	defer c.bootMu.Unlock()

	if c.table.Sealed() {
		return apperrors.Sealed("container " + c.id)
	}

	start := time.Now()
	table := NewTable()
	var errs []error
	for _, reg := range registries {
		if reg == nil {
			continue
		}
		name := RegistryName(reg)
		rec := newRecorder(table, name, c.policy, c.log)
		err := writeContents(reg, rec)
		rec.close()
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if err := rec.Err(); err != nil {
			errs = append(errs, err)
		}
		c.log.Debug("registry recorded", logger.Fields(logger.FieldRegistry, name, logger.FieldCount, rec.Count()))
	}
	if len(errs) > 0 {
		err := errors.Join(errs...)
		c.log.Error("boot failed", logger.ErrorFields("boot", err))
		return err
	}

	table.seal()
	c.table = table
	c.booted.Store(true)
	c.log.Info("table sealed", logger.Fields(
		logger.FieldCount, c.table.Len(),
		logger.FieldDuration, time.Since(start).Milliseconds(),
	))
	return nil
}

func writeContents(reg Registry, rec *Recorder) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = apperrors.InvalidRegistration(rec.Registry(), fmt.Sprintf("WriteContentsTo panicked: %v", r))
		}
	}()
	reg.WriteContentsTo(rec)
	return nil
}

// RegistryName names a registry by its dynamic type.
func RegistryName(reg Registry) string {
	return fmt.Sprintf("%T", reg)
}

// Resolve returns the instance registered under contract and name.
func (c *Container) Resolve(contract Contract, name string) (any, error) {
	return c.ResolveContext(context.Background(), contract, name)
}

// ResolveContext is Resolve with a context handed to the observer.
func (c *Container) ResolveContext(ctx context.Context, contract Contract, name string) (any, error) {
	key := Key{Contract: contract, Name: name}
	if !c.Booted() {
		return nil, apperrors.NotBooted()
	}
	r, done := c.begin(ctx, key)
	v, err := r.resolveKey(key)
	c.finish(r, key, err, done)
	return v, err
}

// ResolveAll returns one instance per registration of contract, whatever its
// name, in registration order. A contract with no registrations yields an
// empty slice.
func (c *Container) ResolveAll(contract Contract) ([]any, error) {
	return c.ResolveAllContext(context.Background(), contract)
}

// ResolveAllContext is ResolveAll with a context handed to the observer.
func (c *Container) ResolveAllContext(ctx context.Context, contract Contract) ([]any, error) {
	key := Key{Contract: contract, Name: "*"}
	if !c.Booted() {
		return nil, apperrors.NotBooted()
	}
	r, done := c.begin(ctx, key)
	v, err := r.resolveAll(contract)
	c.finish(r, key, err, done)
	return v, err
}

// Construct builds an instance of t through constructor selection and
// injection without registering it, as a transient. Dependencies resolve
// from the container.
func (c *Container) Construct(ctx context.Context, t reflect.Type) (any, error) {
	if !c.Booted() {
		return nil, apperrors.NotBooted()
	}
	ctors, err := inspectConstructors(t)
	if err != nil {
		return nil, apperrors.InvalidRegistration(t.String(), err.Error())
	}
	key := Key{Contract: ContractFor(t)}
	reg := &Registration{key: key, kind: SourceType, impl: t, ctors: ctors, registry: "construct", seq: -1}

	r, done := c.begin(ctx, key)
	v, err := r.resolveRegistration(reg)
	c.finish(r, key, err, done)
	return v, err
}

func (c *Container) begin(ctx context.Context, key Key) (*resolution, func(error)) {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, done := c.observer.ObserveResolve(ctx, key)
	return &resolution{c: c, ctx: ctx}, done
}

func (c *Container) finish(r *resolution, key Key, err error, done func(error)) {
	done(err)
	if err != nil {
		c.log.WithContext(r.ctx).Debug("resolution failed", logger.MergeWithError(logger.Fields(
			logger.FieldContract, key.Contract.String(),
			logger.FieldName, key.Name,
		), err))
	}
}

// implicitRegistration returns the transient self-mapping of an
// unregistered concrete type, inspected once per type.
func (c *Container) implicitRegistration(t reflect.Type) (*Registration, error) {
	c.implicitMu.RLock()
	reg, ok := c.implicit[t]
	c.implicitMu.RUnlock()
	if ok {
		return reg, nil
	}

	ctors, err := inspectConstructors(t)
	if err != nil {
		return nil, apperrors.InvalidRegistration(t.String(), err.Error())
	}
	reg = &Registration{
		key:      Key{Contract: ContractFor(t)},
		kind:     SourceType,
		impl:     t,
		ctors:    ctors,
		registry: "implicit",
		seq:      -1,
	}

	c.implicitMu.Lock()
	if existing, ok := c.implicit[t]; ok {
		reg = existing
	} else {
		c.implicit[t] = reg
	}
	c.implicitMu.Unlock()
	return reg, nil
}

// Registrations returns a snapshot of the table in registration order.
func (c *Container) Registrations() []RegistrationInfo {
	regs := c.table.Registrations()
	out := make([]RegistrationInfo, len(regs))
	for i, reg := range regs {
		info := reg.Info()
		info.Cached = reg.lifetime == Singleton && c.singletons.cached(reg.key)
		out[i] = info
	}
	return out
}

// Stats summarises the table by lifetime and source kind.
type Stats struct {
	Registrations int            `json:"registrations"`
	ByLifetime    map[string]int `json:"by_lifetime"`
	ByKind        map[string]int `json:"by_kind"`
	Singletons    int            `json:"singletons_cached"`
}

// Stats returns registration counts and the number of cached singletons.
func (c *Container) Stats() Stats {
	s := Stats{ByLifetime: map[string]int{}, ByKind: map[string]int{}}
	for _, reg := range c.table.Registrations() {
		s.Registrations++
		s.ByLifetime[reg.lifetime.String()]++
		s.ByKind[reg.kind.String()]++
	}
	s.Singletons = c.singletons.len()
	return s
}

// Close releases cached singletons, closing those that implement io.Closer
// in reverse creation order. Later resolutions create them again.
func (c *Container) Close() error {
	err := c.singletons.close()
	if err != nil {
		c.log.Warn("singleton close failed", logger.ErrorFields("close", err))
	}
	return err
}
