package di

import (
	"context"
	"fmt"
	"reflect"

	apperrors "github.com/kbukum/lambdacontainer/errors"
	"github.com/kbukum/lambdacontainer/logger"
)

// Resolver resolves contracts. Both *Container and the Resolver handed to
// factories implement it; the latter belongs to the resolution in progress
// and must not be retained after the factory returns.
type Resolver interface {
	Resolve(contract Contract, name string) (any, error)
	ResolveAll(contract Contract) ([]any, error)
}

// resolution is the state of one top-level Resolve call: the chain of keys
// under construction, and the singleton slot it is blocked on, if any.
type resolution struct {
	c       *Container
	ctx     context.Context
	chain   []Key
	waiting *slot // guarded by c.singletons.mu
}

func (r *resolution) Resolve(contract Contract, name string) (any, error) {
	return r.resolveKey(Key{Contract: contract, Name: name})
}

func (r *resolution) ResolveAll(contract Contract) ([]any, error) {
	return r.resolveAll(contract)
}

func (r *resolution) resolveKey(key Key) (any, error) {
	reg, err := r.lookup(key)
	if err != nil {
		return nil, err
	}
	return r.resolveRegistration(reg)
}

func (r *resolution) lookup(key Key) (*Registration, error) {
	if reg, ok := r.c.table.Lookup(key); ok {
		return reg, nil
	}
	if key.Name == Unnamed && r.c.implicitConcrete && implicitCandidate(key.Contract.t) {
		return r.c.implicitRegistration(key.Contract.t)
	}
	return nil, apperrors.UnregisteredContract(key.Contract.String(), key.Name)
}

func (r *resolution) resolveAll(contract Contract) ([]any, error) {
	regs := r.c.table.All(contract)
	out := make([]any, 0, len(regs))
	for _, reg := range regs {
		v, err := r.resolveRegistration(reg)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func (r *resolution) resolveRegistration(reg *Registration) (any, error) {
	for _, k := range r.chain {
		if k == reg.key {
			return nil, r.cyclic([]string{reg.key.String()})
		}
	}
	if reg.lifetime == Singleton {
		return r.c.singletons.get(r, reg.key, func() (any, error) {
			v, err := r.build(reg)
			if err == nil {
				r.c.log.Debug("singleton created", logger.Fields(
					logger.FieldContract, reg.key.Contract.String(),
					logger.FieldName, reg.key.Name,
				))
			}
			return v, err
		})
	}
	return r.build(reg)
}

// build produces an instance of reg. The key stays on the chain until
// injection has finished, so cycles through injection points are caught.
func (r *resolution) build(reg *Registration) (v any, err error) {
	r.chain = append(r.chain, reg.key)
	defer func() {
		r.chain = r.chain[:len(r.chain)-1]
		if rec := recover(); rec != nil {
			v, err = nil, apperrors.ConstructionFailed(reg.key.String(), fmt.Errorf("panic: %v", rec))
		}
	}()

	switch reg.kind {
	case SourceInstance:
		return reg.value, nil
	case SourceFactory:
		v, err = reg.factory(r)
		if err != nil {
			return nil, r.constructionFailed(reg.key, err)
		}
		return v, nil
	case SourceType:
		v, err = r.construct(reg)
		if err != nil {
			return nil, err
		}
		if err := r.inject(reg.key, v); err != nil {
			return nil, err
		}
		return v, nil
	default:
		return nil, apperrors.InvalidRegistration(reg.key.String(), "unknown source kind")
	}
}

func (r *resolution) construct(reg *Registration) (any, error) {
	ctor, rejected := selectConstructor(reg.ctors, r.resolvable)
	if ctor == nil {
		if len(reg.ctors) == 0 {
			rejected = []string{"no constructors declared"}
		}
		return nil, apperrors.NoResolvableConstructor(reg.impl.String(), rejected)
	}

	args := make([]reflect.Value, len(ctor.params))
	for i, p := range ctor.params {
		v, err := r.resolveParam(p)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}

	out, err := ctor.call(args)
	if err != nil {
		return nil, r.constructionFailed(reg.key, err)
	}
	return out.Interface(), nil
}

// resolvable reports whether a constructor parameter of type t can be
// supplied: it is registered unnamed, it is a slice of a registered
// contract, or it is implicitly constructible through a constructor whose
// own parameters are resolvable.
func (r *resolution) resolvable(t reflect.Type) bool {
	return r.supplies(t, make(map[reflect.Type]bool))
}

// supplies is resolvable with the implicit types already being inspected.
// Revisiting one is assumed to succeed so that the cycle surfaces as
// CYCLIC_DEPENDENCY when it is built.
func (r *resolution) supplies(t reflect.Type, visiting map[reflect.Type]bool) bool {
	if t == resolverType {
		return true
	}
	if _, ok := r.c.table.Lookup(Key{Contract: ContractFor(t)}); ok {
		return true
	}
	if t.Kind() == reflect.Slice && r.c.table.Has(ContractFor(t.Elem())) {
		return true
	}
	if !r.c.implicitConcrete || !implicitCandidate(t) {
		return false
	}
	if visiting[t] {
		return true
	}
	reg, err := r.c.implicitRegistration(t)
	if err != nil {
		return false
	}
	visiting[t] = true
	defer delete(visiting, t)
	ctor, _ := selectConstructor(reg.ctors, func(p reflect.Type) bool { return r.supplies(p, visiting) })
	return ctor != nil
}

func (r *resolution) resolveParam(t reflect.Type) (reflect.Value, error) {
	if t == resolverType {
		return reflect.ValueOf(r), nil
	}
	key := Key{Contract: ContractFor(t)}
	if _, ok := r.c.table.Lookup(key); !ok && t.Kind() == reflect.Slice && r.c.table.Has(ContractFor(t.Elem())) {
		return r.resolveSlice(t)
	}
	return r.resolveValue(key, t)
}

func (r *resolution) resolveValue(key Key, t reflect.Type) (reflect.Value, error) {
	v, err := r.resolveKey(key)
	if err != nil {
		return reflect.Value{}, err
	}
	return valueOf(key, v, t)
}

func (r *resolution) resolveSlice(t reflect.Type) (reflect.Value, error) {
	items, err := r.resolveAll(ContractFor(t.Elem()))
	if err != nil {
		return reflect.Value{}, err
	}
	out := reflect.MakeSlice(t, 0, len(items))
	elemKey := Key{Contract: ContractFor(t.Elem())}
	for _, item := range items {
		v, err := valueOf(elemKey, item, t.Elem())
		if err != nil {
			return reflect.Value{}, err
		}
		out = reflect.Append(out, v)
	}
	return out, nil
}

func valueOf(key Key, v any, t reflect.Type) (reflect.Value, error) {
	if v == nil {
		return reflect.Zero(t), nil
	}
	rv := reflect.ValueOf(v)
	if !rv.Type().AssignableTo(t) {
		return reflect.Value{}, apperrors.InvalidRegistration(key.String(),
			fmt.Sprintf("produced %v, which is not assignable to %v", rv.Type(), t))
	}
	return rv, nil
}

// constructionFailed wraps err unless it already is one of the container's
// own errors, which propagate unchanged.
func (r *resolution) constructionFailed(key Key, err error) error {
	if _, ok := err.(*apperrors.AppError); ok {
		return err
	}
	return apperrors.ConstructionFailed(key.String(), err)
}

// cyclic reports a cycle closed by tail, prefixed with the current chain.
func (r *resolution) cyclic(tail []string) error {
	chain := make([]string, 0, len(r.chain)+len(tail))
	for _, k := range r.chain {
		chain = append(chain, k.String())
	}
	return apperrors.CyclicDependency(append(chain, tail...))
}

func implicitCandidate(t reflect.Type) bool {
	return t.Kind() == reflect.Pointer && t.Elem().Kind() == reflect.Struct
}
