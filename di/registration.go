package di

import (
	"fmt"
	"reflect"
	"strings"
)

// Lifetime governs instance reuse.
type Lifetime int

const (
	Transient Lifetime = iota // new instance on every resolution
	Singleton                 // created once per key, cached for the container's lifetime
)

func (l Lifetime) String() string {
	switch l {
	case Transient:
		return "transient"
	case Singleton:
		return "singleton"
	default:
		return "unknown"
	}
}

// ParseLifetime parses "transient" or "singleton" (case-insensitive).
func ParseLifetime(s string) (Lifetime, error) {
	switch strings.ToLower(s) {
	case "transient", "":
		return Transient, nil
	case "singleton":
		return Singleton, nil
	default:
		return Transient, fmt.Errorf("unknown lifetime %q", s)
	}
}

// SourceKind describes how a registration produces instances.
type SourceKind int

const (
	SourceInstance SourceKind = iota + 1 // pre-built value
	SourceFactory                        // func(Resolver) (T, error)
	SourceType                           // implementation type built through constructor selection
)

func (k SourceKind) String() string {
	switch k {
	case SourceInstance:
		return "instance"
	case SourceFactory:
		return "factory"
	case SourceType:
		return "type"
	default:
		return "unknown"
	}
}

// Factory is a factory or pre-built instance source, bound to its contract.
type Factory struct {
	contract Contract
	kind     SourceKind
	fn       func(Resolver) (any, error)
	value    any
}

// Func returns a factory source for contract T. The Resolver handed to fn
// belongs to the resolution in progress, so nested lookups made through it
// take part in cycle detection.
func Func[T any](fn func(r Resolver) (T, error)) Factory {
	return Factory{
		contract: ContractOf[T](),
		kind:     SourceFactory,
		fn: func(r Resolver) (any, error) {
			return fn(r)
		},
	}
}

// Value returns a pre-built instance source for contract T.
func Value[T any](v T) Factory {
	return Factory{contract: ContractOf[T](), kind: SourceInstance, value: v}
}

// Contract returns the contract the factory produces.
func (f Factory) Contract() Contract { return f.contract }

// TypeMapping binds contract C to implementation I.
type TypeMapping struct {
	contract Contract
	impl     reflect.Type
	ctors    []constructor
}

// Map returns a type-mapping source from C to I. It panics when I is not
// assignable to C or when I declares malformed constructors; both are
// programming errors in the registry that calls it.
func Map[C, I any]() TypeMapping {
	contract := ContractOf[C]()
	impl := reflect.TypeOf((*I)(nil)).Elem()
	if !impl.AssignableTo(contract.t) {
		panic(fmt.Sprintf("di: %v is not assignable to %v", impl, contract))
	}
	ctors, err := inspectConstructors(impl)
	if err != nil {
		panic(fmt.Sprintf("di: %v", err))
	}
	return TypeMapping{contract: contract, impl: impl, ctors: ctors}
}

// Contract returns the mapped contract.
func (m TypeMapping) Contract() Contract { return m.contract }

// Implementation returns the implementation type.
func (m TypeMapping) Implementation() reflect.Type { return m.impl }

// Registration is an immutable binding of a key to a source and a lifetime.
type Registration struct {
	key      Key
	lifetime Lifetime
	kind     SourceKind
	impl     reflect.Type
	ctors    []constructor
	factory  func(Resolver) (any, error)
	value    any
	registry string
	seq      int
}

func newFactoryRegistration(f Factory, name string, lifetime Lifetime, registry string) *Registration {
	reg := &Registration{
		key:      Key{Contract: f.contract, Name: name},
		lifetime: lifetime,
		kind:     f.kind,
		factory:  f.fn,
		value:    f.value,
		registry: registry,
	}
	if f.kind == SourceInstance && f.value != nil {
		reg.impl = reflect.TypeOf(f.value)
	}
	return reg
}

func newTypeRegistration(m TypeMapping, name string, lifetime Lifetime, registry string) *Registration {
	return &Registration{
		key:      Key{Contract: m.contract, Name: name},
		lifetime: lifetime,
		kind:     SourceType,
		impl:     m.impl,
		ctors:    m.ctors,
		registry: registry,
	}
}

// Key returns the registration key.
func (r *Registration) Key() Key { return r.key }

// Lifetime returns the registration lifetime.
func (r *Registration) Lifetime() Lifetime { return r.lifetime }

// Kind returns the source kind.
func (r *Registration) Kind() SourceKind { return r.kind }

// Implementation returns the implementation type, or nil for factories.
func (r *Registration) Implementation() reflect.Type { return r.impl }

// Registry returns the name of the registry that contributed the registration.
func (r *Registration) Registry() string { return r.registry }

// Sequence returns the insertion position in the table.
func (r *Registration) Sequence() int { return r.seq }

// Info returns an introspection snapshot.
func (r *Registration) Info() RegistrationInfo {
	info := RegistrationInfo{
		Contract: r.key.Contract.String(),
		Name:     r.key.Name,
		Lifetime: r.lifetime.String(),
		Kind:     r.kind.String(),
		Registry: r.registry,
		Sequence: r.seq,
	}
	if r.impl != nil {
		info.Implementation = r.impl.String()
	}
	return info
}

// RegistrationInfo describes a registration for introspection.
type RegistrationInfo struct {
	Contract       string `json:"contract"`
	Name           string `json:"name,omitempty"`
	Lifetime       string `json:"lifetime"`
	Kind           string `json:"kind"`
	Implementation string `json:"implementation,omitempty"`
	Registry       string `json:"registry,omitempty"`
	Sequence       int    `json:"sequence"`
	Cached         bool   `json:"cached"`
}
