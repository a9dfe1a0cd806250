package di

import (
	"errors"
	"fmt"
	"sync/atomic"
)

// Types shared by the container tests. Every struct carries a field so that
// distinct allocations never share an address.

type IAchild interface{ childID() int }
type IAchild2 interface{ secondChild() bool }

type AChild struct{ id int }

func (a *AChild) childID() int      { return a.id }
func (a *AChild) secondChild() bool { return true }

type IAclass interface {
	ChildByInterface() IAchild
	ChildAutoInjected() *AChild
}

type AClass struct {
	childByInterface  IAchild
	childAutoInjected *AChild
}

func NewAClass(childByInterface IAchild, childAutoInjected *AChild) *AClass {
	return &AClass{childByInterface: childByInterface, childAutoInjected: childAutoInjected}
}

func (*AClass) Constructors() []any { return []any{NewAClass} }

func (a *AClass) ChildByInterface() IAchild   { return a.childByInterface }
func (a *AClass) ChildAutoInjected() *AChild { return a.childAutoInjected }

type PropertyInjectionTestType struct {
	InjectedChild1 IAchild
	InjectedChild2 IAchild2

	aClass          IAclass
	injections      int
	propsBeforeCall bool
}

func (*PropertyInjectionTestType) InjectionPoints() []InjectionPoint {
	return []InjectionPoint{
		Method[*PropertyInjectionTestType]("Inject", (*PropertyInjectionTestType).Inject),
		Property("InjectedChild1", func(p *PropertyInjectionTestType, c IAchild) { p.InjectedChild1 = c }),
		Property("InjectedChild2", func(p *PropertyInjectionTestType, c IAchild2) { p.InjectedChild2 = c }),
	}
}

func (p *PropertyInjectionTestType) Inject(aClass IAclass) {
	p.aClass = aClass
	p.injections++
	p.propsBeforeCall = p.InjectedChild1 != nil && p.InjectedChild2 != nil
}

func (p *PropertyInjectionTestType) InjectedClass() IAclass { return p.aClass }

type MethodInjectionTestType struct {
	v     *PropertyInjectionTestType
	calls int
}

func (*MethodInjectionTestType) InjectionPoints() []InjectionPoint {
	return []InjectionPoint{
		Method[*MethodInjectionTestType]("Inject", (*MethodInjectionTestType).Inject),
	}
}

func (m *MethodInjectionTestType) Inject(v *PropertyInjectionTestType) {
	m.v = v
	m.calls++
}

type IClassVariant interface{ variant() string }

type ClassVariant1 struct{ n int }
type ClassVariant2 struct{ n int }

func (*ClassVariant1) variant() string { return "one" }
func (*ClassVariant2) variant() string { return "two" }

type ConstructorInjectAllOfType struct {
	Variants []IClassVariant
}

func NewConstructorInjectAllOfType(variants []IClassVariant) *ConstructorInjectAllOfType {
	return &ConstructorInjectAllOfType{Variants: variants}
}

func (*ConstructorInjectAllOfType) Constructors() []any {
	return []any{NewConstructorInjectAllOfType}
}

// Registries.

type Provider1 struct{}

func (p Provider1) WriteContentsTo(r *Recorder) {
	Record(r, func(b *RegistrationsBuilder[FactoryRegistrations]) {
		name := RegistryName(p)
		b.Build().RegisterByName(Func(func(Resolver) (string, error) { return name, nil }), name)
	})
}

type Provider2 struct{}

func (p Provider2) WriteContentsTo(r *Recorder) {
	Record(r, func(b *RegistrationsBuilder[FactoryRegistrations]) {
		name := RegistryName(p)
		b.Build().RegisterByName(Func(func(Resolver) (string, error) { return name, nil }), name)
	})
}

type Provider3 struct{}

func (Provider3) WriteContentsTo(r *Recorder) {
	Record(r, func(b *RegistrationsBuilder[TypeMappingRegistrations]) {
		b.Build().
			Register(Map[IAchild, *AChild]()).
			Register(Map[IAclass, *AClass]()).
			RegisterByName(Map[IClassVariant, *ClassVariant1](), "one").
			RegisterByName(Map[IClassVariant, *ClassVariant2](), "two")
		b.WithOutputLifetime(Singleton).Build().
			Register(Map[IAchild2, *AChild]())
	})
}

var errShouldNotBeCalled = errors.New("should not be called: constructor takes an int")

// ProviderWhichShouldNotBeCreated can only be built from an int, which is
// never registered.
type ProviderWhichShouldNotBeCreated struct{ doh int }

func NewProviderWhichShouldNotBeCreated(doh int) *ProviderWhichShouldNotBeCreated {
	return &ProviderWhichShouldNotBeCreated{doh: doh}
}

func (*ProviderWhichShouldNotBeCreated) Constructors() []any {
	return []any{NewProviderWhichShouldNotBeCreated}
}

func (*ProviderWhichShouldNotBeCreated) WriteContentsTo(*Recorder) {
	panic(errShouldNotBeCalled)
}

// registryFunc adapts a function to Registry.
type registryFunc func(r *Recorder)

func (f registryFunc) WriteContentsTo(r *Recorder) { f(r) }

func factories(fn func(b *RegistrationsBuilder[FactoryRegistrations])) Registry {
	return registryFunc(func(r *Recorder) { Record(r, fn) })
}

func mappings(fn func(b *RegistrationsBuilder[TypeMappingRegistrations])) Registry {
	return registryFunc(func(r *Recorder) { Record(r, fn) })
}

// Cycle fixtures: Ping needs Pong needs Ping.

type Ping interface{ ping() }
type Pong interface{ pong() }

type pingImpl struct{ p Pong }
type pongImpl struct{ p Ping }

func (*pingImpl) ping() {}
func (*pongImpl) pong() {}

func (*pingImpl) Constructors() []any {
	return []any{func(p Pong) *pingImpl { return &pingImpl{p: p} }}
}

func (*pongImpl) Constructors() []any {
	return []any{func(p Ping) *pongImpl { return &pongImpl{p: p} }}
}

// Constructor selection fixtures.

type Greeter interface{ Greet() string }

type greeter struct {
	via   string
	child IAchild
}

func (g *greeter) Greet() string { return g.via }

func (*greeter) Constructors() []any {
	return []any{
		func() *greeter { return &greeter{via: "none"} },
		func(c IAchild) *greeter { return &greeter{via: "child", child: c} },
		func(c IAchild, n int) *greeter { return &greeter{via: "child+int"} },
		func(c IAchild) *greeter { return &greeter{via: "child-second"} },
	}
}

// Implicit fallback fixtures: wrapper's richer constructor needs an
// unregistered *engine, which itself only has an unresolvable constructor.

type engine struct{ cylinders int }

func (*engine) Constructors() []any {
	return []any{func(n int) *engine { return &engine{cylinders: n} }}
}

type wrapper struct {
	via    string
	engine *engine
}

func (*wrapper) Constructors() []any {
	return []any{
		func() *wrapper { return &wrapper{via: "bare"} },
		func(e *engine) *wrapper { return &wrapper{via: "engine", engine: e} },
	}
}

// gearbox has no declared constructors, so it is built from its zero value.
type gearbox struct{ gears int }

type car struct{ gearbox *gearbox }

func (*car) Constructors() []any {
	return []any{
		func() *car { return &car{} },
		func(g *gearbox) *car { return &car{gearbox: g} },
	}
}

type failing struct{ n int }

var errBoom = errors.New("boom")

func (*failing) Constructors() []any {
	return []any{func() (*failing, error) { return nil, errBoom }}
}

// counted counts constructions and closes.
type counted struct {
	n      int64
	closed *[]int64
}

var constructions atomic.Int64

func newCounted() *counted { return &counted{n: constructions.Add(1)} }

func (c *counted) Close() error {
	if c.closed != nil {
		*c.closed = append(*c.closed, c.n)
	}
	return nil
}

func (c *counted) String() string { return fmt.Sprintf("counted-%d", c.n) }
