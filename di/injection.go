package di

import (
	"fmt"
	"reflect"

	apperrors "github.com/kbukum/lambdacontainer/errors"
)

// MemberKind distinguishes property injection from method injection.
type MemberKind int

const (
	MemberProperty MemberKind = iota + 1
	MemberMethod
)

// Injectable is implemented by implementation types that declare members to
// be injected after construction. Properties are all set before any method
// runs; each point is applied once per constructed instance. Only instances
// built from a type mapping are injected, never factory or instance sources.
type Injectable interface {
	InjectionPoints() []InjectionPoint
}

// InjectionPoint describes one injectable member.
type InjectionPoint struct {
	name   string
	kind   MemberKind
	params []reflect.Type
	named  string
	apply  func(target any, args []reflect.Value) error
}

// Name returns the member name, used in error messages.
func (p InjectionPoint) Name() string { return p.name }

// Kind returns whether the point is a property or a method.
func (p InjectionPoint) Kind() MemberKind { return p.kind }

// Property declares an injectable property of T holding a D, resolved under
// the unnamed key of D.
//
//	di.Property("InjectedChild1", func(t *PropertyInjectionTestType, c IAchild) { t.InjectedChild1 = c })
func Property[T, D any](name string, set func(T, D)) InjectionPoint {
	return PropertyNamed(name, Unnamed, set)
}

// PropertyNamed is Property resolving D under a named key.
func PropertyNamed[T, D any](name, dependency string, set func(T, D)) InjectionPoint {
	return InjectionPoint{
		name:   name,
		kind:   MemberProperty,
		params: []reflect.Type{reflect.TypeOf((*D)(nil)).Elem()},
		named:  dependency,
		apply: func(target any, args []reflect.Value) error {
			t, ok := target.(T)
			if !ok {
				return fmt.Errorf("property %s declared for %v, applied to %T", name, reflect.TypeOf((*T)(nil)).Elem(), target)
			}
			d, _ := args[0].Interface().(D)
			set(t, d)
			return nil
		},
	}
}

// Method declares an injectable method. fn takes the instance of T first,
// followed by the dependencies to resolve, and may return an error:
//
//	di.Method[*MethodInjectionTestType]("Inject", (*MethodInjectionTestType).Inject)
//
// Method panics when fn has another shape; like Map, that is a programming
// error surfaced on first use.
func Method[T any](name string, fn any) InjectionPoint {
	target := reflect.TypeOf((*T)(nil)).Elem()
	v := reflect.ValueOf(fn)
	if !v.IsValid() || v.Kind() != reflect.Func {
		panic(fmt.Sprintf("di: injection method %s of %v is %T, not a function", name, target, fn))
	}
	t := v.Type()
	if t.NumIn() < 1 || t.In(0) != target || t.IsVariadic() {
		panic(fmt.Sprintf("di: injection method %s must take %v as its first parameter", name, target))
	}
	if t.NumOut() > 1 || (t.NumOut() == 1 && t.Out(0) != errorType) {
		panic(fmt.Sprintf("di: injection method %s may only return an error", name))
	}

	params := make([]reflect.Type, t.NumIn()-1)
	for i := range params {
		params[i] = t.In(i + 1)
	}

	return InjectionPoint{
		name:   name,
		kind:   MemberMethod,
		params: params,
		apply: func(instance any, args []reflect.Value) error {
			recv := reflect.ValueOf(instance)
			if !recv.IsValid() || recv.Type() != target {
				return fmt.Errorf("method %s declared for %v, applied to %T", name, target, instance)
			}
			out := v.Call(append([]reflect.Value{recv}, args...))
			if len(out) == 1 && !out[0].IsNil() {
				return out[0].Interface().(error)
			}
			return nil
		},
	}
}

// inject runs the property pass then the method pass on instance.
func (r *resolution) inject(key Key, instance any) error {
	injectable, ok := instance.(Injectable)
	if !ok {
		return nil
	}
	points, err := injectionPoints(injectable)
	if err != nil {
		return apperrors.InvalidRegistration(fmt.Sprintf("%T", instance), err.Error())
	}

	for _, kind := range []MemberKind{MemberProperty, MemberMethod} {
		for _, p := range points {
			if p.kind != kind {
				continue
			}
			if err := r.applyPoint(key, instance, p); err != nil {
				return err
			}
		}
	}
	return nil
}

func injectionPoints(injectable Injectable) (points []InjectionPoint, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("%v", rec)
		}
	}()
	return injectable.InjectionPoints(), nil
}

func (r *resolution) applyPoint(key Key, instance any, p InjectionPoint) error {
	args := make([]reflect.Value, len(p.params))
	for i, t := range p.params {
		var (
			v   reflect.Value
			err error
		)
		if p.named != Unnamed {
			v, err = r.resolveValue(Key{Contract: ContractFor(t), Name: p.named}, t)
		} else {
			v, err = r.resolveParam(t)
		}
		if err != nil {
			return err
		}
		args[i] = v
	}
	if err := p.apply(instance, args); err != nil {
		return r.constructionFailed(key, fmt.Errorf("inject %s: %w", p.name, err))
	}
	return nil
}
