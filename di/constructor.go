package di

import (
	"fmt"
	"reflect"
	"strings"
)

// Constructible is implemented by implementation types that declare their
// constructors explicitly. Each element must be a function returning the
// implementation type, optionally followed by an error:
//
//	func (*AClass) Constructors() []any { return []any{NewAClass} }
//
// The method is called on the zero value of the type, so pointer types must
// not dereference the receiver.
//
// Types that do not implement Constructible get one implicit zero-argument
// constructor when they are a struct or a pointer to a struct.
type Constructible interface {
	Constructors() []any
}

var (
	errorType    = reflect.TypeOf((*error)(nil)).Elem()
	resolverType = reflect.TypeOf((*Resolver)(nil)).Elem()
)

type constructor struct {
	index  int
	params []reflect.Type
	call   func(args []reflect.Value) (reflect.Value, error)
	sig    string
}

func inspectConstructors(impl reflect.Type) (ctors []constructor, err error) {
	decl, ok, err := declaredConstructors(impl)
	if err != nil {
		return nil, err
	}
	if !ok {
		return implicitConstructor(impl), nil
	}

	ctors = make([]constructor, 0, len(decl))
	for i, fn := range decl {
		ctor, err := newConstructor(impl, i, fn)
		if err != nil {
			return nil, err
		}
		ctors = append(ctors, ctor)
	}
	return ctors, nil
}

func declaredConstructors(impl reflect.Type) (decl []any, ok bool, err error) {
	if impl.Kind() == reflect.Interface {
		return nil, false, nil
	}
	c, isConstructible := reflect.Zero(impl).Interface().(Constructible)
	if !isConstructible {
		return nil, false, nil
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%v.Constructors panicked on the zero value: %v", impl, r)
		}
	}()
	return c.Constructors(), true, nil
}

func implicitConstructor(impl reflect.Type) []constructor {
	switch {
	case impl.Kind() == reflect.Pointer && impl.Elem().Kind() == reflect.Struct:
		return []constructor{{
			sig: "func() " + impl.String(),
			call: func([]reflect.Value) (reflect.Value, error) {
				return reflect.New(impl.Elem()), nil
			},
		}}
	case impl.Kind() == reflect.Struct:
		return []constructor{{
			sig: "func() " + impl.String(),
			call: func([]reflect.Value) (reflect.Value, error) {
				return reflect.Zero(impl), nil
			},
		}}
	default:
		return nil
	}
}

func newConstructor(impl reflect.Type, index int, fn any) (constructor, error) {
	v := reflect.ValueOf(fn)
	if !v.IsValid() || v.Kind() != reflect.Func {
		return constructor{}, fmt.Errorf("constructor %d of %v is %T, not a function", index, impl, fn)
	}
	t := v.Type()
	if t.IsVariadic() {
		return constructor{}, fmt.Errorf("constructor %d of %v is variadic", index, impl)
	}
	if t.NumOut() < 1 || t.NumOut() > 2 || (t.NumOut() == 2 && t.Out(1) != errorType) {
		return constructor{}, fmt.Errorf("constructor %d of %v must return the instance, optionally followed by an error", index, impl)
	}
	if !t.Out(0).AssignableTo(impl) {
		return constructor{}, fmt.Errorf("constructor %d of %v returns %v", index, impl, t.Out(0))
	}

	params := make([]reflect.Type, t.NumIn())
	for i := range params {
		params[i] = t.In(i)
	}

	return constructor{
		index:  index,
		params: params,
		sig:    t.String(),
		call: func(args []reflect.Value) (reflect.Value, error) {
			out := v.Call(args)
			if len(out) == 2 && !out[1].IsNil() {
				return reflect.Value{}, out[1].Interface().(error)
			}
			return out[0], nil
		},
	}, nil
}

// selectConstructor picks the eligible constructor with the most parameters.
// Ties go to the one declared first. The rejected list explains every
// ineligible constructor.
func selectConstructor(ctors []constructor, resolvable func(reflect.Type) bool) (*constructor, []string) {
	var best *constructor
	var rejected []string
	for i := range ctors {
		ctor := &ctors[i]
		var missing []string
		for _, p := range ctor.params {
			if !resolvable(p) {
				missing = append(missing, p.String())
			}
		}
		if len(missing) > 0 {
			rejected = append(rejected, fmt.Sprintf("%s: %s not resolvable", ctor.sig, strings.Join(missing, ", ")))
			continue
		}
		if best == nil || len(ctor.params) > len(best.params) {
			best = ctor
		}
	}
	return best, rejected
}
