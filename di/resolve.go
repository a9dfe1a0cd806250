package di

import "fmt"

// Resolve resolves the unnamed registration of T with type safety.
// r is a *Container or the Resolver handed to a factory.
//
// Example:
//
//	child, err := di.Resolve[IAchild](container)
//	if err != nil {
//	    return fmt.Errorf("failed to get child: %w", err)
//	}
func Resolve[T any](r Resolver) (T, error) {
	return ResolveNamed[T](r, Unnamed)
}

// ResolveNamed resolves the registration of T under name.
func ResolveNamed[T any](r Resolver, name string) (T, error) {
	var zero T
	instance, err := r.Resolve(ContractOf[T](), name)
	if err != nil {
		return zero, err
	}
	if instance == nil {
		return zero, nil
	}
	result, ok := instance.(T)
	if !ok {
		return zero, fmt.Errorf("di: %s is %T, expected %v", KeyOf[T](name), instance, ContractOf[T]())
	}
	return result, nil
}

// ResolveAll resolves every registration of T, whatever its name, in
// registration order.
func ResolveAll[T any](r Resolver) ([]T, error) {
	instances, err := r.ResolveAll(ContractOf[T]())
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(instances))
	for _, instance := range instances {
		result, _ := instance.(T)
		out = append(out, result)
	}
	return out, nil
}

// MustResolve resolves T, panics on error.
// Use this at the application root where a missing dependency is fatal.
//
// Example:
//
//	variant := di.MustResolveNamed[IClassVariant](container, "one")
func MustResolve[T any](r Resolver) T {
	return MustResolveNamed[T](r, Unnamed)
}

// MustResolveNamed resolves T under name, panics on error.
func MustResolveNamed[T any](r Resolver, name string) T {
	result, err := ResolveNamed[T](r, name)
	if err != nil {
		panic(fmt.Sprintf("di: failed to resolve %s: %v", KeyOf[T](name), err))
	}
	return result
}

// TryResolve resolves T, returns zero value and false on any failure.
// Use this when a dependency is optional.
//
// Example:
//
//	if child, ok := di.TryResolve[IAchild2](container); ok {
//	    use(child)
//	}
func TryResolve[T any](r Resolver) (T, bool) {
	result, err := Resolve[T](r)
	if err != nil {
		return result, false
	}
	return result, true
}
