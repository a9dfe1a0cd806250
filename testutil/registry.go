package testutil

import "github.com/kbukum/lambdacontainer/di"

// RegistryFunc adapts a function to di.Registry.
type RegistryFunc func(r *di.Recorder)

func (f RegistryFunc) WriteContentsTo(r *di.Recorder) { f(r) }

// Factories returns a registry recording factory registrations with fn.
func Factories(fn func(b *di.RegistrationsBuilder[di.FactoryRegistrations])) di.Registry {
	return RegistryFunc(func(r *di.Recorder) { di.Record(r, fn) })
}

// Mappings returns a registry recording type mappings with fn.
func Mappings(fn func(b *di.RegistrationsBuilder[di.TypeMappingRegistrations])) di.Registry {
	return RegistryFunc(func(r *di.Recorder) { di.Record(r, fn) })
}
