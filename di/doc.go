// Package di provides a reflection-based dependency injection container.
//
// Registries contribute registrations once, during Boot. Each registration
// binds a contract type, optionally named, to a pre-built value, a factory or
// an implementation type, with a Transient or Singleton lifetime. After
// Boot the table is sealed and the container resolves object graphs
// concurrently: constructors are selected by the most resolvable
// parameters, slice parameters receive every registration of their element
// contract, and declared properties and methods are injected after
// construction.
//
// # Registration
//
//	type Registrations struct{}
//
//	func (Registrations) WriteContentsTo(r *di.Recorder) {
//	    di.Record(r, func(b *di.RegistrationsBuilder[di.TypeMappingRegistrations]) {
//	        b.Build().
//	            Register(di.Map[IAchild, *AChild]()).
//	            RegisterByName(di.Map[IClassVariant, *ClassVariant1](), "one")
//	        b.WithOutputLifetime(di.Singleton).Build().
//	            Register(di.Map[IAchild2, *AChild]())
//	    })
//	}
//
// # Resolution
//
//	c := di.New(di.WithLogger(log))
//	if err := c.Boot(Registrations{}); err != nil {
//	    return err
//	}
//	child := di.MustResolve[IAchild](c)
//	variants, err := di.ResolveAll[IClassVariant](c)
//
// # Errors
//
// Resolution fails with an *errors.AppError whose code is one of
// UNREGISTERED_CONTRACT, CYCLIC_DEPENDENCY, NO_RESOLVABLE_CONSTRUCTOR,
// CONSTRUCTION_FAILED or NOT_BOOTED. Use errors.HasCode to look past
// CONSTRUCTION_FAILED wrappers.
package di
