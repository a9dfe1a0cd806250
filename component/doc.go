// Package component manages lifecycle-managed services.
//
// Registries contribute components to the container under the Component
// contract, usually as singletons. Registry.RegisterFrom resolves them all
// in registration order; StartAll and StopAll then drive their lifecycle.
//
//	di.Record(r, func(b *di.RegistrationsBuilder[di.TypeMappingRegistrations]) {
//	    b.WithOutputLifetime(di.Singleton).Build().
//	        RegisterByName(di.Map[component.Component, *Server](), "server")
//	})
package component
