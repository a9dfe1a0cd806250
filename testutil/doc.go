// Package testutil helps tests build containers and run components.
//
//	func TestCheckout(t *testing.T) {
//	    h := testutil.T(t)
//	    c := h.Boot(testutil.Mappings(func(b *di.RegistrationsBuilder[di.TypeMappingRegistrations]) {
//	        b.Build().Register(di.Map[Clock, *fakeClock]())
//	    }))
//	    clock := testutil.Resolve[Clock](h, c)
//	    ...
//	}
//
// Containers booted through a helper are closed, and components it started
// are stopped, when the test ends.
package testutil
