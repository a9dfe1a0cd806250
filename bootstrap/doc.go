// Package bootstrap runs an application around a DI container.
//
// An App loads nothing by itself: it takes a validated config, a catalog of
// registries and lifecycle hooks. Boot constructs registry types from a small
// bootstrap container holding the config and logger, skips the ones that
// cannot be built, boots the application container and registers it, and
// every component it provides, with the component registry.
//
//	app, err := bootstrap.NewApp(&cfg,
//	    bootstrap.WithRegistries(orders.Registry{}),
//	    bootstrap.WithRegistryTypes(bootstrap.RegistryType[*billing.Registry]()),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := app.Run(ctx); err != nil {
//	    log.Fatal(err)
//	}
package bootstrap
