// Package diagnostics exposes a container over HTTP.
//
// Routes, relative to the configured base path (default /di):
//
//	GET /registrations   registration table, optionally ?contract=
//	GET /stats           counts by lifetime and source kind
//	GET /health          container and component health
//	GET /version         build information
//
// The routes can be mounted on an existing gin router with Mount, or served
// on their own port by a Server, which Registry contributes to the container
// as a lifecycle component.
package diagnostics
