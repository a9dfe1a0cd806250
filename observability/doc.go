// Package observability wires the container to OpenTelemetry.
//
// InitTracer and InitMeter install global OTLP/HTTP providers. A
// ResolutionObserver, passed to di.WithObserver, opens a span per
// top-level resolution and records counters and latency per contract:
//
//	metrics, err := observability.NewResolutionMetrics(observability.Meter())
//	obs := observability.NewResolutionObserver(
//	    observability.WithTracer(observability.Tracer()),
//	    observability.WithMetrics(metrics),
//	)
//	c := di.New(di.WithObserver(obs))
//
// ContainerHealth reports container health for health endpoints.
package observability
