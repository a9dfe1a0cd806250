package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/lambdacontainer/di"
	apperrors "github.com/kbukum/lambdacontainer/errors"
)

// ResolutionObserver implements di.Observer with a span and metrics per
// top-level resolution. Either part may be left out.
type ResolutionObserver struct {
	tracer  trace.Tracer
	metrics *ResolutionMetrics
}

// ObserverOption configures a ResolutionObserver.
type ObserverOption func(*ResolutionObserver)

// WithTracer enables spans on tracer.
func WithTracer(t trace.Tracer) ObserverOption {
	return func(o *ResolutionObserver) { o.tracer = t }
}

// WithMetrics enables metric recording.
func WithMetrics(m *ResolutionMetrics) ObserverOption {
	return func(o *ResolutionObserver) { o.metrics = m }
}

// NewResolutionObserver creates an observer.
func NewResolutionObserver(opts ...ObserverOption) *ResolutionObserver {
	o := &ResolutionObserver{}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

var _ di.Observer = (*ResolutionObserver)(nil)

// ObserveResolve starts a span and the active count for key.
func (o *ResolutionObserver) ObserveResolve(ctx context.Context, key di.Key) (context.Context, func(error)) {
	start := time.Now()
	contract := key.Contract.String()

	var span trace.Span
	if o.tracer != nil {
		ctx, span = o.tracer.Start(ctx, SpanResolve, trace.WithAttributes(
			attribute.String(AttrContract, contract),
			attribute.String(AttrName, key.Name),
		))
	}
	if o.metrics != nil {
		o.metrics.RecordStart(ctx)
	}

	return ctx, func(err error) {
		code := ""
		if err != nil {
			code = string(apperrors.CodeOf(err))
			if code == "" {
				code = string(apperrors.ErrCodeInternal)
			}
		}
		if span != nil {
			if err != nil {
				span.RecordError(err)
				span.SetStatus(codes.Error, err.Error())
				span.SetAttributes(attribute.String(AttrErrorCode, code))
			}
			span.End()
		}
		if o.metrics != nil {
			o.metrics.RecordEnd(ctx, contract, code, time.Since(start))
		}
	}
}
