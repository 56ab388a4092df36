package provider

import (
	"context"

	"github.com/kbukum/whispersrt/observability"
)

// WithTracing opens a span named "{spanPrefix}.{providerName}" around each
// Execute call.
func WithTracing[I, O any](spanPrefix string) Middleware[I, O] {
	return func(inner RequestResponse[I, O]) RequestResponse[I, O] {
		return &tracingRR[I, O]{inner: inner, spanPrefix: spanPrefix}
	}
}

type tracingRR[I, O any] struct {
	inner      RequestResponse[I, O]
	spanPrefix string
}

func (t *tracingRR[I, O]) Name() string                         { return t.inner.Name() }
func (t *tracingRR[I, O]) IsAvailable(ctx context.Context) bool { return t.inner.IsAvailable(ctx) }

func (t *tracingRR[I, O]) Execute(ctx context.Context, input I) (O, error) {
	ctx, span := observability.StartSpan(ctx, t.spanPrefix+"."+t.inner.Name())
	defer span.End()
	observability.SetSpanAttribute(ctx, observability.AttrProvider, t.inner.Name())

	output, err := t.inner.Execute(ctx, input)
	if err != nil {
		observability.SetSpanError(ctx, err)
	}
	return output, err
}
