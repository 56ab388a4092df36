package provider

import (
	"context"
	"time"

	apperrors "github.com/kbukum/whispersrt/errors"
	"github.com/kbukum/whispersrt/observability"
)

// WithMetrics counts every Execute call per provider and records its
// duration. Failures are also counted under their AppError code, so an
// expired OpenAI key shows up as INVALID_API_KEY rather than a bare error.
// A nil metrics value records nothing.
func WithMetrics[I, O any](metrics *observability.Metrics) Middleware[I, O] {
	return func(inner RequestResponse[I, O]) RequestResponse[I, O] {
		return &metered[I, O]{RequestResponse: inner, metrics: metrics}
	}
}

type metered[I, O any] struct {
	RequestResponse[I, O]
	metrics *observability.Metrics
}

func (m *metered[I, O]) Execute(ctx context.Context, input I) (O, error) {
	began := time.Now()
	out, err := m.RequestResponse.Execute(ctx, input)

	name, status := m.Name(), "success"
	if err != nil {
		status = "error"
		m.metrics.RecordError(ctx, string(apperrors.Wrap(err).Code), name)
	}
	m.metrics.RecordOperation(ctx, name, "execute", status, time.Since(began))
	return out, err
}
