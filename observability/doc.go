// Package observability wires OpenTelemetry tracing and metrics over OTLP/HTTP.
//
// Both are opt-in. With observability.enabled false the global no-op
// providers stay in place and every helper here is safe to call.
//
//	shutdown, err := observability.Setup(ctx, cfg, observability.Resource{Name: "whispersrt"})
//	defer shutdown(ctx)
//
//	ctx, span := observability.StartSpan(ctx, "conversion.convert")
//	defer span.End()
package observability
