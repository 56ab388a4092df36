// Package server provides the HTTP server: a Gin engine mounted on a
// ServeMux, served with HTTP/2 cleartext support and wrapped in a standard
// middleware stack.
//
// # Middleware
//
// Built-in middleware (server/middleware), applied at the handler level:
//
//   - Recovery: panic recovery with structured logging
//   - RequestID: X-Request-Id generation and propagation into the log context
//   - CORS: cross-origin resource sharing
//   - BodySizeLimit: request body size limits
//   - RequestLogger: request logging with status and duration
//
// # Endpoints
//
// Built-in endpoints (server/endpoint):
//
//   - /health: component health aggregation
//   - /ready, /alive: readiness and liveness probes
//   - /info, /version: build information
//   - /debug/runtime: heap and goroutine counters
package server
