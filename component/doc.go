// Package component defines lifecycle-managed parts of the application:
// the HTTP server, the transcription providers, and telemetry exporters.
//
// Components are registered with a Registry, started in registration order,
// stopped in reverse order, and polled for health by the /health endpoint.
//
// # Interfaces
//
//   - Component: Start/Stop/Health lifecycle
//   - Describable: startup summary descriptions
//   - RouteProvider: HTTP routes for the startup summary
package component
