// Package middleware holds the echo middleware and the global error
// handler: request ids, request-scoped logging, New Relic tracing,
// Prometheus metrics, rate limiting, CORS, body limits and panic
// recovery.
package middleware
