// Package server exposes the flowpilot HTTP surface: the OAuth login
// routes, the session-gated calendar endpoints, health probes and the
// Prometheus metrics listener.
package server
