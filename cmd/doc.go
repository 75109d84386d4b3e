// Package cmd wires the flowpilot CLI: the serve command running the
// HTTP server and the init-db command provisioning the SQLite schema.
package cmd
