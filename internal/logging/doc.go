// Package logging provides structured logging utilities built on log/slog.
//
// It centralizes attribute key names, offers helpers for common attributes
// (operations, errors, anonymized user identifiers), and configures the
// process-wide default logger.
//
// User emails are never logged directly; AnonymizeEmail produces a stable
// sha256-based hash so log entries can be correlated without exposing PII.
package logging
