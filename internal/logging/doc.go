// Package logging assembles the structured slog loggers used across the
// engine.
//
// It owns the console and JSON handlers, centralizes level and output
// plumbing, and defines the standardized attribute keys (camera, event_id,
// component) so every package emits log lines with the same shape. A no-op
// logger is provided for tests and wiring code that cannot fail.
package logging
