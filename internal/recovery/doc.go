// Package recovery dispatches the recovery frames of empty events to an
// external secondary-decode service.
//
// The engine's frame loop never waits on this: submissions run with their
// own timeout and bounded retries, and failed frames stay queued in the
// store's export bookkeeping. When no endpoint is configured a no-op
// implementation is returned so callers never branch on configuration.
package recovery
