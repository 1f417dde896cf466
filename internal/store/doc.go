// Package store persists finalized packing events and their recovery
// frames in SQLite.
//
// Event resolution is committed independently of recovery-frame export:
// a failed export never rolls back an event record. Frames carry their own
// export bookkeeping (state, attempt count, last error) so the exporter can
// retry and eventually abandon them without touching event state. The same
// database also holds learned size profiles so a station's calibration
// survives restarts.
//
// Schema changes bump schemaVersion in schema.go and add a migration step.
package store
