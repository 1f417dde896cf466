// Package sizeprofile tracks the learned bounding-box dimensions of each
// QR symbol class.
//
// Profiles are updated only from confirmed successful decodes, so they
// converge on the true physical scale of the marker and payload symbols at
// a given station. The Store interface is an injected dependency: tests and
// individual camera streams can supply isolated in-memory instances, while
// the daemon shares one SQLite-backed store so learned dimensions survive
// restarts. All implementations are safe for concurrent use because
// profile updates from one camera must not race reads from another.
package sizeprofile
