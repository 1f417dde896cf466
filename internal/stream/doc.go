// Package stream drives configured camera streams through the event
// lifecycle manager.
//
// Each camera is strictly sequential: one goroutine consumes its frame
// source in order and feeds the per-camera manager. Independent cameras
// run in parallel and share nothing but the injected size-profile store
// and the event store, both safe for concurrent use. A camera whose
// configuration is unusable is skipped and reported; the other streams
// continue. Cancellation is honored at every frame boundary and discards
// the open event's buffer without disturbing committed events.
package stream
