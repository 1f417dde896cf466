// Package boundary buffers the undecoded payload boundaries observed
// during one open packing event.
//
// The buffer samples rather than hoards: after the first candidate, a new
// boundary is only kept when its centroid has moved a meaningful fraction
// of the expected payload width since the last accepted one. Genuine
// repositioning is captured while a stationary symbol contributes a single
// entry, which keeps the later convergence analysis small.
package boundary
