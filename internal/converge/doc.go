// Package converge selects the best recovery frames from an event that
// ended without a successful payload decode.
//
// A symbol that sat still for several consecutive frames is far more
// legible, to a human or to an external recovery model, than one captured
// mid-motion. The selector therefore scans contiguous windows of buffered
// boundaries, scores each by positional variance, and extracts evenly
// spaced representatives from the steadiest window. Selection is fully
// deterministic: identical input always yields identical output.
package converge
