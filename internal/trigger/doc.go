// Package trigger debounces the raw per-frame marker signal into committed
// On/Off transitions.
//
// Single-frame decode misses from motion blur or partial occlusion are
// absorbed by a majority vote over a short rolling window. The smoother
// only reports a state when it differs from the last committed one, so
// each physical transition fires exactly once no matter how many
// consecutive frames confirm it.
package trigger
