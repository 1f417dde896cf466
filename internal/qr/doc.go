// Package qr defines the detection-level types shared by the packing
// engine: per-frame ROI observations, the marker/payload symbol classes,
// and raw trigger readings.
//
// The engine never runs a QR decoder itself. A frame source hands it one
// Observation per frame, each carrying the optional decoded text and
// optional corner geometry for the marker and payload regions of interest.
// Everything downstream (trigger smoothing, classification, buffering,
// convergence) consumes these values.
package qr
