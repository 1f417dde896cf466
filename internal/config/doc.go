// Package config loads and validates the TOML configuration for the
// packing engine.
//
// Configuration covers filesystem paths, engine tuning parameters
// (smoothing, sampling, convergence, classifier fallback), notification
// and secondary-recovery settings, and one [[camera]] block per stream.
// Global settings are validated strictly; camera blocks are validated
// per-stream so one misconfigured camera never takes down the others.
package config
