// Package event owns the packing-event lifecycle.
//
// A packing event opens when the smoothed marker signal commits an On to
// Off transition and closes on the next Off to On. While open, the first
// successful payload decode latches the tracking code and self-calibrates
// the payload size profile; undecoded payload boundaries are classified
// and smart-sampled into the event's boundary buffer. An event that closes
// without a decode runs convergence selection over its buffer to extract
// recovery frames for downstream secondary decoding.
//
// The Manager is the only stateful per-camera driver. It consumes one
// frame observation at a time in strict temporal order and never blocks;
// everything it resolves is handed to the caller as a value.
package event
