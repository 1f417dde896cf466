package stream

import (
	"context"
	"fmt"
	"io"
	"os"

	"vpack/internal/qr"
	"vpack/internal/scanlog"
)

// Source yields frame observations for one camera in strict temporal
// order. Next returns io.EOF when the stream is exhausted.
type Source interface {
	Next(ctx context.Context) (qr.Observation, error)
	Close() error
}

// ScanLogSource replays a scan log as a frame source.
type ScanLogSource struct {
	file       *os.File
	reader     *scanlog.Reader
	markerText string
}

// OpenScanLog opens a scan-log file for replay. markerText is the camera's
// configured marker string; On records are modeled as decodes of it.
func OpenScanLog(path, markerText string) (*ScanLogSource, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open scan log: %w", err)
	}
	return &ScanLogSource{
		file:       file,
		reader:     scanlog.NewReader(file),
		markerText: markerText,
	}, nil
}

// Next returns the next observation, io.EOF at end of log.
func (s *ScanLogSource) Next(ctx context.Context) (qr.Observation, error) {
	if err := ctx.Err(); err != nil {
		return qr.Observation{}, err
	}
	record, err := s.reader.Next()
	if err != nil {
		if err == io.EOF {
			return qr.Observation{}, io.EOF
		}
		return qr.Observation{}, err
	}
	return record.Observation(s.markerText), nil
}

// Close releases the underlying file.
func (s *ScanLogSource) Close() error {
	return s.file.Close()
}

// SliceSource serves a fixed observation sequence, used by tests and
// synthetic replays.
type SliceSource struct {
	observations []qr.Observation
	index        int
}

// NewSliceSource wraps an ordered observation slice.
func NewSliceSource(observations []qr.Observation) *SliceSource {
	return &SliceSource{observations: observations}
}

// Next returns the next observation, io.EOF when exhausted.
func (s *SliceSource) Next(ctx context.Context) (qr.Observation, error) {
	if err := ctx.Err(); err != nil {
		return qr.Observation{}, err
	}
	if s.index >= len(s.observations) {
		return qr.Observation{}, io.EOF
	}
	obs := s.observations[s.index]
	s.index++
	return obs, nil
}

// Close is a no-op for slice sources.
func (s *SliceSource) Close() error { return nil }
