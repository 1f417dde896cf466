package scanlog

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"vpack/internal/geometry"
	"vpack/internal/qr"
)

const (
	annotationBBox     = "bbox"
	annotationBoundary = "boundary"
)

// ErrMalformedLine reports a line that does not match the grammar.
var ErrMalformedLine = errors.New("scanlog: malformed line")

// Record is one parsed scan-log line.
type Record struct {
	Second      int64
	State       qr.TriggerState
	PayloadText string
	// Box is valid only when HasBox is true.
	Box    geometry.Box
	HasBox bool
	// Decoded distinguishes bbox (payload decoded) from boundary
	// (geometry only) annotations.
	Decoded bool
}

// FrameTime converts the record's second counter to a UTC timestamp.
func (r Record) FrameTime() time.Time {
	return time.Unix(r.Second, 0).UTC()
}

// Observation converts a record into the engine's frame observation.
// markerText is the configured marker string; an On record is modeled as a
// successful marker decode of that string.
func (r Record) Observation(markerText string) qr.Observation {
	obs := qr.Observation{FrameTime: r.FrameTime()}
	if r.State == qr.TriggerOn {
		obs.Marker = qr.Detection{Text: markerText}
	}
	if r.HasBox {
		quad := boxQuad(r.Box)
		obs.Payload = qr.Detection{Corners: &quad}
		if r.Decoded {
			obs.Payload.Text = r.PayloadText
		}
	}
	return obs
}

func boxQuad(b geometry.Box) geometry.Quad {
	return geometry.Quad{
		{X: float64(b.X), Y: float64(b.Y)},
		{X: float64(b.X + b.W), Y: float64(b.Y)},
		{X: float64(b.X + b.W), Y: float64(b.Y + b.H)},
		{X: float64(b.X), Y: float64(b.Y + b.H)},
	}
}

// ParseLine parses one scan-log line. Blank lines and lines starting with
// '#' are reported via ok=false with a nil error.
func ParseLine(line string) (Record, bool, error) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" || strings.HasPrefix(trimmed, "#") {
		return Record{}, false, nil
	}

	fields := strings.SplitN(trimmed, ",", 4)
	if len(fields) < 2 {
		return Record{}, false, fmt.Errorf("%w: %q", ErrMalformedLine, line)
	}

	second, err := strconv.ParseInt(strings.TrimSpace(fields[0]), 10, 64)
	if err != nil {
		return Record{}, false, fmt.Errorf("%w: bad second in %q", ErrMalformedLine, line)
	}

	state, ok := parseState(strings.TrimSpace(fields[1]))
	if !ok {
		return Record{}, false, fmt.Errorf("%w: bad state in %q", ErrMalformedLine, line)
	}

	record := Record{Second: second, State: state}
	if len(fields) > 2 {
		record.PayloadText = strings.TrimSpace(fields[2])
	}
	if len(fields) > 3 {
		annotation := strings.TrimSpace(fields[3])
		if annotation != "" {
			box, decoded, err := parseAnnotation(annotation)
			if err != nil {
				return Record{}, false, fmt.Errorf("%w: %v in %q", ErrMalformedLine, err, line)
			}
			record.Box = box
			record.HasBox = true
			record.Decoded = decoded
		}
	}
	if record.PayloadText != "" {
		record.Decoded = true
	}
	return record, true, nil
}

func parseState(value string) (qr.TriggerState, bool) {
	switch value {
	case "On":
		return qr.TriggerOn, true
	case "Off":
		return qr.TriggerOff, true
	case "Unknown":
		return qr.TriggerUnknown, true
	default:
		return qr.TriggerUnknown, false
	}
}

func parseAnnotation(value string) (geometry.Box, bool, error) {
	var kind string
	switch {
	case strings.HasPrefix(value, annotationBBox+":"):
		kind = annotationBBox
	case strings.HasPrefix(value, annotationBoundary+":"):
		kind = annotationBoundary
	default:
		return geometry.Box{}, false, fmt.Errorf("unknown annotation %q", value)
	}

	body := strings.TrimPrefix(value, kind+":")
	body = strings.TrimPrefix(body, "[")
	body = strings.TrimSuffix(body, "]")
	parts := strings.Split(body, ",")
	if len(parts) != 4 {
		return geometry.Box{}, false, fmt.Errorf("annotation needs four components, got %d", len(parts))
	}
	nums := make([]int, 4)
	for i, part := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return geometry.Box{}, false, fmt.Errorf("bad annotation component %q", part)
		}
		nums[i] = n
	}
	box := geometry.Box{X: nums[0], Y: nums[1], W: nums[2], H: nums[3]}
	return box, kind == annotationBBox, nil
}

// FormatRecord renders a record back into the line grammar, omitting
// trailing empty fields.
func FormatRecord(r Record) string {
	var sb strings.Builder
	sb.WriteString(strconv.FormatInt(r.Second, 10))
	sb.WriteByte(',')
	sb.WriteString(r.State.String())

	annotation := ""
	if r.HasBox {
		kind := annotationBoundary
		if r.Decoded {
			kind = annotationBBox
		}
		annotation = kind + ":" + r.Box.String()
	}

	if r.PayloadText == "" && annotation == "" {
		return sb.String()
	}
	sb.WriteByte(',')
	sb.WriteString(r.PayloadText)
	if annotation != "" {
		sb.WriteByte(',')
		sb.WriteString(annotation)
	}
	return sb.String()
}

// Reader streams records from a scan log.
type Reader struct {
	scanner *bufio.Scanner
	line    int
}

// NewReader wraps an io.Reader producing scan-log lines.
func NewReader(r io.Reader) *Reader {
	return &Reader{scanner: bufio.NewScanner(r)}
}

// Next returns the next record, io.EOF at end of input, or a wrapped
// ErrMalformedLine with the offending line number.
func (r *Reader) Next() (Record, error) {
	for r.scanner.Scan() {
		r.line++
		record, ok, err := ParseLine(r.scanner.Text())
		if err != nil {
			return Record{}, fmt.Errorf("line %d: %w", r.line, err)
		}
		if !ok {
			continue
		}
		return record, nil
	}
	if err := r.scanner.Err(); err != nil {
		return Record{}, err
	}
	return Record{}, io.EOF
}

// Writer emits records in the line grammar.
type Writer struct {
	w io.Writer
}

// NewWriter wraps an io.Writer.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// Write appends one record line.
func (w *Writer) Write(r Record) error {
	_, err := io.WriteString(w.w, FormatRecord(r)+"\n")
	return err
}
