package event

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"vpack/internal/boundary"
	"vpack/internal/classify"
	"vpack/internal/converge"
	"vpack/internal/logging"
	"vpack/internal/qr"
	"vpack/internal/sizeprofile"
	"vpack/internal/trigger"
)

// ErrAlreadyOpen is returned when an opening transition arrives while an
// event is already open. The smoother only commits true state changes, so
// this indicates corrupted manager state rather than a reachable input.
var ErrAlreadyOpen = errors.New("event: opening transition while an event is open")

// Options configures a Manager. Zero values fall back to package defaults
// of the respective components.
type Options struct {
	Camera            string
	MarkerText        string
	SmoothingWindow   int
	SmoothingMajority int
	FallbackMaxWidth  int
	FallbackMaxHeight int
	MinDisplaceFrac   float64
	DefaultDisplacePx float64
	ConvergenceWindow int
	RecoveryFrames    int
}

// Manager drives the packing-event state machine for one camera stream.
// It must be fed observations in strict frame order and is not safe for
// concurrent use; independent cameras each own a Manager.
type Manager struct {
	opts       Options
	logger     *slog.Logger
	profiles   sizeprofile.Store
	smoother   *trigger.Smoother
	classifier *classify.Classifier
	selector   *converge.Selector

	open       *PackingEvent
	buffer     *boundary.Buffer
	hasPayload bool
}

// NewManager builds a lifecycle manager over an injected profile store.
func NewManager(opts Options, profiles sizeprofile.Store, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Manager{
		opts:       opts,
		logger:     logger.With(logging.String(logging.FieldCamera, opts.Camera)),
		profiles:   profiles,
		smoother:   trigger.NewSmoother(opts.SmoothingWindow, opts.SmoothingMajority),
		classifier: classify.New(profiles, opts.FallbackMaxWidth, opts.FallbackMaxHeight),
		selector:   converge.NewSelector(opts.ConvergenceWindow, opts.RecoveryFrames),
	}
}

// Open returns the currently open event, or nil while idle. The returned
// value is a copy.
func (m *Manager) Open() *PackingEvent {
	if m.open == nil {
		return nil
	}
	cp := *m.open
	return &cp
}

// Observe consumes one frame observation. When the observation closes an
// event it returns the finalized resolution; otherwise the resolution is
// nil.
func (m *Manager) Observe(obs qr.Observation) (*Resolution, error) {
	m.learnMarkerProfile(obs)

	reading := m.markerReading(obs)
	var resolution *Resolution
	if transition, ok := m.smoother.Observe(reading); ok {
		resolved, err := m.applyTransition(transition)
		if err != nil {
			return nil, err
		}
		resolution = resolved
	}

	if m.open != nil {
		m.observePayload(obs)
	}
	return resolution, nil
}

// Cancel discards the open event's boundary buffer and returns the manager
// to idle without committing anything. Previously resolved events are
// unaffected. Returns the abandoned event, still marked open, so callers
// can report it as explicitly unresolved.
func (m *Manager) Cancel() *PackingEvent {
	abandoned := m.Open()
	if m.buffer != nil {
		m.buffer.Discard()
	}
	m.open = nil
	m.buffer = nil
	m.hasPayload = false
	return abandoned
}

func (m *Manager) markerReading(obs qr.Observation) qr.TriggerReading {
	state := qr.TriggerOff
	if obs.Marker.Decoded() && obs.Marker.Text == m.opts.MarkerText {
		state = qr.TriggerOn
	}
	return qr.TriggerReading{FrameTime: obs.FrameTime, State: state}
}

// learnMarkerProfile self-calibrates the marker class from confirmed
// marker decodes that carry geometry.
func (m *Manager) learnMarkerProfile(obs qr.Observation) {
	if !obs.Marker.Decoded() || obs.Marker.Text != m.opts.MarkerText || !obs.Marker.HasBoundary() {
		return
	}
	box := obs.Marker.BoundingBox()
	if box.Empty() {
		return
	}
	if err := m.profiles.Update(qr.ClassMarker, float64(box.W), float64(box.H)); err != nil {
		m.logger.Warn("marker profile update failed", logging.Error(err))
	}
}

func (m *Manager) applyTransition(t trigger.Transition) (*Resolution, error) {
	switch t.To {
	case qr.TriggerOff:
		// Marker vanished: a parcel now covers it, the event opens.
		if m.open != nil {
			return nil, fmt.Errorf("%w: camera %s at %s", ErrAlreadyOpen, m.opts.Camera, t.At.Format(time.RFC3339))
		}
		m.openEvent(t.At)
		return nil, nil
	case qr.TriggerOn:
		// Marker visible again: the parcel left, the event closes.
		if m.open == nil {
			return nil, nil
		}
		return m.closeEvent(t.At), nil
	default:
		return nil, nil
	}
}

func (m *Manager) openEvent(at time.Time) {
	id := uuid.New().String()
	m.open = &PackingEvent{
		ID:        id,
		Camera:    m.opts.Camera,
		StartTime: at,
		Status:    StatusOpen,
	}
	m.buffer = boundary.NewBuffer(id, m.profiles, m.opts.MinDisplaceFrac, m.opts.DefaultDisplacePx)
	m.hasPayload = false
	m.logger.Info("event opened",
		logging.String(logging.FieldEventID, id),
		logging.Time("start", at),
	)
}

func (m *Manager) closeEvent(at time.Time) *Resolution {
	ev := *m.open
	end := at
	ev.EndTime = &end

	resolution := &Resolution{}
	if m.hasPayload {
		ev.Status = StatusCompleted
		m.logger.Info("event completed",
			logging.String(logging.FieldEventID, ev.ID),
			logging.String("code", ev.ResolvedCode),
			logging.Duration("duration", ev.Duration()),
		)
	} else {
		ev.Status = StatusEmpty
		selection := m.selector.Select(m.buffer.Candidates())
		for _, frame := range selection.Frames {
			resolution.RecoveryFrames = append(resolution.RecoveryFrames, RecoveryFrame{
				FrameTime: frame.Candidate.FrameTime,
				Box:       frame.Candidate.Box,
				Rank:      frame.Rank,
			})
		}
		m.logger.Info("event empty",
			logging.String(logging.FieldEventID, ev.ID),
			logging.Int("buffered", m.buffer.Len()),
			logging.Int("recovery_frames", len(resolution.RecoveryFrames)),
		)
	}

	resolution.Event = ev
	m.open = nil
	m.buffer = nil
	m.hasPayload = false
	return resolution
}

func (m *Manager) observePayload(obs qr.Observation) {
	if m.hasPayload {
		// First successful decode is canonical; buffering has stopped.
		return
	}

	if obs.Payload.Decoded() {
		m.latchPayload(obs)
		return
	}

	if !obs.Payload.HasBoundary() {
		return
	}
	box := obs.Payload.BoundingBox()
	if box.Empty() {
		return
	}
	result := m.classifier.Classify(box)
	if result.Fallback {
		m.logger.Warn("size classification used fallback threshold",
			logging.String(logging.FieldEventID, m.open.ID),
			logging.String("class", result.Class.String()),
			logging.String("box", box.String()),
		)
	}
	if result.Class != qr.ClassPayload {
		m.logger.Debug("boundary rejected as marker-class",
			logging.String(logging.FieldEventID, m.open.ID),
			logging.String("box", box.String()),
		)
		return
	}
	if m.buffer.Offer(obs.FrameTime, box) {
		m.logger.Debug("boundary buffered",
			logging.String(logging.FieldEventID, m.open.ID),
			logging.String("box", box.String()),
			logging.Int("buffered", m.buffer.Len()),
		)
	}
}

func (m *Manager) latchPayload(obs qr.Observation) {
	m.hasPayload = true
	m.open.ResolvedCode = obs.Payload.Text
	if obs.Payload.HasBoundary() {
		box := obs.Payload.BoundingBox()
		if !box.Empty() {
			m.open.ResolvedBox = &box
			if err := m.profiles.Update(qr.ClassPayload, float64(box.W), float64(box.H)); err != nil {
				m.logger.Warn("payload profile update failed", logging.Error(err))
			}
		}
	}
	m.buffer.Discard()
	m.logger.Info("payload latched",
		logging.String(logging.FieldEventID, m.open.ID),
		logging.String("code", m.open.ResolvedCode),
	)
}
