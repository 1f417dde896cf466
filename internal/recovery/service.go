package recovery

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"vpack/internal/config"
	"vpack/internal/event"
)

const userAgent = "vpack/0.1.0"

// Service submits recovery material for externally assisted decoding.
type Service interface {
	// Submit sends one empty event's selected frames. It returns once the
	// batch is accepted or definitively rejected; retry scheduling for
	// rejected batches is the caller's concern.
	Submit(ctx context.Context, ev event.PackingEvent, frames []event.RecoveryFrame) error
}

// NewService builds a recovery client from configuration. When no endpoint
// is configured a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	endpoint := strings.TrimSpace(cfg.Recovery.Endpoint)
	if endpoint == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Recovery.Timeout) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &httpService{
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
	}
}

type batchFrame struct {
	FrameTime time.Time `json:"frame_time"`
	Box       [4]int    `json:"box"`
	Rank      int       `json:"rank"`
	Area      int       `json:"area"`
}

type batch struct {
	EventID   string       `json:"event_id"`
	Camera    string       `json:"camera"`
	StartTime time.Time    `json:"start_time"`
	EndTime   *time.Time   `json:"end_time,omitempty"`
	Frames    []batchFrame `json:"frames"`
}

type httpService struct {
	endpoint string
	client   *http.Client
}

func (s *httpService) Submit(ctx context.Context, ev event.PackingEvent, frames []event.RecoveryFrame) error {
	if len(frames) == 0 {
		return nil
	}

	payload := batch{
		EventID:   ev.ID,
		Camera:    ev.Camera,
		StartTime: ev.StartTime,
		EndTime:   ev.EndTime,
	}
	for _, frame := range frames {
		payload.Frames = append(payload.Frames, batchFrame{
			FrameTime: frame.FrameTime,
			Box:       [4]int{frame.Box.X, frame.Box.Y, frame.Box.W, frame.Box.H},
			Rank:      frame.Rank,
			Area:      frame.Area(),
		})
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal recovery batch: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build recovery request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("submit recovery batch: %w", err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("recovery service returned %s", resp.Status)
	}
	return nil
}

type noopService struct{}

func (noopService) Submit(context.Context, event.PackingEvent, []event.RecoveryFrame) error {
	return nil
}
