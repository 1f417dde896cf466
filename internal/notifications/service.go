package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"vpack/internal/config"
)

const userAgent = "vpack/0.1.0"

// Service defines the notification surface exposed to engine components.
type Service interface {
	NotifyEventCompleted(ctx context.Context, camera, code string, duration time.Duration) error
	NotifyEventEmpty(ctx context.Context, camera string, recoveryFrames int) error
	NotifyStreamError(ctx context.Context, camera string, err error) error
	TestNotification(ctx context.Context) error
}

// NewService builds a notification service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &ntfyService{
		endpoint: topic,
		client:   &http.Client{Timeout: timeout},
		events:   cfg.Notifications.Events,
		recovery: cfg.Notifications.Recovery,
		errors:   cfg.Notifications.Errors,
	}
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint string
	client   *http.Client
	events   bool
	recovery bool
	errors   bool
}

func (n *ntfyService) NotifyEventCompleted(ctx context.Context, camera, code string, duration time.Duration) error {
	if !n.events {
		return nil
	}
	data := payload{
		title:   "vpack - Event Completed",
		message: fmt.Sprintf("Camera %s resolved %s in %s", camera, code, duration.Round(time.Second)),
		tags:    []string{"vpack", "event", "completed"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyEventEmpty(ctx context.Context, camera string, recoveryFrames int) error {
	if !n.recovery {
		return nil
	}
	message := fmt.Sprintf("Camera %s closed an event with no decode", camera)
	if recoveryFrames > 0 {
		message = fmt.Sprintf("%s; %d recovery frames queued", message, recoveryFrames)
	}
	data := payload{
		title:   "vpack - Empty Event",
		message: message,
		tags:    []string{"vpack", "event", "empty"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyStreamError(ctx context.Context, camera string, cause error) error {
	if !n.errors {
		return nil
	}
	data := payload{
		title:    "vpack - Stream Error",
		message:  fmt.Sprintf("Camera %s: %v", camera, cause),
		tags:     []string{"vpack", "error"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	data := payload{
		title:   "vpack - Test",
		message: "Notifications are configured correctly",
		tags:    []string{"vpack", "test"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) send(ctx context.Context, data payload) error {
	endpoint := n.endpoint
	if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
		endpoint = "https://ntfy.sh/" + endpoint
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(data.message))
	if err != nil {
		return fmt.Errorf("build notification request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	if data.title != "" {
		req.Header.Set("Title", data.title)
	}
	if len(data.tags) > 0 {
		req.Header.Set("Tags", strings.Join(data.tags, ","))
	}
	if data.priority != "" {
		req.Header.Set("Priority", data.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send notification: %w", err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("notification service returned %s", resp.Status)
	}
	return nil
}

type noopService struct{}

func (noopService) NotifyEventCompleted(context.Context, string, string, time.Duration) error {
	return nil
}

func (noopService) NotifyEventEmpty(context.Context, string, int) error { return nil }

func (noopService) NotifyStreamError(context.Context, string, error) error { return nil }

func (noopService) TestNotification(context.Context) error { return nil }
