package notifications_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"vpack/internal/notifications"
	"vpack/internal/testsupport"
)

type captured struct {
	body     string
	title    string
	tags     string
	priority string
}

func newCaptureServer(t *testing.T) (*httptest.Server, func() []captured) {
	t.Helper()
	var mu sync.Mutex
	var requests []captured
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		mu.Lock()
		requests = append(requests, captured{
			body:     string(body),
			title:    r.Header.Get("Title"),
			tags:     r.Header.Get("Tags"),
			priority: r.Header.Get("Priority"),
		})
		mu.Unlock()
		w.WriteHeader(http.StatusOK)
	}))
	return server, func() []captured {
		mu.Lock()
		defer mu.Unlock()
		return append([]captured(nil), requests...)
	}
}

func serviceFor(t *testing.T, topic string) notifications.Service {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	cfg.Notifications.NtfyTopic = topic
	return notifications.NewService(cfg)
}

func TestNotifyEventCompleted(t *testing.T) {
	server, take := newCaptureServer(t)
	defer server.Close()

	service := serviceFor(t, server.URL)
	err := service.NotifyEventCompleted(context.Background(), "cam-1", "SPXVN058693416243", 26*time.Second)
	if err != nil {
		t.Fatalf("NotifyEventCompleted: %v", err)
	}

	requests := take()
	if len(requests) != 1 {
		t.Fatalf("expected 1 request, got %d", len(requests))
	}
	got := requests[0]
	if !strings.Contains(got.body, "cam-1") || !strings.Contains(got.body, "SPXVN058693416243") {
		t.Fatalf("unexpected body: %q", got.body)
	}
	if got.title != "vpack - Event Completed" {
		t.Fatalf("unexpected title: %q", got.title)
	}
	if !strings.Contains(got.tags, "completed") {
		t.Fatalf("unexpected tags: %q", got.tags)
	}
}

func TestNotifyStreamErrorUsesHighPriority(t *testing.T) {
	server, take := newCaptureServer(t)
	defer server.Close()

	service := serviceFor(t, server.URL)
	err := service.NotifyStreamError(context.Background(), "cam-1", io.ErrUnexpectedEOF)
	if err != nil {
		t.Fatalf("NotifyStreamError: %v", err)
	}
	requests := take()
	if len(requests) != 1 || requests[0].priority != "high" {
		t.Fatalf("expected high priority error notification, got %+v", requests)
	}
}

func TestCategoryGatesSuppressNotifications(t *testing.T) {
	server, take := newCaptureServer(t)
	defer server.Close()

	cfg := testsupport.NewConfig(t)
	cfg.Notifications.NtfyTopic = server.URL
	cfg.Notifications.Events = false
	cfg.Notifications.Recovery = false
	service := notifications.NewService(cfg)

	if err := service.NotifyEventCompleted(context.Background(), "cam-1", "SPX42", time.Second); err != nil {
		t.Fatalf("NotifyEventCompleted: %v", err)
	}
	if err := service.NotifyEventEmpty(context.Background(), "cam-1", 3); err != nil {
		t.Fatalf("NotifyEventEmpty: %v", err)
	}
	if got := take(); len(got) != 0 {
		t.Fatalf("gated notifications were sent: %+v", got)
	}
}

func TestNoopServiceWithoutTopic(t *testing.T) {
	service := serviceFor(t, "")
	if err := service.NotifyEventCompleted(context.Background(), "cam-1", "SPX42", time.Second); err != nil {
		t.Fatalf("noop service errored: %v", err)
	}
	if err := service.TestNotification(context.Background()); err != nil {
		t.Fatalf("TestNotification: %v", err)
	}
}

func TestNotificationFailureSurfacesStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	defer server.Close()

	service := serviceFor(t, server.URL)
	err := service.TestNotification(context.Background())
	if err == nil || !strings.Contains(err.Error(), "403") {
		t.Fatalf("expected 403 error, got %v", err)
	}
}
