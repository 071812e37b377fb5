// Package transport delivers behavior events to the collector on a best-effort,
// at-most-once basis. Failures are logged and the event is dropped.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/dinerozz/behavior-monitor/pkg/behavior"
)

const contentTypeJSON = "application/json"

// Sender hands an event to the delivery layer and returns immediately.
type Sender interface {
	Send(event behavior.Event, destinationURL string)
}

// Beacon is an unload-safe, non-blocking delivery channel offered by the host.
// It reports whether the payload was queued.
type Beacon interface {
	SendBeacon(url, contentType string, body []byte) bool
}

type HTTPTransport struct {
	client   *http.Client
	beacon   Beacon
	logger   *slog.Logger
	inflight sync.WaitGroup
}

type Option func(*HTTPTransport)

func WithBeacon(beacon Beacon) Option {
	return func(t *HTTPTransport) {
		t.beacon = beacon
	}
}

func WithHTTPClient(client *http.Client) Option {
	return func(t *HTTPTransport) {
		t.client = client
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(t *HTTPTransport) {
		t.logger = logger
	}
}

func New(opts ...Option) *HTTPTransport {
	t := &HTTPTransport{
		client: &http.Client{Timeout: 10 * time.Second},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *HTTPTransport) Send(event behavior.Event, destinationURL string) {
	body, err := json.Marshal(event)
	if err != nil {
		t.logger.Error("transport: failed to encode event", slog.String("behavior", string(event.Behavior)), slog.String("error", err.Error()))
		return
	}

	if t.beacon != nil {
		if !t.beacon.SendBeacon(destinationURL, contentTypeJSON, body) {
			t.logger.Warn("transport: beacon rejected event", slog.String("behavior", string(event.Behavior)), slog.String("url", destinationURL))
		}
		return
	}

	t.inflight.Add(1)
	go func() {
		defer t.inflight.Done()
		t.post(destinationURL, event.Behavior, body)
	}()
}

func (t *HTTPTransport) post(destinationURL string, kind behavior.Kind, body []byte) {
	req, err := http.NewRequestWithContext(context.Background(), http.MethodPost, destinationURL, bytes.NewReader(body))
	if err != nil {
		t.logger.Error("transport: failed to build request", slog.String("url", destinationURL), slog.String("error", err.Error()))
		return
	}
	req.Header.Set("Content-Type", contentTypeJSON)

	resp, err := t.client.Do(req)
	if err != nil {
		t.logger.Error("Error sending behavior data", slog.String("behavior", string(kind)), slog.String("error", err.Error()))
		return
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= http.StatusMultipleChoices {
		t.logger.Warn("transport: collector rejected event", slog.String("behavior", string(kind)), slog.Int("status", resp.StatusCode))
	}
}

// Wait blocks until every POST started by Send has finished.
func (t *HTTPTransport) Wait() {
	t.inflight.Wait()
}
