package browser

import (
	"bytes"
	"log/slog"
	"net/http"
	"sync"
	"time"
)

const maxBeaconPayload = 64 << 10

// BeaconSender mimics navigator.sendBeacon with a string payload: the request
// goes out as text/plain whatever the caller asked for, and the result is
// never observed.
type BeaconSender struct {
	client   *http.Client
	logger   *slog.Logger
	inflight sync.WaitGroup
}

func NewBeaconSender(logger *slog.Logger) *BeaconSender {
	return &BeaconSender{
		client: &http.Client{Timeout: 5 * time.Second},
		logger: logger,
	}
}

func (b *BeaconSender) SendBeacon(url, _ string, body []byte) bool {
	if len(body) > maxBeaconPayload {
		return false
	}

	payload := append([]byte(nil), body...)
	b.inflight.Add(1)
	go func() {
		defer b.inflight.Done()

		resp, err := b.client.Post(url, "text/plain;charset=UTF-8", bytes.NewReader(payload))
		if err != nil {
			b.logger.Debug("beacon: delivery failed", slog.String("url", url), slog.String("error", err.Error()))
			return
		}
		resp.Body.Close()
	}()
	return true
}

func (b *BeaconSender) Wait() {
	b.inflight.Wait()
}
