package transport

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/dinerozz/behavior-monitor/pkg/behavior"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var at = time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)

type received struct {
	contentType string
	event       behavior.Event
}

func newCollector(t *testing.T, status int) (*httptest.Server, func() []received) {
	t.Helper()

	var (
		mu  sync.Mutex
		got []received
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)

		var e behavior.Event
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&e))

		mu.Lock()
		got = append(got, received{contentType: r.Header.Get("Content-Type"), event: e})
		mu.Unlock()

		w.WriteHeader(status)
	}))
	t.Cleanup(srv.Close)

	return srv, func() []received {
		mu.Lock()
		defer mu.Unlock()
		return append([]received(nil), got...)
	}
}

type stubBeacon struct {
	accept bool
	calls  []string
	bodies [][]byte
	types  []string
}

func (b *stubBeacon) SendBeacon(url, contentType string, body []byte) bool {
	b.calls = append(b.calls, url)
	b.types = append(b.types, contentType)
	b.bodies = append(b.bodies, body)
	return b.accept
}

func TestSendPostsJSON(t *testing.T) {
	srv, got := newCollector(t, http.StatusNoContent)
	tr := New()

	tr.Send(behavior.NewPV("u1", "p", at, "https://example.com/", "", 1), srv.URL)
	tr.Wait()

	events := got()
	require.Len(t, events, 1)
	assert.Equal(t, "application/json", events[0].contentType)
	assert.Equal(t, behavior.KindPV, events[0].event.Behavior)
	require.NotNil(t, events[0].event.PV)
	assert.Equal(t, 1, *events[0].event.PV)
}

func TestSendPrefersBeacon(t *testing.T) {
	srv, got := newCollector(t, http.StatusNoContent)
	beacon := &stubBeacon{accept: true}
	tr := New(WithBeacon(beacon))

	tr.Send(behavior.NewDwell("u1", "p", at, "https://example.com/", 1200), srv.URL)
	tr.Wait()

	assert.Empty(t, got())
	require.Len(t, beacon.calls, 1)
	assert.Equal(t, srv.URL, beacon.calls[0])
	assert.Equal(t, "application/json", beacon.types[0])

	var e behavior.Event
	require.NoError(t, json.Unmarshal(beacon.bodies[0], &e))
	require.NotNil(t, e.DwellTime)
	assert.Equal(t, int64(1200), *e.DwellTime)
}

func TestRejectedBeaconIsDropped(t *testing.T) {
	srv, got := newCollector(t, http.StatusNoContent)
	var logs bytes.Buffer
	beacon := &stubBeacon{accept: false}
	tr := New(WithBeacon(beacon), WithLogger(slog.New(slog.NewTextHandler(&logs, nil))))

	tr.Send(behavior.NewUV("u1", "p", at), srv.URL)
	tr.Wait()

	assert.Len(t, beacon.calls, 1)
	assert.Empty(t, got())
	assert.Contains(t, logs.String(), "beacon rejected")
}

func TestDeliveryFailuresAreSwallowed(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))

	srv, got := newCollector(t, http.StatusInternalServerError)
	tr := New(WithLogger(logger))
	tr.Send(behavior.NewUV("u1", "p", at), srv.URL)
	tr.Wait()
	assert.Len(t, got(), 1, "never retried")
	assert.Contains(t, logs.String(), "collector rejected event")

	unreachable := New(WithLogger(logger), WithHTTPClient(&http.Client{Timeout: 200 * time.Millisecond}))
	unreachable.Send(behavior.NewUV("u1", "p", at), "http://127.0.0.1:1/report")
	unreachable.Wait()
	assert.Contains(t, logs.String(), "Error sending behavior data")
}

func TestSendDoesNotBlockOnSlowCollector(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.Copy(io.Discard, r.Body)
		<-release
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	tr := New()
	done := make(chan struct{})
	go func() {
		tr.Send(behavior.NewUV("u1", "p", at), srv.URL)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Send blocked on delivery")
	}

	close(release)
	tr.Wait()
}
