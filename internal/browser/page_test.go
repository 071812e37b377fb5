package browser

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/dinerozz/behavior-monitor/pkg/tracker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func recordSignals(p *Page, signals ...tracker.Signal) *[]tracker.Signal {
	var got []tracker.Signal
	for _, s := range signals {
		p.AddEventListener(s, func(e tracker.Event) {
			got = append(got, e.Signal)
		})
	}
	return &got
}

func TestPushAndReplaceStateDoNotFireSignals(t *testing.T) {
	p := NewPage("https://shop.test/", "")
	got := recordSignals(p, tracker.SignalPopState, tracker.SignalHashChange)

	p.PushState("/catalog?page=2")
	assert.Equal(t, "https://shop.test/catalog?page=2", p.Location())

	p.ReplaceState("item/7")
	assert.Equal(t, "https://shop.test/item/7", p.Location())

	assert.Empty(t, *got)
}

func TestBackAndForward(t *testing.T) {
	p := NewPage("https://shop.test/", "")
	got := recordSignals(p, tracker.SignalPopState)

	p.PushState("/a")
	p.PushState("/b")

	require.True(t, p.Back())
	assert.Equal(t, "https://shop.test/a", p.Location())
	require.True(t, p.Back())
	assert.Equal(t, "https://shop.test/", p.Location())
	assert.False(t, p.Back())

	require.True(t, p.Forward())
	assert.Equal(t, "https://shop.test/a", p.Location())

	p.PushState("/c")
	assert.False(t, p.Forward(), "push truncates forward entries")
	assert.Len(t, *got, 3)
}

func TestSetHash(t *testing.T) {
	p := NewPage("https://docs.test/guide", "")
	got := recordSignals(p, tracker.SignalHashChange)

	require.NoError(t, p.SetHash("#install"))
	assert.Equal(t, "https://docs.test/guide#install", p.Location())

	require.NoError(t, p.SetHash("install"))
	assert.Len(t, *got, 1, "same fragment does not fire")
}

func TestUnloadSignalOrder(t *testing.T) {
	p := NewPage("https://docs.test/", "")
	got := recordSignals(p, tracker.SignalBeforeUnload, tracker.SignalVisibilityChange, tracker.SignalPageHide)

	p.Unload()

	assert.Equal(t, []tracker.Signal{
		tracker.SignalBeforeUnload,
		tracker.SignalVisibilityChange,
		tracker.SignalPageHide,
	}, *got)
	assert.Equal(t, tracker.VisibilityHidden, p.VisibilityState())
}

func TestRemoveListener(t *testing.T) {
	p := NewPage("https://docs.test/", "")
	calls := 0
	remove := p.AddEventListener(tracker.SignalLoad, func(tracker.Event) { calls++ })
	p.AddEventListener(tracker.SignalLoad, func(tracker.Event) {})

	p.Load()
	remove()
	p.Load()

	assert.Equal(t, 1, calls)
	assert.Equal(t, 1, p.ListenerCount(tracker.SignalLoad))
}

func TestElementParentChain(t *testing.T) {
	body := NewElement("body", nil)
	button := body.Append(NewElement("button", map[string]string{"data-track-click": "buy"}))
	span := button.Append(NewElement("span", nil))

	assert.Equal(t, "SPAN", span.TagName())
	assert.Equal(t, "BUTTON", span.Parent().TagName())
	assert.Nil(t, body.Parent())

	action, ok := button.Attribute("data-track-click")
	assert.True(t, ok)
	assert.Equal(t, "buy", action)
}

func TestBeaconSenderPostsPlainText(t *testing.T) {
	var (
		mu          sync.Mutex
		contentType string
		body        string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		mu.Lock()
		contentType = r.Header.Get("Content-Type")
		body = string(raw)
		mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	b := NewBeaconSender(slog.Default())
	assert.True(t, b.SendBeacon(srv.URL, "application/json", []byte(`{"behavior":"uv"}`)))
	b.Wait()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, "text/plain;charset=UTF-8", contentType)
	assert.Equal(t, `{"behavior":"uv"}`, body)

	assert.False(t, b.SendBeacon(srv.URL, "application/json", make([]byte, maxBeaconPayload+1)))
}
