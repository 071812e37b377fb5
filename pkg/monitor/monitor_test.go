package monitor_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/dinerozz/behavior-monitor/internal/browser"
	"github.com/dinerozz/behavior-monitor/pkg/behavior"
	"github.com/dinerozz/behavior-monitor/pkg/monitor"
	"github.com/dinerozz/behavior-monitor/pkg/store"
	"github.com/dinerozz/behavior-monitor/pkg/transport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSender struct {
	mu     sync.Mutex
	events []behavior.Event
}

func (s *recordingSender) Send(e behavior.Event, _ string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, e)
}

func (s *recordingSender) snapshot() []behavior.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]behavior.Event(nil), s.events...)
}

func countKind(events []behavior.Event, kind behavior.Kind) int {
	n := 0
	for _, e := range events {
		if e.Behavior == kind {
			n++
		}
	}
	return n
}

func TestInitializeValidatesOptions(t *testing.T) {
	page := browser.NewPage("https://app.test/", "")
	st := store.New(store.NewMemoryKV())
	sender := &recordingSender{}

	tests := []struct {
		name string
		opts monitor.Options
	}{
		{"missing project", monitor.Options{ReportURL: "/r"}},
		{"missing report url", monitor.Options{ProjectName: "p"}},
		{"negative retention", monitor.Options{ProjectName: "p", ReportURL: "/r", RetentionDays: -1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := monitor.Initialize(context.Background(), tt.opts, page, st, sender)
			assert.ErrorIs(t, err, monitor.ErrInvalidOptions)
			assert.Nil(t, m)
		})
	}
	assert.Empty(t, sender.snapshot())
}

func TestUniqueVisitOncePerDay(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 9, 9, 9, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }

	kv := store.NewMemoryKV()
	st := store.New(kv, store.WithClock(clock))
	sender := &recordingSender{}
	opts := monitor.Options{ProjectName: "p", ReportURL: "/r", Clock: clock}

	first, err := monitor.Initialize(ctx, opts, browser.NewPage("https://app.test/", ""), st, sender)
	require.NoError(t, err)
	defer first.Dispose()

	events := sender.snapshot()
	require.Len(t, events, 1)
	assert.Equal(t, behavior.KindUV, events[0].Behavior)
	assert.Equal(t, "p", events[0].ProjectName)
	assert.Equal(t, st.VisitorID(ctx), events[0].UserID)
	assert.True(t, st.IsUniqueVisitRecordedToday(ctx))

	second, err := monitor.Initialize(ctx, opts, browser.NewPage("https://app.test/other", ""), st, sender)
	require.NoError(t, err)
	defer second.Dispose()
	assert.Len(t, sender.snapshot(), 1, "no second uv the same day")

	now = now.Add(24 * time.Hour)
	third, err := monitor.Initialize(ctx, opts, browser.NewPage("https://app.test/", ""), st, sender)
	require.NoError(t, err)
	defer third.Dispose()
	assert.Equal(t, 2, countKind(sender.snapshot(), behavior.KindUV))
}

func TestLoadThenPushState(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 9, 9, 9, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }

	page := browser.NewPage("https://app.test/home", "")
	sender := &recordingSender{}
	m, err := monitor.Initialize(ctx, monitor.Options{ProjectName: "p", ReportURL: "/r", Clock: clock},
		page, store.New(store.NewMemoryKV(), store.WithClock(clock)), sender)
	require.NoError(t, err)
	defer m.Dispose()

	page.Load()
	now = now.Add(3 * time.Second)
	page.PushState("/settings")

	events := sender.snapshot()
	require.Len(t, events, 4)
	assert.Equal(t, behavior.KindUV, events[0].Behavior)

	assert.Equal(t, behavior.KindPV, events[1].Behavior)
	assert.Equal(t, 1, *events[1].PV)

	assert.Equal(t, behavior.KindDwell, events[2].Behavior)
	assert.Equal(t, "https://app.test/home", *events[2].PageURL)
	assert.Equal(t, int64(3000), *events[2].DwellTime)

	assert.Equal(t, behavior.KindPV, events[3].Behavior)
	assert.Equal(t, 2, *events[3].PV)
	assert.Equal(t, "https://app.test/home", *events[3].Referrer)
	assert.Equal(t, "https://app.test/settings", *events[3].PageURL)

	assert.Equal(t, "https://app.test/settings", m.Tracker().State().URL)
}

func TestInitializePrunesOldCounters(t *testing.T) {
	ctx := context.Background()
	clock := func() time.Time { return time.Date(2026, 9, 9, 9, 0, 0, 0, time.UTC) }
	kv := store.NewMemoryKV()
	require.NoError(t, kv.Set(ctx, store.PVCountKey+"_2026-01-01", "12"))
	require.NoError(t, kv.Set(ctx, store.PVCountKey+"_2026-09-08", "4"))

	m, err := monitor.Initialize(ctx, monitor.Options{ProjectName: "p", ReportURL: "/r", RetentionDays: 30, Clock: clock},
		browser.NewPage("https://app.test/", ""), store.New(kv, store.WithClock(clock)), &recordingSender{})
	require.NoError(t, err)
	defer m.Dispose()

	keys, err := kv.Keys(ctx, store.PVCountKey)
	require.NoError(t, err)
	assert.Equal(t, []string{store.PVCountKey + "_2026-09-08"}, keys)
}

func TestEndToEndOverHTTP(t *testing.T) {
	var (
		mu       sync.Mutex
		received []behavior.Event
	)
	collector := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, err := io.ReadAll(r.Body)
		assert.NoError(t, err)

		var e behavior.Event
		assert.NoError(t, json.Unmarshal(raw, &e))

		mu.Lock()
		received = append(received, e)
		mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	}))
	defer collector.Close()

	page := browser.NewPage("https://app.test/", "")
	sender := transport.New()
	m, err := monitor.Initialize(context.Background(), monitor.Options{ProjectName: "shop", ReportURL: collector.URL},
		page, store.New(store.NewMemoryKV()), sender)
	require.NoError(t, err)
	defer m.Dispose()

	page.Load()
	page.Click(browser.NewElement("button", map[string]string{"data-track-click": "checkout"}))
	sender.Wait()

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, received, 3)

	kinds := map[behavior.Kind]int{}
	for _, e := range received {
		kinds[e.Behavior]++
		assert.Equal(t, "shop", e.ProjectName)
	}
	assert.Equal(t, map[behavior.Kind]int{behavior.KindUV: 1, behavior.KindPV: 1, behavior.KindClick: 1}, kinds)
}
