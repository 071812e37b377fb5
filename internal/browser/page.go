// Package browser is an in-memory model of a host page: location, referrer,
// visibility, lifecycle listeners, a session history stack and a DOM tree.
// It drives the tracker in tests and in the simulate command.
package browser

import (
	"fmt"
	"net/url"
	"strings"
	"sync"

	"github.com/dinerozz/behavior-monitor/pkg/tracker"
)

type listener struct {
	id int
	fn func(tracker.Event)
}

type Page struct {
	mu         sync.Mutex
	location   string
	referrer   string
	visibility tracker.Visibility
	listeners  map[tracker.Signal][]listener
	nextID     int
	history    tracker.History
	entries    []string
	index      int
}

func NewPage(location, referrer string) *Page {
	p := &Page{
		location:   location,
		referrer:   referrer,
		visibility: tracker.VisibilityVisible,
		listeners:  make(map[tracker.Signal][]listener),
		entries:    []string{location},
	}
	p.history = &nativeHistory{page: p}
	return p
}

func (p *Page) Location() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.location
}

func (p *Page) Referrer() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.referrer
}

func (p *Page) VisibilityState() tracker.Visibility {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.visibility
}

func (p *Page) AddEventListener(signal tracker.Signal, fn func(tracker.Event)) func() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.nextID++
	id := p.nextID
	p.listeners[signal] = append(p.listeners[signal], listener{id: id, fn: fn})

	return func() {
		p.mu.Lock()
		defer p.mu.Unlock()

		current := p.listeners[signal]
		for i, l := range current {
			if l.id == id {
				p.listeners[signal] = append(current[:i:i], current[i+1:]...)
				return
			}
		}
	}
}

// ListenerCount reports how many listeners are attached for signal.
func (p *Page) ListenerCount(signal tracker.Signal) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.listeners[signal])
}

func (p *Page) History() tracker.History {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.history
}

func (p *Page) SetHistory(h tracker.History) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.history = h
}

// dispatch calls listeners outside the page lock so they may query the page.
func (p *Page) dispatch(signal tracker.Signal, target tracker.Element) {
	p.mu.Lock()
	ls := append([]listener(nil), p.listeners[signal]...)
	p.mu.Unlock()

	for _, l := range ls {
		l.fn(tracker.Event{Signal: signal, Target: target})
	}
}

func (p *Page) Load() {
	p.dispatch(tracker.SignalLoad, nil)
}

func (p *Page) Click(target *Element) {
	if target == nil {
		p.dispatch(tracker.SignalClick, nil)
		return
	}
	p.dispatch(tracker.SignalClick, target)
}

// PushState navigates through whatever History is currently installed.
func (p *Page) PushState(rawURL string) {
	p.History().PushState(nil, "", rawURL)
}

func (p *Page) ReplaceState(rawURL string) {
	p.History().ReplaceState(nil, "", rawURL)
}

// SetHash changes the fragment, adds a history entry and fires hashchange.
func (p *Page) SetHash(fragment string) error {
	p.mu.Lock()
	u, err := url.Parse(p.location)
	if err != nil {
		p.mu.Unlock()
		return fmt.Errorf("invalid location %q: %w", p.location, err)
	}
	u.Fragment = strings.TrimPrefix(fragment, "#")
	next := u.String()
	if next == p.location {
		p.mu.Unlock()
		return nil
	}
	p.pushEntryLocked(next)
	p.mu.Unlock()

	p.dispatch(tracker.SignalHashChange, nil)
	return nil
}

// Back moves one entry back in session history and fires popstate.
func (p *Page) Back() bool {
	return p.traverse(-1)
}

func (p *Page) Forward() bool {
	return p.traverse(1)
}

func (p *Page) traverse(delta int) bool {
	p.mu.Lock()
	next := p.index + delta
	if next < 0 || next >= len(p.entries) {
		p.mu.Unlock()
		return false
	}
	p.index = next
	p.location = p.entries[next]
	p.mu.Unlock()

	p.dispatch(tracker.SignalPopState, nil)
	return true
}

func (p *Page) Hide() {
	p.setVisibility(tracker.VisibilityHidden)
}

func (p *Page) Show() {
	p.setVisibility(tracker.VisibilityVisible)
}

func (p *Page) setVisibility(v tracker.Visibility) {
	p.mu.Lock()
	changed := p.visibility != v
	p.visibility = v
	p.mu.Unlock()

	if changed {
		p.dispatch(tracker.SignalVisibilityChange, nil)
	}
}

// Unload fires the signals a browser emits when a tab closes, in browser order.
func (p *Page) Unload() {
	p.dispatch(tracker.SignalBeforeUnload, nil)
	p.Hide()
	p.dispatch(tracker.SignalPageHide, nil)
}

func (p *Page) pushEntryLocked(location string) {
	p.entries = append(p.entries[:p.index+1], location)
	p.index = len(p.entries) - 1
	p.location = location
}

func (p *Page) resolve(rawURL string) (string, error) {
	base, err := url.Parse(p.location)
	if err != nil {
		return "", err
	}
	ref, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	return base.ResolveReference(ref).String(), nil
}

// nativeHistory changes the location without firing any signal, as browsers do
// for pushState and replaceState.
type nativeHistory struct {
	page *Page
}

func (h *nativeHistory) PushState(_ any, _ string, rawURL string) {
	h.page.mu.Lock()
	defer h.page.mu.Unlock()

	next := h.page.location
	if rawURL != "" {
		resolved, err := h.page.resolve(rawURL)
		if err != nil {
			panic(fmt.Sprintf("pushState: %v", err))
		}
		next = resolved
	}
	h.page.pushEntryLocked(next)
}

func (h *nativeHistory) ReplaceState(_ any, _ string, rawURL string) {
	h.page.mu.Lock()
	defer h.page.mu.Unlock()

	if rawURL == "" {
		return
	}
	resolved, err := h.page.resolve(rawURL)
	if err != nil {
		panic(fmt.Sprintf("replaceState: %v", err))
	}
	h.page.entries[h.page.index] = resolved
	h.page.location = resolved
}
