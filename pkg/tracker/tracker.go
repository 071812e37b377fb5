// Package tracker turns host page lifecycle signals into pv, click and dwell
// behavior events.
//
// Several signals usually fire for a single user action (beforeunload, pagehide
// and visibilitychange on tab close; popstate and hashchange on back). The
// tracker keeps one navigation record per visited page or route and reports
// dwell for it at most once, so overlapping signals never double-report.
package tracker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dinerozz/behavior-monitor/pkg/behavior"
	"github.com/dinerozz/behavior-monitor/pkg/transport"
)

const DefaultClickAttribute = "data-track-click"

// Identity is the slice of the identity & counter store the tracker needs.
type Identity interface {
	VisitorID(ctx context.Context) string
	IncrementDailyPageViews(ctx context.Context) int
}

type Config struct {
	ProjectName    string
	ReportURL      string
	ClickAttribute string
}

type Tracker struct {
	cfg      Config
	env      Environment
	identity Identity
	sender   transport.Sender
	now      func() time.Time
	logger   *slog.Logger

	mu       sync.Mutex
	nav      navigation
	loaded   bool
	started  bool
	removers []func()
	history  *NavigationObserver
}

type Option func(*Tracker)

func WithClock(now func() time.Time) Option {
	return func(t *Tracker) {
		t.now = now
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(t *Tracker) {
		t.logger = logger
	}
}

// New creates a tracker whose first navigation starts now at the current location.
// Nothing is observed until Start is called.
func New(cfg Config, env Environment, identity Identity, sender transport.Sender, opts ...Option) *Tracker {
	if cfg.ClickAttribute == "" {
		cfg.ClickAttribute = DefaultClickAttribute
	}

	t := &Tracker{
		cfg:      cfg,
		env:      env,
		identity: identity,
		sender:   sender,
		now:      time.Now,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(t)
	}

	t.nav = newNavigation(t.now(), env.Location())
	return t
}

// Start subscribes to the host page. Calling it again has no effect.
func (t *Tracker) Start() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.started {
		return
	}
	t.started = true

	dwell := func(Event) { t.ReportDwellTime() }
	routeChange := func(Event) { t.HandleRouteChange() }

	t.listen(SignalClick, t.handleClick)
	t.listen(SignalLoad, t.handleLoad)
	t.listen(SignalBeforeUnload, dwell)
	t.listen(SignalPageHide, dwell)
	t.listen(SignalVisibilityChange, func(Event) {
		if t.env.VisibilityState() == VisibilityHidden {
			t.ReportDwellTime()
		}
	})
	t.listen(SignalHashChange, routeChange)
	t.listen(SignalPopState, routeChange)

	t.history = ObserveHistory(t.env, func() {
		defer t.recoverHandler("history")
		t.HandleRouteChange()
	})
}

func (t *Tracker) listen(signal Signal, handler func(Event)) {
	remove := t.env.AddEventListener(signal, func(e Event) {
		defer t.recoverHandler(signal)
		handler(e)
	})
	t.removers = append(t.removers, remove)
}

func (t *Tracker) recoverHandler(signal Signal) {
	if r := recover(); r != nil {
		t.logger.Error("tracker: handler panicked", slog.String("signal", string(signal)), slog.String("panic", fmt.Sprint(r)))
	}
}

// Dispose removes every listener and gives the page its original History back.
func (t *Tracker) Dispose() {
	t.mu.Lock()
	defer t.mu.Unlock()

	for _, remove := range t.removers {
		remove()
	}
	t.removers = nil

	if t.history != nil {
		t.history.Restore()
		t.history = nil
	}
	t.started = false
}

// State returns the current navigation.
func (t *Tracker) State() NavigationState {
	t.mu.Lock()
	defer t.mu.Unlock()

	return NavigationState{
		URL:           t.nav.url,
		LoadedAt:      t.nav.loadTime,
		DwellReported: t.nav.state == dwellReported,
	}
}

// handleLoad reports the page view of a full page load, once per tracker.
func (t *Tracker) handleLoad(Event) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.loaded {
		return
	}
	t.loaded = true

	ctx := context.Background()
	userID := t.identity.VisitorID(ctx)
	pv := t.identity.IncrementDailyPageViews(ctx)

	now := t.now()
	url := t.env.Location()
	t.emit(behavior.NewPV(userID, t.cfg.ProjectName, now, url, t.env.Referrer(), pv))

	t.nav = newNavigation(now, url)
}

func (t *Tracker) handleClick(e Event) {
	el, action := t.markedElement(e.Target)
	if el == nil {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	userID := t.identity.VisitorID(context.Background())
	t.emit(behavior.NewClick(userID, t.cfg.ProjectName, t.now(), el.TagName(), action, t.env.Location(), t.nav.url))
}

// markedElement finds the click target or its nearest ancestor carrying a
// non-empty click marker.
func (t *Tracker) markedElement(target Element) (Element, string) {
	for el := target; el != nil; el = el.Parent() {
		if action, ok := el.Attribute(t.cfg.ClickAttribute); ok && action != "" {
			return el, action
		}
	}
	return nil, ""
}

// ReportDwellTime reports how long the current navigation has been active,
// unless that was already reported.
func (t *Tracker) ReportDwellTime() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.reportDwellLocked()
}

func (t *Tracker) reportDwellLocked() {
	if t.nav.state == dwellReported {
		return
	}

	now := t.now()
	dwell := now.Sub(t.nav.loadTime).Milliseconds()
	if dwell <= 0 {
		return
	}

	userID := t.identity.VisitorID(context.Background())
	t.emit(behavior.NewDwell(userID, t.cfg.ProjectName, now, t.nav.url, dwell))
	t.nav.state = dwellReported
}

// HandleRouteChange closes the outgoing navigation with a dwell report and
// opens a new one with a page view. A route change to the current URL is ignored.
func (t *Tracker) HandleRouteChange() {
	t.mu.Lock()
	defer t.mu.Unlock()

	url := t.env.Location()
	if url == t.nav.url {
		return
	}

	// dwell must be computed against the outgoing navigation
	t.reportDwellLocked()

	previous := t.nav.url
	now := t.now()
	t.nav = newNavigation(now, url)

	ctx := context.Background()
	userID := t.identity.VisitorID(ctx)
	pv := t.identity.IncrementDailyPageViews(ctx)
	t.emit(behavior.NewPV(userID, t.cfg.ProjectName, now, url, previous, pv))
}

func (t *Tracker) emit(event behavior.Event) {
	defer func() {
		if r := recover(); r != nil {
			t.logger.Error("tracker: sender panicked", slog.String("behavior", string(event.Behavior)), slog.String("panic", fmt.Sprint(r)))
		}
	}()

	t.logger.Debug("tracker: behavior detected", slog.String("behavior", string(event.Behavior)), slog.String("project", event.ProjectName))
	t.sender.Send(event, t.cfg.ReportURL)
}
