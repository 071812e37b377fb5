package tracker

// Signal names a lifecycle notification delivered by the host page.
type Signal string

const (
	SignalLoad             Signal = "load"
	SignalClick            Signal = "click"
	SignalBeforeUnload     Signal = "beforeunload"
	SignalPageHide         Signal = "pagehide"
	SignalVisibilityChange Signal = "visibilitychange"
	SignalHashChange       Signal = "hashchange"
	SignalPopState         Signal = "popstate"
)

type Visibility string

const (
	VisibilityVisible Visibility = "visible"
	VisibilityHidden  Visibility = "hidden"
)

// Element is the part of a DOM node the tracker inspects. Parent returns nil at
// the document root.
type Element interface {
	TagName() string
	Attribute(name string) (string, bool)
	Parent() Element
}

type Event struct {
	Signal Signal
	Target Element
}

// History is the page's programmatic navigation entry point.
type History interface {
	PushState(state any, title, url string)
	ReplaceState(state any, title, url string)
}

// Environment is the host page as seen by the tracker. The tracker never
// changes the page except for swapping the History it is given.
type Environment interface {
	Location() string
	Referrer() string
	VisibilityState() Visibility
	AddEventListener(signal Signal, listener func(Event)) (remove func())
	History() History
	SetHistory(h History)
}
