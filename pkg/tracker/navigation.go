package tracker

import "time"

type pageState int

const (
	pageActive pageState = iota
	dwellReported
)

func (s pageState) String() string {
	switch s {
	case pageActive:
		return "page-active"
	case dwellReported:
		return "dwell-reported"
	}
	return "unknown"
}

// navigation is one visited page or route. Dwell is reported at most once per
// navigation; entering a new one re-arms it.
type navigation struct {
	loadTime time.Time
	url      string
	state    pageState
}

func newNavigation(loadTime time.Time, url string) navigation {
	return navigation{loadTime: loadTime, url: url, state: pageActive}
}

// NavigationState is a read-only view of the current navigation.
type NavigationState struct {
	URL           string
	LoadedAt      time.Time
	DwellReported bool
}
