// Package behavior defines the wire payload exchanged between the tracker and the collector.
package behavior

import "time"

type Kind string

const (
	KindUV    Kind = "uv"
	KindPV    Kind = "pv"
	KindClick Kind = "click"
	KindDwell Kind = "dwell"
)

// TimestampLayout matches the ISO-8601 form browsers produce with millisecond precision.
const TimestampLayout = "2006-01-02T15:04:05.000Z"

var validKinds = map[Kind]bool{
	KindUV:    true,
	KindPV:    true,
	KindClick: true,
	KindDwell: true,
}

func (k Kind) Valid() bool {
	return validKinds[k]
}

// Event is a single behavior report. Kind specific fields are only present on the
// kinds that carry them.
type Event struct {
	Behavior    Kind    `json:"behavior"`
	UserID      string  `json:"userId"`
	ProjectName string  `json:"projectName"`
	Timestamp   string  `json:"timestamp"`
	PageURL     *string `json:"pageUrl,omitempty"`
	Referrer    *string `json:"referrer,omitempty"`
	PV          *int    `json:"pv,omitempty"`
	Element     *string `json:"element,omitempty"`
	Action      *string `json:"action,omitempty"`
	DwellTime   *int64  `json:"dwellTime,omitempty"`
}

func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

func newEvent(kind Kind, userID, projectName string, at time.Time) Event {
	return Event{
		Behavior:    kind,
		UserID:      userID,
		ProjectName: projectName,
		Timestamp:   FormatTimestamp(at),
	}
}

func NewUV(userID, projectName string, at time.Time) Event {
	return newEvent(KindUV, userID, projectName, at)
}

func NewPV(userID, projectName string, at time.Time, pageURL, referrer string, pv int) Event {
	e := newEvent(KindPV, userID, projectName, at)
	e.PageURL = &pageURL
	e.Referrer = &referrer
	e.PV = &pv
	return e
}

func NewClick(userID, projectName string, at time.Time, element, action, pageURL, referrer string) Event {
	e := newEvent(KindClick, userID, projectName, at)
	e.Element = &element
	e.Action = &action
	e.PageURL = &pageURL
	e.Referrer = &referrer
	return e
}

func NewDwell(userID, projectName string, at time.Time, pageURL string, dwellTime int64) Event {
	e := newEvent(KindDwell, userID, projectName, at)
	e.PageURL = &pageURL
	e.DwellTime = &dwellTime
	return e
}
