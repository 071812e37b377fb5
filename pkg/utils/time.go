package utils

import (
	"time"
)

const DayKeyLayout = "2006-01-02"

// DayKey returns the UTC calendar date of t, the namespace for daily counters.
func DayKey(t time.Time) string {
	return t.UTC().Format(DayKeyLayout)
}

func ParseDayKey(value string) (time.Time, error) {
	return time.ParseInLocation(DayKeyLayout, value, time.UTC)
}

// StartOfDay truncates t to midnight UTC.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
