package report

import "errors"

var (
	ErrMalformedPayload = errors.New("malformed behavior payload")
	ErrInvalidEvent     = errors.New("invalid behavior event")
	ErrInvalidQuery     = errors.New("invalid stats query")
	ErrStatsDisabled    = errors.New("daily stats are not configured")
)
