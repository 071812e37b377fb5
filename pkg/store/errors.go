package store

import "errors"

var (
	ErrEmptyRedisURL                = errors.New("empty redis connection URL")
	ErrFailedToParseRedisConnString = errors.New("failed to parse redis connection string")
	ErrRedisNotReady                = errors.New("redis did not become ready within the given time period")
	ErrInvalidRetention             = errors.New("retention must be a positive number of days")
)
