// Package store keeps the visitor identity, the daily page-view counter and the
// daily unique-visitor flag on top of a KV backend.
//
// Daily values are addressed by a UTC day key, so they reset on rollover without
// being cleared. No coordination happens between processes sharing a backend:
// concurrent increments are last-write-wins.
package store

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/dinerozz/behavior-monitor/pkg/utils"
	"github.com/google/uuid"
)

const (
	UserIDKey  = "user_behavior_user_id"
	PVCountKey = "user_behavior_pv_count"
	UVKey      = "user_behavior_uv"
)

type Store struct {
	kv     KV
	now    func() time.Time
	logger *slog.Logger
}

type Option func(*Store)

func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

func New(kv KV, opts ...Option) *Store {
	s := &Store{
		kv:     kv,
		now:    time.Now,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func pvKey(day string) string {
	return PVCountKey + "_" + day
}

func (s *Store) today() string {
	return utils.DayKey(s.now())
}

// VisitorID returns the persisted visitor identity, creating it on first use.
// When the backend fails the caller gets a fresh id that is not persisted.
func (s *Store) VisitorID(ctx context.Context) string {
	id, ok, err := s.kv.Get(ctx, UserIDKey)
	if err != nil {
		s.logger.Warn("store: visitor id unavailable, using ephemeral id", slog.String("error", err.Error()))
		return uuid.NewString()
	}
	if ok && id != "" {
		return id
	}

	id = uuid.NewString()
	if err := s.kv.Set(ctx, UserIDKey, id); err != nil {
		s.logger.Warn("store: failed to persist visitor id", slog.String("error", err.Error()))
	}
	return id
}

// IncrementDailyPageViews bumps today's counter and returns the new value.
func (s *Store) IncrementDailyPageViews(ctx context.Context) int {
	key := pvKey(s.today())

	current := 0
	raw, ok, err := s.kv.Get(ctx, key)
	switch {
	case err != nil:
		s.logger.Warn("store: failed to read page views", slog.String("key", key), slog.String("error", err.Error()))
	case ok:
		if n, convErr := strconv.Atoi(raw); convErr == nil {
			current = n
		}
	}

	next := current + 1
	if err := s.kv.Set(ctx, key, strconv.Itoa(next)); err != nil {
		s.logger.Warn("store: failed to write page views", slog.String("key", key), slog.String("error", err.Error()))
	}
	return next
}

func (s *Store) IsUniqueVisitRecordedToday(ctx context.Context) bool {
	day, ok, err := s.kv.Get(ctx, UVKey)
	if err != nil {
		s.logger.Warn("store: failed to read uv flag", slog.String("error", err.Error()))
		return false
	}
	return ok && day == s.today()
}

func (s *Store) MarkUniqueVisitRecordedToday(ctx context.Context) {
	if err := s.kv.Set(ctx, UVKey, s.today()); err != nil {
		s.logger.Warn("store: failed to write uv flag", slog.String("error", err.Error()))
	}
}

// PruneDailyCounters removes page-view counters older than retain days and
// returns how many were deleted. Today counts as the first retained day.
func (s *Store) PruneDailyCounters(ctx context.Context, retain int) (int, error) {
	if retain <= 0 {
		return 0, ErrInvalidRetention
	}

	keys, err := s.kv.Keys(ctx, PVCountKey+"_")
	if err != nil {
		return 0, err
	}

	cutoff := utils.StartOfDay(s.now()).AddDate(0, 0, -(retain - 1))
	removed := 0
	for _, key := range keys {
		day, err := utils.ParseDayKey(strings.TrimPrefix(key, PVCountKey+"_"))
		if err != nil || !day.Before(cutoff) {
			continue
		}
		if err := s.kv.Delete(ctx, key); err != nil {
			return removed, err
		}
		removed++
	}
	return removed, nil
}
