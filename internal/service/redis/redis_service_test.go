package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/dinerozz/behavior-monitor/internal/entity"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRedisService(t *testing.T) (*Service, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	svc := NewRedisService(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { svc.Close() })

	return svc, mr
}

func event(behavior, userID string, at time.Time, dwell *int64) *entity.BehaviorEvent {
	return &entity.BehaviorEvent{
		Behavior:    behavior,
		UserID:      userID,
		ProjectName: "shop",
		Timestamp:   at,
		DwellTime:   dwell,
	}
}

func TestRecordAndDailyStats(t *testing.T) {
	svc, mr := setupRedisService(t)
	ctx := context.Background()
	at := time.Date(2026, 3, 3, 12, 0, 0, 0, time.UTC)
	d1, d2 := int64(1000), int64(3000)

	for _, e := range []*entity.BehaviorEvent{
		event("uv", "u1", at, nil),
		event("pv", "u1", at, nil),
		event("pv", "u1", at, nil),
		event("pv", "u2", at, nil),
		event("click", "u2", at, nil),
		event("dwell", "u1", at, &d1),
		event("dwell", "u2", at, &d2),
		event("pv", "u3", at.Add(24*time.Hour), nil),
	} {
		require.NoError(t, svc.Record(ctx, e))
	}

	stats, err := svc.DailyStats(ctx, "shop", "2026-03-03")
	require.NoError(t, err)
	assert.Equal(t, &entity.DailyStats{
		ProjectName:    "shop",
		Day:            "2026-03-03",
		PageViews:      3,
		UniqueVisitors: 2,
		ReportedUV:     1,
		Clicks:         1,
		DwellReports:   2,
		AverageDwellMs: 2000,
	}, stats)

	assert.True(t, mr.TTL(statsKey("shop", "2026-03-03")) > 0)
	assert.NoError(t, svc.Health(ctx))
}

func TestDailyStatsEmptyDay(t *testing.T) {
	svc, _ := setupRedisService(t)

	stats, err := svc.DailyStats(context.Background(), "shop", "2026-01-01")
	require.NoError(t, err)
	assert.Zero(t, stats.PageViews)
	assert.Zero(t, stats.UniqueVisitors)
	assert.Zero(t, stats.AverageDwellMs)
}
