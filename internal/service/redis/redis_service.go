package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/dinerozz/behavior-monitor/internal/entity"
	"github.com/dinerozz/behavior-monitor/pkg/utils"
	"github.com/redis/go-redis/v9"
)

// StatsTTL keeps a day of aggregates around a little longer than a month.
const StatsTTL = 40 * 24 * time.Hour

const dwellSumField = "dwell_ms"

type Service struct {
	client *redis.Client
}

func NewRedisService(client *redis.Client) *Service {
	return &Service{client: client}
}

func statsKey(projectName, day string) string {
	return fmt.Sprintf("stats:%s:%s", projectName, day)
}

func visitorsKey(projectName, day string) string {
	return fmt.Sprintf("stats:%s:%s:visitors", projectName, day)
}

// Record adds one accepted event to the daily aggregates of its project.
func (r *Service) Record(ctx context.Context, event *entity.BehaviorEvent) error {
	day := utils.DayKey(event.Timestamp)
	key := statsKey(event.ProjectName, day)
	visitors := visitorsKey(event.ProjectName, day)

	pipe := r.client.TxPipeline()
	pipe.HIncrBy(ctx, key, event.Behavior, 1)
	if event.DwellTime != nil {
		pipe.HIncrBy(ctx, key, dwellSumField, *event.DwellTime)
	}
	pipe.PFAdd(ctx, visitors, event.UserID)
	pipe.Expire(ctx, key, StatsTTL)
	pipe.Expire(ctx, visitors, StatsTTL)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to record aggregates: %w", err)
	}
	return nil
}

func (r *Service) DailyStats(ctx context.Context, projectName, day string) (*entity.DailyStats, error) {
	fields, err := r.client.HGetAll(ctx, statsKey(projectName, day)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get daily stats: %w", err)
	}

	visitors, err := r.client.PFCount(ctx, visitorsKey(projectName, day)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to count visitors: %w", err)
	}

	stats := &entity.DailyStats{
		ProjectName:    projectName,
		Day:            day,
		PageViews:      parseCount(fields["pv"]),
		UniqueVisitors: visitors,
		ReportedUV:     parseCount(fields["uv"]),
		Clicks:         parseCount(fields["click"]),
		DwellReports:   parseCount(fields["dwell"]),
	}
	if stats.DwellReports > 0 {
		stats.AverageDwellMs = parseCount(fields[dwellSumField]) / stats.DwellReports
	}

	return stats, nil
}

func parseCount(value string) int64 {
	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0
	}
	return n
}

func (r *Service) Close() error {
	return r.client.Close()
}

func (r *Service) Health(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
