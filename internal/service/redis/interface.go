package redis

import (
	"context"

	"github.com/dinerozz/behavior-monitor/internal/entity"
)

type ServiceInterface interface {
	Record(ctx context.Context, event *entity.BehaviorEvent) error
	DailyStats(ctx context.Context, projectName, day string) (*entity.DailyStats, error)
	Health(ctx context.Context) error
	Close() error
}
