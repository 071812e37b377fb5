package report

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/dinerozz/behavior-monitor/internal/entity"
	"github.com/dinerozz/behavior-monitor/internal/repository"
	redisService "github.com/dinerozz/behavior-monitor/internal/service/redis"
	"github.com/dinerozz/behavior-monitor/pkg/behavior"
	"github.com/dinerozz/behavior-monitor/pkg/utils"
	"github.com/gofrs/uuid"
)

type ReportService interface {
	Accept(ctx context.Context, raw []byte, meta RequestMeta) (*entity.BehaviorEvent, error)
	GetEventByID(ctx context.Context, id uuid.UUID) (*entity.BehaviorEvent, error)
	GetEvents(ctx context.Context, filter entity.BehaviorEventFilter) ([]entity.BehaviorEvent, *entity.PaginationInfo, error)
	GetDailyStats(ctx context.Context, projectName, day string) (*entity.DailyStats, error)
}

// RequestMeta is what the collector knows about the sender besides the payload.
type RequestMeta struct {
	UserAgent string
	ClientIP  string
}

type reportService struct {
	repo    repository.BehaviorEventRepository
	stats   redisService.ServiceInterface
	metrics *Metrics
	logger  *slog.Logger
}

func NewReportService(repo repository.BehaviorEventRepository, stats redisService.ServiceInterface, metrics *Metrics, logger *slog.Logger) ReportService {
	return &reportService{
		repo:    repo,
		stats:   stats,
		metrics: metrics,
		logger:  logger,
	}
}

// ParsePayload decodes a report body. Beacon deliveries may arrive as
// text/plain or as a JSON string wrapping the object, both are accepted.
func ParsePayload(raw []byte) (*behavior.Event, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: empty body", ErrMalformedPayload)
	}

	if raw[0] == '"' {
		var inner string
		if err := json.Unmarshal(raw, &inner); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
		}
		raw = bytes.TrimSpace([]byte(inner))
	}

	var event behavior.Event
	if err := json.Unmarshal(raw, &event); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	return &event, nil
}

func invalid(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidEvent, fmt.Sprintf(format, args...))
}

// Validate checks the common fields and the fields each behavior must carry.
func Validate(e *behavior.Event) (time.Time, error) {
	if !e.Behavior.Valid() {
		return time.Time{}, invalid("unknown behavior %q", e.Behavior)
	}
	if e.UserID == "" {
		return time.Time{}, invalid("userId is required")
	}
	if e.ProjectName == "" {
		return time.Time{}, invalid("projectName is required")
	}

	ts, err := time.Parse(time.RFC3339, e.Timestamp)
	if err != nil {
		return time.Time{}, invalid("timestamp must be ISO-8601: %q", e.Timestamp)
	}

	switch e.Behavior {
	case behavior.KindPV:
		if e.PageURL == nil || *e.PageURL == "" {
			return time.Time{}, invalid("pv requires pageUrl")
		}
		if e.PV == nil || *e.PV < 1 {
			return time.Time{}, invalid("pv requires a positive pv counter")
		}
	case behavior.KindClick:
		if e.Action == nil || *e.Action == "" {
			return time.Time{}, invalid("click requires action")
		}
	case behavior.KindDwell:
		if e.DwellTime == nil || *e.DwellTime <= 0 {
			return time.Time{}, invalid("dwell requires a positive dwellTime")
		}
	}

	return ts.UTC(), nil
}

func optional(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}

func (s *reportService) Accept(ctx context.Context, raw []byte, meta RequestMeta) (*entity.BehaviorEvent, error) {
	event, err := ParsePayload(raw)
	if err != nil {
		s.metrics.observe("unknown", outcomeRejected)
		return nil, err
	}

	ts, err := Validate(event)
	if err != nil {
		label := "unknown"
		if event.Behavior.Valid() {
			label = string(event.Behavior)
		}
		s.metrics.observe(label, outcomeRejected)
		return nil, err
	}

	record := &entity.BehaviorEvent{
		Behavior:    string(event.Behavior),
		UserID:      event.UserID,
		ProjectName: event.ProjectName,
		Timestamp:   ts,
		PageURL:     event.PageURL,
		Referrer:    event.Referrer,
		PV:          event.PV,
		Element:     event.Element,
		Action:      event.Action,
		DwellTime:   event.DwellTime,
		UserAgent:   optional(meta.UserAgent),
		ClientIP:    optional(meta.ClientIP),
	}

	if err := s.repo.Create(ctx, record); err != nil {
		s.metrics.observe(record.Behavior, outcomeFailed)
		return nil, fmt.Errorf("failed to store behavior event: %w", err)
	}

	if s.stats != nil {
		if err := s.stats.Record(ctx, record); err != nil {
			s.logger.Warn("failed to update daily aggregates", slog.String("project", record.ProjectName), slog.String("error", err.Error()))
		}
	}

	s.metrics.observe(record.Behavior, outcomeAccepted)
	if record.DwellTime != nil {
		s.metrics.dwell.Observe(float64(*record.DwellTime) / 1000)
	}

	return record, nil
}

// maxOffset caps how deep listing can page, keeping OFFSET far from overflow.
const maxOffset = 10_000_000

func maxPage(perPage int) int {
	return maxOffset/perPage + 1
}

func (s *reportService) GetEventByID(ctx context.Context, id uuid.UUID) (*entity.BehaviorEvent, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *reportService) GetEvents(ctx context.Context, filter entity.BehaviorEventFilter) ([]entity.BehaviorEvent, *entity.PaginationInfo, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PerPage <= 0 {
		filter.PerPage = 20
	}
	if filter.PerPage > 1000 {
		filter.PerPage = 1000
	}
	if filter.Page > maxPage(filter.PerPage) {
		return nil, nil, fmt.Errorf("%w: page must be at most %d", ErrInvalidQuery, maxPage(filter.PerPage))
	}

	events, err := s.repo.GetByFilter(ctx, filter)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get behavior events: %w", err)
	}

	total, err := s.repo.CountByFilter(ctx, filter)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to count behavior events: %w", err)
	}

	return events, &entity.PaginationInfo{
		Page:       filter.Page,
		PerPage:    filter.PerPage,
		Total:      total,
		TotalPages: (total + filter.PerPage - 1) / filter.PerPage,
	}, nil
}

func (s *reportService) GetDailyStats(ctx context.Context, projectName, day string) (*entity.DailyStats, error) {
	if projectName == "" {
		return nil, fmt.Errorf("%w: project is required", ErrInvalidQuery)
	}
	if day == "" {
		day = utils.DayKey(time.Now())
	} else if _, err := utils.ParseDayKey(day); err != nil {
		return nil, fmt.Errorf("%w: day must be YYYY-MM-DD", ErrInvalidQuery)
	}
	if s.stats == nil {
		return nil, ErrStatsDisabled
	}

	return s.stats.DailyStats(ctx, projectName, day)
}
