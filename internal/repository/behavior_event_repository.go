package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/dinerozz/behavior-monitor/internal/entity"
	"github.com/gofrs/uuid"
	"github.com/jmoiron/sqlx"
)

var ErrNotFound = errors.New("behavior event not found")

type BehaviorEventRepository interface {
	Create(ctx context.Context, event *entity.BehaviorEvent) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.BehaviorEvent, error)
	GetByFilter(ctx context.Context, filter entity.BehaviorEventFilter) ([]entity.BehaviorEvent, error)
	CountByFilter(ctx context.Context, filter entity.BehaviorEventFilter) (int, error)
}

type behaviorEventRepository struct {
	db *sqlx.DB
}

func NewBehaviorEventRepository(db *sqlx.DB) BehaviorEventRepository {
	return &behaviorEventRepository{db: db}
}

func (r *behaviorEventRepository) Create(ctx context.Context, event *entity.BehaviorEvent) error {
	id, err := uuid.NewV4()
	if err != nil {
		return fmt.Errorf("failed to generate id: %w", err)
	}
	event.ID = id
	event.CreatedAt = time.Now().UTC()

	query := `
		INSERT INTO behavior_events (id, behavior, user_id, project_name, timestamp, page_url, referrer, pv, element, action, dwell_time, user_agent, client_ip, created_at)
		VALUES (:id, :behavior, :user_id, :project_name, :timestamp, :page_url, :referrer, :pv, :element, :action, :dwell_time, :user_agent, :client_ip, :created_at)`

	_, err = r.db.NamedExecContext(ctx, query, event)
	return err
}

func (r *behaviorEventRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.BehaviorEvent, error) {
	var event entity.BehaviorEvent
	err := r.db.GetContext(ctx, &event, "SELECT * FROM behavior_events WHERE id = $1", id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get behavior event: %w", err)
	}
	return &event, nil
}

func buildWhere(filter entity.BehaviorEventFilter) (string, []interface{}) {
	where := " WHERE 1=1"
	args := []interface{}{}
	argIndex := 1

	if filter.ProjectName != nil {
		where += fmt.Sprintf(" AND project_name = $%d", argIndex)
		args = append(args, *filter.ProjectName)
		argIndex++
	}

	if filter.UserID != nil {
		where += fmt.Sprintf(" AND user_id = $%d", argIndex)
		args = append(args, *filter.UserID)
		argIndex++
	}

	if filter.Behavior != nil {
		where += fmt.Sprintf(" AND behavior = $%d", argIndex)
		args = append(args, *filter.Behavior)
		argIndex++
	}

	if filter.PageURL != nil {
		where += fmt.Sprintf(" AND page_url ILIKE $%d", argIndex)
		args = append(args, "%"+*filter.PageURL+"%")
		argIndex++
	}

	if filter.StartTime != nil {
		where += fmt.Sprintf(" AND timestamp >= $%d", argIndex)
		args = append(args, *filter.StartTime)
		argIndex++
	}

	if filter.EndTime != nil {
		where += fmt.Sprintf(" AND timestamp <= $%d", argIndex)
		args = append(args, *filter.EndTime)
	}

	return where, args
}

func (r *behaviorEventRepository) GetByFilter(ctx context.Context, filter entity.BehaviorEventFilter) ([]entity.BehaviorEvent, error) {
	where, args := buildWhere(filter)
	query := "SELECT * FROM behavior_events" + where + " ORDER BY timestamp DESC"

	if filter.PerPage > 0 {
		page := filter.Page
		if page < 1 {
			page = 1
		}
		if page > math.MaxInt32/filter.PerPage {
			return nil, fmt.Errorf("page %d is out of range", page)
		}
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", filter.PerPage, (page-1)*filter.PerPage)
	}

	events := []entity.BehaviorEvent{}
	if err := r.db.SelectContext(ctx, &events, query, args...); err != nil {
		return nil, fmt.Errorf("failed to select behavior events: %w", err)
	}

	return events, nil
}

func (r *behaviorEventRepository) CountByFilter(ctx context.Context, filter entity.BehaviorEventFilter) (int, error) {
	where, args := buildWhere(filter)

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM behavior_events"+where, args...); err != nil {
		return 0, fmt.Errorf("failed to count behavior events: %w", err)
	}

	return total, nil
}
