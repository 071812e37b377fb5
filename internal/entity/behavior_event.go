package entity

import (
	"time"

	"github.com/gofrs/uuid"
)

// BehaviorEvent is a report accepted by the collector.
type BehaviorEvent struct {
	ID          uuid.UUID `json:"id" db:"id"`
	Behavior    string    `json:"behavior" db:"behavior"`
	UserID      string    `json:"userId" db:"user_id"`
	ProjectName string    `json:"projectName" db:"project_name"`
	Timestamp   time.Time `json:"timestamp" db:"timestamp"`
	PageURL     *string   `json:"pageUrl,omitempty" db:"page_url"`
	Referrer    *string   `json:"referrer,omitempty" db:"referrer"`
	PV          *int      `json:"pv,omitempty" db:"pv"`
	Element     *string   `json:"element,omitempty" db:"element"`
	Action      *string   `json:"action,omitempty" db:"action"`
	DwellTime   *int64    `json:"dwellTime,omitempty" db:"dwell_time"`
	UserAgent   *string   `json:"userAgent,omitempty" db:"user_agent"`
	ClientIP    *string   `json:"clientIp,omitempty" db:"client_ip"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
}

// BehaviorEventFilter фильтры для поиска событий
type BehaviorEventFilter struct {
	ProjectName *string    `form:"projectName"`
	UserID      *string    `form:"userId"`
	Behavior    *string    `form:"behavior"`
	PageURL     *string    `form:"pageUrl"`
	StartTime   *time.Time `form:"startTime"`
	EndTime     *time.Time `form:"endTime"`
	Page        int        `form:"page"`
	PerPage     int        `form:"per_page"`
}

// DailyStats are the per project counters kept for one UTC day.
type DailyStats struct {
	ProjectName    string `json:"projectName"`
	Day            string `json:"day"`
	PageViews      int64  `json:"pageViews"`
	UniqueVisitors int64  `json:"uniqueVisitors"`
	ReportedUV     int64  `json:"reportedUv"`
	Clicks         int64  `json:"clicks"`
	DwellReports   int64  `json:"dwellReports"`
	AverageDwellMs int64  `json:"averageDwellMs"`
}
