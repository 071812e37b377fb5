// Package monitor is the entry point embedding pages call once per page load.
package monitor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dinerozz/behavior-monitor/pkg/behavior"
	"github.com/dinerozz/behavior-monitor/pkg/tracker"
	"github.com/dinerozz/behavior-monitor/pkg/transport"
)

var ErrInvalidOptions = errors.New("invalid monitor options")

type Options struct {
	ProjectName string
	ReportURL   string
	// RetentionDays bounds how many days of page-view counters the store keeps.
	// Zero keeps everything.
	RetentionDays  int
	ClickAttribute string
	Logger         *slog.Logger
	Clock          func() time.Time
}

func (o Options) validate() error {
	if o.ProjectName == "" {
		return fmt.Errorf("%w: project name is required", ErrInvalidOptions)
	}
	if o.ReportURL == "" {
		return fmt.Errorf("%w: report URL is required", ErrInvalidOptions)
	}
	if o.RetentionDays < 0 {
		return fmt.Errorf("%w: retention days cannot be negative", ErrInvalidOptions)
	}
	return nil
}

// Store is the identity & counter store the monitor reads at startup.
type Store interface {
	tracker.Identity
	IsUniqueVisitRecordedToday(ctx context.Context) bool
	MarkUniqueVisitRecordedToday(ctx context.Context)
	PruneDailyCounters(ctx context.Context, retain int) (int, error)
}

type Monitor struct {
	tracker *tracker.Tracker
}

// Initialize records the unique visit of the day if needed and starts tracking
// env. Only invalid options produce an error.
func Initialize(ctx context.Context, opts Options, env tracker.Environment, st Store, sender transport.Sender) (*Monitor, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := opts.Clock
	if now == nil {
		now = time.Now
	}

	if opts.RetentionDays > 0 {
		removed, err := st.PruneDailyCounters(ctx, opts.RetentionDays)
		if err != nil {
			logger.Warn("monitor: failed to prune daily counters", slog.String("error", err.Error()))
		} else if removed > 0 {
			logger.Debug("monitor: pruned daily counters", slog.Int("removed", removed))
		}
	}

	userID := st.VisitorID(ctx)
	if !st.IsUniqueVisitRecordedToday(ctx) {
		sendSafely(logger, sender, behavior.NewUV(userID, opts.ProjectName, now()), opts.ReportURL)
		st.MarkUniqueVisitRecordedToday(ctx)
	}

	t := tracker.New(tracker.Config{
		ProjectName:    opts.ProjectName,
		ReportURL:      opts.ReportURL,
		ClickAttribute: opts.ClickAttribute,
	}, env, st, sender, tracker.WithClock(now), tracker.WithLogger(logger))
	t.Start()

	return &Monitor{tracker: t}, nil
}

func sendSafely(logger *slog.Logger, sender transport.Sender, event behavior.Event, url string) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("monitor: sender panicked", slog.String("panic", fmt.Sprint(r)))
		}
	}()
	sender.Send(event, url)
}

func (m *Monitor) Tracker() *tracker.Tracker {
	return m.tracker
}

// Dispose stops tracking and restores the page's History.
func (m *Monitor) Dispose() {
	m.tracker.Dispose()
}
