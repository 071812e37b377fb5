package scenario

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dinerozz/behavior-monitor/internal/browser"
	"github.com/dinerozz/behavior-monitor/pkg/monitor"
	"github.com/dinerozz/behavior-monitor/pkg/transport"
)

type Runner struct {
	Store  monitor.Store
	Sender transport.Sender
	Clock  *Clock
	Logger *slog.Logger
}

type Result struct {
	Steps    int
	FinalURL string
	Page     *browser.Page
}

func buildElements(specs []Element, parent *browser.Element, byID map[string]*browser.Element) {
	for _, spec := range specs {
		el := browser.NewElement(spec.Tag, spec.Attrs)
		if parent != nil {
			parent.Append(el)
		}
		if spec.ID != "" {
			byID[spec.ID] = el
		}
		buildElements(spec.Children, el, byID)
	}
}

// Run initializes the monitor on a fresh simulated page, plays every step and
// disposes the monitor. Cancelling ctx stops between steps.
func (r *Runner) Run(ctx context.Context, sc *Scenario) (*Result, error) {
	if err := sc.Validate(); err != nil {
		return nil, err
	}

	logger := r.Logger
	if logger == nil {
		logger = slog.Default()
	}

	page := browser.NewPage(sc.StartURL, sc.Referrer)
	elements := map[string]*browser.Element{}
	buildElements(sc.Elements, nil, elements)

	opts := monitor.Options{
		ProjectName:    sc.Project,
		ReportURL:      sc.ReportURL,
		RetentionDays:  sc.RetentionDays,
		ClickAttribute: sc.ClickAttribute,
		Logger:         logger,
	}
	if r.Clock != nil {
		opts.Clock = r.Clock.Now
	}

	m, err := monitor.Initialize(ctx, opts, page, r.Store, r.Sender)
	if err != nil {
		return nil, err
	}
	defer m.Dispose()

	result := &Result{Page: page}
	for i, step := range sc.Steps {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		if err := r.play(page, elements, step); err != nil {
			return result, fmt.Errorf("step %d (%s): %w", i+1, step.Action, err)
		}
		logger.Debug("scenario: step played", slog.Int("step", i+1), slog.String("action", string(step.Action)), slog.String("url", page.Location()))
		result.Steps++
	}

	result.FinalURL = page.Location()
	return result, nil
}

func (r *Runner) play(page *browser.Page, elements map[string]*browser.Element, step Step) (err error) {
	// the simulated history panics on URLs it cannot resolve
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("%v", rec)
		}
	}()

	switch step.Action {
	case ActionLoad:
		page.Load()
	case ActionClick:
		page.Click(elements[step.Target])
	case ActionPush:
		page.PushState(step.URL)
	case ActionReplace:
		page.ReplaceState(step.URL)
	case ActionHash:
		return page.SetHash(step.URL)
	case ActionBack:
		page.Back()
	case ActionForward:
		page.Forward()
	case ActionHide:
		page.Hide()
	case ActionShow:
		page.Show()
	case ActionUnload:
		page.Unload()
	case ActionWait:
		if r.Clock == nil {
			return fmt.Errorf("wait needs a simulated clock")
		}
		r.Clock.Advance(step.Wait)
	}
	return nil
}
